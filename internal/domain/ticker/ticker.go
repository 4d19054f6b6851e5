package ticker

// Scroll range mapped onto the horizontal offset.
const (
	OffsetStart = 0.0
	OffsetEnd   = -1000.0
)

var baseItems = []string{
	"Pick your squad",
	"follow the action live",
	"collect kills",
	"climb the leaderboard",
}

// Items returns the ticker text twice in a row so the strip loops seamlessly.
func Items() []string {
	out := make([]string, 0, len(baseItems)*2)
	out = append(out, baseItems...)
	out = append(out, baseItems...)
	return out
}

// Offset maps scroll progress in [0,1] to the strip's x offset. Progress
// outside the range is clamped.
func Offset(progress float64) float64 {
	if progress != progress {
		progress = 0
	}
	switch {
	case progress < 0:
		progress = 0
	case progress > 1:
		progress = 1
	}
	return OffsetStart + (OffsetEnd-OffsetStart)*progress
}
