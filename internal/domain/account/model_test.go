package account

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Player@Example.COM "); got != "player@example.com" {
		t.Fatalf("unexpected normalized email: %q", got)
	}
}

func TestVerificationUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	consumed := now.Add(-time.Minute)

	cases := []struct {
		name string
		v    Verification
		want bool
	}{
		{name: "fresh", v: Verification{ExpiresAt: now.Add(time.Hour)}, want: true},
		{name: "expired", v: Verification{ExpiresAt: now}, want: false},
		{name: "consumed", v: Verification{ExpiresAt: now.Add(time.Hour), ConsumedAt: &consumed}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Usable(now); got != tc.want {
				t.Fatalf("Usable() = %v, want %v", got, tc.want)
			}
		})
	}
}
