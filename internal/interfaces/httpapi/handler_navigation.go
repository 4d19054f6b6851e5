package httpapi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/domain/ticker"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const (
	defaultViewportWidth = 1280
	tickerFrame          = 16 * time.Millisecond
	maxTickerFrames      = 600
)

// Sidebar actions accepted by GetNavigation.
const (
	navActionToggleSidebar = "toggle-sidebar"
	navActionToggleMenu    = "toggle-menu"
	navActionNavigate      = "navigate"
)

// GetNavigation rebuilds the sidebar from the client's viewport and toggles,
// applies an optional action and returns the widget model.
func (h *Handler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNavigation")
	defer span.End()

	q := r.URL.Query()
	width, err := queryInt(q, "width", defaultViewportWidth)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if width < 0 {
		writeError(ctx, w, fmt.Errorf("%w: width must be >= 0", usecase.ErrInvalidInput))
		return
	}
	collapsed, err := queryBool(q, "collapsed")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	menuOpen, err := queryBool(q, "menu_open")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pathname := strings.TrimSpace(q.Get("path"))
	if pathname == "" {
		pathname = navigation.RouteDashboard
	}

	sidebar := navigation.Restore(width, collapsed, menuOpen)
	redirect := ""
	switch action := strings.TrimSpace(q.Get("action")); action {
	case "":
	case navActionToggleSidebar:
		sidebar.ToggleSidebar()
	case navActionToggleMenu:
		sidebar.ToggleMobileMenu()
	case navActionNavigate:
		href := strings.TrimSpace(q.Get("href"))
		if !navigation.IsMenuRoute(href) {
			writeError(ctx, w, fmt.Errorf("%w: unknown route %q", usecase.ErrInvalidInput, href))
			return
		}
		redirect = sidebar.Navigate(href)
		pathname = redirect
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown action %q", usecase.ErrInvalidInput, action))
		return
	}

	out := navigationToDTO(sidebar, pathname)
	out.Redirect = redirect
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoutes")
	defer span.End()

	routes := navigation.Routes()
	items := make([]routeDTO, 0, len(routes))
	for _, route := range routes {
		items = append(items, routeDTO{Href: route.Href, Label: route.Label})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// GetTicker returns the looping ticker text and the strip offset for a scroll
// progress. With frames > 0 it also returns the spring-smoothed path from the
// "from" offset to the target.
func (h *Handler) GetTicker(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTicker")
	defer span.End()

	q := r.URL.Query()
	progress, err := queryFloat(q, "progress", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	from, err := queryFloat(q, "from", ticker.OffsetStart)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	frames, err := queryInt(q, "frames", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if frames < 0 || frames > maxTickerFrames {
		writeError(ctx, w, fmt.Errorf("%w: frames must be between 0 and %d", usecase.ErrInvalidInput, maxTickerFrames))
		return
	}

	offset := ticker.Offset(progress)
	out := tickerDTO{
		Items:    ticker.Items(),
		Progress: math.Max(0, math.Min(1, progress)),
		Offset:   offset,
	}
	if frames > 0 {
		out.Trajectory = ticker.NewSpring(from).Trajectory(offset, tickerFrame, frames)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func queryInt(q url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func queryFloat(q url.Values, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", usecase.ErrInvalidInput, key)
	}
	return v, nil
}
