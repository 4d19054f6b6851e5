package navigation

import (
	"context"
	"strings"
)

// MobileBreakpoint is the first viewport width rendered as desktop.
const MobileBreakpoint = 768

type State string

const (
	StateDesktopExpanded  State = "desktop-expanded"
	StateDesktopCollapsed State = "desktop-collapsed"
	StateMobileClosed     State = "mobile-closed"
	StateMobileOpen       State = "mobile-open"
)

// Sidebar widths in pixels.
const (
	WidthExpanded  = 256
	WidthCollapsed = 64
	WidthHidden    = 0
)

// Sidebar is the dashboard navigation state machine. The zero value is not
// ready for use; call NewSidebar.
type Sidebar struct {
	mobile     bool
	expanded   bool
	mobileOpen bool
}

// NewSidebar starts expanded on desktop.
func NewSidebar() *Sidebar {
	return &Sidebar{expanded: true}
}

// Restore rebuilds a sidebar from a viewport width and the client's toggles.
func Restore(width int, collapsed, menuOpen bool) *Sidebar {
	s := NewSidebar()
	if collapsed {
		s.ToggleSidebar()
	}
	s.Resize(width)
	if menuOpen {
		s.ToggleMobileMenu()
	}
	return s
}

func (s *Sidebar) State() State {
	switch {
	case s.mobile && s.mobileOpen:
		return StateMobileOpen
	case s.mobile:
		return StateMobileClosed
	case s.expanded:
		return StateDesktopExpanded
	default:
		return StateDesktopCollapsed
	}
}

func (s *Sidebar) IsMobile() bool {
	return s.mobile
}

// Collapsed reports the desktop flag, which is kept while on mobile.
func (s *Sidebar) Collapsed() bool {
	return !s.expanded
}

func (s *Sidebar) MenuOpen() bool {
	return s.mobileOpen
}

// Resize applies a viewport width. Reaching desktop width always closes the
// mobile menu; the desktop expanded flag survives mobile excursions.
func (s *Sidebar) Resize(width int) {
	s.mobile = width < MobileBreakpoint
	if !s.mobile {
		s.mobileOpen = false
	}
}

// ToggleSidebar flips expanded and collapsed. It is ignored on mobile.
func (s *Sidebar) ToggleSidebar() bool {
	if s.mobile {
		return false
	}
	s.expanded = !s.expanded
	return true
}

// ToggleMobileMenu flips the mobile menu. It is ignored on desktop.
func (s *Sidebar) ToggleMobileMenu() bool {
	if !s.mobile {
		return false
	}
	s.mobileOpen = !s.mobileOpen
	return true
}

// Navigate records a menu click and returns the target route.
func (s *Sidebar) Navigate(href string) string {
	if s.mobile {
		s.mobileOpen = false
	}
	return href
}

func (s *Sidebar) LabelsVisible() bool {
	return s.mobile || s.expanded
}

// MenuVisible is false only while the mobile menu is closed.
func (s *Sidebar) MenuVisible() bool {
	return !s.mobile || s.mobileOpen
}

func (s *Sidebar) Width() int {
	switch s.State() {
	case StateMobileClosed:
		return WidthHidden
	case StateDesktopCollapsed:
		return WidthCollapsed
	default:
		return WidthExpanded
	}
}

type MenuItem struct {
	Href         string
	Label        string
	Active       bool
	LabelVisible bool
	Hidden       bool
}

func (s *Sidebar) MenuItems(pathname string) []MenuItem {
	routes := Routes()
	out := make([]MenuItem, 0, len(routes))
	for _, r := range routes {
		out = append(out, MenuItem{
			Href:         r.Href,
			Label:        r.Label,
			Active:       pathname == r.Href,
			LabelVisible: s.LabelsVisible(),
			Hidden:       !s.MenuVisible(),
		})
	}
	return out
}

type View struct {
	State              State
	Width              int
	ShowSidebarToggle  bool
	MobileToggleLabel  string
	LogoutVisible      bool
	LogoutLabelVisible bool
	Items              []MenuItem
}

// View renders the widget model for the current path.
func (s *Sidebar) View(pathname string) View {
	toggleLabel := "Menu"
	if s.mobileOpen {
		toggleLabel = "Close"
	}
	return View{
		State:              s.State(),
		Width:              s.Width(),
		ShowSidebarToggle:  !s.mobile,
		MobileToggleLabel:  toggleLabel,
		LogoutVisible:      s.MenuVisible(),
		LogoutLabelVisible: s.LabelsVisible(),
		Items:              s.MenuItems(pathname),
	}
}

type LogoutFunc func(ctx context.Context) error

type LogoutResult struct {
	Redirect string
	Alert    string
}

// Logout signs out and redirects home. A failure keeps the user in place and
// carries the error text as the alert.
func (s *Sidebar) Logout(ctx context.Context, logout LogoutFunc) LogoutResult {
	if logout == nil {
		return LogoutResult{Redirect: RouteHome}
	}
	if err := logout(ctx); err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = "Logout failed"
		}
		return LogoutResult{Alert: msg}
	}
	return LogoutResult{Redirect: RouteHome}
}
