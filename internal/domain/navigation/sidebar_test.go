package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidebar_StartsDesktopExpanded(t *testing.T) {
	t.Parallel()

	s := NewSidebar()
	assert.Equal(t, StateDesktopExpanded, s.State())
	assert.Equal(t, WidthExpanded, s.Width())
}

func TestSidebar_Transitions(t *testing.T) {
	t.Parallel()

	s := NewSidebar()

	require.True(t, s.ToggleSidebar())
	assert.Equal(t, StateDesktopCollapsed, s.State())
	assert.False(t, s.ToggleMobileMenu(), "mobile toggle ignored on desktop")
	assert.Equal(t, StateDesktopCollapsed, s.State())

	s.Resize(767)
	assert.Equal(t, StateMobileClosed, s.State())
	assert.False(t, s.ToggleSidebar(), "sidebar toggle ignored on mobile")

	require.True(t, s.ToggleMobileMenu())
	assert.Equal(t, StateMobileOpen, s.State())

	s.Resize(500)
	assert.Equal(t, StateMobileOpen, s.State(), "resizing within mobile keeps menu state")

	s.Resize(768)
	assert.Equal(t, StateDesktopCollapsed, s.State(), "desktop flag survives mobile")

	s.Resize(320)
	assert.Equal(t, StateMobileClosed, s.State(), "desktop width closed the mobile menu")
}

func TestSidebar_NavigateClosesMobileMenu(t *testing.T) {
	t.Parallel()

	s := Restore(400, false, true)
	require.Equal(t, StateMobileOpen, s.State())

	assert.Equal(t, RouteDashboardPage2, s.Navigate(RouteDashboardPage2))
	assert.Equal(t, StateMobileClosed, s.State())

	d := NewSidebar()
	d.Navigate(RouteDashboard)
	assert.Equal(t, StateDesktopExpanded, d.State())
}

func TestSidebar_MenuItems(t *testing.T) {
	t.Parallel()

	t.Run("desktop collapsed hides labels", func(t *testing.T) {
		s := Restore(1024, true, false)
		items := s.MenuItems(RouteDashboard)
		require.Len(t, items, 2)
		assert.Equal(t, MenuItem{Href: "/dashboard", Label: "Dashboard", Active: true}, items[0])
		assert.Equal(t, MenuItem{Href: "/dashboard/page2", Label: "Page 2"}, items[1])
	})

	t.Run("mobile closed hides items", func(t *testing.T) {
		s := Restore(360, false, false)
		for _, item := range s.MenuItems("/elsewhere") {
			assert.True(t, item.Hidden)
			assert.True(t, item.LabelVisible)
			assert.False(t, item.Active)
		}
	})
}

func TestSidebar_View(t *testing.T) {
	t.Parallel()

	v := Restore(360, true, true).View(RouteDashboardPage2)
	assert.Equal(t, StateMobileOpen, v.State)
	assert.Equal(t, WidthExpanded, v.Width)
	assert.False(t, v.ShowSidebarToggle)
	assert.Equal(t, "Close", v.MobileToggleLabel)
	assert.True(t, v.LogoutVisible)
	assert.True(t, v.Items[1].Active)

	closed := Restore(360, false, false).View(RouteDashboard)
	assert.Equal(t, WidthHidden, closed.Width)
	assert.Equal(t, "Menu", closed.MobileToggleLabel)
	assert.False(t, closed.LogoutVisible)
}

func TestSidebar_Logout(t *testing.T) {
	t.Parallel()

	s := NewSidebar()
	ok := s.Logout(context.Background(), func(context.Context) error { return nil })
	assert.Equal(t, LogoutResult{Redirect: "/"}, ok)

	failed := s.Logout(context.Background(), func(context.Context) error { return errors.New("network down") })
	assert.Equal(t, LogoutResult{Alert: "network down"}, failed)
}

func TestRestore_KeepsDesktopFlagOnMobile(t *testing.T) {
	s := Restore(500, true, true)
	if s.State() != StateMobileOpen {
		t.Fatalf("expected %s, got %s", StateMobileOpen, s.State())
	}
	if !s.Collapsed() || !s.MenuOpen() {
		t.Fatalf("expected collapsed flag and open menu to survive, got collapsed=%v open=%v", s.Collapsed(), s.MenuOpen())
	}

	s.Resize(1200)
	if s.State() != StateDesktopCollapsed {
		t.Fatalf("expected %s after resize, got %s", StateDesktopCollapsed, s.State())
	}
	if s.MenuOpen() {
		t.Fatalf("expected mobile menu closed on desktop")
	}
}

func TestIsMenuRoute(t *testing.T) {
	assert.True(t, IsMenuRoute(RouteDashboard))
	assert.True(t, IsMenuRoute(RouteDashboardPage2))
	assert.False(t, IsMenuRoute(RouteLogin))
	assert.False(t, IsMenuRoute(""))
}
