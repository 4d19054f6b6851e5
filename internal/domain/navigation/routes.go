package navigation

// Client routes produced by the API.
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteDashboard      = "/dashboard"
	RouteDashboardPage2 = "/dashboard/page2"
)

type Route struct {
	Href  string
	Label string
}

// Routes lists the sidebar menu in display order.
func Routes() []Route {
	return []Route{
		{Href: RouteDashboard, Label: "Dashboard"},
		{Href: RouteDashboardPage2, Label: "Page 2"},
	}
}

func IsMenuRoute(href string) bool {
	for _, r := range Routes() {
		if r.Href == href {
			return true
		}
	}
	return false
}
