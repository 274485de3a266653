package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Page Routes
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"

	// Auth Routes
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"
	RouteAuthMe     = "/auth/me"

	// API Routes - Reports
	RouteAPIReports        = "/api/reports"
	RouteAPIReportGenerate = "/api/reports/generate"
	RouteAPIReportContent  = "/api/reports/{id}/content"

	// API Routes - Billing
	RouteAPICredits   = "/api/credits"
	RouteAPIDashboard = "/api/dashboard"
)
