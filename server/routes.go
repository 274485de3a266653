package server

func (s *Server) initRoutes() {
	// Pages. The login page renders even with a live session so the user
	// can re-authenticate; everything else sits behind the session gate.
	s.RegisterRouteFunc("GET /", s.IndexRedirectHandler())
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardPageHandler(), s.HTMLMiddleware(s.RequireSession())...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireSessionAPI())...))

	// Reports API
	s.RegisterRouteHandler("GET "+RouteAPIReports, ChainMiddleware(s.ReportsListHandler(), s.APIMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("POST "+RouteAPIReportGenerate, ChainMiddleware(s.GenerateReportHandler(), s.APIMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIReportContent, ChainMiddleware(s.ReportContentHandler(), s.APIMiddleware(s.RequireSessionAPI())...))

	// Billing API
	s.RegisterRouteHandler("GET "+RouteAPICredits, ChainMiddleware(s.CreditsHandler(), s.APIMiddleware(s.RequireSessionAPI())...))
	s.RegisterRouteHandler("GET "+RouteAPIDashboard, ChainMiddleware(s.DashboardSummaryHandler(), s.APIMiddleware(s.RequireSessionAPI())...))
}
