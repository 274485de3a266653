package server

import (
	"html/template"
	"net/http"
)

// The pages are deliberately bare: this service owns session plumbing and
// proxying, not presentation.

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Sign in</title></head>
<body>
<h1>Sign in to {{.AppName}}</h1>
<form id="login-form" method="post" action="/auth/login">
  <input type="email" name="email" placeholder="Email" required>
  <input type="password" name="password" placeholder="Password" required>
  <button type="submit">Sign in</button>
  <p id="login-error"></p>
</form>
</body>
</html>`))

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Dashboard</title></head>
<body>
<h1>{{.AppName}}</h1>
<div id="summary" data-endpoint="/api/dashboard"></div>
<div id="reports" data-endpoint="/api/reports"></div>
</body>
</html>`))

func (s *Server) IndexRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// LoginPageHandler renders the login view. A live session does not force
// a redirect away; the form still renders so the user can re-authenticate.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"AppName": s.config.GetAppName(),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = loginTemplate.Execute(w, data)
	}
}

// DashboardPageHandler renders the dashboard shell; data loads through
// the JSON API. Reached only through RequireSession.
func (s *Server) DashboardPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"AppName": s.config.GetAppName(),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = dashboardTemplate.Execute(w, data)
	}
}
