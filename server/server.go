package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/impactlens/dashboard-bff/backend"
	"github.com/impactlens/dashboard-bff/internal/config"
	"github.com/impactlens/dashboard-bff/reports"
	"github.com/impactlens/dashboard-bff/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	client     *backend.Client
	sessions   *session.Manager
	normalizer *reports.Normalizer
	log        zerolog.Logger
}

func New(cfg config.Config) (*Server, error) {
	if cfg.GetBackendBaseURL() == "" {
		return nil, fmt.Errorf("[Server New] backend base URL is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		client: backend.NewClient(cfg.GetBackendBaseURL(),
			backend.WithRefreshEndpoints(cfg.GetRefreshEndpoints()),
			backend.WithHTTPClient(&http.Client{Timeout: cfg.GetBackendTimeout()}),
		),
		sessions: session.NewManager(cfg.GetMaxSessionAge(),
			session.WithManagerDefaultBusinessID(cfg.GetDefaultBusinessID()),
		),
		normalizer: reports.NewNormalizer(),
		log:        log.Logger,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
