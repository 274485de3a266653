package config

import (
	"strings"
	"time"
)

// BackendConfig describes how to reach the remote reporting backend.
type BackendConfig interface {
	GetBackendBaseURL() string
	GetDefaultBusinessID() string
	GetRefreshEndpoints() []string
	GetBackendTimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendBaseURL() string {
	return strings.TrimRight(GetEnv("BACKEND_BASE_URL", "http://localhost:9000"), "/")
}

func (Backend) GetDefaultBusinessID() string {
	return GetEnv("DEFAULT_BUSINESS_ID", "")
}

// GetRefreshEndpoints returns the ordered candidate refresh paths. The
// backend renamed its refresh route between versions, so the client has to
// try each in turn.
func (Backend) GetRefreshEndpoints() []string {
	configured := GetEnv("REFRESH_ENDPOINTS", "")
	if configured == "" {
		return []string{"/auth/refresh", "/auth/token/refresh", "/api/auth/refresh"}
	}
	var endpoints []string
	for _, e := range strings.Split(configured, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return endpoints
}

func (Backend) GetBackendTimeout() time.Duration {
	return 30 * time.Second
}
