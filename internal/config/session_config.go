package config

import (
	"strconv"
	"time"
)

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionCookieSecure() bool
	GetMaxSessionAge() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "IMPACT_SESSION")
}

func (Session) GetSessionCookieSecure() bool {
	secure, err := strconv.ParseBool(GetEnv("SESSION_COOKIE_SECURE", "true"))
	if err != nil {
		return true
	}
	return secure
}

func (Session) GetMaxSessionAge() time.Duration {
	return 12 * time.Hour // Browser sessions expire after 12 hours
}
