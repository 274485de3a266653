package session_test

import (
	"testing"
	"time"

	"github.com/impactlens/dashboard-bff/session"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndGet(t *testing.T) {
	m := session.NewManager(time.Hour)

	sessionID, store := m.Create()
	require.NotEmpty(t, sessionID)
	require.NoError(t, store.SetAccessToken("T1"))

	got, ok := m.Get(sessionID)
	require.True(t, ok)
	require.Equal(t, "T1", got.AccessToken())
}

func TestManagerUnknownSession(t *testing.T) {
	m := session.NewManager(time.Hour)

	_, ok := m.Get("nope")
	require.False(t, ok)
}

func TestManagerSessionExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session.NowTimeFunc = func() time.Time { return now }
	defer func() { session.NowTimeFunc = time.Now }()

	m := session.NewManager(30 * time.Minute)
	sessionID, _ := m.Create()

	_, ok := m.Get(sessionID)
	require.True(t, ok)

	now = now.Add(31 * time.Minute)
	_, ok = m.Get(sessionID)
	require.False(t, ok)
}

func TestManagerDelete(t *testing.T) {
	m := session.NewManager(time.Hour)
	sessionID, _ := m.Create()

	m.Delete(sessionID)
	_, ok := m.Get(sessionID)
	require.False(t, ok)
}

func TestManagerDefaultBusinessID(t *testing.T) {
	m := session.NewManager(time.Hour, session.WithManagerDefaultBusinessID("biz-default"))
	_, store := m.Create()
	require.Equal(t, "biz-default", store.BusinessID())
}
