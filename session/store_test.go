package session_test

import (
	"testing"

	"github.com/impactlens/dashboard-bff/session"
	"github.com/stretchr/testify/require"
)

const (
	// Structurally valid JWT (header.payload.signature), unsigned claims
	testJWT = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ1c2VyLTEifQ.c2ln"
)

func TestAccessTokenMirroredAcrossLegacyKeys(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)

	require.NoError(t, store.SetAccessToken("T1"))
	require.NoError(t, store.SetAccessToken("T2"))

	// Every legacy alias observes the latest write
	for _, key := range []string{"access_token", "auth_token", "token", "jwt"} {
		value, ok := storage.Get(key)
		require.True(t, ok, "alias %q missing", key)
		require.Equal(t, "T2", value, "alias %q stale", key)
	}
	require.Equal(t, "T2", store.AccessToken())
}

func TestAccessTokenReadsLegacyAliasWrites(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)

	// A legacy code path wrote only the old key name
	require.NoError(t, storage.Set("auth_token", "legacy-token"))
	require.Equal(t, "legacy-token", store.AccessToken())
}

func TestAccessTokenJWTFallbackScan(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)

	// Token stored under a key the alias list does not know about
	require.NoError(t, storage.Set("some_forgotten_key", testJWT))
	require.NoError(t, storage.Set("noise", "not.a.token!"))

	require.Equal(t, testJWT, store.AccessToken())
}

func TestAccessTokenEmptyWhenNothingStored(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	require.Equal(t, "", store.AccessToken())
}

func TestSetAccessTokenRejectsEmpty(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	require.Error(t, store.SetAccessToken(""))
	require.Error(t, store.SetAccessToken("   "))
}

func TestEmbeddedSessionPatchedOnTokenWrite(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)

	require.NoError(t, storage.Set("current_session", `{"access_token":"old","user":"u1"}`))
	require.NoError(t, store.SetAccessToken("T9"))

	raw, ok := storage.Get("current_session")
	require.True(t, ok)
	require.JSONEq(t, `{"access_token":"T9","user":"u1"}`, raw)
}

func TestClearRemovesEveryKey(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)

	require.NoError(t, storage.Set("current_session", `{"access_token":"T1"}`))
	require.NoError(t, store.SetAccessToken("T1"))
	require.NoError(t, store.SetRefreshToken("R1"))
	require.NoError(t, store.SetBusinessID("biz-1"))

	store.Clear()

	require.Equal(t, "", store.AccessToken())
	require.Equal(t, "", store.RefreshToken())
	require.Equal(t, "", store.BusinessID())
	require.Empty(t, storage.Keys(), "stale keys left behind: %v", storage.Keys())
}

func TestBusinessIDFallsBackToDefault(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), session.WithDefaultBusinessID("default-biz"))
	require.Equal(t, "default-biz", store.BusinessID())

	require.NoError(t, store.SetBusinessID("biz-7"))
	require.Equal(t, "biz-7", store.BusinessID())
}
