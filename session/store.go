package session

import (
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Canonical storage keys. Older front-end builds wrote tokens under
// several different names; the aliases keep those readers working but are
// never exposed outside this package.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	businessIDKey   = "business_id"

	// embeddedSessionKey holds a JSON object some legacy consumers still
	// read the whole session from. It is patched on every token write so
	// it never disagrees with the top-level keys.
	embeddedSessionKey = "current_session"
)

var (
	accessTokenAliases  = []string{accessTokenKey, "auth_token", "token", "jwt"}
	refreshTokenAliases = []string{refreshTokenKey, "refresh"}
	businessIDAliases   = []string{businessIDKey, "businessId"}
)

// Store is the single source of truth for the session's tokens and
// selected business. All legacy key mirroring happens behind it.
type Store struct {
	storage           Storage
	defaultBusinessID string
}

type StoreOption func(*Store)

// WithDefaultBusinessID sets the business id returned when storage holds
// none.
func WithDefaultBusinessID(businessID string) StoreOption {
	return func(s *Store) {
		s.defaultBusinessID = businessID
	}
}

func NewStore(storage Storage, options ...StoreOption) *Store {
	store := &Store{storage: storage}
	for _, opt := range options {
		opt(store)
	}
	return store
}

// AccessToken returns the current access token, or "" when the session is
// unauthenticated. The alias keys are scanned in order; if none holds a
// value, every stored key is probed for a JWT-shaped value as a last
// resort.
func (s *Store) AccessToken() string {
	for _, key := range accessTokenAliases {
		if value, ok := s.storage.Get(key); ok && value != "" {
			return value
		}
	}

	keys := s.storage.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		if key == embeddedSessionKey {
			continue
		}
		value, _ := s.storage.Get(key)
		if looksLikeJWT(value) {
			return value
		}
	}
	return ""
}

// RefreshToken returns the stored refresh token, or "".
func (s *Store) RefreshToken() string {
	for _, key := range refreshTokenAliases {
		if value, ok := s.storage.Get(key); ok && value != "" {
			return value
		}
	}
	return ""
}

// BusinessID returns the selected business, falling back to the
// configured default.
func (s *Store) BusinessID() string {
	for _, key := range businessIDAliases {
		if value, ok := s.storage.Get(key); ok && value != "" {
			return value
		}
	}
	return s.defaultBusinessID
}

// SetAccessToken writes the token under every alias key and patches the
// embedded session object. Writes are best effort: every mirror is
// attempted even if one fails, and the first failure is returned.
func (s *Store) SetAccessToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("[Store.SetAccessToken] token is required")
	}
	var firstErr error
	for _, key := range accessTokenAliases {
		if err := s.storage.Set(key, token); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "[Store.SetAccessToken] storage.Set")
		}
	}
	s.patchEmbeddedSession(accessTokenKey, token)
	return firstErr
}

func (s *Store) SetRefreshToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("[Store.SetRefreshToken] token is required")
	}
	var firstErr error
	for _, key := range refreshTokenAliases {
		if err := s.storage.Set(key, token); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "[Store.SetRefreshToken] storage.Set")
		}
	}
	s.patchEmbeddedSession(refreshTokenKey, token)
	return firstErr
}

func (s *Store) SetBusinessID(businessID string) error {
	if strings.TrimSpace(businessID) == "" {
		return errors.New("[Store.SetBusinessID] businessID is required")
	}
	var firstErr error
	for _, key := range businessIDAliases {
		if err := s.storage.Set(key, businessID); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "[Store.SetBusinessID] storage.Set")
		}
	}
	s.patchEmbeddedSession(businessIDKey, businessID)
	return firstErr
}

// Clear removes every known token key and the embedded session entry.
func (s *Store) Clear() {
	for _, key := range accessTokenAliases {
		_ = s.storage.Delete(key)
	}
	for _, key := range refreshTokenAliases {
		_ = s.storage.Delete(key)
	}
	for _, key := range businessIDAliases {
		_ = s.storage.Delete(key)
	}
	_ = s.storage.Delete(embeddedSessionKey)
}

// patchEmbeddedSession keeps the legacy nested session object consistent
// with the top-level keys. Failures are swallowed: the object is a
// compatibility mirror, not the source of truth.
func (s *Store) patchEmbeddedSession(field, value string) {
	raw, ok := s.storage.Get(embeddedSessionKey)
	if !ok || !gjson.Valid(raw) {
		return
	}
	patched, err := sjson.Set(raw, field, value)
	if err != nil {
		return
	}
	_ = s.storage.Set(embeddedSessionKey, patched)
}

func looksLikeJWT(value string) bool {
	if strings.Count(value, ".") != 2 {
		return false
	}
	_, _, err := jwt.NewParser().ParseUnverified(value, jwt.MapClaims{})
	return err == nil
}
