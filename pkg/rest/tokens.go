package rest

import (
	"strings"

	"github.com/tiffino/tiffino-go/pkg/enums"
	"github.com/tiffino/tiffino-go/pkg/localstore"
)

// Token storage keys. "token" is the legacy key some storefront builds wrote
// user tokens under; it is still read and cleared.
const (
	keyLegacyUser = "token"
	keyUserToken  = "user_token"
	keyAdminToken = "admin_token"
	keySuperToken = "super_token"
)

// TokenStore holds one bearer token per role.
type TokenStore interface {
	Token(role enums.Role) (string, bool)
	SetToken(role enums.Role, token string) error
	ClearTokens() error
}

// LocalTokenStore persists role tokens in the durable local store.
type LocalTokenStore struct {
	store *localstore.Store
}

// NewLocalTokenStore wraps a localstore.Store as a TokenStore.
func NewLocalTokenStore(store *localstore.Store) *LocalTokenStore {
	return &LocalTokenStore{store: store}
}

func keyFor(role enums.Role) string {
	switch role {
	case enums.RoleAdmin:
		return keyAdminToken
	case enums.RoleSuper:
		return keySuperToken
	default:
		return keyUserToken
	}
}

func (s *LocalTokenStore) Token(role enums.Role) (string, bool) {
	if s == nil || s.store == nil {
		return "", false
	}
	if role == enums.RoleUser {
		if tok, ok := s.store.Get(keyLegacyUser); ok && tok != "" {
			return tok, true
		}
	}
	tok, ok := s.store.Get(keyFor(role))
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

func (s *LocalTokenStore) SetToken(role enums.Role, token string) error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Set(keyFor(role), token)
}

func (s *LocalTokenStore) ClearTokens() error {
	if s == nil || s.store == nil {
		return nil
	}
	for _, key := range []string{keyLegacyUser, keyUserToken, keyAdminToken, keySuperToken} {
		if err := s.store.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// roleForPath routes requests to the credential matching the URL prefix:
// super-admin console APIs live under /api/admin, kitchen back office under
// /admin, everything else is the storefront.
func roleForPath(path string) enums.Role {
	switch {
	case strings.HasPrefix(path, "/api/admin"):
		return enums.RoleSuper
	case strings.HasPrefix(path, "/admin"):
		return enums.RoleAdmin
	default:
		return enums.RoleUser
	}
}

// usableToken rejects values that are clearly not bearer tokens, such as a
// JSON blob written under a token key by an older build.
func usableToken(token string) bool {
	return token != "" && !strings.Contains(token, "{")
}
