// Package tokenstore persists the session's access/refresh token pair.
//
// A Store holds at most one pair.  Both values are written on login, the
// access token alone is replaced after a refresh, and Clear always removes
// both.  No expiry is checked here; the request pipeline reacts to 401
// responses instead.
package tokenstore

import (
	"context"
	"errors"
)

// Fixed storage keys.  Every backend uses these names so a store can be
// inspected with the backend's own tooling.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrEmptyToken is returned by Set when either token is blank.
var ErrEmptyToken = errors.New("tokenstore: empty token")

// Store is the persistence contract shared by all backends.  Getters return
// an empty string and a nil error when the value is absent.
type Store interface {
	Set(ctx context.Context, accessToken, refreshToken string) error
	SetAccessToken(ctx context.Context, accessToken string) error
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// IsAuthenticated reports whether s currently holds an access token.  A
// backend error counts as not authenticated.
func IsAuthenticated(ctx context.Context, s Store) bool {
	tok, err := s.AccessToken(ctx)
	return err == nil && tok != ""
}

func checkPair(accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return ErrEmptyToken
	}
	return nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Bolt)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*SQL)(nil)
)
