package repository

import (
	"context"
	"sync"
	"time"
)

type refreshRow struct {
	UserID    int64
	ExpiresAt time.Time
	RevokedAt time.Time
}

// TokenRepo persists and validates refresh tokens by their SHA-256 hash.
type TokenRepo struct {
	mu     sync.RWMutex
	byHash map[string]*refreshRow
}

func NewTokenRepo() *TokenRepo {
	return &TokenRepo{byHash: make(map[string]*refreshRow)}
}

// StoreRefresh records a refresh token hash.
func (r *TokenRepo) StoreRefresh(_ context.Context, userID int64, tokenHash string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[tokenHash] = &refreshRow{UserID: userID, ExpiresAt: exp}
	return nil
}

// ValidateRefresh returns the owner of a non-revoked, non-expired token.
func (r *TokenRepo) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byHash[tokenHash]
	if !ok || !row.RevokedAt.IsZero() || now.After(row.ExpiresAt) {
		return 0, ErrNotFound
	}
	return row.UserID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(_ context.Context, tokenHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.byHash[tokenHash]; ok && row.RevokedAt.IsZero() {
		row.RevokedAt = now
	}
	return nil
}

// RevokeAllForUser revokes every active token of a user.
func (r *TokenRepo) RevokeAllForUser(_ context.Context, userID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.byHash {
		if row.UserID == userID && row.RevokedAt.IsZero() {
			row.RevokedAt = now
		}
	}
	return nil
}
