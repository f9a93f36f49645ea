package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQL keeps one row per profile in the client_sessions table.  It is meant
// for managed kiosks where several machines log in as the same operator.
// The table is created by EnsureSchema.
type SQL struct {
	DB      *sql.DB
	Profile string
}

const clientSessionsDDL = `CREATE TABLE IF NOT EXISTS client_sessions (
  profile       VARCHAR(64)  NOT NULL PRIMARY KEY,
  access_token  TEXT         NULL,
  refresh_token TEXT         NULL,
  updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

func NewSQL(db *sql.DB, profile string) *SQL {
	if profile == "" {
		profile = "default"
	}
	return &SQL{DB: db, Profile: profile}
}

// EnsureSchema creates client_sessions when missing.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, clientSessionsDDL)
	return err
}

func (s *SQL) Set(ctx context.Context, accessToken, refreshToken string) error {
	if err := checkPair(accessToken, refreshToken); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO client_sessions (profile, access_token, refresh_token) VALUES (?,?,?) "+
			"ON DUPLICATE KEY UPDATE access_token=VALUES(access_token), refresh_token=VALUES(refresh_token)",
		s.Profile, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("tokenstore: sql set: %w", err)
	}
	return nil
}

func (s *SQL) SetAccessToken(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrEmptyToken
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO client_sessions (profile, access_token) VALUES (?,?) "+
			"ON DUPLICATE KEY UPDATE access_token=VALUES(access_token)",
		s.Profile, accessToken)
	if err != nil {
		return fmt.Errorf("tokenstore: sql set access: %w", err)
	}
	return nil
}

func (s *SQL) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, "access_token")
}

func (s *SQL) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, "refresh_token")
}

// Clear removes the profile row.
func (s *SQL) Clear(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM client_sessions WHERE profile=?", s.Profile); err != nil {
		return fmt.Errorf("tokenstore: sql clear: %w", err)
	}
	return nil
}

func (s *SQL) get(ctx context.Context, column string) (string, error) {
	var v sql.NullString
	// column is one of two constants, never caller input.
	err := s.DB.QueryRowContext(ctx,
		"SELECT "+column+" FROM client_sessions WHERE profile=? LIMIT 1", s.Profile).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: sql get %s: %w", column, err)
	}
	return v.String, nil
}
