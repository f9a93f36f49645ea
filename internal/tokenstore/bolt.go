package tokenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Bolt persists the pair in a bbolt file, one bucket per profile.  It is
// the default store of the command line client, playing the role a browser's
// local storage plays for a web client.
type Bolt struct {
	db     *bbolt.DB
	bucket []byte
}

// OpenBolt opens (or creates) the database at path and makes sure the
// profile bucket exists.
func OpenBolt(path, profile string) (*Bolt, error) {
	if profile == "" {
		profile = "default"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("tokenstore: create dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open %s: %w", path, err)
	}
	b := &Bolt{db: db, bucket: []byte("session:" + profile)}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("tokenstore: create bucket: %w", err)
	}
	return b, nil
}

func (b *Bolt) Close() error { return b.db.Close() }

func (b *Bolt) Set(_ context.Context, accessToken, refreshToken string) error {
	if err := checkPair(accessToken, refreshToken); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if err := bk.Put([]byte(AccessTokenKey), []byte(accessToken)); err != nil {
			return err
		}
		return bk.Put([]byte(RefreshTokenKey), []byte(refreshToken))
	})
}

func (b *Bolt) SetAccessToken(_ context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrEmptyToken
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(AccessTokenKey), []byte(accessToken))
	})
}

func (b *Bolt) AccessToken(context.Context) (string, error) {
	return b.get(AccessTokenKey)
}

func (b *Bolt) RefreshToken(context.Context) (string, error) {
	return b.get(RefreshTokenKey)
}

// Clear deletes both keys in a single transaction.
func (b *Bolt) Clear(context.Context) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if err := bk.Delete([]byte(AccessTokenKey)); err != nil {
			return err
		}
		return bk.Delete([]byte(RefreshTokenKey))
	})
}

func (b *Bolt) get(key string) (string, error) {
	var v string
	err := b.db.View(func(tx *bbolt.Tx) error {
		// Get returns memory owned by the transaction; copy before it closes.
		if raw := tx.Bucket(b.bucket).Get([]byte(key)); raw != nil {
			v = string(raw)
		}
		return nil
	})
	return v, err
}
