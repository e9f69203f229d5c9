// Package token persists the bearer token between runs. bbolt plays the
// role the platform secure store has on mobile.
package token

import (
	"time"

	"github.com/golang/glog"
	bolt "go.etcd.io/bbolt"
)

const (
	authBucket = "auth"
	tokenKey   = "user_token"
)

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the token database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(authBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(authBucket)).Put([]byte(tokenKey), []byte(token))
	})
}

// Load returns the stored token, or "" when none is stored.
func (s *Store) Load() string {
	var token string
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(authBucket)).Get([]byte(tokenKey)); v != nil {
			token = string(v)
		}
		return nil
	}); err != nil {
		glog.Errorf("token: load error: %v", err)
		return ""
	}
	return token
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(authBucket)).Delete([]byte(tokenKey))
	})
}
