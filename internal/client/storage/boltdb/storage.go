package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/inkwell-cms/inkwell/internal/client/storage"
)

var (
	bucketCredentials = []byte("credentials")

	credentialKey = []byte("current")
)

// Storage is the BoltDB-backed client store.
type Storage struct {
	db *bbolt.DB
}

// New opens (or creates) the client database at dbPath.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCredentials); err != nil {
			return fmt.Errorf("failed to create credentials bucket: %w", err)
		}
		return nil
	})
}

// SaveCredential stores the refresh credential, replacing any previous
// one.
func (s *Storage) SaveCredential(ctx context.Context, cred *storage.Credential) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		data, err := json.Marshal(cred)
		if err != nil {
			return fmt.Errorf("failed to marshal credential: %w", err)
		}

		if err := bucket.Put(credentialKey, data); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}

		return nil
	})
}

// GetCredential returns the stored refresh credential.
func (s *Storage) GetCredential(ctx context.Context) (*storage.Credential, error) {
	var cred *storage.Credential

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		data := bucket.Get(credentialKey)
		if data == nil {
			return storage.ErrCredentialNotFound
		}

		cred = &storage.Credential{}
		if err := json.Unmarshal(data, cred); err != nil {
			return fmt.Errorf("failed to unmarshal credential: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cred, nil
}

// DeleteCredential removes the stored credential. Removing an absent
// credential succeeds.
func (s *Storage) DeleteCredential(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}
		return bucket.Delete(credentialKey)
	})
}
