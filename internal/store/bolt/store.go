// Package bolt provides a BoltDB-backed asset store for runs that need
// generated artifacts to survive the process.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vk/scriptforge/internal/store"
)

const (
	assetBucket = "assets"
	blobBucket  = "blobs"
)

// Store persists assets in a single BoltDB file: metadata records in one
// bucket, raw bytes in another, both keyed by asset ID.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open asset db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Store implements store.Storage.
func (s *Store) Store(ctx context.Context, data []byte, meta store.Metadata) (store.StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return store.StoredAsset{}, err
	}
	if meta.ID == "" {
		return store.StoredAsset{}, fmt.Errorf("asset id is required")
	}

	asset := store.StoredAsset{
		ID:          meta.ID,
		URL:         "asset://" + meta.ID,
		Kind:        meta.Kind,
		ContentType: meta.ContentType,
		Size:        int64(len(data)),
		DurationSec: meta.DurationSec,
		CreatedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(asset)
	if err != nil {
		return store.StoredAsset{}, fmt.Errorf("marshal asset record %q: %w", meta.ID, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(assetBucket)).Put([]byte(meta.ID), payload); err != nil {
			return err
		}
		return tx.Bucket([]byte(blobBucket)).Put([]byte(meta.ID), data)
	})
	if err != nil {
		return store.StoredAsset{}, fmt.Errorf("store asset %q: %w", meta.ID, err)
	}
	return asset, nil
}

// StoreJSON implements store.Storage.
func (s *Store) StoreJSON(ctx context.Context, v any, meta store.Metadata) (store.StoredAsset, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return store.StoredAsset{}, fmt.Errorf("marshal asset %q: %w", meta.ID, err)
	}
	meta.ContentType = "application/json"
	return s.Store(ctx, data, meta)
}

// URL implements store.Storage.
func (s *Store) URL(id string) (string, error) {
	asset, err := s.get(id)
	if err != nil {
		return "", fmt.Errorf("resolve url for %q: %w", id, err)
	}
	return asset.URL, nil
}

// Duration implements store.Storage.
func (s *Store) Duration(id string) (float64, bool) {
	asset, err := s.get(id)
	if err != nil || asset.DurationSec == 0 {
		return 0, false
	}
	return asset.DurationSec, true
}

// Exists implements store.Storage.
func (s *Store) Exists(id string) bool {
	_, err := s.get(id)
	return err == nil
}

func (s *Store) get(id string) (store.StoredAsset, error) {
	var asset store.StoredAsset
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(assetBucket)).Get([]byte(id))
		if payload == nil {
			return store.ErrNotFound
		}
		return json.Unmarshal(payload, &asset)
	})
	return asset, err
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{assetBucket, blobBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
