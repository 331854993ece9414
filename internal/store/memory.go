package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type record struct {
	asset StoredAsset
	data  []byte
}

// Memory is an in-process Storage, used in tests and when no persistence
// directory is configured.
type Memory struct {
	mu      sync.RWMutex
	records map[string]record
}

// NewMemory returns an empty in-memory asset store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]record)}
}

// Store implements Storage.
func (m *Memory) Store(ctx context.Context, data []byte, meta Metadata) (StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return StoredAsset{}, err
	}
	if meta.ID == "" {
		return StoredAsset{}, fmt.Errorf("asset id is required")
	}

	asset := StoredAsset{
		ID:          meta.ID,
		URL:         "asset://" + meta.ID,
		Kind:        meta.Kind,
		ContentType: meta.ContentType,
		Size:        int64(len(data)),
		DurationSec: meta.DurationSec,
		CreatedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[meta.ID] = record{asset: asset, data: append([]byte(nil), data...)}
	return asset, nil
}

// StoreJSON implements Storage.
func (m *Memory) StoreJSON(ctx context.Context, v any, meta Metadata) (StoredAsset, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return StoredAsset{}, fmt.Errorf("marshal asset %q: %w", meta.ID, err)
	}
	meta.ContentType = "application/json"
	return m.Store(ctx, data, meta)
}

// URL implements Storage.
func (m *Memory) URL(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return "", fmt.Errorf("resolve url for %q: %w", id, ErrNotFound)
	}
	return rec.asset.URL, nil
}

// Duration implements Storage.
func (m *Memory) Duration(id string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok || rec.asset.DurationSec == 0 {
		return 0, false
	}
	return rec.asset.DurationSec, true
}

// Exists implements Storage.
func (m *Memory) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok
}

// Data returns the stored bytes for id, for tests.
func (m *Memory) Data(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), rec.data...), true
}
