// Package store defines the asset storage boundary: generated artifacts are
// stored under their action ID and later resolved by the cutscene assembler
// and the front end. The package ships an in-memory implementation; the
// bolt subpackage persists assets on disk.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no asset exists under the requested ID.
var ErrNotFound = errors.New("asset not found")

// Metadata describes an asset being stored.
type Metadata struct {
	// ID is the action ID the asset was generated for. Required.
	ID string `json:"id"`
	// Kind tags the artifact: image, audio, cutscene.
	Kind string `json:"kind"`
	// ContentType is the MIME type of the stored bytes.
	ContentType string `json:"content_type"`
	// DurationSec is set for audio assets.
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// StoredAsset is the record returned by a successful store.
type StoredAsset struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Kind        string    `json:"kind"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	DurationSec float64   `json:"duration_sec,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage is the collaborator interface injected into the execution
// context. Implementations are shared services; executors use them but do
// not own them.
type Storage interface {
	// Store persists raw bytes under meta.ID, overwriting any previous
	// asset with the same ID.
	Store(ctx context.Context, data []byte, meta Metadata) (StoredAsset, error)
	// StoreJSON marshals v and stores it as application/json.
	StoreJSON(ctx context.Context, v any, meta Metadata) (StoredAsset, error)
	// URL resolves an asset ID to its address.
	URL(id string) (string, error)
	// Duration reports the audio duration for id, when known.
	Duration(id string) (float64, bool)
	// Exists reports whether an asset is stored under id.
	Exists(id string) bool
}
