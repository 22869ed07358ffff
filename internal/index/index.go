package index

import (
	"context"
	"errors"
	"time"

	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/resync"
)

var (
	// ErrMiss is returned when no index is stored under a key
	ErrMiss = errors.New("frame index not cached")

	// ErrStale is returned when a cached index no longer matches the capture
	ErrStale = errors.New("frame index does not match capture")
)

// Store defines the frame index cache operations
type Store interface {
	// Get retrieves the index stored under key
	Get(ctx context.Context, key string) (*Index, error)

	// Put stores an index under its key
	Put(ctx context.Context, ix *Index) error

	// Delete removes the index stored under key
	Delete(ctx context.Context, key string) error

	// Close releases the store
	Close() error
}

// Entry is one located frame.
type Entry struct {
	Offset   int64          `json:"offset"`
	Variant  marker.Variant `json:"variant"`
	Drift    int64          `json:"drift,omitempty"`
	Resynced bool           `json:"resynced,omitempty"`
	Checksum uint32         `json:"checksum"`
}

// Index records where every frame of a capture starts so a later run can
// skip the marker search.
type Index struct {
	Fingerprint string    `json:"fingerprint"`
	Mode        string    `json:"mode"`
	RunID       string    `json:"run_id,omitempty"`
	Frames      []Entry   `json:"frames"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key builds the cache key for a capture decoded in mode.
func Key(fingerprint string, mode marker.Mode) string {
	return fingerprint + ":" + mode.String()
}

// Key returns the cache key of ix.
func (ix *Index) Key() string {
	return ix.Fingerprint + ":" + ix.Mode
}

// Add appends a located frame.
func (ix *Index) Add(f resync.Frame, checksum uint32) {
	ix.Frames = append(ix.Frames, Entry{
		Offset:   f.Offset,
		Variant:  f.Variant,
		Drift:    f.Drift,
		Resynced: f.Resynced,
		Checksum: checksum,
	})
}

// Frame rebuilds the i-th located frame.
func (ix *Index) Frame(i int) resync.Frame {
	e := ix.Frames[i]
	return resync.Frame{
		Index:         i,
		Offset:        e.Offset,
		Variant:       e.Variant,
		SectorAligned: marker.SectorAligned(e.Offset),
		Drift:         e.Drift,
		Resynced:      e.Resynced,
	}
}

// Len returns the number of frames.
func (ix *Index) Len() int {
	return len(ix.Frames)
}

func copyIndex(ix *Index) *Index {
	out := *ix
	out.Frames = make([]Entry, len(ix.Frames))
	copy(out.Frames, ix.Frames)
	return &out
}
