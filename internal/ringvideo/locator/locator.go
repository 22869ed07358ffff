package locator

import (
	"errors"
	"fmt"
	"io"

	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

// DefaultChunkSize is how many candidate offsets are served from one read.
const DefaultChunkSize = 64 * 1024

// ErrNotFound is returned when no frame marker matches inside the search window.
var ErrNotFound = errors.New("frame marker not found")

// Match is a located frame start.
type Match struct {
	Offset  int64
	Variant marker.Variant
}

// SectorAligned reports whether the match starts on a raw sector boundary.
func (m Match) SectorAligned() bool {
	return marker.SectorAligned(m.Offset)
}

// Locator slides over a byte source one byte at a time looking for frame
// markers. A Locator holds a reusable read buffer and is not safe for
// concurrent use.
type Locator struct {
	mode      marker.Mode
	chunkSize int
	buf       []byte

	scanned int64
}

// Option configures a Locator.
type Option func(*Locator)

// WithChunkSize sets how many offsets are tested per read from the source.
func WithChunkSize(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// New creates a Locator for the given mode.
func New(mode marker.Mode, opts ...Option) *Locator {
	l := &Locator{
		mode:      mode,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Mode returns the variant family the locator searches for by default.
func (l *Locator) Mode() marker.Mode {
	return l.mode
}

// BytesScanned returns how many candidate offsets have been tested so far.
func (l *Locator) BytesScanned() int64 {
	return l.scanned
}

// Locate returns the first offset p in [start, limit) where one of variants
// matches. Variants are tested in the order given; with none given the
// locator's mode priority is used. size is the total length of src.
func (l *Locator) Locate(src io.ReaderAt, size, start, limit int64, variants ...marker.Variant) (Match, error) {
	if len(variants) == 0 {
		variants = l.mode.Variants()
	}
	if start < 0 {
		start = 0
	}
	if limit > size {
		limit = size
	}
	if start >= limit {
		return Match{}, ErrNotFound
	}

	longest := 0
	for _, v := range variants {
		if n := v.MarkerLength(); n > longest {
			longest = n
		}
	}

	need := l.chunkSize + longest
	if cap(l.buf) < need {
		l.buf = make([]byte, need)
	}

	for base := start; base < limit; base += int64(l.chunkSize) {
		end := base + int64(need)
		if end > size {
			end = size
		}

		window := l.buf[:end-base]
		if err := readFull(src, window, base); err != nil {
			return Match{}, fmt.Errorf("read at %d: %w", base, err)
		}

		last := base + int64(l.chunkSize)
		if last > limit {
			last = limit
		}

		for p := base; p < last; p++ {
			l.scanned++
			if v, ok := marker.Classify(window[p-base:], variants...); ok {
				return Match{Offset: p, Variant: v}, nil
			}
		}
	}

	return Match{}, ErrNotFound
}

// At tests a single offset against one variant.
func (l *Locator) At(src io.ReaderAt, size, offset int64, v marker.Variant) (bool, error) {
	n := int64(v.MarkerLength())
	if offset < 0 || offset+n > size {
		return false, nil
	}

	if cap(l.buf) < int(n) {
		l.buf = make([]byte, n)
	}
	window := l.buf[:n]
	if err := readFull(src, window, offset); err != nil {
		return false, fmt.Errorf("read at %d: %w", offset, err)
	}
	l.scanned++
	return marker.Matches(v, window), nil
}

func readFull(src io.ReaderAt, buf []byte, off int64) error {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
