package resync

import (
	"errors"
	"fmt"
	"io"

	"github.com/zsiec/ringvideo/internal/ringvideo/locator"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

// DefaultSearchWindow bounds the initial search: the first marker must start
// within one frame of the beginning of the capture.
const DefaultSearchWindow = marker.MaxStride

// State is the walker position in its lock cycle.
type State uint8

const (
	Seeking State = iota
	Locked
	Resyncing
	Exhausted
)

func (s State) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case Locked:
		return "locked"
	case Resyncing:
		return "resyncing"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Frame is one located frame.
type Frame struct {
	Index         int
	Offset        int64
	Variant       marker.Variant
	SectorAligned bool
	// Drift is how far past the expected offset the frame was found. It is
	// zero for the first frame and for frames found by a stride hop.
	Drift    int64
	Resynced bool
}

// End returns the offset just past the frame.
func (f Frame) End() int64 {
	return f.Offset + int64(f.Variant.Stride())
}

// Observer is told about every state change.
type Observer func(from, to State, offset int64)

// Walker yields frames of a capture in order, following the stride while it
// holds and scanning forward for the marker when it does not. A Walker is
// not safe for concurrent use.
type Walker struct {
	src      io.ReaderAt
	size     int64
	loc      *locator.Locator
	window   int64
	observer Observer

	state   State
	variant marker.Variant
	next    int64
	count   int
	// err is the search failure that ended the walk, returned again by
	// every later Next.
	err error
}

// Option configures a Walker.
type Option func(*Walker)

// WithLocator replaces the default color-mode locator.
func WithLocator(l *locator.Locator) Option {
	return func(w *Walker) {
		w.loc = l
	}
}

// WithSearchWindow bounds how far into the capture the first frame may start.
func WithSearchWindow(n int64) Option {
	return func(w *Walker) {
		if n > 0 {
			w.window = n
		}
	}
}

// WithObserver registers a state change callback.
func WithObserver(fn Observer) Option {
	return func(w *Walker) {
		w.observer = fn
	}
}

// New creates a Walker over size bytes of src.
func New(src io.ReaderAt, size int64, opts ...Option) *Walker {
	w := &Walker{
		src:    src,
		size:   size,
		window: DefaultSearchWindow,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.loc == nil {
		w.loc = locator.New(marker.ModeColor)
	}
	return w
}

// State returns the current state.
func (w *Walker) State() State {
	return w.state
}

// Count returns how many frames have been yielded since the last reset.
func (w *Walker) Count() int {
	return w.count
}

// BytesScanned returns how many offsets the underlying locator has tested.
func (w *Walker) BytesScanned() int64 {
	return w.loc.BytesScanned()
}

// Reset rewinds the walker to its initial state.
func (w *Walker) Reset() {
	w.state = Seeking
	w.next = 0
	w.count = 0
	w.variant = 0
	w.err = nil
}

// Resume continues the walk after f as if f had just been yielded: the next
// frame is expected one stride past it.
func (w *Walker) Resume(f Frame) {
	w.variant = f.Variant
	w.count = f.Index + 1
	w.next = f.End()
	w.err = nil
	w.transition(Locked, f.Offset)
}

// Next returns the next frame. It returns io.EOF once the capture holds no
// further complete frame, and an error wrapping locator.ErrNotFound when no
// frame starts inside the initial search window. That error is sticky until
// Reset.
func (w *Walker) Next() (Frame, error) {
	if w.err != nil {
		return Frame{}, w.err
	}
	switch w.state {
	case Seeking:
		return w.seek()
	case Locked:
		return w.hop()
	case Exhausted:
		return Frame{}, io.EOF
	default:
		return Frame{}, fmt.Errorf("walker in unexpected state %s", w.state)
	}
}

func (w *Walker) seek() (Frame, error) {
	limit := w.window
	if limit > w.size {
		limit = w.size
	}

	m, err := w.loc.Locate(w.src, w.size, 0, limit)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			w.transition(Exhausted, limit)
			w.err = fmt.Errorf("no frame in the first %d bytes: %w", limit, err)
			return Frame{}, w.err
		}
		return Frame{}, err
	}

	w.variant = m.Variant
	return w.lock(m.Offset, 0, false)
}

func (w *Walker) hop() (Frame, error) {
	expected := w.next
	if expected+int64(w.variant.Stride()) > w.size {
		w.transition(Exhausted, expected)
		return Frame{}, io.EOF
	}

	ok, err := w.loc.At(w.src, w.size, expected, w.variant)
	if err != nil {
		return Frame{}, err
	}
	if ok {
		return w.lock(expected, 0, false)
	}

	w.transition(Resyncing, expected)

	m, err := w.loc.Locate(w.src, w.size, expected, w.size, w.variant)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			w.transition(Exhausted, w.size)
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}

	return w.lock(m.Offset, m.Offset-expected, true)
}

// lock accepts a frame at offset if all of it lies inside the capture.
func (w *Walker) lock(offset, drift int64, resynced bool) (Frame, error) {
	stride := int64(w.variant.Stride())
	if offset+stride > w.size {
		w.transition(Exhausted, offset)
		return Frame{}, io.EOF
	}

	w.transition(Locked, offset)

	f := Frame{
		Index:         w.count,
		Offset:        offset,
		Variant:       w.variant,
		SectorAligned: marker.SectorAligned(offset),
		Drift:         drift,
		Resynced:      resynced,
	}
	w.count++
	w.next = offset + stride
	return f, nil
}

func (w *Walker) transition(to State, offset int64) {
	from := w.state
	w.state = to
	if w.observer != nil && from != to {
		w.observer(from, to, offset)
	}
}
