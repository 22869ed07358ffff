package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/zsiec/ringvideo/internal/capture"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/integrity"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/resync"
)

// Frame is a located and decoded frame.
type Frame struct {
	resync.Frame
	// Audio and Pixels are the decoder output for the frame.
	Audio  []byte
	Pixels []byte
	// Checksum is the CRC32 of the raw frame bytes.
	Checksum uint32
}

// Sink consumes decoded frames in capture order.
type Sink interface {
	WriteFrame(ctx context.Context, f *Frame) error
	Close() error
}

type frameSource interface {
	Next() (resync.Frame, error)
	Reset()
}

// Sequence yields decoded frames lazily. It holds no decoded data between
// calls, so Reset restarts it by recomputing from the capture.
type Sequence struct {
	src     capture.Source
	frames  frameSource
	walker  *resync.Walker
	cached  *index.Index
	dec     *decoder.Decoder
	sum     *integrity.Checksummer
	raw     []byte
	decoded int
}

// NewSequence decodes the frames found by w.
func NewSequence(src capture.Source, w *resync.Walker, dec *decoder.Decoder) *Sequence {
	return &Sequence{
		src:    src,
		frames: w,
		walker: w,
		dec:    dec,
		sum:    integrity.NewChecksummer(),
	}
}

// NewIndexedSequence decodes the frames listed in ix without searching for
// markers. A frame whose bytes no longer match the recorded checksum fails
// with index.ErrStale.
func NewIndexedSequence(src capture.Source, ix *index.Index, dec *decoder.Decoder) *Sequence {
	return &Sequence{
		src:    src,
		frames: &replay{ix: ix},
		cached: ix,
		dec:    dec,
		sum:    integrity.NewChecksummer(),
	}
}

// Next returns the next decoded frame, or io.EOF after the last one.
func (s *Sequence) Next() (*Frame, error) {
	loc, err := s.frames.Next()
	if err != nil {
		return nil, err
	}

	stride := loc.Variant.Stride()
	if cap(s.raw) < stride {
		s.raw = make([]byte, stride)
	}
	raw := s.raw[:stride]
	if _, err := io.ReadFull(io.NewSectionReader(s.src, loc.Offset, int64(stride)), raw); err != nil {
		return nil, fmt.Errorf("read frame %d at %d: %w", loc.Index, loc.Offset, err)
	}

	checksum := s.sum.Calculate(raw)
	if s.cached != nil && !s.sum.Verify(raw, s.cached.Frames[loc.Index].Checksum) {
		return nil, fmt.Errorf("frame %d at %d: %w", loc.Index, loc.Offset, index.ErrStale)
	}

	out, err := s.dec.Decode(raw, loc.Variant)
	if err != nil {
		return nil, fmt.Errorf("frame %d at %d: %w", loc.Index, loc.Offset, err)
	}
	s.decoded++

	return &Frame{
		Frame:    loc,
		Audio:    out.Audio,
		Pixels:   out.Pixels,
		Checksum: checksum,
	}, nil
}

// Reset rewinds the sequence to the first frame.
func (s *Sequence) Reset() {
	s.frames.Reset()
	s.decoded = 0
}

// Decoded returns how many frames were decoded since the last reset.
func (s *Sequence) Decoded() int {
	return s.decoded
}

// Indexed reports whether frames come from a cached index.
func (s *Sequence) Indexed() bool {
	return s.cached != nil
}

// BytesScanned returns the offsets tested while searching for markers.
func (s *Sequence) BytesScanned() int64 {
	if s.walker == nil {
		return 0
	}
	return s.walker.BytesScanned()
}

type replay struct {
	ix   *index.Index
	next int
}

func (r *replay) Next() (resync.Frame, error) {
	if r.next >= r.ix.Len() {
		return resync.Frame{}, io.EOF
	}
	f := r.ix.Frame(r.next)
	r.next++
	return f, nil
}

func (r *replay) Reset() {
	r.next = 0
}
