package decoder

import (
	"errors"
	"fmt"

	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

// ErrLength is returned when a frame buffer does not match its variant's stride.
var ErrLength = errors.New("frame length does not match variant stride")

// Flip selects how the decoded raster is turned into display order.
type Flip uint8

const (
	// FlipRows mirrors every row horizontally.
	FlipRows Flip = iota
	// FlipBuffer reverses the whole image buffer, as older decoders did.
	// It also turns the image upside down and swaps red and blue.
	FlipBuffer
)

func (f Flip) String() string {
	switch f {
	case FlipRows:
		return "rows"
	case FlipBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("flip(%d)", uint8(f))
	}
}

// ParseFlip converts a configuration value into a Flip.
func ParseFlip(s string) (Flip, error) {
	switch s {
	case "rows", "row", "":
		return FlipRows, nil
	case "buffer":
		return FlipBuffer, nil
	default:
		return 0, fmt.Errorf("unknown flip mode: %q", s)
	}
}

// DecodedFrame holds the samples extracted from one frame.
type DecodedFrame struct {
	Variant marker.Variant
	// Audio holds one unsigned 8-bit sample per 10 frame bytes.
	Audio []byte
	// Pixels is a Width x Height RGB24 raster, rows top to bottom.
	Pixels []byte
}

// Decoder turns raw frames into audio and pixel samples. Output depends only
// on the frame bytes and variant. A Decoder reuses a scratch buffer and is
// not safe for concurrent use.
type Decoder struct {
	flip    Flip
	scratch []byte
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFlip selects the display-order correction.
func WithFlip(f Flip) Option {
	return func(d *Decoder) {
		d.flip = f
	}
}

// New creates a Decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{flip: FlipRows}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode splits frame into audio and pixel samples. frame is not modified.
func (d *Decoder) Decode(frame []byte, v marker.Variant) (*DecodedFrame, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("decode: invalid variant %d", uint8(v))
	}
	stride := v.Stride()
	if len(frame) != stride {
		return nil, fmt.Errorf("decode %s: got %d bytes, want %d: %w", v, len(frame), stride, ErrLength)
	}

	if cap(d.scratch) < stride {
		d.scratch = make([]byte, stride)
	}
	work := d.scratch[:stride]
	copy(work, frame)

	if v.Swapped() {
		marker.SwapPairsInPlace(work)
	}

	out := &DecodedFrame{
		Variant: v,
		Audio:   extractAudio(work, v.Normal().AudioOffset()),
	}

	reverse(work)
	out.Pixels = extractPixels(work, v.Monochrome())

	switch d.flip {
	case FlipBuffer:
		reverse(out.Pixels)
	default:
		mirrorRows(out.Pixels)
	}

	return out, nil
}

func extractAudio(frame []byte, start int) []byte {
	audio := make([]byte, 0, len(frame)/marker.AudioInterval)
	for i := start; i < len(frame); i += marker.AudioInterval {
		audio = append(audio, frame[i])
	}
	return audio
}

func extractPixels(reversed []byte, mono bool) []byte {
	pixels := make([]byte, ImageBytes)

	for p := range layout {
		src := &layout[p]
		r := expand(reversed[src[0].Index], src[0].High)
		g := expand(reversed[src[1].Index], src[1].High)
		b := expand(reversed[src[2].Index], src[2].High)

		if mono {
			y := Luma(r, g, b)
			r, g, b = y, y, y
		}

		o := p * BytesPerPixel
		pixels[o] = r
		pixels[o+1] = g
		pixels[o+2] = b
	}

	return pixels
}

func mirrorRows(pixels []byte) {
	for row := 0; row < Height; row++ {
		line := pixels[row*RowBytes : (row+1)*RowBytes]
		for l, r := 0, Width-1; l < r; l, r = l+1, r-1 {
			lo := l * BytesPerPixel
			ro := r * BytesPerPixel
			for c := 0; c < BytesPerPixel; c++ {
				line[lo+c], line[ro+c] = line[ro+c], line[lo+c]
			}
		}
	}
}

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
