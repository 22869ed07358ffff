// Package synth builds synthetic ring-video captures. EncodeFrame is the
// inverse of the decoder for nibble-replicated pixels, which makes it the
// reference fixture generator for locator, walker and decoder tests.
package synth

import (
	"bytes"
	"math/rand"

	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

// EncodeFrame lays audio and pixels out as one raw frame of variant v.
// pixels is a display-order RGB24 raster; only the upper nibble of every
// channel survives. audio may be shorter than Stride/10, missing samples are
// zero.
func EncodeFrame(v marker.Variant, audio, pixels []byte) []byte {
	stride := v.Stride()
	frame := make([]byte, stride)

	for k, i := 0, marker.ColorNormal.AudioOffset(); i < stride && k < len(audio); k, i = k+1, i+marker.AudioInterval {
		frame[i] = audio[k]
	}

	for row := 0; row < decoder.Height; row++ {
		for col := 0; col < decoder.Width; col++ {
			o := row*decoder.RowBytes + decoder.MirrorColumn(col)*decoder.BytesPerPixel
			if o+decoder.BytesPerPixel > len(pixels) {
				continue
			}
			rgb := pixels[o : o+decoder.BytesPerPixel]

			for c, src := range decoder.Layout(row, col) {
				n := rgb[c] >> 4
				if v.Monochrome() {
					n = rgb[0] >> 4
				}
				i := stride - 1 - src.Index
				if src.High {
					frame[i] = frame[i]&0x0F | n<<4
				} else {
					frame[i] = frame[i]&0xF0 | n
				}
			}
		}
	}

	normal := v.Normal()
	m, mask := normal.Marker(), normal.Mask()
	for i := range m {
		frame[i] = frame[i]&^mask[i] | m[i]
	}

	if v.Swapped() {
		marker.SwapPairsInPlace(frame)
	}
	return frame
}

// Replicate turns a 4-bit value into the channel byte the decoder produces.
func Replicate(n byte) byte {
	n &= 0x0F
	return n<<4 | n
}

// TestPattern returns a display-order raster of nibble-replicated colors
// that differs for every seed.
func TestPattern(seed int) []byte {
	pixels := make([]byte, decoder.ImageBytes)
	for row := 0; row < decoder.Height; row++ {
		for col := 0; col < decoder.Width; col++ {
			o := row*decoder.RowBytes + col*decoder.BytesPerPixel
			pixels[o] = Replicate(byte(col/9 + seed))
			pixels[o+1] = Replicate(byte(row/5 + seed))
			pixels[o+2] = Replicate(byte((row + col + seed) / 7))
		}
	}
	return pixels
}

// GrayPattern returns a display-order raster where all channels are equal.
func GrayPattern(seed int) []byte {
	pixels := make([]byte, decoder.ImageBytes)
	for p := 0; p < decoder.Width*decoder.Height; p++ {
		y := Replicate(byte(p/decoder.Width + seed))
		o := p * decoder.BytesPerPixel
		pixels[o], pixels[o+1], pixels[o+2] = y, y, y
	}
	return pixels
}

// Tone returns a sawtooth audio block for one frame of v.
func Tone(v marker.Variant, seed int) []byte {
	audio := make([]byte, v.Stride()/marker.AudioInterval)
	for i := range audio {
		audio[i] = byte(i*3 + seed)
	}
	return audio
}

// Builder assembles a capture from frames and filler.
type Builder struct {
	buf bytes.Buffer
	rng *rand.Rand

	offsets []int64
}

// NewBuilder creates a Builder whose noise is reproducible for seed.
func NewBuilder(seed int64) *Builder {
	return &Builder{rng: rand.New(rand.NewSource(seed))}
}

// Noise appends n random bytes.
func (b *Builder) Noise(n int) *Builder {
	chunk := make([]byte, n)
	b.rng.Read(chunk)
	b.buf.Write(chunk)
	return b
}

// Zeros appends n zero bytes.
func (b *Builder) Zeros(n int) *Builder {
	b.buf.Write(make([]byte, n))
	return b
}

// Frame appends one encoded frame.
func (b *Builder) Frame(v marker.Variant, audio, pixels []byte) *Builder {
	b.offsets = append(b.offsets, int64(b.buf.Len()))
	b.buf.Write(EncodeFrame(v, audio, pixels))
	return b
}

// PatternFrame appends a frame built from TestPattern and Tone.
func (b *Builder) PatternFrame(v marker.Variant, seed int) *Builder {
	pixels := TestPattern(seed)
	if v.Monochrome() {
		pixels = GrayPattern(seed)
	}
	return b.Frame(v, Tone(v, seed), pixels)
}

// Truncated appends the first n bytes of a frame.
func (b *Builder) Truncated(v marker.Variant, seed, n int) *Builder {
	frame := EncodeFrame(v, Tone(v, seed), TestPattern(seed))
	if n > len(frame) {
		n = len(frame)
	}
	b.buf.Write(frame[:n])
	return b
}

// Damaged appends a frame whose marker no longer matches. It is not listed
// in Offsets.
func (b *Builder) Damaged(v marker.Variant, seed int) *Builder {
	frame := EncodeFrame(v, Tone(v, seed), TestPattern(seed))
	frame[marker.SeedLength/2] ^= 0xFF
	b.buf.Write(frame)
	return b
}

// Offsets returns where each complete frame was written.
func (b *Builder) Offsets() []int64 {
	out := make([]int64, len(b.offsets))
	copy(out, b.offsets)
	return out
}

// Len returns the current capture length.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// Bytes returns the capture built so far.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
