package marker

import "bytes"

const (
	// Frame strides in bytes
	ColorStride      = 19600
	MonochromeStride = 19600
	XPStride         = 19760
	MaxStride        = XPStride

	// Marker lengths
	SeedLength        = 8
	ColorMarkerLength = 302
	XPMarkerLength    = 332
	MaxMarkerLength   = XPMarkerLength

	// AudioInterval is the distance between two embedded audio samples.
	AudioInterval = 10

	// SectorSize is the raw optical disc sector size.
	SectorSize = 2352

	// xpTailStart is where the XP marker switches to the complemented sync cycle.
	xpTailStart = 180
)

var syncCycle = [3]byte{0xE3, 0x81, 0xC7}

// Seed patterns used to pre-filter candidate offsets
var (
	Seed        = []byte{0xE3, 0x81, 0xC7, 0xE3, 0x81, 0xC7, 0xE3, 0x81}
	SwappedSeed = []byte{0x81, 0xE3, 0xE3, 0xC7, 0xC7, 0x81, 0x81, 0xE3}
)

type pattern struct {
	marker []byte
	mask   []byte
}

var patterns [variantCount]pattern

func init() {
	mono := buildPattern(SeedLength, false)
	color := buildPattern(ColorMarkerLength, false)
	xp := buildPattern(XPMarkerLength, true)

	patterns[MonochromeNormal] = mono
	patterns[MonochromeSwapped] = mono.swapped()
	patterns[ColorNormal] = color
	patterns[ColorSwapped] = color.swapped()
	patterns[XPNormal] = xp
	patterns[XPSwapped] = xp.swapped()
}

// buildPattern generates a normal-orientation marker and its AND mask. The
// stored marker is masked so comparisons are always mask-then-compare.
func buildPattern(length int, xp bool) pattern {
	p := pattern{
		marker: make([]byte, length),
		mask:   make([]byte, length),
	}

	for i := 0; i < length; i++ {
		b := syncCycle[i%3]
		m := byte(0xFF)

		if xp && i >= xpTailStart {
			b = ^b
			if i%AudioInterval == 3 {
				// 4-bit field that changes from frame to frame
				m = 0xF0
			}
		}

		if i%AudioInterval == AudioInterval-2 {
			m = 0x00
		}

		p.mask[i] = m
		p.marker[i] = b & m
	}

	return p
}

func (p pattern) swapped() pattern {
	return pattern{
		marker: SwapPairs(p.marker),
		mask:   SwapPairs(p.mask),
	}
}

// SwapPairs returns a copy of buf with every adjacent byte pair exchanged.
// A trailing odd byte is copied unchanged.
func SwapPairs(buf []byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	SwapPairsInPlace(out)
	return out
}

// SwapPairsInPlace exchanges bytes 2k and 2k+1 of buf.
func SwapPairsInPlace(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// ApplyMask ANDs buf with mask over their common length. Applying the same
// mask twice has no further effect.
func ApplyMask(buf, mask []byte) {
	n := len(buf)
	if len(mask) < n {
		n = len(mask)
	}
	for i := 0; i < n; i++ {
		buf[i] &= mask[i]
	}
}

// HasSeed reports whether buf starts with either seed pattern.
func HasSeed(buf []byte) bool {
	if len(buf) < SeedLength {
		return false
	}
	head := buf[:SeedLength]
	return bytes.Equal(head, Seed) || bytes.Equal(head, SwappedSeed)
}

// Matches reports whether window holds v's marker once masked. window must
// be at least v.MarkerLength() bytes long; it is not modified.
func Matches(v Variant, window []byte) bool {
	if !v.Valid() {
		return false
	}

	p := patterns[v]
	if len(window) < len(p.marker) {
		return false
	}

	for i, want := range p.marker {
		if window[i]&p.mask[i] != want {
			return false
		}
	}
	return true
}

// Classify tests the candidates in order against window and returns the first
// variant whose marker matches.
func Classify(window []byte, candidates ...Variant) (Variant, bool) {
	if !HasSeed(window) {
		return 0, false
	}
	for _, v := range candidates {
		if Matches(v, window) {
			return v, true
		}
	}
	return 0, false
}
