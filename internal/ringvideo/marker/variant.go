package marker

import "fmt"

// Variant identifies a frame encoding and the bit phase it was captured in.
type Variant uint8

const (
	MonochromeNormal Variant = iota
	MonochromeSwapped
	ColorNormal
	ColorSwapped
	XPNormal
	XPSwapped

	variantCount
)

// Mode selects which family of variants a capture is searched for.
type Mode uint8

const (
	ModeColor Mode = iota
	ModeMonochrome
)

var (
	colorPriority      = []Variant{ColorNormal, ColorSwapped, XPNormal, XPSwapped}
	monochromePriority = []Variant{MonochromeNormal, MonochromeSwapped}
)

// Variants returns the variants tested for m, in priority order.
func (m Mode) Variants() []Variant {
	var src []Variant
	switch m {
	case ModeMonochrome:
		src = monochromePriority
	default:
		src = colorPriority
	}
	out := make([]Variant, len(src))
	copy(out, src)
	return out
}

func (m Mode) String() string {
	switch m {
	case ModeColor:
		return "color"
	case ModeMonochrome:
		return "monochrome"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "color", "":
		return ModeColor, nil
	case "monochrome", "mono":
		return ModeMonochrome, nil
	default:
		return 0, fmt.Errorf("unknown decode mode: %q", s)
	}
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v < variantCount
}

// Swapped reports whether the variant was captured in byte-swapped phase.
func (v Variant) Swapped() bool {
	return v.Valid() && v%2 == 1
}

// Normal returns the normal-orientation variant of the same content mode.
func (v Variant) Normal() Variant {
	if v.Swapped() {
		return v - 1
	}
	return v
}

// Monochrome reports whether v carries a grayscale image.
func (v Variant) Monochrome() bool {
	return v == MonochromeNormal || v == MonochromeSwapped
}

// XP reports whether v uses the longer XP frame layout.
func (v Variant) XP() bool {
	return v == XPNormal || v == XPSwapped
}

// Stride returns the frame length in bytes.
func (v Variant) Stride() int {
	switch {
	case v.XP():
		return XPStride
	case v.Monochrome():
		return MonochromeStride
	default:
		return ColorStride
	}
}

// MarkerLength returns how many bytes are compared to classify a frame.
func (v Variant) MarkerLength() int {
	if !v.Valid() {
		return 0
	}
	return len(patterns[v].marker)
}

// AudioOffset is the index of the first embedded audio sample in a raw frame
// of this variant.
func (v Variant) AudioOffset() int {
	if v.Swapped() {
		return AudioInterval - 1
	}
	return AudioInterval - 2
}

// Marker returns a copy of the masked marker constant.
func (v Variant) Marker() []byte {
	if !v.Valid() {
		return nil
	}
	out := make([]byte, len(patterns[v].marker))
	copy(out, patterns[v].marker)
	return out
}

// Mask returns a copy of the variant's AND mask.
func (v Variant) Mask() []byte {
	if !v.Valid() {
		return nil
	}
	out := make([]byte, len(patterns[v].mask))
	copy(out, patterns[v].mask)
	return out
}

func (v Variant) String() string {
	switch v {
	case MonochromeNormal:
		return "monochrome"
	case MonochromeSwapped:
		return "monochrome-swapped"
	case ColorNormal:
		return "color"
	case ColorSwapped:
		return "color-swapped"
	case XPNormal:
		return "xp"
	case XPSwapped:
		return "xp-swapped"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	for v := Variant(0); v < variantCount; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown variant: %q", s)
}

// SectorAligned reports whether offset falls on a raw sector boundary.
func SectorAligned(offset int64) bool {
	return offset%SectorSize == 0
}

func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid variant %d", uint8(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
