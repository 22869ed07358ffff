package decoder

const (
	// Output image geometry
	Width         = 144
	Height        = 80
	BytesPerPixel = 3
	RowBytes      = Width * BytesPerPixel
	ImageBytes    = RowBytes * Height

	// Reversed-frame geometry. Each image row is read from a 240-byte span
	// made of two interleaved 120-byte halves. Every 10-byte cell ends on its
	// embedded audio sample and carries three 3-byte pixel groups before it.
	PixelStart     = 2
	rowSpan        = 240
	halfSpan       = rowSpan / 2
	cellSize       = 10
	cellsPerHalf   = halfSpan / cellSize
	groupSize      = 3
	groupsPerCell  = 3
	pixelsPerGroup = 4

	// PixelSpan is how many bytes of the reversed frame hold pixel data.
	PixelSpan = rowSpan * Height
)

// ChannelSource locates the nibble one output channel byte is built from.
type ChannelSource struct {
	// Index into the reversed, orientation-normalized frame.
	Index int
	// High selects the upper nibble.
	High bool
}

// layout maps every output pixel, before mirroring, to its channel sources.
var layout [Width * Height][BytesPerPixel]ChannelSource

func init() {
	for row := 0; row < Height; row++ {
		base := PixelStart + row*rowSpan
		col := 0

		for cell := 0; cell < cellsPerHalf; cell++ {
			for g := 0; g < groupsPerCell; g++ {
				index := base + cell*cellSize + g*groupSize
				indexBlock2 := index + halfSpan

				a := func(k int, high bool) ChannelSource { return ChannelSource{Index: index + k, High: high} }
				b := func(k int, high bool) ChannelSource { return ChannelSource{Index: indexBlock2 + k, High: high} }

				group := [pixelsPerGroup][BytesPerPixel]ChannelSource{
					{a(0, true), a(0, false), b(0, true)},
					{b(0, false), a(1, true), a(1, false)},
					{b(1, true), b(1, false), a(2, true)},
					{a(2, false), b(2, true), b(2, false)},
				}

				for _, px := range group {
					layout[row*Width+col] = px
					col++
				}
			}
		}
	}
}

// Layout returns the channel sources of the pixel at row, col of the
// unmirrored image.
func Layout(row, col int) [BytesPerPixel]ChannelSource {
	return layout[row*Width+col]
}

// MirrorColumn maps a column of the unmirrored image to its displayed column.
func MirrorColumn(col int) int {
	return Width - 1 - col
}

// High builds a channel byte from the upper nibble of n.
func High(n byte) byte {
	return n&0xF0 | n>>4
}

// Low builds a channel byte from the lower nibble of n.
func Low(n byte) byte {
	return n&0x0F | n<<4
}

func expand(n byte, high bool) byte {
	if high {
		return High(n)
	}
	return Low(n)
}

// Luma converts nibble-expanded RGB to a gray level.
func Luma(r, g, b byte) byte {
	return byte((77*int(r) + 150*int(g) + 29*int(b)) >> 8)
}
