package locator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/synth"
)

func TestLocate_KnownOffset(t *testing.T) {
	tests := []struct {
		name    string
		mode    marker.Mode
		variant marker.Variant
		offset  int
	}{
		{"color normal", marker.ModeColor, marker.ColorNormal, 1234},
		{"color swapped", marker.ModeColor, marker.ColorSwapped, 777},
		{"xp normal", marker.ModeColor, marker.XPNormal, 19000},
		{"xp swapped", marker.ModeColor, marker.XPSwapped, 1},
		{"monochrome normal", marker.ModeMonochrome, marker.MonochromeNormal, 2352},
		{"monochrome swapped", marker.ModeMonochrome, marker.MonochromeSwapped, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := synth.NewBuilder(int64(tt.offset)).
				Zeros(tt.offset).
				PatternFrame(tt.variant, 1).
				Bytes()

			l := New(tt.mode, WithChunkSize(4096))
			m, err := l.Locate(bytes.NewReader(data), int64(len(data)), 0, marker.MaxStride)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.offset), m.Offset)
			assert.Equal(t, tt.variant, m.Variant)
			assert.Equal(t, tt.offset%marker.SectorSize == 0, m.SectorAligned())
		})
	}
}

func TestLocate_AfterNoise(t *testing.T) {
	data := synth.NewBuilder(99).
		Noise(10007).
		PatternFrame(marker.ColorSwapped, 3).
		Bytes()

	m, err := New(marker.ModeColor).Locate(bytes.NewReader(data), int64(len(data)), 0, marker.MaxStride)
	require.NoError(t, err)
	assert.Equal(t, int64(10007), m.Offset)
	assert.Equal(t, marker.ColorSwapped, m.Variant)
}

func TestLocate_AllZeroNotFound(t *testing.T) {
	data := make([]byte, marker.ColorStride*2)

	l := New(marker.ModeColor)
	_, err := l.Locate(bytes.NewReader(data), int64(len(data)), 0, marker.MaxStride)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(marker.MaxStride), l.BytesScanned())
}

func TestLocate_MarkerOutsideWindow(t *testing.T) {
	data := synth.NewBuilder(1).
		Zeros(marker.MaxStride + 10).
		PatternFrame(marker.ColorNormal, 1).
		Bytes()

	_, err := New(marker.ModeColor).Locate(bytes.NewReader(data), int64(len(data)), 0, marker.MaxStride)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocate_SeedOnlyIsNotAMatch(t *testing.T) {
	data := make([]byte, 4096)
	copy(data[100:], marker.Seed)
	copy(data[300:], marker.SwappedSeed)

	_, err := New(marker.ModeColor).Locate(bytes.NewReader(data), int64(len(data)), 0, int64(len(data)))
	assert.ErrorIs(t, err, ErrNotFound)

	// The monochrome family only carries the seed.
	m, err := New(marker.ModeMonochrome).Locate(bytes.NewReader(data), int64(len(data)), 0, int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.Offset)
	assert.Equal(t, marker.MonochromeNormal, m.Variant)
}

func TestLocate_MarkerTruncatedByEnd(t *testing.T) {
	m := marker.ColorNormal.Marker()
	data := append(make([]byte, 50), m[:200]...)

	_, err := New(marker.ModeColor).Locate(bytes.NewReader(data), int64(len(data)), 0, int64(len(data)))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocate_StartAndExplicitVariants(t *testing.T) {
	b := synth.NewBuilder(4).
		PatternFrame(marker.ColorNormal, 1).
		PatternFrame(marker.ColorNormal, 2)
	data := b.Bytes()
	size := int64(len(data))

	l := New(marker.ModeColor, WithChunkSize(1000))

	m, err := l.Locate(bytes.NewReader(data), size, 1, size)
	require.NoError(t, err)
	assert.Equal(t, b.Offsets()[1], m.Offset)

	_, err = l.Locate(bytes.NewReader(data), size, 0, size, marker.XPNormal)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Locate(bytes.NewReader(data), size, size, size)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocate_ChunkBoundaries(t *testing.T) {
	for _, chunk := range []int{1, 7, 301, 4096} {
		data := synth.NewBuilder(8).
			Noise(5000).
			PatternFrame(marker.XPNormal, 1).
			Bytes()

		m, err := New(marker.ModeColor, WithChunkSize(chunk)).
			Locate(bytes.NewReader(data), int64(len(data)), 0, marker.MaxStride)
		require.NoError(t, err, "chunk %d", chunk)
		assert.Equal(t, int64(5000), m.Offset, "chunk %d", chunk)
	}
}

func TestAt(t *testing.T) {
	b := synth.NewBuilder(2).Zeros(10).PatternFrame(marker.XPSwapped, 1)
	data := b.Bytes()
	size := int64(len(data))
	l := New(marker.ModeColor)

	ok, err := l.At(bytes.NewReader(data), size, 10, marker.XPSwapped)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.At(bytes.NewReader(data), size, 11, marker.XPSwapped)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.At(bytes.NewReader(data), size, size-10, marker.XPSwapped)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingReader struct{}

func (failingReader) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("device gone")
}

func TestLocate_ReadError(t *testing.T) {
	_, err := New(marker.ModeColor).Locate(failingReader{}, 100000, 0, marker.MaxStride)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
