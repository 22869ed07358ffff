package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/ringvideo/internal/ringvideo/locator"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/resync"
)

func TestBuild(t *testing.T) {
	opts := options{
		variant:    "xp-swapped",
		frames:     6,
		lead:       123,
		drift:      37,
		driftEvery: 2,
		damage:     4,
		tail:       500,
		seed:       1,
	}

	data, offsets := build(marker.XPSwapped, opts)
	require.Len(t, offsets, 5)
	assert.Equal(t, int64(123), offsets[0])

	src := bytes.NewReader(data)
	w := resync.New(src, src.Size(), resync.WithLocator(locator.New(marker.ModeColor)))

	var found []int64
	for {
		f, err := w.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, marker.XPSwapped, f.Variant)
		found = append(found, f.Offset)
	}
	assert.Equal(t, offsets, found)
}
