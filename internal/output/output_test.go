package output

import (
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/ringvideo/internal/config"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/logger"
	"github.com/zsiec/ringvideo/internal/pipeline"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
	"github.com/zsiec/ringvideo/internal/ringvideo/resync"
)

func testFrame(i int, fill byte) *pipeline.Frame {
	audio := make([]byte, marker.ColorStride/marker.AudioInterval)
	for k := range audio {
		audio[k] = fill
	}
	pixels := make([]byte, decoder.ImageBytes)
	pixels[0] = fill
	return &pipeline.Frame{
		Frame:  resync.Frame{Index: i, Offset: int64(i) * marker.ColorStride, Variant: marker.ColorNormal},
		Audio:  audio,
		Pixels: pixels,
	}
}

func TestOpen_AllSinks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sinks := Open(&config.OutputConfig{Dir: dir, Audio: true, Frames: true})
	require.Len(t, sinks, 2)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, sinks.WriteFrame(ctx, testFrame(i, byte(i+1))))
	}
	require.NoError(t, sinks.Close())

	audio, err := os.ReadFile(filepath.Join(dir, AudioFile))
	require.NoError(t, err)
	per := marker.ColorStride / marker.AudioInterval
	require.Len(t, audio, 3*per)
	assert.Equal(t, byte(1), audio[0])
	assert.Equal(t, byte(2), audio[per])
	assert.Equal(t, byte(3), audio[len(audio)-1])

	for i := 0; i < 3; i++ {
		img, err := os.ReadFile(FramePath(filepath.Join(dir, FramesDir), i))
		require.NoError(t, err)
		assert.Len(t, img, decoder.ImageBytes)
		assert.Equal(t, byte(i+1), img[0])
	}
	assert.FileExists(t, filepath.Join(dir, FramesDir, "00002.rgb"))
}

func TestOpen_Selective(t *testing.T) {
	dir := t.TempDir()
	sinks := Open(&config.OutputConfig{Dir: dir, Audio: true})
	require.Len(t, sinks, 1)

	require.NoError(t, sinks.WriteFrame(context.Background(), testFrame(0, 9)))
	require.NoError(t, sinks.Close())

	assert.FileExists(t, filepath.Join(dir, AudioFile))
	assert.NoDirExists(t, filepath.Join(dir, FramesDir))

	audio, ok := sinks.Audio()
	require.True(t, ok)
	assert.NotZero(t, audio.Checksum())

	_, ok = Open(&config.OutputConfig{Dir: dir, Frames: true}).Audio()
	assert.False(t, ok)
}

func TestOpen_NothingWrittenLeavesNoFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sinks := Open(&config.OutputConfig{Dir: dir, Audio: true, Frames: true})
	require.NoError(t, sinks.Close())

	assert.NoDirExists(t, dir)
}

func TestAudioSink_Samples(t *testing.T) {
	s := NewAudioSink(filepath.Join(t.TempDir(), AudioFile))

	require.NoError(t, s.WriteFrame(context.Background(), testFrame(0, 1)))
	require.NoError(t, s.WriteFrame(context.Background(), testFrame(1, 2)))
	assert.Equal(t, int64(2*marker.ColorStride/marker.AudioInterval), s.Samples())
	require.NoError(t, s.Close())

	written, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, crc32.ChecksumIEEE(written), s.Checksum())
}

func TestAudioSink_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewAudioSink(filepath.Join(blocker, AudioFile))
	assert.Error(t, s.WriteFrame(context.Background(), testFrame(0, 1)))
	assert.NoError(t, s.Close())
}

type failingSink struct{ closeErr error }

func (f *failingSink) WriteFrame(ctx context.Context, fr *pipeline.Frame) error {
	return errors.New("write failed")
}

func (f *failingSink) Close() error {
	return f.closeErr
}

func TestMultiSink_Errors(t *testing.T) {
	closeErr := errors.New("close failed")
	frames := NewFrameSink(t.TempDir())

	m := MultiSink{&failingSink{closeErr: closeErr}, frames}
	assert.Error(t, m.WriteFrame(context.Background(), testFrame(0, 1)))
	assert.Equal(t, 0, frames.Written())
	assert.Equal(t, closeErr, m.Close())
}

func TestWriteIndex(t *testing.T) {
	ix := &index.Index{Fingerprint: "19600-00000000-00000000", Mode: "color"}
	ix.Add(resync.Frame{Offset: 0, Variant: marker.ColorSwapped}, 0xabcdef01)
	ix.Add(resync.Frame{Offset: 19637, Variant: marker.ColorSwapped, Drift: 37, Resynced: true}, 0x12345678)

	path := filepath.Join(t.TempDir(), IndexFile)
	require.NoError(t, WriteIndex(path, ix))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"variant": "color-swapped"`)

	got, err := ReadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, ix.Frames, got.Frames)
	assert.Equal(t, ix.Fingerprint, got.Fingerprint)

	_, err = ReadIndex(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestSinks_LogCreationToRunLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	ctx, _ := logger.WithRun(context.Background(), l)

	dir := t.TempDir()
	sinks := Open(&config.OutputConfig{Dir: dir, Audio: true, Frames: true})
	for i := 0; i < 3; i++ {
		require.NoError(t, sinks.WriteFrame(ctx, testFrame(i, 1)))
	}
	require.NoError(t, sinks.Close())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Audio output created"))
	assert.Equal(t, 1, strings.Count(out, "Frame output created"))
	assert.Contains(t, out, `"run_id":"`+logger.GetRunID(ctx)+`"`)
}
