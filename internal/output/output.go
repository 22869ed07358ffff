// Package output writes decoded frames as raw files: a concatenated 8-bit
// audio stream, one RGB24 image per frame and a JSON frame index.
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zsiec/ringvideo/internal/config"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/integrity"
	"github.com/zsiec/ringvideo/internal/logger"
	"github.com/zsiec/ringvideo/internal/pipeline"
)

const (
	AudioFile = "audio.u8"
	FramesDir = "frames"
	IndexFile = "index.json"
)

// AudioSink appends the audio samples of every frame to one file. The file
// is created with the first frame, so a run that finds nothing leaves no
// output behind.
type AudioSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
	sum  *integrity.StreamChecksum
}

// NewAudioSink creates a sink writing to path, truncating any previous content.
func NewAudioSink(path string) *AudioSink {
	return &AudioSink{path: path, sum: integrity.NewStreamChecksum()}
}

func (s *AudioSink) WriteFrame(ctx context.Context, f *pipeline.Frame) error {
	if s.f == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create audio output: %w", err)
		}
		file, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("create audio output: %w", err)
		}
		s.f = file
		s.w = bufio.NewWriterSize(file, 64*1024)
		logger.FromContext(ctx).WithField("path", s.path).Debug("Audio output created")
	}

	n, err := s.w.Write(f.Audio)
	s.sum.Update(f.Audio[:n])
	if err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

// Samples returns how many samples were written.
func (s *AudioSink) Samples() int64 {
	return int64(s.sum.Size())
}

// Checksum returns the CRC32 of the audio stream written so far.
func (s *AudioSink) Checksum() uint32 {
	return s.sum.Sum()
}

func (s *AudioSink) Close() error {
	if s.f == nil {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("flush audio: %w", err)
	}
	return s.f.Close()
}

// FrameSink writes each image to its own file named after the frame index.
type FrameSink struct {
	dir     string
	written int
}

// NewFrameSink creates a sink writing into dir, which is created with the
// first frame.
func NewFrameSink(dir string) *FrameSink {
	return &FrameSink{dir: dir}
}

// FramePath returns the file a frame image is written to.
func FramePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%05d.rgb", i))
}

func (s *FrameSink) WriteFrame(ctx context.Context, f *pipeline.Frame) error {
	if s.written == 0 {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create frame output: %w", err)
		}
		logger.FromContext(ctx).WithField("dir", s.dir).Debug("Frame output created")
	}
	if err := os.WriteFile(FramePath(s.dir, f.Index), f.Pixels, 0o644); err != nil {
		return fmt.Errorf("write frame image: %w", err)
	}
	s.written++
	return nil
}

// Written returns how many images were written.
func (s *FrameSink) Written() int {
	return s.written
}

func (s *FrameSink) Close() error {
	return nil
}

// MultiSink fans every frame out to a list of sinks.
type MultiSink []pipeline.Sink

func (m MultiSink) WriteFrame(ctx context.Context, f *pipeline.Frame) error {
	for _, s := range m {
		if err := s.WriteFrame(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the sinks enabled in cfg under cfg.Dir.
func Open(cfg *config.OutputConfig) MultiSink {
	var sinks MultiSink
	if cfg.Audio {
		sinks = append(sinks, NewAudioSink(filepath.Join(cfg.Dir, AudioFile)))
	}
	if cfg.Frames {
		sinks = append(sinks, NewFrameSink(filepath.Join(cfg.Dir, FramesDir)))
	}
	return sinks
}

// WriteIndex writes ix as indented JSON.
func WriteIndex(path string, ix *index.Index) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index output: %w", err)
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// ReadIndex loads an index written by WriteIndex.
func ReadIndex(path string) (*index.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var ix index.Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}
	return &ix, nil
}

// Audio returns the audio sink, if one is configured.
func (m MultiSink) Audio() (*AudioSink, bool) {
	for _, s := range m {
		if a, ok := s.(*AudioSink); ok {
			return a, true
		}
	}
	return nil, false
}
