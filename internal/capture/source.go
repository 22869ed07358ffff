// Package capture opens disc-dump captures as read-only random-access byte
// sources.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zsiec/ringvideo/internal/integrity"
)

// DefaultMaxSize is the largest capture accepted: a full 74 minute disc of
// raw 2352-byte sectors.
const DefaultMaxSize = 635040000

// fingerprintSpan is how much of each end of a capture is hashed.
const fingerprintSpan = 1 << 20

// ErrTooLarge is returned when a capture exceeds the configured ceiling.
var ErrTooLarge = errors.New("capture exceeds maximum size")

// Source is a finite, read-only, randomly addressable capture.
// *bytes.Reader satisfies it.
type Source interface {
	io.ReaderAt
	Size() int64
}

// File is a capture backed by a file on disk.
type File struct {
	f    *os.File
	size int64
}

// Open opens path for reading and checks it against maxSize. A maxSize of
// zero or less disables the check.
func Open(path string, maxSize int64) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		f.Close()
		return nil, fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), maxSize, ErrTooLarge)
	}

	return &File{f: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (c *File) ReadAt(p []byte, off int64) (int, error) {
	return c.f.ReadAt(p, off)
}

// Size returns the capture length in bytes.
func (c *File) Size() int64 {
	return c.size
}

// Name returns the path the capture was opened from.
func (c *File) Name() string {
	return c.f.Name()
}

// Close releases the underlying file.
func (c *File) Close() error {
	return c.f.Close()
}

// Fingerprint identifies a capture by its size and checksums of its first
// and last megabyte. It is cheap enough to compute before every run.
func Fingerprint(src Source) (string, error) {
	size := src.Size()
	c := integrity.NewChecksummer()

	headLen := int64(fingerprintSpan)
	if headLen > size {
		headLen = size
	}
	head := make([]byte, headLen)
	if err := readFull(src, head, 0); err != nil {
		return "", fmt.Errorf("read capture head: %w", err)
	}

	tailStart := size - fingerprintSpan
	if tailStart < headLen {
		tailStart = headLen
	}
	tail := make([]byte, size-tailStart)
	if err := readFull(src, tail, tailStart); err != nil {
		return "", fmt.Errorf("read capture tail: %w", err)
	}

	return fmt.Sprintf("%d-%08x-%08x", size, c.Calculate(head), c.Calculate(tail)), nil
}

func readFull(src io.ReaderAt, buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
