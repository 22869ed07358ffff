package integrity

import (
	"hash"
	"hash/crc32"
)

// Checksummer computes CRC32 checksums over raw frames and capture regions
type Checksummer struct {
	crcTable *crc32.Table
}

// NewChecksummer creates a new checksummer
func NewChecksummer() *Checksummer {
	return &Checksummer{
		crcTable: crc32.MakeTable(crc32.IEEE),
	}
}

// Calculate computes checksum for data
func (c *Checksummer) Calculate(data []byte) uint32 {
	return c.CalculateIncremental([][]byte{data})
}

// Verify checks if data matches expected checksum
func (c *Checksummer) Verify(data []byte, expected uint32) bool {
	return c.Calculate(data) == expected
}

// CalculateIncremental computes one checksum over several chunks, as if they
// were concatenated. Empty input checksums to zero.
func (c *Checksummer) CalculateIncremental(chunks [][]byte) uint32 {
	h := crc32.New(c.crcTable)
	total := 0
	for _, chunk := range chunks {
		h.Write(chunk)
		total += len(chunk)
	}
	if total == 0 {
		return 0
	}
	return h.Sum32()
}

// StreamChecksum provides streaming checksum calculation
type StreamChecksum struct {
	h    hash.Hash32
	size uint64
}

// NewStreamChecksum creates a new streaming checksum calculator
func NewStreamChecksum() *StreamChecksum {
	return &StreamChecksum{
		h: crc32.NewIEEE(),
	}
}

// Update adds more data to the checksum
func (sc *StreamChecksum) Update(data []byte) {
	sc.h.Write(data)
	sc.size += uint64(len(data))
}

// Sum returns the current checksum
func (sc *StreamChecksum) Sum() uint32 {
	return sc.h.Sum32()
}

// Size returns total bytes processed
func (sc *StreamChecksum) Size() uint64 {
	return sc.size
}
