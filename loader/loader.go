// Package loader reads RV32I program images for the emulator.
//
// Two image formats are supported: hex text images (one 32-bit instruction
// word per line, loaded at address 0) and 32-bit little-endian RISC-V ELF
// executables.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedProgramImage is returned for images that cannot be parsed.
var ErrMalformedProgramImage = errors.New("malformed program image")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// String renders the flags in "rwx" form, with '-' for a cleared flag.
func (f SegmentFlags) String() string {
	b := []byte("---")
	if f&SegmentFlagRead != 0 {
		b[0] = 'r'
	}
	if f&SegmentFlagWrite != 0 {
		b[1] = 'w'
	}
	if f&SegmentFlagExecute != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// Segment represents a contiguous block of the image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded image ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments.
	Segments []Segment
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads the image at path, choosing ELF when the file starts with the
// ELF magic and hex text otherwise.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program image: %w", err)
	}

	head := make([]byte, len(elfMagic))
	n, err := io.ReadFull(f, head)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	if n == len(elfMagic) && bytes.Equal(head, elfMagic) {
		return LoadELF(path)
	}
	return LoadHex(path)
}
