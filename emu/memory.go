package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemorySize is 128 KiB.
const DefaultMemorySize = 0x20000

// Memory is a flat, byte-addressable store. Words are little-endian and must
// be 4-byte aligned. The memory enforces no partitioning between instruction
// and data regions.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of the given size in bytes.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// contains reports whether [addr, addr+n) lies within memory.
func (m *Memory) contains(addr uint32, n uint64) bool {
	return uint64(addr)+n <= uint64(len(m.data))
}

func (m *Memory) checkWord(addr uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("word at 0x%08x: %w", addr, ErrMisalignedAccess)
	}
	if !m.contains(addr, 4) {
		return fmt.Errorf("word at 0x%08x (size 0x%x): %w", addr, len(m.data), ErrOutOfBounds)
	}
	return nil
}

// ReadWord reads the little-endian word at addr.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.checkWord(addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// WriteWord stores value at addr, least-significant byte first.
func (m *Memory) WriteWord(addr, value uint32) error {
	if err := m.checkWord(addr); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
	return nil
}

// ReadWords reads n consecutive words starting at addr.
func (m *Memory) ReadWords(addr uint32, n int) ([]uint32, error) {
	words := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		w, err := m.ReadWord(addr + uint32(4*i))
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}

// LoadWords writes words consecutively starting at base. Nothing is written
// unless the whole range is valid.
func (m *Memory) LoadWords(base uint32, words []uint32) error {
	if base%4 != 0 {
		return fmt.Errorf("load at 0x%08x: %w", base, ErrMisalignedAccess)
	}
	if !m.contains(base, 4*uint64(len(words))) {
		return fmt.Errorf("load of %d words at 0x%08x (size 0x%x): %w",
			len(words), base, len(m.data), ErrOutOfBounds)
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(m.data[base+uint32(4*i):], w)
	}
	return nil
}

// LoadBytes copies data into memory starting at base and zeroes the bytes
// from base+len(data) up to base+size. A size smaller than len(data) is
// treated as len(data). Nothing is written unless the whole range is valid.
func (m *Memory) LoadBytes(base uint32, data []byte, size uint32) error {
	span := max(uint64(len(data)), uint64(size))
	if !m.contains(base, span) {
		return fmt.Errorf("load of %d bytes at 0x%08x (size 0x%x): %w",
			span, base, len(m.data), ErrOutOfBounds)
	}
	n := copy(m.data[base:], data)
	clear(m.data[uint64(base)+uint64(n) : uint64(base)+span])
	return nil
}

// Clear zeroes the whole memory.
func (m *Memory) Clear() {
	clear(m.data)
}
