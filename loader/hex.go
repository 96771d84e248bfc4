package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxHexLineLength bounds a single line of a hex image, comments included.
const maxHexLineLength = 4096

// LoadHex reads a hex text image. Line i holds the instruction word at
// address 4*i.
func LoadHex(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := ParseHex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[4*i:], w)
	}

	return &Program{
		EntryPoint: 0,
		Segments: []Segment{{
			VirtAddr: 0,
			Data:     data,
			MemSize:  uint32(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagExecute,
		}},
	}, nil
}

// ParseHex parses a hex text image into instruction words. Each line must
// hold exactly 8 hexadecimal digits, without a 0x prefix. Surrounding
// whitespace, blank lines and lines starting with '#' are ignored.
func ParseHex(r io.Reader) ([]uint32, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), maxHexLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, err := parseHexWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", lineNo, line, err)
		}
		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d: longer than %d bytes: %w",
				lineNo+1, maxHexLineLength, ErrMalformedProgramImage)
		}
		return nil, fmt.Errorf("failed to read hex image: %w", err)
	}

	return words, nil
}

func parseHexWord(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("want 8 hex digits, got %d characters: %w",
			len(s), ErrMalformedProgramImage)
	}
	for _, c := range s {
		if !isHexDigit(c) {
			return 0, fmt.Errorf("invalid hex digit %q: %w", c, ErrMalformedProgramImage)
		}
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrMalformedProgramImage)
	}
	return uint32(v), nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
