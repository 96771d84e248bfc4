package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// LoadELF parses a 32-bit little-endian RISC-V ELF executable.
func LoadELF(path string) (*Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = file.Close() }()

	f, err := elf.NewFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrMalformedProgramImage)
	}

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file: %w", ErrMalformedProgramImage)
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file: %w", ErrMalformedProgramImage)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v): %w",
			f.Machine, ErrMalformedProgramImage)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		if phdr.Memsz < phdr.Filesz {
			return nil, fmt.Errorf("segment at 0x%x: memory size 0x%x below file size 0x%x: %w",
				phdr.Vaddr, phdr.Memsz, phdr.Filesz, ErrMalformedProgramImage)
		}
		if phdr.Vaddr+phdr.Memsz > 1<<32 {
			return nil, fmt.Errorf("segment at 0x%x of 0x%x bytes exceeds the 32-bit address space: %w",
				phdr.Vaddr, phdr.Memsz, ErrMalformedProgramImage)
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}
