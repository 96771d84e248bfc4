package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/loader"
)

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	Context("with a valid RV32 ELF binary", func() {
		var (
			elfPath string
			code    []byte
		)

		BeforeEach(func() {
			elfPath = filepath.Join(tempDir, "test.elf")
			code = []byte{
				0x93, 0x00, 0x50, 0x00, // addi x1, x0, 5
				0x6f, 0x00, 0x00, 0x00, // jal x0, 0
			}
			createMinimalRV32ELF(elfPath, 243, 0x1000, 0x1000, code, 0)
		})

		It("should be detected by Load", func() {
			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(Equal(uint32(0x1000)))
		})

		It("should load the segment contents and flags", func() {
			prog, err := loader.LoadELF(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(1))

			seg := prog.Segments[0]
			Expect(seg.VirtAddr).To(Equal(uint32(0x1000)))
			Expect(seg.Data).To(Equal(code))
			Expect(seg.MemSize).To(Equal(uint32(len(code))))
			Expect(seg.Flags & loader.SegmentFlagExecute).NotTo(BeZero())
			Expect(seg.Flags & loader.SegmentFlagRead).NotTo(BeZero())
			Expect(seg.Flags & loader.SegmentFlagWrite).To(BeZero())
			Expect(seg.Flags.String()).To(Equal("r-x"))
		})
	})

	It("should reject non-RISC-V machines", func() {
		path := filepath.Join(tempDir, "arm.elf")
		createMinimalRV32ELF(path, 40, 0, 0, []byte{0, 0, 0, 0}, 0) // EM_ARM

		_, err := loader.LoadELF(path)
		Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
		Expect(err.Error()).To(ContainSubstring("not a RISC-V ELF file"))
	})

	It("should keep a memory size larger than the file contents", func() {
		path := filepath.Join(tempDir, "bss.elf")
		createMinimalRV32ELF(path, 243, 0x2000, 0x2000, []byte{0x6f, 0, 0, 0}, 0x100)

		prog, err := loader.LoadELF(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments[0].Data).To(HaveLen(4))
		Expect(prog.Segments[0].MemSize).To(Equal(uint32(0x100)))
	})

	It("should reject a segment whose memory size is below its file size", func() {
		path := filepath.Join(tempDir, "shrunk.elf")
		createMinimalRV32ELF(path, 243, 0, 0, make([]byte, 8), 4)

		_, err := loader.LoadELF(path)
		Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
	})

	It("should reject a segment that wraps the 32-bit address space", func() {
		path := filepath.Join(tempDir, "wrap.elf")
		createMinimalRV32ELF(path, 243, 0xFFFFFFF0, 0, make([]byte, 4), 0x20)

		_, err := loader.LoadELF(path)
		Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
	})

	It("should surface read errors instead of parsing as hex", func() {
		_, err := loader.Load(tempDir)
		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(loader.ErrMalformedProgramImage))
		Expect(err.Error()).To(ContainSubstring("failed to read program image"))
	})

	It("should reject a truncated ELF file", func() {
		path := filepath.Join(tempDir, "short.elf")
		Expect(os.WriteFile(path, []byte{0x7f, 'E', 'L', 'F', 1}, 0644)).To(Succeed())

		_, err := loader.Load(path)
		Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
	})
})

// createMinimalRV32ELF writes an ELF32 executable with a single PT_LOAD
// segment. A zero memSize means len(code).
func createMinimalRV32ELF(
	path string,
	machine uint16,
	loadAddr, entryPoint uint32,
	code []byte,
	memSize uint32,
) {
	if memSize == 0 {
		memSize = uint32(len(code))
	}

	const (
		ehsize    = 52
		phentsize = 32
	)

	elfHeader := make([]byte, ehsize)
	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 1                                         // 32-bit
	elfHeader[5] = 1                                         // little endian
	elfHeader[6] = 1                                         // version
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)       // executable
	binary.LittleEndian.PutUint16(elfHeader[18:20], machine) // machine
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)       // version
	binary.LittleEndian.PutUint32(elfHeader[24:28], entryPoint)
	binary.LittleEndian.PutUint32(elfHeader[28:32], ehsize) // phoff
	binary.LittleEndian.PutUint32(elfHeader[32:36], 0)      // shoff
	binary.LittleEndian.PutUint16(elfHeader[40:42], ehsize)
	binary.LittleEndian.PutUint16(elfHeader[42:44], phentsize)
	binary.LittleEndian.PutUint16(elfHeader[44:46], 1) // phnum
	binary.LittleEndian.PutUint16(elfHeader[46:48], 40)

	progHeader := make([]byte, phentsize)
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)                   // PT_LOAD
	binary.LittleEndian.PutUint32(progHeader[4:8], ehsize+phentsize)    // offset
	binary.LittleEndian.PutUint32(progHeader[8:12], loadAddr)           // vaddr
	binary.LittleEndian.PutUint32(progHeader[12:16], loadAddr)          // paddr
	binary.LittleEndian.PutUint32(progHeader[16:20], uint32(len(code))) // filesz
	binary.LittleEndian.PutUint32(progHeader[20:24], memSize)           // memsz
	binary.LittleEndian.PutUint32(progHeader[24:28], 0x5)               // PF_X | PF_R
	binary.LittleEndian.PutUint32(progHeader[28:32], 0x1000)            // align

	file, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = file.Close() }()

	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(code)
}
