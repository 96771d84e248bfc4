package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/loader"
)

var _ = Describe("Hex Loader", func() {
	Describe("ParseHex", func() {
		It("should parse one word per line", func() {
			words, err := loader.ParseHex(strings.NewReader("00500093\n00a00113\n0000006F\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0x00500093, 0x00A00113, 0x0000006F}))
		})

		It("should skip blank lines, comments and surrounding whitespace", func() {
			input := "# reference program\n\n  00500093  \r\n\t0000006f\n"
			words, err := loader.ParseHex(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0x00500093, 0x0000006F}))
		})

		It("should accept an empty image", func() {
			words, err := loader.ParseHex(strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(BeEmpty())
		})

		DescribeTable("malformed lines",
			func(line string) {
				_, err := loader.ParseHex(strings.NewReader("00500093\n" + line + "\n"))
				Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
				Expect(err.Error()).To(ContainSubstring("line 2"))
			},
			Entry("too short", "0050009"),
			Entry("too long", "005000930"),
			Entry("0x prefix", "0x500093"),
			Entry("non-hex character", "0050009g"),
			Entry("sign", "+0500093"),
		)

		It("should reject an oversized line as malformed", func() {
			input := "00500093\n" + strings.Repeat("0", 70000)
			_, err := loader.ParseHex(strings.NewReader(input))
			Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
			Expect(err.Error()).To(ContainSubstring("line 2"))
		})
	})

	Describe("LoadHex", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should produce a little-endian segment at address 0", func() {
			path := filepath.Join(tempDir, "prog.hex")
			Expect(os.WriteFile(path, []byte("11223344\n0000006f\n"), 0644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(BeZero())
			Expect(prog.Segments).To(HaveLen(1))
			Expect(prog.Segments[0].VirtAddr).To(BeZero())
			Expect(prog.Segments[0].Data).To(Equal([]byte{
				0x44, 0x33, 0x22, 0x11,
				0x6f, 0x00, 0x00, 0x00,
			}))
		})

		It("should name the file in parse errors", func() {
			path := filepath.Join(tempDir, "bad.hex")
			Expect(os.WriteFile(path, []byte("xyz\n"), 0644)).To(Succeed())

			_, err := loader.LoadHex(path)
			Expect(err).To(MatchError(loader.ErrMalformedProgramImage))
			Expect(err.Error()).To(ContainSubstring("bad.hex"))
		})

		It("should fail for a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.hex"))
			Expect(err).To(HaveOccurred())
		})
	})
})
