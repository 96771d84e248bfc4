package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory(emu.DefaultMemorySize)
	})

	It("should default to 128 KiB", func() {
		Expect(memory.Size()).To(Equal(uint32(0x20000)))
	})

	It("should round-trip words at aligned addresses", func() {
		addrs := []uint32{0, 4, 0x1000, 0x10000, emu.DefaultMemorySize - 4}
		values := []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF}

		for _, addr := range addrs {
			for _, v := range values {
				Expect(memory.WriteWord(addr, v)).To(Succeed())
				got, err := memory.ReadWord(addr)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(v))
			}
		}
	})

	It("should store words little-endian", func() {
		Expect(memory.WriteWord(0x100, 0x11223344)).To(Succeed())
		Expect(memory.LoadBytes(0x104, []byte{0x44, 0x33, 0x22, 0x11}, 4)).To(Succeed())

		word, err := memory.ReadWord(0x104)
		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0x11223344)))
	})

	It("should reject every misaligned address", func() {
		for addr := uint32(1); addr < 64; addr++ {
			if addr%4 == 0 {
				continue
			}
			_, err := memory.ReadWord(addr)
			Expect(err).To(MatchError(emu.ErrMisalignedAccess))
			Expect(memory.WriteWord(addr, 1)).To(MatchError(emu.ErrMisalignedAccess))
		}
	})

	It("should reject accesses past the end", func() {
		_, err := memory.ReadWord(emu.DefaultMemorySize)
		Expect(err).To(MatchError(emu.ErrOutOfBounds))

		Expect(memory.WriteWord(0xFFFFFFFC, 1)).To(MatchError(emu.ErrOutOfBounds))
	})

	Describe("LoadWords", func() {
		It("should write words consecutively", func() {
			Expect(memory.LoadWords(0x40, []uint32{1, 2, 3})).To(Succeed())

			words, err := memory.ReadWords(0x40, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{1, 2, 3}))
		})

		It("should write nothing if the range does not fit", func() {
			small := emu.NewMemory(8)

			err := small.LoadWords(0, []uint32{1, 2, 3})
			Expect(err).To(MatchError(emu.ErrOutOfBounds))

			word, _ := small.ReadWord(0)
			Expect(word).To(BeZero())
		})
	})

	Describe("LoadBytes", func() {
		It("should zero-fill the tail up to the segment size", func() {
			Expect(memory.LoadWords(0x200, []uint32{0xAAAAAAAA, 0xBBBBBBBB, 0xCCCCCCCC})).To(Succeed())

			Expect(memory.LoadBytes(0x200, []byte{0x01, 0x00, 0x00, 0x00}, 12)).To(Succeed())

			words, err := memory.ReadWords(0x200, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{1, 0, 0}))
		})

		It("should reject a segment whose zero-filled tail does not fit", func() {
			Expect(memory.WriteWord(0x1000, 7)).To(Succeed())

			err := memory.LoadBytes(0x1000, []byte{1, 2, 3, 4}, 0x40000)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))

			word, _ := memory.ReadWord(0x1000)
			Expect(word).To(Equal(uint32(7)))
		})

		It("should treat a size smaller than the data as the data length", func() {
			Expect(memory.LoadBytes(0x300, []byte{0x78, 0x56, 0x34, 0x12}, 0)).To(Succeed())

			word, _ := memory.ReadWord(0x300)
			Expect(word).To(Equal(uint32(0x12345678)))
		})
	})

	It("should clear all contents", func() {
		Expect(memory.WriteWord(0x10, 5)).To(Succeed())
		memory.Clear()

		word, _ := memory.ReadWord(0x10)
		Expect(word).To(BeZero())
	})
})
