package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddressDecoder", func() {
	makeDecoder := func(
		byteSize uint32,
		m Mapping,
		o Organization,
	) AddressDecoder {
		d, err := NewAddressDecoder(Config{
			ByteSize:     byteSize,
			LineSize:     64,
			Mapping:      m,
			Organization: o,
		})
		Expect(err).NotTo(HaveOccurred())

		return d
	}

	It("should decode direct-mapped unified addresses", func() {
		d := makeDecoder(1024, DirectMapped, Unified)

		Expect(d.OffsetBits).To(Equal(uint32(6)))
		Expect(d.OffsetMask).To(Equal(uint32(0x3f)))
		Expect(d.IndexBits).To(Equal(uint32(4)))
		Expect(d.IndexMask).To(Equal(uint32(0x3c0)))
		Expect(d.TagShift).To(Equal(uint32(10)))

		Expect(d.Decode(0x12345678)).To(Equal(Fields{
			Tag:    0x48d15,
			Index:  9,
			Offset: 0x38,
		}))
	})

	It("should use half of the lines for index bits in a split cache", func() {
		d := makeDecoder(1024, DirectMapped, Split)

		Expect(d.IndexBits).To(Equal(uint32(3)))
		Expect(d.IndexMask).To(Equal(uint32(0x1c0)))
		Expect(d.TagShift).To(Equal(uint32(9)))
	})

	It("should have no index bits with one line per region", func() {
		d := makeDecoder(128, DirectMapped, Split)

		Expect(d.IndexBits).To(BeZero())
		Expect(d.IndexMask).To(BeZero())
		Expect(d.TagShift).To(Equal(uint32(6)))
		Expect(d.Index(0xffffffff)).To(BeZero())
	})

	It("should have no index in a fully-associative cache", func() {
		d := makeDecoder(4096, FullyAssociative, Unified)

		Expect(d.IndexMask).To(BeZero())
		Expect(d.TagShift).To(Equal(uint32(6)))
		Expect(d.Decode(0x12345678)).To(Equal(Fields{
			Tag:    0x12345678 >> 6,
			Index:  0,
			Offset: 0x38,
		}))
	})

	It("should let every access use every line in a unified cache", func() {
		d := makeDecoder(256, FullyAssociative, Unified)

		all := tagging.Region{Begin: 0, End: 4}
		Expect(d.Region(Instruction)).To(Equal(all))
		Expect(d.Region(Data)).To(Equal(all))
	})

	It("should put data low and instructions high in a split cache", func() {
		d := makeDecoder(256, DirectMapped, Split)

		Expect(d.Region(Data)).To(Equal(tagging.Region{Begin: 0, End: 2}))
		Expect(d.Region(Instruction)).
			To(Equal(tagging.Region{Begin: 2, End: 4}))
		Expect(d.regionKindOf(1)).To(Equal(DataRegion))
		Expect(d.regionKindOf(2)).To(Equal(InstructionRegion))
	})

	It("should fail on an invalid configuration", func() {
		_, err := NewAddressDecoder(Config{ByteSize: 96, LineSize: 64})

		Expect(err).To(BeAssignableToTypeOf(&ConfigError{}))
	})
})
