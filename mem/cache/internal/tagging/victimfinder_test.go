package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FIFOVictimFinder", func() {
	var (
		finder *FIFOVictimFinder
	)

	BeforeEach(func() {
		finder = NewFIFOVictimFinder()
	})

	It("should pick the first block when all are invalid", func() {
		blocks := make([]FIFOBlock, 4)

		Expect(finder.FindVictim(blocks)).To(Equal(0))
	})

	It("should pick the first invalid block", func() {
		blocks := []FIFOBlock{
			{IsValid: true, Tag: 1, InsertedAt: 0},
			{IsValid: true, Tag: 2, InsertedAt: 1},
			{IsValid: false},
			{IsValid: false},
		}

		Expect(finder.FindVictim(blocks)).To(Equal(2))
	})

	It("should prefer an invalid block over an older valid one", func() {
		blocks := []FIFOBlock{
			{IsValid: true, Tag: 1, InsertedAt: 5},
			{IsValid: true, Tag: 2, InsertedAt: 1},
			{IsValid: false},
		}

		Expect(finder.FindVictim(blocks)).To(Equal(2))
	})

	It("should pick the oldest block when all are valid", func() {
		blocks := []FIFOBlock{
			{IsValid: true, Tag: 1, InsertedAt: 4},
			{IsValid: true, Tag: 2, InsertedAt: 2},
			{IsValid: true, Tag: 3, InsertedAt: 9},
			{IsValid: true, Tag: 4, InsertedAt: 3},
		}

		Expect(finder.FindVictim(blocks)).To(Equal(1))
	})

	It("should break ties by position", func() {
		blocks := []FIFOBlock{
			{IsValid: true, Tag: 1, InsertedAt: 3},
			{IsValid: true, Tag: 2, InsertedAt: 1},
			{IsValid: true, Tag: 3, InsertedAt: 1},
		}

		Expect(finder.FindVictim(blocks)).To(Equal(1))
	})
})
