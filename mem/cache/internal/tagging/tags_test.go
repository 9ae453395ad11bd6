package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Region", func() {
	It("should report length and membership", func() {
		r := Region{Begin: 2, End: 4}

		Expect(r.Len()).To(Equal(2))
		Expect(r.Contains(1)).To(BeFalse())
		Expect(r.Contains(2)).To(BeTrue())
		Expect(r.Contains(3)).To(BeTrue())
		Expect(r.Contains(4)).To(BeFalse())
	})
})

var _ = Describe("DirectMappedTags", func() {
	var (
		tags *DirectMappedTags
	)

	BeforeEach(func() {
		tags = NewDirectMappedTags(4)
	})

	It("should start with invalid lines", func() {
		Expect(tags.Blocks).To(HaveLen(4))
		for _, b := range tags.Blocks {
			Expect(b.IsValid).To(BeFalse())
		}
	})

	It("should not hit on an invalid line with a matching tag", func() {
		Expect(tags.Lookup(0, 0)).To(BeFalse())
	})

	It("should hit after fill", func() {
		evicted := tags.Fill(1, 0x10)

		Expect(evicted.IsValid).To(BeFalse())
		Expect(tags.Lookup(1, 0x10)).To(BeTrue())
		Expect(tags.Lookup(1, 0x11)).To(BeFalse())
	})

	It("should return the replaced block", func() {
		tags.Fill(1, 0x10)
		evicted := tags.Fill(1, 0x20)

		Expect(evicted).To(Equal(Block{IsValid: true, Tag: 0x10}))
		Expect(tags.Lookup(1, 0x20)).To(BeTrue())
	})

	It("should reset", func() {
		tags.Fill(1, 0x10)
		tags.Reset()

		Expect(tags.Lookup(1, 0x10)).To(BeFalse())
		Expect(tags.Blocks).To(HaveLen(4))
	})
})

var _ = Describe("AssociativeTags", func() {
	var (
		mockCtrl     *gomock.Controller
		victimFinder *MockVictimFinder
		tags         *AssociativeTags
		all          Region
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		victimFinder = NewMockVictimFinder(mockCtrl)
		tags = NewAssociativeTags(4, victimFinder)
		all = Region{Begin: 0, End: 4}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not find a tag in an empty cache", func() {
		lineID, ok := tags.Lookup(all, 0x10)

		Expect(ok).To(BeFalse())
		Expect(lineID).To(Equal(-1))
	})

	It("should fill the line chosen by the victim finder", func() {
		victimFinder.EXPECT().
			FindVictim(gomock.Len(4)).
			Return(2)

		lineID, evicted := tags.Fill(all, 0x10, 7)

		Expect(lineID).To(Equal(2))
		Expect(evicted.IsValid).To(BeFalse())
		Expect(tags.Blocks[2]).To(Equal(FIFOBlock{
			IsValid:    true,
			Tag:        0x10,
			InsertedAt: 7,
		}))

		found, ok := tags.Lookup(all, 0x10)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(2))
	})

	It("should only look inside the region", func() {
		tags.Blocks[3] = FIFOBlock{IsValid: true, Tag: 0x10}

		_, ok := tags.Lookup(Region{Begin: 0, End: 2}, 0x10)
		Expect(ok).To(BeFalse())

		lineID, ok := tags.Lookup(Region{Begin: 2, End: 4}, 0x10)
		Expect(ok).To(BeTrue())
		Expect(lineID).To(Equal(3))
	})

	It("should offset the victim by the region start", func() {
		victimFinder.EXPECT().
			FindVictim(gomock.Len(2)).
			Return(1)

		lineID, _ := tags.Fill(Region{Begin: 2, End: 4}, 0x10, 0)

		Expect(lineID).To(Equal(3))
	})

	It("should panic if the victim is outside the region", func() {
		victimFinder.EXPECT().
			FindVictim(gomock.Any()).
			Return(2)

		Expect(func() {
			tags.Fill(Region{Begin: 2, End: 4}, 0x10, 0)
		}).To(Panic())
	})
})
