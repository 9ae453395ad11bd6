package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/sarchlab/cachesim/mem/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeController struct {
	paused bool
}

func (c *fakeController) Pause() {
	c.paused = true
}

func (c *fakeController) Continue() {
	c.paused = false
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *cache.Engine
		router http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		engine = cache.MakeBuilder().WithByteSize(128).Build("L1")
		m.RegisterTarget(engine)
		router = m.Router()
	})

	It("should ignore privileged port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should list caches", func() {
		rec := get("/api/list_caches")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["L1"]`))
	})

	It("should report null hit rate before any access", func() {
		rec := get("/api/stats/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := map[string]any{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp["accesses"]).To(BeEquivalentTo(0))
		Expect(rsp).To(HaveKeyWithValue("hit_rate", BeNil()))
	})

	It("should report statistics", func() {
		engine.Access(cache.Access{Address: 0x00, Kind: cache.Data})
		engine.Access(cache.Access{Address: 0x00, Kind: cache.Data})

		rec := get("/api/stats/L1")

		rsp := map[string]any{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp["accesses"]).To(BeEquivalentTo(2))
		Expect(rsp["hits"]).To(BeEquivalentTo(1))
		Expect(rsp["misses"]).To(BeEquivalentTo(1))
		Expect(rsp["data_hits"]).To(BeEquivalentTo(1))
		Expect(rsp["hit_rate"]).To(BeNumerically("~", 0.5))
	})

	It("should return 404 for unknown caches", func() {
		Expect(get("/api/stats/L2").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/cache/L2").Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize a cache", func() {
		engine.Access(cache.Access{Address: 0x40, Kind: cache.Data})

		rec := get("/api/cache/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should take snapshots of a cache", func() {
		engine.Access(cache.Access{Address: 0x40, Kind: cache.Data})

		s := snapshotOf(engine)

		Expect(s.Name).To(Equal("L1"))
		Expect(s.Stats.Accesses).To(Equal(uint64(1)))
		Expect(s.Lines).To(HaveLen(2))
		Expect(s.Lines[1].IsValid).To(BeTrue())
	})

	It("should pause and continue", func() {
		c := &fakeController{}
		m.RegisterController(c)

		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(c.paused).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(c.paused).To(BeFalse())
	})

	It("should refuse to pause without a controller", func() {
		Expect(get("/api/pause").Code).
			To(Equal(http.StatusServiceUnavailable))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Trace", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		rec := get("/api/progress")

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Trace"))
		Expect(bars[0]["total"]).To(BeEquivalentTo(10))
		Expect(bars[0]["finished"]).To(BeEquivalentTo(2))
		Expect(bars[0]["in_progress"]).To(BeEquivalentTo(1))

		m.CompleteProgressBar(bar)

		Expect(get("/api/progress").Body.String()).To(MatchJSON(`[]`))
	})

	It("should report resources", func() {
		rec := get("/api/resource")

		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})
})
