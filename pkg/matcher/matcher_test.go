package matcher_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
	"github.com/talentlens/semmatch/pkg/matcher"
	testutils "github.com/talentlens/semmatch/pkg/utils/test"
	"github.com/talentlens/semmatch/pkg/vector"
)

func TestMatcher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Matcher Suite")
}

var _ = Describe("Matcher", func() {
	var (
		embedder *testutils.MockEmbedder
		logger   *zap.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		logger = zap.NewNop()
		ctx = context.Background()
	})

	threeItemCatalog := func() *catalog.Catalog {
		embedder.Embeddings["alpha text"] = []float32{1, 0, 0}
		embedder.Embeddings["beta text"] = []float32{0, 1, 0}
		embedder.Embeddings["gamma text"] = []float32{0, 0, 1}
		return catalog.New("occupations", []catalog.Item{
			{ID: "a", Title: "Alpha", Text: "alpha text"},
			{ID: "b", Title: "Beta", Text: "beta text", Metadata: map[string]any{"group": "2"}},
			{ID: "c", Title: "Gamma", Text: "gamma text"},
		})
	}

	Describe("New", func() {
		It("builds the index eagerly with one batch call", func() {
			_, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(embedder.Calls).To(Equal(1))
		})

		It("fails at construction when embedding fails", func() {
			embedder.FailOn = "beta text"
			_, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).To(HaveOccurred())
		})

		It("accepts an empty catalog", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, catalog.New("empty", nil), logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).NotTo(BeNil())
		})

		It("fails at construction when the index factory fails", func() {
			cfg := matcher.Config{
				IndexFactory: func() (vector.Driver, error) {
					return nil, errors.New("store unreachable")
				},
			}
			_, err := matcher.New(ctx, cfg, embedder, threeItemCatalog(), logger)
			Expect(err).To(MatchError(ContainSubstring("store unreachable")))
		})
	})

	Describe("Match", func() {
		It("returns the closest item first", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["query"] = []float32{0.1, 0.9, 0}
			results, err := m.Match(ctx, "query", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("b"))
			Expect(results[0].Title).To(Equal("Beta"))
			Expect(results[0].Metadata).To(HaveKeyWithValue("group", "2"))
		})

		It("formats similarity to four decimals", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["query"] = []float32{1, 0, 0}
			results, err := m.Match(ctx, "query", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Similarity).To(Equal("1.0000"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-4))
		})

		It("saturates k at the catalog size", func() {
			embedder.Embeddings["one"] = []float32{1, 0}
			embedder.Embeddings["two"] = []float32{0, 1}
			cat := catalog.New("small", []catalog.Item{
				{ID: "1", Title: "One", Text: "one"},
				{ID: "2", Title: "Two", Text: "two"},
			})

			m, err := matcher.New(ctx, matcher.Config{}, embedder, cat, logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["query"] = []float32{1, 1}
			results, err := m.Match(ctx, "query", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("returns an empty sequence for an empty catalog", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, catalog.New("empty", nil), logger)
			Expect(err).NotTo(HaveOccurred())

			results, err := m.Match(ctx, "anything", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("returns identical results for repeated queries", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["query"] = []float32{0.5, 0.5, 0.1}
			first, err := m.Match(ctx, "query", 3)
			Expect(err).NotTo(HaveOccurred())
			second, err := m.Match(ctx, "query", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("surfaces query embedding failures", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.FailOn = "bad query"
			_, err = m.Match(ctx, "bad query", 3)
			Expect(err).To(HaveOccurred())
		})

		It("refuses to match after Close", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Close()).To(Succeed())

			embedder.Embeddings["query"] = []float32{1, 0, 0}
			_, err = m.Match(ctx, "query", 1)
			Expect(err).To(MatchError(matcher.ErrClosed))
		})
	})

	Describe("Rebuild", func() {
		It("serves the new catalog after a swap", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["delta text"] = []float32{1, 1, 0}
			next := catalog.New("occupations", []catalog.Item{
				{ID: "d", Title: "Delta", Text: "delta text"},
			})
			Expect(m.Rebuild(ctx, next)).To(Succeed())

			embedder.Embeddings["query"] = []float32{1, 1, 0}
			results, err := m.Match(ctx, "query", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("d"))
		})

		It("keeps the previous index when the rebuild fails", func() {
			m, err := matcher.New(ctx, matcher.Config{}, embedder, threeItemCatalog(), logger)
			Expect(err).NotTo(HaveOccurred())

			embedder.FailOn = "broken text"
			bad := catalog.New("occupations", []catalog.Item{
				{ID: "x", Title: "X", Text: "broken text"},
			})
			Expect(m.Rebuild(ctx, bad)).NotTo(Succeed())

			embedder.Embeddings["query"] = []float32{1, 0, 0}
			results, err := m.Match(ctx, "query", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("a"))
		})
	})
})
