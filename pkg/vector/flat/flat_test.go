package flat_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/vector"
	"github.com/talentlens/semmatch/pkg/vector/flat"
)

func TestFlat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Flat Index Suite")
}

var _ = Describe("Driver", func() {
	var (
		driver *flat.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = flat.New(zap.NewNop())
		ctx = context.Background()
	})

	Describe("Interface compliance", func() {
		It("implements vector.Driver", func() {
			var _ vector.Driver = (*flat.Driver)(nil)
		})
	})

	Describe("Add", func() {
		It("does nothing for empty input", func() {
			Expect(driver.Add(ctx, nil)).To(Succeed())
			Expect(driver.Len()).To(Equal(0))
		})

		It("fixes the dimension from the first document", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{1, 0, 0}},
			})).To(Succeed())
			Expect(driver.Dimension()).To(Equal(3))

			err := driver.Add(ctx, []vector.Document{
				{ID: "b", Embedding: []float32{1, 0}},
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("rejects empty embeddings", func() {
			err := driver.Add(ctx, []vector.Document{{ID: "a"}})
			Expect(err).To(MatchError(vector.ErrEmbedding))
		})

		It("updates an existing ID in place, keeping its position", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{1, 0}},
				{ID: "b", Embedding: []float32{0, 1}},
			})).To(Succeed())

			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{0, 1}},
			})).To(Succeed())

			Expect(driver.Len()).To(Equal(2))
			docs, err := driver.Get(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Position).To(Equal(0))
		})
	})

	Describe("Query", func() {
		It("returns empty results on an empty index", func() {
			results, err := driver.Query(ctx, []float32{1, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("ranks the closest document first", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Position: 0, Embedding: []float32{1, 0, 0}},
				{ID: "b", Position: 1, Embedding: []float32{0.9, 0.1, 0}},
				{ID: "c", Position: 2, Embedding: []float32{0, 0, 1}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))
		})

		It("is invariant to vector magnitude", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "small", Embedding: []float32{0.001, 0}},
				{ID: "big", Embedding: []float32{0, 1000}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{5, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("small"))
		})

		It("saturates k at the index size", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{1, 0}},
				{ID: "b", Embedding: []float32{0, 1}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 1}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("caps a non-positive k at the driver default", func() {
			docs := make([]vector.Document, vector.DefaultQueryK+2)
			for i := range docs {
				docs[i] = vector.Document{
					ID:        string(rune('a' + i)),
					Position:  i,
					Embedding: []float32{1, float32(i)},
				}
			}
			Expect(driver.Add(ctx, docs)).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(vector.DefaultQueryK))
		})

		It("breaks ties by insertion order", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "first", Embedding: []float32{1, 0}},
				{ID: "second", Embedding: []float32{1, 0}},
				{ID: "third", Embedding: []float32{1, 0}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("first"))
			Expect(results[1].ID).To(Equal("second"))
			Expect(results[2].ID).To(Equal("third"))
		})

		It("returns identical ordering and scores across repeated queries", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{0.3, 0.7}},
				{ID: "b", Embedding: []float32{0.7, 0.3}},
				{ID: "c", Embedding: []float32{0.5, 0.5}},
			})).To(Succeed())

			first, err := driver.Query(ctx, []float32{0.6, 0.4}, 3)
			Expect(err).NotTo(HaveOccurred())
			second, err := driver.Query(ctx, []float32{0.6, 0.4}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("rejects a query with the wrong dimension", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{1, 0, 0}},
			})).To(Succeed())

			_, err := driver.Query(ctx, []float32{1, 0}, 1)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Delete", func() {
		It("removes documents and reindexes the remainder", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Embedding: []float32{1, 0}},
				{ID: "b", Embedding: []float32{0, 1}},
				{ID: "c", Embedding: []float32{1, 1}},
			})).To(Succeed())

			Expect(driver.Delete(ctx, []string{"b"})).To(Succeed())
			Expect(driver.Len()).To(Equal(2))

			docs, err := driver.Get(ctx, []string{"c"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
		})
	})
})

var _ = Describe("Normalize", func() {
	It("scales to unit norm", func() {
		v := flat.Normalize([]float32{3, 4})
		Expect(v[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(v[1]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("leaves the zero vector unchanged", func() {
		Expect(flat.Normalize([]float32{0, 0})).To(Equal([]float32{0, 0}))
	})
})

var _ = Describe("Cosine", func() {
	It("computes similarity between vectors", func() {
		s, err := flat.Cosine([]float32{1, 0}, []float32{1, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNumerically("~", 1.0, 1e-9))

		s, err = flat.Cosine([]float32{1, 0}, []float32{0, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNumerically("~", 0.0, 1e-9))
	})

	It("errors on mismatched lengths", func() {
		_, err := flat.Cosine([]float32{1}, []float32{1, 0})
		Expect(err).To(HaveOccurred())
	})
})
