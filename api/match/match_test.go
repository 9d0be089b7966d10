package match_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	apimatch "github.com/talentlens/semmatch/api/match"
	"github.com/talentlens/semmatch/pkg/catalog"
	"github.com/talentlens/semmatch/pkg/matcher"
	testutils "github.com/talentlens/semmatch/pkg/utils/test"
)

func TestMatch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Match Suite")
}

var _ = Describe("Match", func() {
	var (
		embedder *testutils.MockEmbedder
		m        *matcher.Matcher
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["welding text"] = []float32{1, 0, 0}
		embedder.Embeddings["baking text"] = []float32{0, 1, 0}

		cat := catalog.New("occupations", []catalog.Item{
			{ID: "w", Title: "Welder", Text: "welding text"},
			{ID: "b", Title: "Baker", Text: "baking text"},
		})

		var err error
		m, err = matcher.New(ctx, matcher.Config{}, embedder, cat, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("ranks results by similarity", func() {
		embedder.Embeddings["metal fabrication"] = []float32{0.9, 0.1, 0}

		output, err := apimatch.Match(ctx, "metal fabrication", 2, m, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Query).To(Equal("metal fabrication"))
		Expect(output.Catalog).To(Equal("occupations"))
		Expect(output.Count).To(Equal(2))
		Expect(output.Results[0].ID).To(Equal("w"))
		Expect(output.Results[1].ID).To(Equal("b"))
	})

	It("defaults topK when non-positive", func() {
		output, err := apimatch.Match(ctx, "anything", 0, m, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		// Catalog is smaller than the default, so everything comes back.
		Expect(output.Count).To(Equal(2))
	})

	It("propagates embedding failures", func() {
		embedder.FailOn = "broken"

		output, err := apimatch.Match(ctx, "broken", 2, m, zap.NewNop())
		Expect(err).To(HaveOccurred())
		Expect(output).To(BeNil())
	})
})
