package normalizer_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
	"github.com/talentlens/semmatch/pkg/eventstream"
	"github.com/talentlens/semmatch/pkg/matcher"
	"github.com/talentlens/semmatch/pkg/normalizer"
	"github.com/talentlens/semmatch/pkg/semcache"
	testutils "github.com/talentlens/semmatch/pkg/utils/test"
)

func TestNormalizer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Normalizer Suite")
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []*eventstream.ProfileNormalizedEvent
	err    error
}

func (p *capturePublisher) PublishProfile(_ context.Context, event *eventstream.ProfileNormalizedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

var _ = Describe("Normalizer", func() {
	var (
		embedder  *testutils.MockEmbedder
		generator *testutils.MockGenerator
		publisher *capturePublisher
		cache     *semcache.Cache
		m         *matcher.Matcher
		logger    *zap.Logger
		ctx       context.Context
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		generator = testutils.NewMockGenerator()
		publisher = &capturePublisher{}
		logger = zap.NewNop()
		ctx = context.Background()

		embedder.Embeddings["plumbing work"] = []float32{1, 0, 0}
		embedder.Embeddings["baking work"] = []float32{0, 1, 0}
		embedder.Embeddings["generated text"] = []float32{0.9, 0.1, 0}
		cat := catalog.New("occupations", []catalog.Item{
			{ID: "p", Title: "Plumber", Text: "plumbing work"},
			{ID: "b", Title: "Baker", Text: "baking work"},
		})

		var err error
		m, err = matcher.New(ctx, matcher.Config{}, embedder, cat, logger)
		Expect(err).NotTo(HaveOccurred())

		cache, err = semcache.New(semcache.Config{}, embedder, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	newNormalizer := func(cfg normalizer.Config) *normalizer.Normalizer {
		return normalizer.New(cfg, cache, generator, m, publisher, logger)
	}

	It("filters short, non-job and untitled experiences", func() {
		n := newNormalizer(normalizer.Config{})

		event, err := n.NormalizeProfile(ctx, normalizer.Profile{
			ID: "profile-1",
			Experiences: []normalizer.Experience{
				{Title: "Plumber", DurationMonths: 3},
				{Title: "Internship at a bakery", DurationMonths: 24},
				{Title: "   ", DurationMonths: 24},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(event.Experiences).To(BeEmpty())
		Expect(event.Stats.Filtered).To(Equal(3))
		Expect(generator.Calls).To(BeZero())
	})

	It("enriches a valid experience and attaches catalog matches", func() {
		n := newNormalizer(normalizer.Config{})

		event, err := n.NormalizeProfile(ctx, normalizer.Profile{
			ID: "profile-1",
			Experiences: []normalizer.Experience{
				{Title: "Pipe fitter", Description: "installed pipes", DurationMonths: 24},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(event.Experiences).To(HaveLen(1))

		exp := event.Experiences[0]
		Expect(exp.OriginalTitle).To(Equal("Pipe fitter"))
		Expect(exp.DurationMonths).To(Equal(24))
		Expect(exp.Normalized).To(Equal("generated text"))
		Expect(exp.FromCache).To(BeFalse())
		Expect(exp.Matches).To(HaveLen(2))
		Expect(exp.Matches[0].Title).To(Equal("Plumber"))
		Expect(event.Stats.Generated).To(Equal(1))
	})

	It("reuses the cached enrichment for a similar experience", func() {
		n := newNormalizer(normalizer.Config{})

		exp := normalizer.Experience{Title: "Pipe fitter", DurationMonths: 24}
		_, err := n.NormalizeProfile(ctx, normalizer.Profile{ID: "first", Experiences: []normalizer.Experience{exp}})
		Expect(err).NotTo(HaveOccurred())

		event, err := n.NormalizeProfile(ctx, normalizer.Profile{ID: "second", Experiences: []normalizer.Experience{exp}})
		Expect(err).NotTo(HaveOccurred())
		Expect(generator.Calls).To(Equal(1))
		Expect(event.Experiences).To(HaveLen(1))
		Expect(event.Experiences[0].FromCache).To(BeTrue())
		Expect(event.Stats.CacheHits).To(Equal(1))
	})

	It("skips an experience when generation fails and keeps the profile", func() {
		generator.FailOn = "Broken Role"
		n := newNormalizer(normalizer.Config{})

		event, err := n.NormalizeProfile(ctx, normalizer.Profile{
			ID: "profile-1",
			Experiences: []normalizer.Experience{
				{Title: "Broken Role", DurationMonths: 24},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(event.Experiences).To(BeEmpty())
		Expect(event.Stats.Skipped).To(Equal(1))
	})

	It("publishes an event per profile", func() {
		n := newNormalizer(normalizer.Config{})

		_, err := n.NormalizeProfile(ctx, normalizer.Profile{ID: "profile-1"})
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.events).To(HaveLen(1))
		event := publisher.events[0]
		Expect(event.EventType).To(Equal(eventstream.EventTypeProfileNormalized))
		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.ProfileID).To(Equal("profile-1"))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.Catalog).To(Equal("occupations"))
	})

	It("surfaces publish failures", func() {
		publisher.err = errors.New("broker down")
		n := newNormalizer(normalizer.Config{})

		_, err := n.NormalizeProfile(ctx, normalizer.Profile{ID: "profile-1"})
		Expect(err).To(HaveOccurred())
	})

	It("respects a disabled duration filter", func() {
		n := newNormalizer(normalizer.Config{MinMonths: -1})

		event, err := n.NormalizeProfile(ctx, normalizer.Profile{
			ID: "profile-1",
			Experiences: []normalizer.Experience{
				{Title: "Pipe fitter", DurationMonths: 1},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(event.Experiences).To(HaveLen(1))
	})
})
