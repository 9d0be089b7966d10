// Package normalizer runs the batch career normalization pipeline: filter
// a profile's work experiences, enrich each surviving experience into a
// clean role description, and match that description against the
// occupation catalog.
//
// The enrichment step is the expensive one, so it sits behind the
// semantic cache: an experience close enough to one already processed
// reuses its generated description instead of calling the model again.
package normalizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/eventstream"
	"github.com/talentlens/semmatch/pkg/matcher"
	"github.com/talentlens/semmatch/pkg/semcache"
	"github.com/talentlens/semmatch/pkg/textgen"
)

// DefaultTopK is how many catalog matches each experience gets.
const DefaultTopK = 3

// DefaultMinMonths is the minimum experience duration worth normalizing.
const DefaultMinMonths = 6

// DefaultNonJobKeywords mark titles that describe education or training
// rather than employment. Matching is case-insensitive substring.
var DefaultNonJobKeywords = []string{
	"studente", "studentessa", "tirocinio", "tirocinante", "stage",
	"stagista", "formazione", "workshop", "tesi", "laureando", "corso",
	"volontario", "student", "intern", "internship", "trainee",
	"training", "thesis", "course", "volunteer",
}

const enrichmentSystemPrompt = "You are an expert in HR semantics."

const enrichmentPromptTemplate = `Your goal is to enrich a job description for semantic matching against an occupation catalog.

INPUT:
Title: %s
Description: %s

INSTRUCTIONS:
Write a single fluent paragraph (at most 100 words) describing the role. Return only the paragraph, no preamble.`

// Experience is one raw work experience from a profile.
type Experience struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	DurationMonths int    `json:"duration_months"`
}

// Profile is one candidate profile to normalize.
type Profile struct {
	ID          string       `json:"profile_id"`
	Experiences []Experience `json:"experiences"`
}

// Config holds normalization pipeline options.
type Config struct {
	// TopK is how many catalog matches to attach per experience.
	// Defaults to DefaultTopK.
	TopK int

	// MinMonths drops experiences shorter than this. Defaults to
	// DefaultMinMonths. Negative disables the duration filter.
	MinMonths int

	// NonJobKeywords overrides DefaultNonJobKeywords when non-nil.
	NonJobKeywords []string
}

// Normalizer wires the cache, generator, matcher and publisher into one
// pipeline.
type Normalizer struct {
	cache     *semcache.Cache
	generator textgen.Generator
	matcher   *matcher.Matcher
	publisher eventstream.Publisher
	logger    *zap.Logger

	topK      int
	minMonths int
	keywords  []string
}

// New creates a normalizer. All collaborators are required except the
// publisher, which defaults to none; pass a nop publisher to make the
// wiring explicit.
func New(cfg Config, cache *semcache.Cache, generator textgen.Generator, m *matcher.Matcher, publisher eventstream.Publisher, logger *zap.Logger) *Normalizer {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minMonths := cfg.MinMonths
	if minMonths == 0 {
		minMonths = DefaultMinMonths
	}
	keywords := cfg.NonJobKeywords
	if keywords == nil {
		keywords = DefaultNonJobKeywords
	}

	return &Normalizer{
		cache:     cache,
		generator: generator,
		matcher:   m,
		publisher: publisher,
		logger:    logger,
		topK:      topK,
		minMonths: minMonths,
		keywords:  keywords,
	}
}

// NormalizeProfile runs the full pipeline for one profile and publishes
// the resulting event. A profile where every experience is filtered or
// skipped still produces an event with an empty experience list.
func (n *Normalizer) NormalizeProfile(ctx context.Context, profile Profile) (*eventstream.ProfileNormalizedEvent, error) {
	valid := n.filterExperiences(profile.Experiences)

	event := &eventstream.ProfileNormalizedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeProfileNormalized,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		ProfileID:     profile.ID,
		Catalog:       n.matcher.Catalog().Name(),
		Experiences:   []eventstream.NormalizedExperience{},
		Stats: eventstream.NormalizationStats{
			ExperiencesIn: len(profile.Experiences),
			Filtered:      len(profile.Experiences) - len(valid),
		},
	}

	for _, exp := range valid {
		normalized, err := n.normalizeExperience(ctx, exp, &event.Stats)
		if err != nil {
			// The rest of the profile is still worth processing.
			n.logger.Warn("experience skipped",
				zap.String("profile", profile.ID),
				zap.String("title", exp.Title),
				zap.Error(err),
			)
			event.Stats.Skipped++
			continue
		}
		event.Experiences = append(event.Experiences, *normalized)
	}

	if n.publisher != nil {
		if err := n.publisher.PublishProfile(ctx, event); err != nil {
			return nil, fmt.Errorf("publishing profile %s: %w", profile.ID, err)
		}
	}

	n.logger.Info("profile normalized",
		zap.String("profile", profile.ID),
		zap.Int("experiences_in", event.Stats.ExperiencesIn),
		zap.Int("normalized", len(event.Experiences)),
		zap.Int("cache_hits", event.Stats.CacheHits),
	)

	return event, nil
}

// filterExperiences drops experiences with empty or non-job titles and
// those shorter than the minimum duration.
func (n *Normalizer) filterExperiences(experiences []Experience) []Experience {
	valid := make([]Experience, 0, len(experiences))
	for _, exp := range experiences {
		title := strings.TrimSpace(exp.Title)
		if title == "" || n.isNonJob(title) {
			continue
		}
		if n.minMonths > 0 && exp.DurationMonths < n.minMonths {
			continue
		}
		valid = append(valid, exp)
	}
	return valid
}

func (n *Normalizer) isNonJob(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range n.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// normalizeExperience enriches one experience and matches it against the
// catalog, going through the semantic cache.
func (n *Normalizer) normalizeExperience(ctx context.Context, exp Experience, stats *eventstream.NormalizationStats) (*eventstream.NormalizedExperience, error) {
	prompt := fmt.Sprintf(enrichmentPromptTemplate, exp.Title, exp.Description)

	hit, queryVec, err := n.cache.Lookup(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	var enriched string
	fromCache := hit != nil
	if fromCache {
		enriched = hit.Output
		stats.CacheHits++
	} else {
		enriched, err = n.generator.Generate(ctx, prompt, enrichmentSystemPrompt)
		if err != nil {
			return nil, fmt.Errorf("generating enrichment: %w", err)
		}
		stats.Generated++
		if err := n.cache.Insert(prompt, enriched, queryVec); err != nil {
			// A cache write failure costs a future generation call, nothing
			// more.
			n.logger.Warn("cache insert failed", zap.Error(err))
		}
	}

	matches, err := n.matcher.Match(ctx, enriched, n.topK)
	if err != nil {
		return nil, fmt.Errorf("matching enriched text: %w", err)
	}

	return &eventstream.NormalizedExperience{
		OriginalTitle:  exp.Title,
		DurationMonths: exp.DurationMonths,
		Normalized:     enriched,
		FromCache:      fromCache,
		Matches:        matches,
	}, nil
}

// Close flushes the semantic cache.
func (n *Normalizer) Close() error {
	return n.cache.Close()
}
