package eventstream

import (
	"time"

	"github.com/talentlens/semmatch/pkg/matcher"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeProfileNormalized is emitted after a profile has been
	// normalized and matched against the occupation catalog.
	EventTypeProfileNormalized = "semmatch.profile.normalized"
)

// ProfileNormalizedEvent is a transport-neutral event payload for a
// normalized profile.
type ProfileNormalizedEvent struct {
	SchemaVersion int                    `json:"schema_version"`
	EventType     string                 `json:"event_type"`
	EventID       string                 `json:"event_id"`
	EmittedAt     time.Time              `json:"emitted_at"`
	ProfileID     string                 `json:"profile_id"`
	Catalog       string                 `json:"catalog"`
	Experiences   []NormalizedExperience `json:"experiences"`
	Stats         NormalizationStats     `json:"stats"`
}

// NormalizedExperience carries one work experience through the pipeline:
// the raw title, the generated description, and its catalog matches.
type NormalizedExperience struct {
	OriginalTitle  string           `json:"original_title"`
	DurationMonths int              `json:"duration_months"`
	Normalized     string           `json:"normalized"`
	FromCache      bool             `json:"from_cache"`
	Matches        []matcher.Result `json:"matches"`
}

// NormalizationStats summarizes how the profile was processed.
type NormalizationStats struct {
	ExperiencesIn int `json:"experiences_in"`
	Filtered      int `json:"filtered"`
	CacheHits     int `json:"cache_hits"`
	Generated     int `json:"generated"`
	Skipped       int `json:"skipped"`
}
