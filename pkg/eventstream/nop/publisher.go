package nop

import (
	"context"

	"github.com/talentlens/semmatch/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishProfile validates input and otherwise does nothing.
func (p *Publisher) PublishProfile(_ context.Context, event *eventstream.ProfileNormalizedEvent) error {
	if event == nil {
		return eventstream.ErrNilProfileEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
