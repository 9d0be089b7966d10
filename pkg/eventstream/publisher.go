package eventstream

import "context"

// Publisher publishes profile events to an event stream backend.
type Publisher interface {
	PublishProfile(ctx context.Context, event *ProfileNormalizedEvent) error
	Close() error
}
