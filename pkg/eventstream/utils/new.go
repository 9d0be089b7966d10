// Package eventstreamutils constructs event publishers from configuration.
package eventstreamutils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/eventstream"
	"github.com/talentlens/semmatch/pkg/eventstream/kafka"
	"github.com/talentlens/semmatch/pkg/eventstream/nop"
)

// NewPublisherOpts selects and configures an event stream provider.
type NewPublisherOpts struct {
	ProviderType string

	// Brokers is a comma-separated Kafka broker list.
	Brokers string
	Topic   string

	Logger *zap.Logger
}

// NewPublisher returns the configured publisher.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "nop", "":
		return nop.NewPublisher(), nil
	case "kafka":
		brokers := strings.Split(o.Brokers, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		return kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   o.Topic,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.ProviderType)
	}
}
