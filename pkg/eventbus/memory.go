package eventbus

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type memoryEventBus struct {
	*gochannel.GoChannel
}

// NewInMemoryEventBus returns a bus backed by watermill's gochannel pub/sub.
// Every subscriber receives every message, which matches one consumer group
// per module. Used by tests and by single-process tooling.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		GoChannel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, watermill.NewSlogLogger(logger)),
	}
}

func (b *memoryEventBus) Subscriber(string) (message.Subscriber, error) {
	return b.GoChannel, nil
}
