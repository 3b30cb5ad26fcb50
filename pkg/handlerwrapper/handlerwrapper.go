// Package handlerwrapper adapts typed event handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability/attr"
)

// MetadataTopic names the metadata key that carries the destination topic of
// an outgoing message.
const MetadataTopic = "topic"

// DynamicTopic is the placeholder publish topic of handlers whose messages
// carry their own destination in metadata.
const DynamicTopic = "handlerwrapper.dynamic"

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// HandlerFunc handles one decoded payload and returns the events to publish.
type HandlerFunc[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTransformingTyped decodes the JSON payload into T, runs the handler in a
// span and turns its results into routed watermill messages. Payloads that do
// not decode are logged and acknowledged so they are not redelivered forever.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler HandlerFunc[T],
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))
		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "undecodable payload")
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := eventbus.NewMessage(ctx, r.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range r.Metadata {
				m.Metadata.Set(k, v)
			}
			m.Metadata.Set(MetadataTopic, r.Topic)
			out = append(out, m)
		}
		return out, nil
	}
}

// TopicRouter publishes each message to the topic found in its metadata,
// falling back to the topic the router asked for.
type TopicRouter struct {
	Publisher message.Publisher
}

func (p TopicRouter) Publish(topic string, messages ...*message.Message) error {
	for _, m := range messages {
		dest := m.Metadata.Get(MetadataTopic)
		if dest == "" {
			dest = topic
		}
		if err := p.Publisher.Publish(dest, m); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the underlying bus is owned and closed by the application.
func (p TopicRouter) Close() error { return nil }
