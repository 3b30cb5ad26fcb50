// Package eventbus connects the modules to NATS JetStream through watermill.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/escrowhub/api/pkg/observability/attr"
)

// EventBus publishes domain events and hands out subscribers per consumer
// group, so every module receives its own copy of each event.
type EventBus interface {
	message.Publisher
	Subscriber(group string) (message.Subscriber, error)
}

// StreamConfig describes a JetStream stream owned by one domain prefix.
type StreamConfig struct {
	Name     string
	Subjects []string
}

// DefaultStreams covers every subject the application publishes.
var DefaultStreams = []StreamConfig{
	{Name: "marketplace", Subjects: []string{"marketplace.>"}},
	{Name: "trustscore", Subjects: []string{"trustscore.>"}},
	{Name: "achievement", Subjects: []string{"achievement.>"}},
	{Name: "referral", Subjects: []string{"referral.>"}},
}

type natsEventBus struct {
	url       string
	conn      *nc.Conn
	js        jetstream.JetStream
	publisher *wmnats.Publisher
	logger    *slog.Logger
	wmLogger  watermill.LoggerAdapter

	mu          sync.Mutex
	subscribers []*wmnats.Subscriber
}

// NewNATSEventBus connects to NATS, provisions streams and builds the
// JetStream publisher.
func NewNATSEventBus(ctx context.Context, natsURL string, streams []StreamConfig, logger *slog.Logger) (EventBus, error) {
	conn, err := nc.Connect(natsURL,
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2*time.Second),
		nc.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	if err := EnsureStreams(ctx, js, streams, logger); err != nil {
		conn.Close()
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:               natsURL,
		Marshaler:         &wmnats.NATSMarshaler{},
		SubjectCalculator: wmnats.DefaultSubjectCalculator,
		NatsOptions: []nc.Option{
			nc.RetryOnFailedConnect(true),
		},
		JetStream: wmnats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
		},
	}, wmLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	return &natsEventBus{
		url:       natsURL,
		conn:      conn,
		js:        js,
		publisher: publisher,
		logger:    logger,
		wmLogger:  wmLogger,
	}, nil
}

// EnsureStreams creates the missing streams and leaves existing ones alone.
func EnsureStreams(ctx context.Context, js jetstream.JetStream, streams []StreamConfig, logger *slog.Logger) error {
	for _, s := range streams {
		_, err := js.Stream(ctx, s.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, jetstream.ErrStreamNotFound) {
			return fmt.Errorf("failed to check stream %s: %w", s.Name, err)
		}
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      s.Name,
			Subjects:  s.Subjects,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    7 * 24 * time.Hour,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", s.Name, err)
		}
		logger.Info("Created JetStream stream", attr.String("stream", s.Name))
	}
	return nil
}

func (b *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

// Subscriber returns a durable JetStream subscriber for one consumer group.
func (b *natsEventBus) Subscriber(group string) (message.Subscriber, error) {
	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:               b.url,
		QueueGroupPrefix:  group,
		SubscribersCount:  2,
		AckWaitTimeout:    30 * time.Second,
		CloseTimeout:      10 * time.Second,
		Unmarshaler:       &wmnats.NATSMarshaler{},
		SubjectCalculator: wmnats.DefaultSubjectCalculator,
		NatsOptions: []nc.Option{
			nc.RetryOnFailedConnect(true),
		},
		JetStream: wmnats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			DurablePrefix: group,
			DurableCalculator: func(prefix, topic string) string {
				return DurableName(prefix, topic)
			},
			SubscribeOptions: []nc.SubOpt{
				nc.DeliverNew(),
				nc.AckExplicit(),
			},
		},
	}, b.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriber for %s: %w", group, err)
	}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *natsEventBus) Close() error {
	var errs []error
	b.mu.Lock()
	for _, s := range b.subscribers {
		errs = append(errs, s.Close())
	}
	b.subscribers = nil
	b.mu.Unlock()

	errs = append(errs, b.publisher.Close())
	b.conn.Close()
	return errors.Join(errs...)
}

// DurableName builds a JetStream durable consumer name. Durable names may not
// contain dots or wildcards.
func DurableName(prefix, topic string) string {
	name := strings.NewReplacer(".", "_", "*", "any", ">", "all").Replace(topic)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// NewMessage encodes payload as JSON and stamps the correlation id of ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	correlationID := attr.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewShortUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	return msg, nil
}

// PublishEvent encodes and publishes a single event.
func PublishEvent(ctx context.Context, pub message.Publisher, topic string, payload any) error {
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}
