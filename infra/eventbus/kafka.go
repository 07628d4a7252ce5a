package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/eventbus"
)

// envelope wraps an event for the wire so consumers can pick the payload
// type before decoding it.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// KafkaBus dispatches to in-process subscribers like MemoryBus and mirrors
// every published event to a Kafka topic named <prefix>.<event type>, so
// external consumers (notification workers, audit pipelines) see the same
// stream. Local delivery is never blocked by a Kafka outage; a failed write
// is logged and dropped.
type KafkaBus struct {
	local  *MemoryBus
	writer *kafka.Writer
	prefix string
	logger *slog.Logger
}

// NewKafkaBus creates a Kafka-mirroring bus from config. Brokers is a
// comma-separated list.
func NewKafkaBus(cnf *config.Kafka, logger *slog.Logger) (*KafkaBus, error) {
	brokers := parseBrokers(cnf.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka bus: brokers are required")
	}
	prefix := strings.TrimSpace(cnf.TopicPrefix)
	if prefix == "" {
		prefix = "digibank.events"
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
	}
	if cnf.SASLUsername != "" || cnf.SASLPassword != "" {
		if cnf.SASLUsername == "" || cnf.SASLPassword == "" {
			return nil, fmt.Errorf("kafka bus: sasl username and password are required together")
		}
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cnf.SASLUsername, Password: cnf.SASLPassword},
		}
	}

	return &KafkaBus{
		local:  NewMemoryBus(logger),
		writer: writer,
		prefix: prefix,
		logger: logger.With("bus", "kafka"),
	}, nil
}

// Subscribe registers an in-process handler for an event type.
func (b *KafkaBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.local.Subscribe(eventType, handler)
}

// Publish delivers the event locally, then mirrors it to Kafka.
func (b *KafkaBus) Publish(ctx context.Context, event eventbus.Event) error {
	if err := b.local.Publish(ctx, event); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("marshal event for mirror", "type", event.Type(), "error", err)
		return nil
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: payload, At: time.Now()})
	if err != nil {
		b.logger.Error("marshal envelope for mirror", "type", event.Type(), "error", err)
		return nil
	}

	msg := kafka.Message{
		Topic: fmt.Sprintf("%s.%s", b.prefix, strings.ToLower(event.Type())),
		Key:   []byte(event.Type()),
		Value: env,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		b.logger.Error("mirror event to kafka", "type", event.Type(), "error", err)
	}
	return nil
}

// Close releases the writer's network resources.
func (b *KafkaBus) Close() error {
	return b.writer.Close()
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaBus)(nil)
