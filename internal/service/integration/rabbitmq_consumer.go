package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Erkin33/Platform-sub000/internal/events"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Delivery is the part of an AMQP delivery the relay needs.
type Delivery struct {
	Body []byte
	Ack  func(multiple bool) error
	Nack func(multiple bool, requeue bool) error
}

// EventRelay forwards change events published by other instances into the
// local publisher (normally the in-process broker).
type EventRelay struct {
	channel     *amqp.Channel
	exchange    string
	consumerTag string
	source      string
	target      events.Publisher
	logger      zerolog.Logger
}

func NewEventRelay(channel *amqp.Channel, exchange, consumerTag, source string, target events.Publisher, logger zerolog.Logger) *EventRelay {
	return &EventRelay{
		channel:     channel,
		exchange:    exchange,
		consumerTag: consumerTag,
		source:      source,
		target:      target,
		logger:      logger,
	}
}

// Start binds an exclusive queue to every "social.#" key and relays until ctx is done.
func (r *EventRelay) Start(ctx context.Context) error {
	queue, err := rabbitmq.BindExclusiveQueue(r.channel, r.exchange, "social.#")
	if err != nil {
		return err
	}

	msgs, err := r.channel.Consume(
		queue,         // queue
		r.consumerTag, // consumer
		false,         // auto-ack
		true,          // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	r.logger.Info().
		Str("queue", queue).
		Str("consumer_tag", r.consumerTag).
		Msg("Event relay started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Msg("Stopping event relay")
				if err := r.channel.Cancel(r.consumerTag, false); err != nil {
					r.logger.Error().Err(err).Msg("Failed to cancel consumer")
				}
				return
			case msg, ok := <-msgs:
				if !ok {
					r.logger.Warn().Msg("RabbitMQ message channel closed")
					return
				}
				r.Handle(ctx, Delivery{Body: msg.Body, Ack: msg.Ack, Nack: msg.Nack})
			}
		}
	}()

	return nil
}

// Handle decodes one delivery and forwards it unless this instance produced it.
func (r *EventRelay) Handle(ctx context.Context, d Delivery) {
	var event models.ChangeEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		r.logger.Error().Err(err).Msg("Dropping malformed change event")
		_ = d.Nack(false, false)
		return
	}

	if event.Source == r.source {
		_ = d.Ack(false)
		return
	}

	if err := r.target.Publish(ctx, event); err != nil {
		r.logger.Error().Err(err).Str("id", event.ID).Msg("Failed to relay change event")
	}
	_ = d.Ack(false)
}
