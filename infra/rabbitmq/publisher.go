package rabbitmq

import (
	"context"
	"fmt"
	"items/pkg/events"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// PartitionKeyHeader carries the key consumers use to keep related events in order.
const PartitionKeyHeader = "x-partition-key"

// RabbitMQPublisher implements the events.Publisher interface
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	service string

	mu       sync.Mutex
	declared map[string]bool
}

func NewRabbitMQPublisher(url, service string) (*RabbitMQPublisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	zap.L().Info("RabbitMQ publisher connected successfully")

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		service:  service,
		declared: make(map[string]bool),
	}, nil
}

// DeclareExchange declares a topic exchange once per publisher.
func (p *RabbitMQPublisher) DeclareExchange(exchange string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declared[exchange] {
		return nil
	}
	if err := declareTopicExchange(p.channel, exchange); err != nil {
		return err
	}
	p.declared[exchange] = true
	return nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	if err := p.DeclareExchange(exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	msg, err := newPublishing(event, headers, p.service)
	if err != nil {
		return err
	}

	routingKey := event.GetRoutingKey()

	// A channel per publish keeps confirmations of concurrent requests apart.
	publishCh, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to create publish channel: %w", err)
	}
	defer publishCh.Close()

	if err := publishCh.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable confirms: %w", err)
	}

	confirms := publishCh.NotifyPublish(make(chan amqp.Confirmation, 1))

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := publishCh.PublishWithContext(
		publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout")
	}

	zap.L().Info("Event published successfully",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("event", event.Event),
		zap.String("traceId", headers.TraceID),
	)

	return nil
}

func newPublishing(event *events.Event, headers events.Headers, service string) (amqp.Publishing, error) {
	body, err := event.ToJSON()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to serialize event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        service,
			PartitionKeyHeader: headers.PartitionKey,
		},
	}, nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ publisher closed")
	return nil
}
