package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"items/pkg/events"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const processTimeout = 30 * time.Second

// EventHandler is a function that processes events
type EventHandler func(ctx context.Context, event *events.Event) error

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
	workers     int
}

type ConsumerConfig struct {
	Exchange       string   // e.g., "items.item"
	QueueName      string   // e.g., "items.mirror.v1"
	RoutingKeys    []string // e.g., ["item.*.v1"]
	ServiceName    string   // consumer tag
	PrefetchCount  int      // 0 = 10
	WorkerPoolSize int      // 0 = 1
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(channel, config); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created successfully",
		zap.String("queue", config.QueueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
	)

	workers := config.WorkerPoolSize
	if workers < 1 {
		workers = 1
	}

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   config.QueueName,
		serviceName: config.ServiceName,
		workers:     workers,
	}, nil
}

// setupTopology declares the exchange, the queue and its dead letter pair, and binds them.
func setupTopology(channel *amqp.Channel, config ConsumerConfig) error {
	prefetchCount := config.PrefetchCount
	if prefetchCount == 0 {
		prefetchCount = 10
	}
	if err := channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareTopicExchange(channel, config.Exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	dlxName := config.Exchange + ".dlx"
	if err := declareTopicExchange(channel, dlxName); err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	queue, err := channel.QueueDeclare(
		config.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": dlxName},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	dlqName := config.QueueName + ".dlq"
	if _, err := channel.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	for _, routingKey := range config.RoutingKeys {
		if err := channel.QueueBind(dlqName, routingKey, dlxName, false, nil); err != nil {
			return fmt.Errorf("failed to bind DLQ: %w", err)
		}
		if err := channel.QueueBind(queue.Name, routingKey, config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes,
// dispatching messages to a fixed pool of workers.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		c.serviceName, // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages",
		zap.String("queue", c.queueName),
		zap.Int("workers", c.workers),
	)

	return c.dispatch(ctx, msgs, handler)
}

// dispatch hands each message to the worker owning its partition key, so
// deliveries sharing a key are handled one at a time in queue order.
func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery, handler EventHandler) error {
	partitions := make([]chan amqp.Delivery, c.workers)

	var wg sync.WaitGroup
	for i := range partitions {
		partitions[i] = make(chan amqp.Delivery)
		wg.Add(1)
		go func(jobs <-chan amqp.Delivery) {
			defer wg.Done()
			for msg := range jobs {
				c.handleMessage(ctx, msg, handler)
			}
		}(partitions[i])
	}

	defer func() {
		for _, jobs := range partitions {
			close(jobs)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Consumer context cancelled, stopping...")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				zap.L().Warn("Message channel closed")
				return fmt.Errorf("message channel closed")
			}

			select {
			case partitions[partitionFor(msg, len(partitions))] <- msg:
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return ctx.Err()
			}
		}
	}
}

func partitionFor(msg amqp.Delivery, n int) int {
	key, _ := msg.Headers[PartitionKeyHeader].(string)
	return int(xxhash.Sum64String(key) % uint64(n))
}

// handleMessage acks on success; malformed or failed events are nacked without requeue so they land in the DLQ.
func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, handler EventHandler) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	correlationID, _ := msg.Headers["x-correlation-id"].(string)
	service, _ := msg.Headers["x-service"].(string)

	zap.L().Info("Received message",
		zap.String("queue", c.queueName),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
		zap.String("correlationId", correlationID),
		zap.String("sourceService", service),
	)

	var event events.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zap.L().Error("Failed to unmarshal event",
			zap.Error(err),
			zap.String("traceId", traceID),
		)
		_ = msg.Nack(false, false)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := handler(processCtx, &event); err != nil {
		zap.L().Error("Failed to process event",
			zap.Error(err),
			zap.String("event", event.Event),
			zap.String("traceId", traceID),
		)
		_ = msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		zap.L().Error("Failed to acknowledge message",
			zap.Error(err),
			zap.String("traceId", traceID),
		)
		return
	}

	zap.L().Info("Successfully processed event",
		zap.String("event", event.Event),
		zap.String("traceId", traceID),
	)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ consumer closed")
	return nil
}
