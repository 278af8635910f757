package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"rateio/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures          = 5
	openTimeout          = 30 * time.Second
	maxBackoff           = 30 * time.Second
	maxReconnectAttempts = 5
	publishTimeout       = 5 * time.Second
	dialTimeout          = 2 * time.Second
	heartbeat            = 10 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client publishes and consumes ledger events on a durable direct
// exchange. Publishing is guarded by a circuit breaker so a broker outage
// fails fast instead of stalling writers.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn, c.channel = conn, channel
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// openChannel returns the open channel, dialing at most once when the
// connection has dropped. The publish path relies on it to fail fast.
func (c *Client) openChannel(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "AMQP connection established", "exchange", c.exchangeName, "queue", c.queueName)
	return c.channel, nil
}

// reconnect retries openChannel with exponential backoff. The lock is only
// held during each dial, never while waiting.
func (c *Client) reconnect(ctx context.Context) (*amqp091.Channel, error) {
	var err error
	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		if attempt > 0 {
			wait := exponentialBackoff(attempt - 1)
			c.logger.WarnContext(ctx, "Reconnecting to AMQP", "attempt", attempt, "backoff", wait, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		var ch *amqp091.Channel
		if ch, err = c.openChannel(ctx); err == nil {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("reconnect after %d attempts: %w", maxReconnectAttempts, err)
}

// Publish sends event as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, event *LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", event.Type, ErrCircuitOpen)
	}

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := c.openChannel(ctx)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.MessageID,
		Type:         string(event.Type),
		Timestamp:    event.Timestamp,
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published ledger event",
		log.FieldMessageID, event.MessageID,
		log.FieldEventType, event.Type,
		log.FieldExpenseID, event.ExpenseID)
	return nil
}

// Consume delivers events to handler until ctx is done. Undecodable
// messages are dropped; handler errors requeue the message once, then
// drop it. A closed delivery channel triggers a reconnect.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *LedgerEvent) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ch, err := c.reconnect(ctx)
		if err != nil {
			return err
		}
		if err := ch.Qos(1, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
		deliveries, err := ch.ConsumeWithContext(ctx, c.queueName, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}
		c.logger.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

		if err := c.drain(ctx, deliveries, handler); err != nil {
			return err
		}
		c.logger.WarnContext(ctx, "Delivery channel closed, reconnecting")
	}
}

func (c *Client) drain(ctx context.Context, deliveries <-chan amqp091.Delivery, handler func(context.Context, *LedgerEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// acknowledger is the subset of amqp091.Delivery used for acking.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *LedgerEvent) error) {
	process(ctx, c.logger, d.Body, d.Redelivered, d, handler)
}

func process(ctx context.Context, logger *log.Logger, body []byte, redelivered bool, ack acknowledger, handler func(context.Context, *LedgerEvent) error) {
	event, err := LedgerEventFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "Dropping undecodable message", "error", err)
		ack.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to handle ledger event",
			log.FieldError, err,
			log.FieldMessageID, event.MessageID,
			log.FieldEventType, event.Type,
			"redelivered", redelivered)
		ack.Nack(false, !redelivered)
		return
	}
	ack.Ack(false)
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

// isCircuitOpen reports whether publishing should fail fast. An open
// circuit turns half-open once openTimeout has passed since the last
// failure, letting one attempt through.
func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	failures := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("Circuit breaker opened", "failures", failures)
		}
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	return min(time.Duration(1<<attempt)*time.Second, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
