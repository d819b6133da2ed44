package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const bufferSize = 128

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes events to a durable topic exchange from a single background worker.
// Publish only enqueues; when the buffer is full the event is dropped and logged.
type AMQP struct {
	exchange string
	conn     *amqp.Connection
	ch       amqpChannel
	in       chan Event
	log      *slog.Logger
	done     chan struct{}
}

// DialAMQP connects, opens a channel and declares the exchange.
func DialAMQP(ctx context.Context, url, exchange string) (*AMQP, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp.Table{
			"connection_name": "cloudvault",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := newAMQP(ch, exchange)
	p.conn = conn
	p.log.Info("rabbitmq connected", "exchange", exchange)
	return p, nil
}

func newAMQP(ch amqpChannel, exchange string) *AMQP {
	return &AMQP{
		exchange: exchange,
		ch:       ch,
		in:       make(chan Event, bufferSize),
		log:      slog.Default().With("component", "events"),
		done:     make(chan struct{}),
	}
}

func (p *AMQP) Publish(_ context.Context, e Event) {
	select {
	case p.in <- e:
	default:
		p.log.Warn("event buffer full, dropping event", "type", e.Type, "event_id", e.ID)
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what is queued and returns.
func (p *AMQP) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case e := <-p.in:
			p.send(ctx, e)
		case <-ctx.Done():
			p.drain()
			return
		}
	}
}

func (p *AMQP) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-p.in:
			p.send(ctx, e)
		default:
			return
		}
	}
}

// Close waits for Run to finish and releases the channel and connection.
func (p *AMQP) Close() error {
	<-p.done
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *AMQP) send(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.log.Error("event marshal failed", "type", e.Type, "error", err)
		return
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, msg); err != nil {
		p.log.Warn("event publish failed", "type", e.Type, "event_id", e.ID, "error", err)
	}
}
