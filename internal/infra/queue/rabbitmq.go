package mq

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DialFunc opens a new broker connection; used for the initial dial and for reconnects.
type DialFunc func() (*amqp.Connection, error)

// NewDialFunc builds a DialFunc from config, upgrading to amqps when TLS is requested.
func NewDialFunc(cfg *config.Config) DialFunc {
	return func() (*amqp.Connection, error) {
		useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
		if useTLS {
			url := cfg.RabbitMQ.URL
			if strings.HasPrefix(url, "amqp://") {
				url = strings.Replace(url, "amqp://", "amqps://", 1)
			}
			return amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	}
}

// tableCarrier adapts amqp.Table to TextMapCarrier for OpenTelemetry propagation
type tableCarrier struct {
	table amqp.Table
}

func (c tableCarrier) Get(key string) string {
	if val, ok := c.table[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func (c tableCarrier) Set(key, value string) {
	c.table[key] = value
}

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}

type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	dial   DialFunc
	log    *zap.Logger
	cfg    *config.Config
	tracer trace.Tracer
}

func NewPublisher(dial DialFunc, log *zap.Logger, cfg *config.Config) (*Publisher, error) {
	p := &Publisher{
		dial:   dial,
		log:    log,
		cfg:    cfg,
		tracer: otel.Tracer(cfg.App.Name),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := p.dial()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.cfg.RabbitMQ.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishJSON encodes body with sonic and publishes it as a persistent message.
// A closed channel triggers one reconnect attempt before giving up.
func (p *Publisher) PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error {
	b, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	ctx, span := p.tracer.Start(ctx, "rabbitmq.publish",
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", exchangeName),
			attribute.String("messaging.destination_kind", "exchange"),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		))
	defer span.End()

	headers := make(amqp.Table)
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier{table: headers})

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
		Headers:      headers,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.log.Warn("rabbitmq channel closed, reconnecting")
		if err := p.connect(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	if err := p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, publishing); err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int("messaging.message.body.size", len(b)))
	return nil
}
