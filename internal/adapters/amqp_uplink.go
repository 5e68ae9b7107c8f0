package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	amqp "github.com/rabbitmq/amqp091-go"
)

type (
	// AMQPUplink publishes fixes to a RabbitMQ exchange for fleets that feed
	// a broker instead of a plain HTTP collector. The connection is opened
	// lazily on first delivery and reopened after broker failures.
	AMQPUplink struct {
		cfg    config.BrokerConfig
		logger infrastructure.Logger

		mu      sync.Mutex
		conn    *amqp.Connection
		channel *amqp.Channel
	}
)

func NewAMQPUplink(cfg config.BrokerConfig, logger infrastructure.Logger) *AMQPUplink {
	return &AMQPUplink{
		cfg:    cfg,
		logger: logger,
	}
}

func (u *AMQPUplink) Deliver(ctx context.Context, session *domain.TrackingSession, fix *domain.LocationFix) error {
	body, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	channel, err := u.ensureChannel()
	if err != nil {
		return err
	}

	err = channel.PublishWithContext(ctx,
		u.cfg.ExchangeName,
		u.cfg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    fix.ID.String(),
			AppId:        session.DeviceID,
			Body:         body,
		},
	)
	if err != nil {
		// Drop the channel so the next delivery reconnects.
		u.teardown()

		return fmt.Errorf("failed to publish fix: %w", err)
	}

	u.logger.Debug().
		Str("exchange", u.cfg.ExchangeName).
		Str("routing_key", u.cfg.RoutingKey).
		Str("fix_id", fix.ID.String()).
		Msg("fix published to broker")

	return nil
}

func (u *AMQPUplink) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.teardown()

	return nil
}

// Ping verifies the broker connection for health checks.
func (u *AMQPUplink) Ping(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	_, err := u.ensureChannel()

	return err
}

func (u *AMQPUplink) ensureChannel() (*amqp.Channel, error) {
	if u.channel != nil && !u.conn.IsClosed() {
		return u.channel, nil
	}

	u.teardown()

	conn, err := amqp.DialConfig(u.brokerURL(), amqp.Config{
		Heartbeat: u.cfg.Heartbeat,
		Dial:      amqp.DefaultDial(u.cfg.ConnectTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		u.cfg.ExchangeName,
		"topic",
		u.cfg.Durable,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	u.conn = conn
	u.channel = channel

	u.logger.Info().
		Str("host", u.cfg.Host).
		Str("exchange", u.cfg.ExchangeName).
		Msg("connected to broker")

	return channel, nil
}

// brokerURL builds the dial URL through amqp.URI so credentials with
// reserved characters end up percent-escaped.
func (u *AMQPUplink) brokerURL() string {
	uri := amqp.URI{
		Scheme:   "amqp",
		Username: u.cfg.Username,
		Password: u.cfg.Password,
		Host:     u.cfg.Host,
		Port:     u.cfg.Port,
		Vhost:    u.cfg.VirtualHost,
	}

	return uri.String()
}

func (u *AMQPUplink) teardown() {
	if u.channel != nil {
		u.channel.Close()
		u.channel = nil
	}

	if u.conn != nil {
		u.conn.Close()
		u.conn = nil
	}
}
