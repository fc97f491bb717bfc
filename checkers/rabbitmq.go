package checkers

import (
	"context"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jonwraymond/healthops/health"
)

// RabbitMQ opens a connection and a channel to a broker.
type RabbitMQ struct {
	name string
	url  string
}

// NewRabbitMQ creates a RabbitMQ checker for an amqp:// or amqps:// URL.
func NewRabbitMQ(name, url string) *RabbitMQ {
	return &RabbitMQ{name: name, url: url}
}

// Name returns the check name.
func (c *RabbitMQ) Name() string {
	return c.name
}

// Check dials the broker, opens a channel and closes both.
func (c *RabbitMQ) Check(ctx context.Context) health.Result {
	if _, err := amqp.ParseURI(c.url); err != nil {
		return health.Unhealthy("invalid broker url", err)
	}

	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Dial:       contextDial(ctx),
		Properties: amqp.Table{"connection_name": "healthops " + c.name},
	})
	if err != nil {
		return health.Failure("connect", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return health.Failure("open channel", err)
	}
	_ = ch.Close()

	return health.Healthy("rabbitmq is reachable")
}

// contextDial dials with ctx and bounds the AMQP handshake by ctx's deadline.
func contextDial(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(30 * time.Second)
		}
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
