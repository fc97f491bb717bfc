package checkers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jonwraymond/healthops/health"
)

// DefaultServerSelectionTimeout bounds how long a MongoDB check waits for a
// usable server.
const DefaultServerSelectionTimeout = 5 * time.Second

// MongoDB pings the primary of a MongoDB deployment.
type MongoDB struct {
	name string
	uri  string
}

// NewMongoDB creates a MongoDB checker for a mongodb:// or mongodb+srv:// URI.
func NewMongoDB(name, uri string) *MongoDB {
	return &MongoDB{name: name, uri: uri}
}

// Name returns the check name.
func (c *MongoDB) Name() string {
	return c.name
}

// Check connects, pings the primary and disconnects.
func (c *MongoDB) Check(ctx context.Context) health.Result {
	opts := options.Client().
		ApplyURI(c.uri).
		SetServerSelectionTimeout(DefaultServerSelectionTimeout).
		SetMaxPoolSize(1)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return health.Failure("connect", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return health.Failure("ping", err)
	}
	return health.Healthy("mongodb is reachable")
}
