package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"taskapi/internal/config"
)

var (
	ErrMongoURIRequired       = errors.New("mongo uri is required")
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
)

// mongoConnect is swapped in tests.
var mongoConnect = func(opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(opts)
}

// mongoPing is swapped in tests.
var mongoPing = func(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, nil)
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
// Connecting and pinging are retried RetryAttempts times, each ping bounded by ConnectTimeout.
func NewMongo(ctx context.Context, c config.MongoConfig) (*mongo.Client, error) {
	if c.URI == "" {
		return nil, ErrMongoURIRequired
	}
	attempts := c.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize)

	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(c.RetryInterval):
			}
		}

		client, err := mongoConnect(opts)
		if err != nil {
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = mongoPing(pingCtx, client)
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		_ = client.Disconnect(context.Background())
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// MongoHealthcheck returns a health check function suitable for HTTP health endpoints.
func MongoHealthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
