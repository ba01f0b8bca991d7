package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connection lazily establishes one shared mongo client per process and
// hands out database handles from it. The client is created on first use
// and reused across calls; concurrent first access is safe.
type Connection struct {
	cfg    Config
	logger *slog.Logger

	once   sync.Once
	client *mongo.Client
	err    error
}

// NewConnection creates a connection manager without dialing anything yet.
// A nil logger falls back to the process default.
func NewConnection(cfg Config, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{cfg: cfg, logger: logger}
}

// URI builds the connection string. Credentials are included only when both
// user and password are set; otherwise the connection is unauthenticated,
// which is worth a warning in any environment beyond local development.
func (c *Connection) URI() string {
	if c.cfg.User != "" && c.cfg.Password != "" {
		c.logger.Info("using authenticated mongo connection")
		return fmt.Sprintf("mongodb://%s@%s:%s",
			url.UserPassword(c.cfg.User, c.cfg.Password).String(), c.cfg.Host, c.cfg.Port)
	}

	c.logger.Warn("using unauthenticated mongo connection")
	return fmt.Sprintf("mongodb://%s:%s", c.cfg.Host, c.cfg.Port)
}

// Client returns the shared client, establishing it on first call. The
// connection is retried RetryAttempts times with RetryInterval pauses to
// ride out transient startup races with the database container.
func (c *Connection) Client(ctx context.Context) (*mongo.Client, error) {
	c.once.Do(func() {
		c.client, c.err = c.connect(ctx)
	})
	return c.client, c.err
}

func (c *Connection) connect(ctx context.Context) (*mongo.Client, error) {
	uri := c.URI()

	attempts := c.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for range attempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(uri).
				SetConnectTimeout(c.cfg.ConnectTimeout).
				SetMaxPoolSize(c.cfg.MaxPoolSize).
				SetMinPoolSize(c.cfg.MinPoolSize).
				SetMaxConnIdleTime(c.cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		time.Sleep(c.cfg.RetryInterval)
	}

	return nil, ErrFailedToConnectToMongo
}

// GetDatabase returns a handle to the named database on the shared client.
func (c *Connection) GetDatabase(ctx context.Context, name string) (*mongo.Database, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(name), nil
}

// Close disconnects the shared client if it was ever established.
func (c *Connection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
