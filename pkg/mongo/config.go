package mongo

import "time"

// Config represents the configuration for the database connection. User and
// Password are optional: when either is missing the connection string is
// built without credentials and a warning is logged.
type Config struct {
	Host            string        `env:"MONGODB_HOST" envDefault:"localhost"`         // Host is the database server hostname.
	Port            string        `env:"MONGODB_PORT" envDefault:"27017"`             // Port is the database server port.
	User            string        `env:"MONGODB_USER"`                                // User is the username for authenticated connections.
	Password        string        `env:"MONGODB_PASSWORD"`                            // Password is the password for authenticated connections.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`    // ConnectTimeout is the timeout for connecting to the database.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`      // MaxPoolSize is the maximum number of connections in the pool.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`        // MinPoolSize is the minimum number of connections in the pool.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // MaxConnIdleTime is the maximum idle time for a pooled connection.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`       // RetryAttempts is the number of connection attempts.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`      // RetryInterval is the interval between connection attempts.
}
