package mongo

import (
	"context"
	"errors"
)

// Healthcheck returns a health check function suitable for readiness probes
// or HTTP health endpoints. It performs a lightweight ping against the
// shared client, establishing the connection on first use.
func Healthcheck(conn *Connection) func(context.Context) error {
	return func(ctx context.Context) error {
		client, err := conn.Client(ctx)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
