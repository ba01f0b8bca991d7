// Package mongo provides MongoDB connection management for the relay.
//
// One shared client is established lazily per process and reused across
// calls; repositories obtain database handles through GetDatabase. The
// connection string is assembled from discrete host/port/user/password
// settings: credentials are included only when both user and password are
// present, and falling back to an unauthenticated connection is logged as a
// warning so it cannot slip into production unnoticed.
//
// # Usage
//
//	cfg := mongo.Config{Host: "localhost", Port: "27017"}
//	conn := mongo.NewConnection(cfg, log)
//	defer conn.Close(context.Background())
//
//	db, err := conn.GetDatabase(ctx, "hookrelay")
//	if err != nil {
//		return err
//	}
//
//	// Wire a health check
//	health := mongo.Healthcheck(conn)
//	if err := health(ctx); err != nil {
//		log.Warn("mongo is unavailable", slog.Any("error", err))
//	}
//
// # Configuration
//
// Configuration is environment-driven (see Config field tags) so the same
// binary runs unchanged across development, staging, and production.
//
// # Error Handling
//
// Connection failures are wrapped in package sentinel errors; use
// errors.Is to detect them and decide between retry and fail-fast.
package mongo
