// Package logger provides a context-aware wrapper around Go's slog package:
// functional options for configuration, helper attribute constructors, and
// transparent injection of values stored in context.Context.
//
// The single factory New creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static attributes
// applied to every record, and ContextExtractor callbacks that pull dynamic
// attributes out of the log call's context.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "hookrelay"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "event delivered",
//	    logger.EventID(event.ID),
//	    logger.Target(event.Target),
//	    logger.Attempt(attempt),
//	)
//
// Helper constructors in attr.go (EventID, Target, Attempt, CallbackURL,
// SubscriptionID, RequestID, Error) keep attribute naming consistent across
// the codebase. Error and Errors produce empty attributes for nil errors so
// they can be passed unconditionally.
package logger
