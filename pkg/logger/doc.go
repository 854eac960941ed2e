// Package logger builds *slog.Logger values from functional options and injects
// request-scoped values from context.Context into every record.
//
// New picks a text or JSON handler. When ContextExtractor callbacks are
// registered the handler runs them on each record, so values such as the
// request ID follow the context into every log line.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "checkoutd"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "price check served",
//		logger.CheckKey(req.Key()),
//		logger.Outcome("network"),
//		logger.Duration(time.Since(start)),
//	)
//
// # Attributes
//
// attr.go keeps attribute keys consistent across packages: Error and Errors
// (empty when the error is nil), RequestID, Component, and the checkout
// vocabulary Plan, Cycle, Currency, Mode, CheckKey and Outcome.
//
// Library packages accept an optional *slog.Logger and fall back to Discard.
package logger
