// Package log provides the logging abstraction used across telsend.
//
// The Logger interface can be implemented by any logging library. A zerolog
// adapter and a no-op logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("payload queued", log.String("transport", "beacon"))
//
// Use With to bind fields that every subsequent entry should carry:
//
//	sendLog := logger.With(log.String("send_id", id))
//
// Or use the no-op logger in tests:
//
//	logger := log.NewNoopLogger()
package log
