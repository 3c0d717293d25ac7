package paypal

import "github.com/jeancollas/paypal-sdk-go/internal/logger"

// Logger is the logging sink the dispatcher writes header and recorder
// diagnostics to. *logger.ZapLogger satisfies it.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	return logger.Ensure(log)
}
