package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// New creates a new logger instance
func New(serviceName string, environment string) *Logger {
	var output io.Writer = os.Stdout

	if environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: logger}
}

// WithRequestID returns a logger with the request ID attached
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("request_id", requestID).Logger(),
	}
}

// WithAccountID returns a logger with the account ID attached
func (l *Logger) WithAccountID(accountID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("account_id", accountID).Logger(),
	}
}

// WithScanID returns a logger with the badge scan session ID attached
func (l *Logger) WithScanID(scanID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("scan_id", scanID).Logger(),
	}
}

// WithDealerID returns a logger with the dealer ID attached
func (l *Logger) WithDealerID(dealerID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("dealer_id", dealerID).Logger(),
	}
}

// WithComponent returns a logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithError returns a logger with the error attached
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With().Err(err).Logger(),
	}
}
