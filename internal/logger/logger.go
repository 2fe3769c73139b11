// Package logger configures the application's logging and
// observability.
//
// It builds the zerolog root logger (console output locally, JSON
// elsewhere) and optionally initializes a New Relic application used
// to instrument the codebase and forward logs, metrics, and traces.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fstr-project/pereval-api/internal/config"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerService wraps the optional New Relic application instance.
// When New Relic is not configured, the wrapper exists but holds nil.
type LoggerService struct {
	nrApp *newrelic.Application
}

// GetApplication returns the New Relic application, or nil when the
// agent is disabled.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes pending telemetry and stops the agent.
func (ls *LoggerService) Shutdown(timeout time.Duration) {
	if ls != nil && ls.nrApp != nil {
		ls.nrApp.Shutdown(timeout)
	}
}

// New constructs the root logger and the observability service.
//
// Behavior:
//   - log level comes from the observability config
//   - "console" format writes human-friendly output to stderr
//   - JSON output is wrapped with the New Relic zerolog writer when
//     log forwarding is enabled, so log lines carry trace linking
//     metadata
func New(cfg *config.Config) (*zerolog.Logger, *LoggerService, error) {
	level, err := zerolog.ParseLevel(cfg.Observability.GetLogLevel())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	service := &LoggerService{}

	nrCfg := cfg.Observability.NewRelic
	if nrCfg.LicenseKey != "" {
		opts := []newrelic.ConfigOption{
			newrelic.ConfigAppName(cfg.Observability.ServiceName),
			newrelic.ConfigLicense(nrCfg.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(nrCfg.AppLogForwardingEnabled),
			newrelic.ConfigDistributedTracerEnabled(nrCfg.DistributedTracingEnabled),
		}
		if nrCfg.DebugLogging {
			opts = append(opts, newrelic.ConfigDebugLogger(os.Stderr))
		}

		app, err := newrelic.NewApplication(opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing new relic application: %w", err)
		}
		service.nrApp = app
	}

	var out io.Writer
	switch {
	case cfg.Observability.Logging.Format == "console":
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	case service.nrApp != nil && nrCfg.AppLogForwardingEnabled:
		w := zerologWriter.New(os.Stdout, service.nrApp)
		if nrCfg.DebugLogging {
			w.DebugLogging(true)
		}
		out = w
	default:
		out = os.Stdout
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.Observability.ServiceName).
		Str("env", cfg.Observability.Environment).
		Logger()

	return &log, service, nil
}

// WithTraceContext returns a child logger carrying the transaction's
// trace and span ids so log lines can be correlated with traces.
func WithTraceContext(log zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return log
	}
	md := txn.GetTraceMetadata()
	return log.With().
		Str("trace.id", md.TraceID).
		Str("span.id", md.SpanID).
		Logger()
}

// NewPgxLogger builds the logger used for SQL query tracing. Queries
// are developer output, so it always writes console format to stderr.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "pgx").
		Logger()
}

// GetPgxTraceLogLevel maps a zerolog level onto the pgx tracelog level
// scale (tracelog.LogLevelNone..Trace). Returned as int so call sites
// cast to tracelog.LogLevel.
func GetPgxTraceLogLevel(level zerolog.Level) int {
	switch level {
	case zerolog.TraceLevel:
		return 6 // tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return 5 // tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return 4 // tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return 3 // tracelog.LogLevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return 2 // tracelog.LogLevelError
	default:
		return 1 // tracelog.LogLevelNone
	}
}
