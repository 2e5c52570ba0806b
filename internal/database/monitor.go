package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"

	"github.com/deppfellow/userapi/internal/config"
)

// commandLogger logs driver commands.
//
// In the local environment every command is logged at debug level. Elsewhere
// only commands slower than the configured threshold, and failures, are logged.
type commandLogger struct {
	log           zerolog.Logger
	verbose       bool
	slowThreshold time.Duration
}

// newCommandMonitor returns nil when there is nothing to log.
func newCommandMonitor(cfg *config.Config, logger *zerolog.Logger) *event.CommandMonitor {
	cl := &commandLogger{
		log:     logger.With().Str("component", "mongo").Logger(),
		verbose: cfg.Primary.Env == "local",
	}
	if cfg.Observability != nil {
		cl.slowThreshold = cfg.Observability.Logging.SlowQueryThreshold
	}

	if !cl.verbose && cl.slowThreshold == 0 {
		return nil
	}

	return &event.CommandMonitor{
		Started:   cl.started,
		Succeeded: cl.succeeded,
		Failed:    cl.failed,
	}
}

func (cl *commandLogger) started(_ context.Context, e *event.CommandStartedEvent) {
	if !cl.verbose {
		return
	}
	cl.log.Debug().
		Str("command", e.CommandName).
		Str("database", e.DatabaseName).
		Int64("request_id", e.RequestID).
		Str("body", e.Command.String()).
		Msg("mongo command started")
}

func (cl *commandLogger) succeeded(_ context.Context, e *event.CommandSucceededEvent) {
	switch {
	case cl.slowThreshold > 0 && e.Duration >= cl.slowThreshold:
		cl.log.Warn().
			Str("command", e.CommandName).
			Int64("request_id", e.RequestID).
			Dur("duration", e.Duration).
			Dur("threshold", cl.slowThreshold).
			Msg("slow mongo command")
	case cl.verbose:
		cl.log.Debug().
			Str("command", e.CommandName).
			Int64("request_id", e.RequestID).
			Dur("duration", e.Duration).
			Msg("mongo command succeeded")
	}
}

func (cl *commandLogger) failed(_ context.Context, e *event.CommandFailedEvent) {
	cl.log.Error().
		Str("command", e.CommandName).
		Int64("request_id", e.RequestID).
		Dur("duration", e.Duration).
		Str("failure", e.Failure).
		Msg("mongo command failed")
}
