package engine

import "log/slog"

// LoggingObserver writes every table event to a structured logger
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer; a nil logger means slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Debug("table_event",
		"event", event.Type,
		"table_id", event.TableID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
