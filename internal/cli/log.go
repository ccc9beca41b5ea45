package cli

import (
	"log/slog"
	"time"
)

// progress tracks the start time of an operation and logs completion with elapsed
// duration.
type progress struct {
	logger *slog.Logger
	start  time.Time
}

func newProgress(l *slog.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond.
// Example output: "Loaded 42 elements (1.234s)"
func (p *progress) done(msg string, args ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", args...)
}
