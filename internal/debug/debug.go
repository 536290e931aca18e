package debug

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Tracer writes timestamped diagnostic lines when enabled. A nil or
// disabled Tracer writes nothing.
type Tracer struct {
	enabled bool
	logger  *log.Logger
}

// New creates a tracer writing to w
func New(enabled bool, w io.Writer) *Tracer {
	return &Tracer{
		enabled: enabled,
		logger:  log.New(w, "", 0),
	}
}

// Enabled reports whether output is written
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// Printf writes one diagnostic line
func (t *Tracer) Printf(format string, args ...interface{}) {
	if !t.Enabled() {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)
	t.logger.Printf("[%s] %s", timestamp, message)
}

// Timing logs the start of operation and returns a func that logs its end
func (t *Tracer) Timing(operation string) func() {
	if !t.Enabled() {
		return func() {}
	}

	start := time.Now()
	t.Printf("Starting: %s", operation)

	return func() {
		t.Printf("Completed: %s (took %v)", operation, time.Since(start))
	}
}
