package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the structured logger shared by the batch jobs. JSON by
// default; LOG_FORMAT=console switches to the human-readable writer.
func New(job, runID string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if os.Getenv("LOG_FORMAT") == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(output).With().
		Timestamp().
		Str("job", job).
		Str("run_id", runID).
		Logger()
}
