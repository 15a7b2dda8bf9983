package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zipcities/pkg/pipeline"
)

// newLogger creates the CLI logger. Timestamps use "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
	setLevel(l, level)
	return l
}

// setLevel applies level to l. At debug level the caller is reported too, so
// a row diagnostic shows whether the parser or the deduplicator emitted it.
func setLevel(l *log.Logger, level log.Level) {
	l.SetLevel(level)
	l.SetReportCaller(level <= log.DebugLevel)
}

// runTimer measures one pipeline run for the completion line.
type runTimer struct {
	logger *log.Logger
	start  time.Time
}

func startRun(l *log.Logger) *runTimer {
	return &runTimer{logger: l, start: time.Now()}
}

// finish logs "Built city list from <input> (<elapsed>)" with the city count
// and whether the output came from the cache.
func (t *runTimer) finish(input string, res *pipeline.Result) {
	elapsed := time.Since(t.start).Round(time.Millisecond)
	t.logger.Info(fmt.Sprintf("Built city list from %s (%s)", input, elapsed),
		"cities", len(res.Cities),
		"cached", res.CacheHit)
}
