package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	pkgio "github.com/matzehuels/zipcities/pkg/io"
	"github.com/matzehuels/zipcities/pkg/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("parsed dataset") }, true},
		{"row diagnostic at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("country is not US") }, false},
		{"row diagnostic at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("country is not US") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevelReportsCallerWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	c.Logger.Info("quiet")
	if strings.Contains(buf.String(), ".go:") {
		t.Errorf("info logger should not report the caller: %q", buf.String())
	}

	buf.Reset()
	c.SetLogLevel(log.DebugLevel)
	c.Logger.Debug("country is not US")
	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("debug logger should report the caller: %q", buf.String())
	}
}

func TestRunTimerFinish(t *testing.T) {
	var buf bytes.Buffer
	timer := startRun(newLogger(&buf, log.InfoLevel))

	timer.finish("zips.csv", &pipeline.Result{
		Cities:   []pkgio.City{{Name: "New York", State: "NY", Population: 100000}},
		CacheHit: true,
	})

	got := buf.String()
	for _, want := range []string{"Built city list from zips.csv (", "cities=1", "cached=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
}
