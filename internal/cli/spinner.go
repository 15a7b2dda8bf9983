package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/zipcities/pkg/observability"
)

// spinnerInterval is the time between animation frames.
const spinnerInterval = 80 * time.Millisecond

// Spinner draws a one-line progress indicator while the pipeline runs. The
// message is replaced as stages advance (see stageHooks).
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far, cleared on stop
	started bool
}

// newSpinner creates a spinner drawing to w. It stops drawing when ctx is
// cancelled.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(s.frames[i%len(s.frames)])
			}
		}
	}()
}

// SetMessage replaces the text shown next to the animation.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// Message returns the current text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if n := utf8.RuneCountInString(s.message) + 2; n > s.width {
		s.width = n
	}
	// Pad so a shorter message fully covers the previous one.
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", s.width-utf8.RuneCountInString(s.message)-2))
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()

	if started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Cancelled reports whether the spinner's context was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// stageHooks forwards pipeline events to the wrapped hooks and keeps the
// spinner message on the stage that is running.
type stageHooks struct {
	observability.PipelineHooks
	spinner *Spinner
}

func (h stageHooks) OnParseStart(ctx context.Context, input string) {
	h.PipelineHooks.OnParseStart(ctx, input)
	h.spinner.SetMessage(fmt.Sprintf("Parsing %s...", filepath.Base(input)))
}

func (h stageHooks) OnParseComplete(ctx context.Context, input string, rows int, d time.Duration, err error) {
	h.PipelineHooks.OnParseComplete(ctx, input, rows, d, err)
	if err == nil {
		h.spinner.SetMessage(fmt.Sprintf("Deduplicating places from %d rows...", rows))
	}
}

func (h stageHooks) OnDedupeComplete(ctx context.Context, candidates, unique int, d time.Duration) {
	h.PipelineHooks.OnDedupeComplete(ctx, candidates, unique, d)
	h.spinner.SetMessage(fmt.Sprintf("Merged %d candidates into %d places", candidates, unique))
}

func (h stageHooks) OnExportStart(ctx context.Context, output string, cities int) {
	h.PipelineHooks.OnExportStart(ctx, output, cities)
	h.spinner.SetMessage(fmt.Sprintf("Writing %d cities to %s...", cities, filepath.Base(output)))
}
