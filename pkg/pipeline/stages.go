package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zipcities/pkg/dedupe"
	"github.com/matzehuels/zipcities/pkg/errors"
	pkgio "github.com/matzehuels/zipcities/pkg/io"
	"github.com/matzehuels/zipcities/pkg/observability"
	"github.com/matzehuels/zipcities/pkg/zipcode"
)

// Parse reads the dataset from r. name identifies the input in hooks and
// errors.
func Parse(ctx context.Context, logger *log.Logger, name string, r io.Reader) (*zipcode.ParseResult, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name)
	start := time.Now()

	res, err := zipcode.NewParser(logger).Parse(r)
	if err != nil {
		hooks.OnParseComplete(ctx, name, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeReadFailed, err, "read %s", name)
	}

	hooks.OnParseComplete(ctx, name, res.Stats.Rows, time.Since(start), nil)
	return res, nil
}

// Dedupe merges locations then aliases and returns the deduplicator holding
// the winners.
func Dedupe(ctx context.Context, logger *log.Logger, res *zipcode.ParseResult) *dedupe.Deduplicator {
	start := time.Now()

	d := dedupe.Merge(logger, res)

	observability.Pipeline().OnDedupeComplete(ctx, d.Seen(), d.Len(), time.Since(start))
	return d
}

// Render projects places to output entries and encodes them.
func Render(places []zipcode.Place) ([]pkgio.City, []byte, error) {
	cities := pkgio.Project(places)
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(cities, &buf); err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}
	return cities, buf.Bytes(), nil
}

// Export writes rendered output to path, replacing any existing file only
// once the new content is complete.
func Export(ctx context.Context, data []byte, cities int, path string) error {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, path, cities)
	start := time.Now()

	err := pkgio.WriteFile(data, path)
	hooks.OnExportComplete(ctx, path, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write output")
	}
	return nil
}
