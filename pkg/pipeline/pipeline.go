// Package pipeline builds the autocomplete city list from the ZIP-code
// dataset.
//
// # Architecture
//
// The pipeline consists of three stages, run strictly in order:
//
//  1. Parse: read and filter dataset rows into locations and aliases
//  2. Dedupe: keep the most populous place per (city, state)
//  3. Export: project places to [City, STATE, population] and write JSON
//
// Each stage can be run on its own ([Parse], [Dedupe], [Render]) or through
// a [Runner], which adds input hashing, an artifact cache and stage timing.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "zip_code_database.csv",
//	    Output: "cities.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Cities))
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zipcities/pkg/errors"
	pkgio "github.com/matzehuels/zipcities/pkg/io"
	"github.com/matzehuels/zipcities/pkg/zipcode"
)

const (
	// DefaultInput is the dataset file name used when none is given.
	DefaultInput = "zip_code_database.csv"

	// FormatJSON is the only output format.
	FormatJSON = "json"

	// FormatVersion changes whenever the rendered output for the same input
	// would change. It is part of the artifact cache key.
	FormatVersion = 1
)

// Options configures one pipeline run.
type Options struct {
	Input   string // dataset path
	Output  string // JSON output path
	Refresh bool   // skip the cache lookup and recompute; the result is still stored

	// Logger receives row diagnostics and stage summaries.
	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Output is the absolute path that was written.
	Output string

	// Cities is the list written to Output, in output order.
	Cities []pkgio.City

	// Parse holds row statistics. It is zero when the result came from cache.
	Parse zipcode.Stats

	// Stats contains timing and dedupe counts.
	Stats Stats

	// CacheHit reports whether the output was served from the artifact cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Candidates int // locations plus aliases offered to the deduplicator
	Unique     int // distinct (city, state) keys
	Replaced   int // times a stored winner was displaced
	InputBytes int
	ParseTime  time.Duration
	DedupeTime time.Duration
	ExportTime time.Duration
}

// ValidateAndSetDefaults checks required fields. It runs before any file is
// touched so configuration errors never leave partial output.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Output == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"an output JSON file path is required (-o/--output)")
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"an input file containing zip code information is required (-i/--input)")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}
