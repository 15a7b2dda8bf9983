package zipcode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
)

// Column positions of the dataset. Columns the parser does not read are
// listed so the layout is documented in one place.
const (
	colZip = iota
	colMailType
	colPrimaryCity
	colAcceptableCities
	colUnacceptableCities
	colState
	colCounty
	colTimezone
	colAreaCodes
	colLatitude
	colLongitude
	colWorldRegion
	colCountry
	colDecommissioned
	colEstimatedPopulation
	colNotes

	// NumColumns is the number of fields in every dataset row.
	NumColumns
)

const (
	// CountryUS is the only country code retained.
	CountryUS = "US"

	// MailTypeMilitary marks APO/FPO/DPO zip codes, which are dropped.
	MailTypeMilitary = "MILITARY"
)

// Stats counts what happened to the rows of one parse.
type Stats struct {
	Rows            int // data rows read, header excluded
	Kept            int // rows that produced a Location
	Aliases         int // alias records produced
	SkippedCountry  int
	SkippedMilitary int
	SkippedState    int
	Malformed       int // rows with a CSV error or the wrong column count
	MissingCoords   int // kept rows without usable latitude or longitude
	MissingZip      int
	MissingCity     int
}

// Skipped returns the number of rows that produced no records.
func (s Stats) Skipped() int {
	return s.SkippedCountry + s.SkippedMilitary + s.SkippedState + s.Malformed
}

// ParseResult holds the records of one parse, each slice in source order.
type ParseResult struct {
	Locations []Location
	Aliases   []Alias
	Stats     Stats
}

// Places returns locations followed by aliases as one sequence.
func (r *ParseResult) Places() []Place {
	out := make([]Place, 0, len(r.Locations)+len(r.Aliases))
	for _, l := range r.Locations {
		out = append(out, l)
	}
	for _, a := range r.Aliases {
		out = append(out, a)
	}
	return out
}

// Parser converts dataset rows into location and alias records.
// A Parser is not safe for concurrent use.
type Parser struct {
	logger *log.Logger
}

// NewParser creates a parser that reports row diagnostics to logger.
// A nil logger discards diagnostics.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Parser{logger: logger}
}

// ParseFile opens path and parses it. The file is closed on every path.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads an ISO-8859-1 encoded dataset from r. The first record is the
// header and is skipped. Row-level problems are logged and never returned;
// only read failures are.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	res := &ParseResult{}
	header := true

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			if header {
				header = false
				continue
			}
			res.Stats.Rows++
			res.Stats.Malformed++
			p.logger.Error("malformed row", "line", perr.StartLine, "err", perr.Err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if header {
			header = false
			continue
		}

		line, _ := cr.FieldPos(0)
		res.Stats.Rows++
		p.parseRow(res, line, record)
	}

	return res, nil
}

// parseRow applies the filters and normalization rules to one data row and
// appends its records to res.
func (p *Parser) parseRow(res *ParseResult, line int, record []string) {
	if len(record) != NumColumns {
		res.Stats.Malformed++
		p.logger.Error("wrong number of fields", "line", line, "got", len(record), "want", NumColumns)
		return
	}

	if country := strings.TrimSpace(record[colCountry]); country != CountryUS {
		res.Stats.SkippedCountry++
		p.logger.Debug("country is not US", "line", line, "country", country)
		return
	}

	if mailType := strings.TrimSpace(record[colMailType]); strings.EqualFold(mailType, MailTypeMilitary) {
		res.Stats.SkippedMilitary++
		p.logger.Debug("military mail type", "line", line, "type", mailType)
		return
	}

	state := strings.TrimSpace(record[colState])
	if !ValidState(state) {
		res.Stats.SkippedState++
		p.logger.Debug("invalid state identifier", "line", line, "state", state)
		return
	}
	state = strings.ToLower(state)

	loc := Location{Line: line, State: state}

	loc.Latitude = p.parseCoord(line, "latitude", record[colLatitude])
	loc.Longitude = p.parseCoord(line, "longitude", record[colLongitude])
	if loc.Latitude == nil || loc.Longitude == nil {
		res.Stats.MissingCoords++
	}

	loc.Zip = strings.TrimSpace(record[colZip])
	if loc.Zip == "" {
		res.Stats.MissingZip++
		p.logger.Error("zip code not present", "line", line)
	}

	loc.City = normalizeCity(record[colPrimaryCity])
	if loc.City == "" {
		res.Stats.MissingCity++
		p.logger.Error("primary city not present", "line", line)
	}

	loc.Population = p.parsePopulation(line, record[colEstimatedPopulation])

	for _, name := range splitAliases(record[colAcceptableCities]) {
		res.Aliases = append(res.Aliases, Alias{
			Line:       line,
			Zip:        loc.Zip,
			City:       name,
			State:      state,
			Population: loc.Population,
		})
		res.Stats.Aliases++
	}

	res.Locations = append(res.Locations, loc)
	res.Stats.Kept++
}

func (p *Parser) parseCoord(line int, field, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		p.logger.Error(field+" not present", "line", line)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.logger.Error("invalid "+field, "line", line, "value", raw)
		return nil
	}
	return &v
}

func (p *Parser) parsePopulation(line int, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		p.logger.Debug("estimated population not present, using 0", "line", line)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		p.logger.Error("invalid estimated population, using 0", "line", line, "value", raw)
		return 0
	}
	return n
}

// normalizeCity trims and lowercases a city name.
func normalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitAliases splits a comma-separated list of city names, normalizing each
// and dropping blanks.
func splitAliases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := normalizeCity(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
