// Package dedupe collapses places that share a (city, state) identity.
//
// Many cities span several ZIP codes, and alias names often repeat a primary
// city elsewhere in the dataset. The [Deduplicator] keeps one winner per
// [zipcode.Key]: the candidate with the largest estimated population, with
// ties going to the candidate seen first. Winners are reported in the order
// their keys were first seen.
package dedupe

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zipcities/pkg/zipcode"
)

// Deduplicator accumulates candidates and tracks the winner per key.
// It is not safe for concurrent use.
type Deduplicator struct {
	logger   *log.Logger
	index    map[zipcode.Key]int
	winners  []zipcode.Place
	seen     int
	replaced int
}

// New creates an empty Deduplicator. A nil logger discards diagnostics.
func New(logger *log.Logger) *Deduplicator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Deduplicator{
		logger: logger,
		index:  make(map[zipcode.Key]int),
	}
}

// Add offers one candidate. An unseen key inserts p. A seen key replaces the
// stored winner only when p has a strictly larger population; the winner
// keeps the key's original position.
func (d *Deduplicator) Add(p zipcode.Place) {
	d.seen++
	key := p.Key()

	i, ok := d.index[key]
	if !ok {
		d.index[key] = len(d.winners)
		d.winners = append(d.winners, p)
		d.logger.Debug("adding place", "place", p)
		return
	}

	current := d.winners[i]
	if p.EstimatedPopulation() > current.EstimatedPopulation() {
		d.logger.Debug("replacing place", "old", current, "new", p)
		d.winners[i] = p
		d.replaced++
	}
}

// AddAll offers each candidate in order.
func (d *Deduplicator) AddAll(places ...zipcode.Place) {
	for _, p := range places {
		d.Add(p)
	}
}

// Places returns the winners in first-seen key order. The returned slice is
// a copy.
func (d *Deduplicator) Places() []zipcode.Place {
	out := make([]zipcode.Place, len(d.winners))
	copy(out, d.winners)
	return out
}

// Winner returns the current winner for key.
func (d *Deduplicator) Winner(key zipcode.Key) (zipcode.Place, bool) {
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.winners[i], true
}

// Len returns the number of distinct keys.
func (d *Deduplicator) Len() int { return len(d.winners) }

// Seen returns the number of candidates offered.
func (d *Deduplicator) Seen() int { return d.seen }

// Replaced returns how many times a stored winner was displaced.
func (d *Deduplicator) Replaced() int { return d.replaced }

// Merge deduplicates the locations of res followed by its aliases and
// returns the deduplicator holding the winners.
func Merge(logger *log.Logger, res *zipcode.ParseResult) *Deduplicator {
	d := New(logger)
	d.AddAll(res.Places()...)
	return d
}
