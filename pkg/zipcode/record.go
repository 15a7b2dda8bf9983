package zipcode

import "fmt"

// Kind identifies which record type a [Place] came from.
type Kind int

const (
	KindLocation Kind = iota
	KindAlias
)

// String returns "location" or "alias".
func (k Kind) String() string {
	switch k {
	case KindLocation:
		return "location"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Key is the identity of a place for deduplication. Two places with the same
// lowercase city and state are the same place regardless of zip code or
// population.
type Key struct {
	City  string
	State string
}

// String returns "city, state".
func (k Key) String() string {
	return k.City + ", " + k.State
}

// Place is a deduplication candidate: either a [Location] or an [Alias].
type Place interface {
	Key() Key
	EstimatedPopulation() int
	Kind() Kind
}

// Location is a retained row of the dataset.
type Location struct {
	Line       int      // source line, for diagnostics only
	Zip        string   // may be empty on malformed input
	Latitude   *float64 // nil when absent or malformed
	Longitude  *float64 // nil when absent or malformed
	City       string   // lowercase, trimmed
	State      string   // two-letter lowercase code
	Population int      // non-negative, 0 when absent
}

// Key returns the (city, state) identity.
func (l Location) Key() Key { return Key{City: l.City, State: l.State} }

// EstimatedPopulation returns the row's population estimate.
func (l Location) EstimatedPopulation() int { return l.Population }

// Kind returns KindLocation.
func (l Location) Kind() Kind { return KindLocation }

// String formats the location for log output.
func (l Location) String() string {
	return fmt.Sprintf("location{line=%d zip=%s city=%q state=%s population=%d}",
		l.Line, l.Zip, l.City, l.State, l.Population)
}

// Alias is an acceptable alternate city name for a retained row. State, zip
// and population are inherited from the owning row.
type Alias struct {
	Line       int
	Zip        string
	City       string
	State      string
	Population int
}

// Key returns the (alias city, state) identity.
func (a Alias) Key() Key { return Key{City: a.City, State: a.State} }

// EstimatedPopulation returns the population inherited from the owning row.
func (a Alias) EstimatedPopulation() int { return a.Population }

// Kind returns KindAlias.
func (a Alias) Kind() Kind { return KindAlias }

// String formats the alias for log output.
func (a Alias) String() string {
	return fmt.Sprintf("alias{line=%d zip=%s city=%q state=%s population=%d}",
		a.Line, a.Zip, a.City, a.State, a.Population)
}

var (
	_ Place = Location{}
	_ Place = Alias{}
)
