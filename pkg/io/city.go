package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/zipcities/pkg/zipcode"
)

// City is one entry of the output list. It encodes as the JSON array
// [name, state, population].
type City struct {
	Name       string
	State      string
	Population int
}

// MarshalJSON encodes c as a three-element array without HTML escaping.
func (c City) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]any{c.Name, c.State, c.Population}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a three-element array.
func (c *City) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("city entry has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &c.State); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if err := json.Unmarshal(raw[2], &c.Population); err != nil {
		return fmt.Errorf("population: %w", err)
	}
	return nil
}

// Project converts deduplicated places into output entries, keeping order.
// City names are title-cased and state codes uppercased.
func Project(places []zipcode.Place) []City {
	title := cases.Title(language.AmericanEnglish)
	out := make([]City, len(places))
	for i, p := range places {
		key := p.Key()
		out[i] = City{
			Name:       titleName(title, key.City),
			State:      strings.ToUpper(key.State),
			Population: p.EstimatedPopulation(),
		}
	}
	return out
}

// titleName title-cases every run of letters on its own, so the letter after
// any non-letter is capitalized: "o'fallon" becomes "O'Fallon".
func titleName(title cases.Caser, name string) string {
	var b strings.Builder
	b.Grow(len(name))
	start := -1
	for i, r := range name {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(title.String(name[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(title.String(name[start:]))
	}
	return b.String()
}
