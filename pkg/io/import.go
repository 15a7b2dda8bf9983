package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a city list from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]City, error) {
	var cities []City
	if err := json.NewDecoder(r).Decode(&cities); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return cities, nil
}

// ImportJSON reads a city list from the file at path.
func ImportJSON(path string) ([]City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
