package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/zipcities/pkg/zipcode"
)

func TestProject(t *testing.T) {
	places := []zipcode.Place{
		zipcode.Location{City: "new york", State: "ny", Population: 100000},
		zipcode.Alias{City: "manhattan", State: "ny", Population: 100000},
		zipcode.Location{City: "winston-salem", State: "nc", Population: 7},
		zipcode.Location{City: "st. louis", State: "mo"},
		zipcode.Location{City: "cataño", State: "pr", Population: 3},
		zipcode.Location{City: "o'fallon", State: "mo", Population: 90000},
		zipcode.Alias{City: "coeur d'alene", State: "id", Population: 55000},
		zipcode.Location{City: "mcallen", State: "tx", Population: 140000},
	}

	want := []City{
		{"New York", "NY", 100000},
		{"Manhattan", "NY", 100000},
		{"Winston-Salem", "NC", 7},
		{"St. Louis", "MO", 0},
		{"Cataño", "PR", 3},
		{"O'Fallon", "MO", 90000},
		{"Coeur D'Alene", "ID", 55000},
		{"Mcallen", "TX", 140000},
	}

	got := Project(places)
	if len(got) != len(want) {
		t.Fatalf("got %d cities, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Project()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name   string
		cities []City
		want   string
	}{
		{
			name:   "two cities",
			cities: []City{{"New York", "NY", 100000}, {"Manhattan", "NY", 100000}},
			want:   `[["New York","NY",100000],["Manhattan","NY",100000]]` + "\n",
		},
		{
			name:   "no html escaping",
			cities: []City{{"A & B", "NY", 1}},
			want:   `[["A & B","NY",1]]` + "\n",
		},
		{
			name:   "nil",
			cities: nil,
			want:   "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(tt.cities, &buf); err != nil {
				t.Fatalf("WriteJSON() error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("WriteJSON() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cities := []City{{"New York", "NY", 100000}, {"Cataño", "PR", 3}}

	var buf bytes.Buffer
	if err := WriteJSON(cities, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(got) != len(cities) {
		t.Fatalf("got %d cities, want %d", len(got), len(cities))
	}
	for i := range cities {
		if got[i] != cities[i] {
			t.Errorf("city[%d] = %+v, want %+v", i, got[i], cities[i])
		}
	}
}

func TestReadJSONRejectsBadEntries(t *testing.T) {
	tests := []string{
		`{"not": "a list"}`,
		`[["New York","NY"]]`,
		`[["New York","NY","many"]]`,
		`[[1,"NY",2]]`,
		`[`,
	}
	for _, input := range tests {
		if _, err := ReadJSON(strings.NewReader(input)); err == nil {
			t.Errorf("ReadJSON(%q) should fail", input)
		}
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cities.json")

	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	cities := []City{{"Boston", "MA", 200}}
	if err := ExportJSON(cities, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if len(got) != 1 || got[0] != cities[0] {
		t.Errorf("ImportJSON() = %+v, want %+v", got, cities)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestExportJSONRelativePath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := ExportJSON([]City{{"Boston", "MA", 1}}, "cities.json"); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	if _, err := os.Stat("cities.json"); err != nil {
		t.Errorf("relative output not written to working directory: %v", err)
	}
}

func TestExportJSONMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cities.json")
	if err := ExportJSON([]City{{"Boston", "MA", 1}}, path); err == nil {
		t.Error("ExportJSON() into a missing directory should fail")
	}
}

func TestWriteFileIsByteExact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.json")
	data := []byte(`[["Boston","MA",1]]` + "\n")

	if err := WriteFile(data, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file = %q, want %q", got, data)
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ImportJSON() of a missing file should fail")
	}
}
