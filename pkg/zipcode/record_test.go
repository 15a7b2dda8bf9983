package zipcode

import "testing"

func TestKeyIgnoresNonIdentityFields(t *testing.T) {
	a := Location{Line: 2, Zip: "10001", City: "new york", State: "ny", Population: 10}
	b := Alias{Line: 9, Zip: "10282", City: "new york", State: "ny", Population: 99}

	if a.Key() != b.Key() {
		t.Errorf("keys differ: %v vs %v", a.Key(), b.Key())
	}

	seen := map[Key]bool{a.Key(): true}
	if !seen[b.Key()] {
		t.Error("alias key should hit the location's map entry")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		place Place
		want  string
	}{
		{Location{}, "location"},
		{Alias{}, "alias"},
	}
	for _, tt := range tests {
		if got := tt.place.Kind().String(); got != tt.want {
			t.Errorf("Kind() = %q, want %q", got, tt.want)
		}
	}
	if got := Kind(7).String(); got != "kind(7)" {
		t.Errorf("Kind(7).String() = %q", got)
	}
}

func TestValidState(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"NY", true},
		{"ny", true},
		{" DC ", true},
		{"PR", true},
		{"GU", true},
		{"AA", false},
		{"AE", false},
		{"AP", false},
		{"ZZ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidState(tt.code); got != tt.want {
			t.Errorf("ValidState(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
