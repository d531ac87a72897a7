package domain

import "testing"

func TestCityForPosition(t *testing.T) {
	tests := []struct {
		name     string
		position int
		want     string
		found    bool
	}{
		{name: "first cell", position: 1, want: "tver", found: true},
		{name: "tver upper bound", position: 12, want: "tver", found: true},
		{name: "kineshma lower bound", position: 13, want: "kineshma", found: true},
		{name: "naberezhnye lower bound", position: 25, want: "naberezhnye_chelny", found: true},
		{name: "kazan contains fifty", position: 50, want: "kazan", found: true},
		{name: "volgograd lower bound", position: 51, want: "volgograd", found: true},
		{name: "last cell", position: 72, want: "astrakhan", found: true},
		{name: "below board", position: 0, found: false},
		{name: "above board", position: 73, found: false},
		{name: "negative", position: -4, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CityForPosition(tt.position)
			if ok != tt.found {
				t.Fatalf("CityForPosition(%d) found = %t, want %t", tt.position, ok, tt.found)
			}
			if got != tt.want {
				t.Fatalf("CityForPosition(%d) = %q, want %q", tt.position, got, tt.want)
			}
		})
	}
}

func TestCityZonesAreDisjointAndCoverBoard(t *testing.T) {
	for pos := 1; pos <= 72; pos++ {
		matches := 0
		for _, zone := range CityZones {
			if pos >= zone.From && pos <= zone.To {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("position %d belongs to %d zones, want exactly 1", pos, matches)
		}
	}
}

func TestCityZonesFirstIsStartingCity(t *testing.T) {
	if CityZones[0].Key != FirstCity {
		t.Fatalf("first zone = %q, want %q", CityZones[0].Key, FirstCity)
	}
	city, ok := CityForPosition(StartingPosition)
	if !ok || city != FirstCity {
		t.Fatalf("starting position derives %q (found=%t), want %q", city, ok, FirstCity)
	}
}
