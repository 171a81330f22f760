package templates

import (
	"math"
	"strings"
	"testing"

	"bus_notify/internal/geo"
)

func TestCatalog(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("catalog is empty")
	}

	seen := map[string]bool{}
	for _, tpl := range all {
		t.Run(tpl.ID, func(t *testing.T) {
			if tpl.ID == "" || tpl.Name == "" {
				t.Error("template needs an id and a name")
			}
			if seen[tpl.ID] {
				t.Errorf("duplicate template id %q", tpl.ID)
			}
			seen[tpl.ID] = true

			if len(tpl.Stops) < 2 {
				t.Errorf("template has %d stops, want at least 2", len(tpl.Stops))
			}
			if tpl.DistanceKm <= 0 || tpl.DurationMinutes <= 0 {
				t.Errorf("distance %f / duration %d must be positive", tpl.DistanceKm, tpl.DurationMinutes)
			}
			if tpl.Direction != "inbound" && tpl.Direction != "outbound" {
				t.Errorf("unknown direction %q", tpl.Direction)
			}

			// The display distance must agree with the stop geography.
			pts := make([]geo.Point, len(tpl.Stops))
			for i, s := range tpl.Stops {
				pts[i] = geo.Point{Lat: s.Lat, Lng: s.Lng}
			}
			if got := geo.PathLengthKm(pts); math.Abs(got-tpl.DistanceKm) > 0.15 {
				t.Errorf("declared distance %f km, path length %f km", tpl.DistanceKm, got)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tpl, ok := Lookup("campus-loop")
	if !ok {
		t.Fatal("campus-loop not found")
	}
	if tpl.Name != "Campus Loop" {
		t.Errorf("name = %q, want Campus Loop", tpl.Name)
	}

	if _, ok := Lookup("no-such-template"); ok {
		t.Error("Lookup returned ok for unknown id")
	}
}

func TestApply(t *testing.T) {
	loop, _ := Lookup("campus-loop")
	express, _ := Lookup("north-dorm-express")

	var d RouteDraft
	Apply(&d, loop)
	if len(d.Stops) != len(loop.Stops) {
		t.Fatalf("draft has %d stops, want %d", len(d.Stops), len(loop.Stops))
	}
	if d.DistanceKm != loop.DistanceKm || d.DurationMinutes != loop.DurationMinutes {
		t.Errorf("distance/duration = %f/%d, want %f/%d",
			d.DistanceKm, d.DurationMinutes, loop.DistanceKm, loop.DurationMinutes)
	}

	// Switching templates discards the previous stop list and replaces
	// distance and duration together.
	Apply(&d, express)
	if len(d.Stops) != len(express.Stops) {
		t.Fatalf("after switch draft has %d stops, want %d", len(d.Stops), len(express.Stops))
	}
	if d.Stops[0].Name != "North Dormitories" {
		t.Errorf("first stop = %q, want North Dormitories", d.Stops[0].Name)
	}
	if d.DistanceKm != express.DistanceKm || d.DurationMinutes != express.DurationMinutes {
		t.Errorf("switch left stale distance/duration: %f/%d", d.DistanceKm, d.DurationMinutes)
	}
}

func TestApplyCopiesStops(t *testing.T) {
	tpl, _ := Lookup("housing-line")

	var d RouteDraft
	Apply(&d, tpl)
	d.Stops[0].Name = "Edited In Draft"

	fresh, _ := Lookup("housing-line")
	if fresh.Stops[0].Name != "Student Housing" {
		t.Errorf("editing a draft mutated the catalog: %q", fresh.Stops[0].Name)
	}
}

func TestValidate(t *testing.T) {
	valid := func() RouteDraft {
		return RouteDraft{
			Name:             "Route 99",
			Direction:        "outbound",
			FrequencyMinutes: 10,
			Stops: []TemplateStop{
				{Name: "A", Lat: 40.71, Lng: -74.00},
				{Name: "B", Lat: 40.72, Lng: -74.01},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*RouteDraft)
		wantErr string
	}{
		{"valid draft", func(d *RouteDraft) {}, ""},
		{"missing name", func(d *RouteDraft) { d.Name = "  " }, "name is required"},
		{"no stops", func(d *RouteDraft) { d.Stops = nil }, "at least 2 stops"},
		{"one stop", func(d *RouteDraft) { d.Stops = d.Stops[:1] }, "at least 2 stops"},
		{"unnamed stop", func(d *RouteDraft) { d.Stops[1].Name = "" }, "requires a name"},
		{"bad direction", func(d *RouteDraft) { d.Direction = "sideways" }, "direction"},
		{"zero frequency", func(d *RouteDraft) { d.FrequencyMinutes = 0 }, "frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := Validate(d)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEstimateDurationMinutes(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		stops      int
		want       int
	}{
		{"zero distance", 0, 2, 0},
		{"short hop", 0.5, 2, 2},            // ceil(0.5/18*60) = 2, no dwell
		{"loop with dwell", 6.4, 4, 24},     // ceil(21.33) + 2 dwell
		{"single point ignored", 1.8, 1, 6}, // ceil(6) + 0
		{"exact pace multiple", 5.4, 2, 18}, // 18 min even
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDurationMinutes(tt.distanceKm, tt.stops); got != tt.want {
				t.Errorf("EstimateDurationMinutes(%f, %d) = %d, want %d", tt.distanceKm, tt.stops, got, tt.want)
			}
		})
	}
}
