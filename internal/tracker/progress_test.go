package tracker

import (
	"math"
	"strings"
	"testing"
)

// equatorPlan builds a plan with waypoints along the equator at the given
// longitudes (degrees). One degree of longitude there is about 60 nm.
func equatorPlan(lons ...float64) *RoutePlan {
	waypoints := make([]Waypoint, 0, len(lons))
	for i, lon := range lons {
		waypoints = append(waypoints, Waypoint{
			Name:     string(rune('A' + i)),
			Location: WaypointLocation{Latitude: 0, Longitude: lon},
		})
	}
	return &RoutePlan{Waypoints: waypoints}
}

func TestFindActiveLegIndex(t *testing.T) {
	tenFixes := equatorPlan(0, 5, 10, 15, 20, 25, 30, 35, 40, 45).Waypoints

	cases := []struct {
		name      string
		lat, lon  float64
		waypoints []Waypoint
		want      int
	}{
		{
			// Nearest fix is index 2 at 150 nm - beyond the pass
			// threshold, before the midpoint, so no adjustment
			name:      "No adjustment",
			lat:       0,
			lon:       12.4,
			waypoints: tenFixes,
			want:      2,
		},
		{
			// Within 100 nm of fix 2: considered passed, advance one
			name:      "Distance adjustment",
			lat:       0,
			lon:       10.1,
			waypoints: tenFixes,
			want:      3,
		},
		{
			// Within 100 nm of fix 6, which is past the midpoint: the
			// midpoint adjustment (+2) overrides the distance one (+1)
			name:      "Midpoint adjustment overrides distance adjustment",
			lat:       0,
			lon:       30.1,
			waypoints: tenFixes,
			want:      8,
		},
		{
			// Past the midpoint but outside the pass threshold
			name:      "Midpoint adjustment alone",
			lat:       0,
			lon:       32.5,
			waypoints: tenFixes,
			want:      8,
		},
		{
			// Two-waypoint plan, on top of the destination: every
			// adjustment clamps back to leg 0
			name:      "Two waypoints clamped",
			lat:       0,
			lon:       10,
			waypoints: equatorPlan(0, 10).Waypoints,
			want:      0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FindActiveLegIndex(c.lat, c.lon, c.waypoints)
			if got != c.want {
				t.Errorf("FindActiveLegIndex = %d, want %d", got, c.want)
			}
		})
	}
}

func TestFindActiveLegIndexBounds(t *testing.T) {
	plans := []*RoutePlan{
		equatorPlan(0, 10),
		equatorPlan(0, 5, 10),
		equatorPlan(0, 5, 10, 15, 20, 25, 30, 35, 40, 45),
	}
	positions := [][2]float64{
		{0, -20}, {0, 0}, {0, 3}, {0, 22.5}, {0, 44.9}, {0, 45}, {0, 90}, {50, 100},
	}

	for _, plan := range plans {
		for _, pos := range positions {
			got := FindActiveLegIndex(pos[0], pos[1], plan.Waypoints)
			if got < 0 || got > len(plan.Waypoints)-2 {
				t.Errorf("FindActiveLegIndex(%v, %d waypoints) = %d, outside [0, %d]",
					pos, len(plan.Waypoints), got, len(plan.Waypoints)-2)
			}
		}
	}
}

func TestEstimateProgress(t *testing.T) {
	t.Run("Unusable plan", func(t *testing.T) {
		for _, plan := range []*RoutePlan{nil, {}, equatorPlan(0)} {
			p := EstimateProgress(0, 5, plan, 450)
			if p.Percent != 0 {
				t.Errorf("percent = %v, want 0", p.Percent)
			}
			if p.ETA != "N/A" {
				t.Errorf("eta = %q, want N/A", p.ETA)
			}
			if strings.Contains(p.Bar, progressBarFilled) {
				t.Errorf("bar should be empty, got %q", p.Bar)
			}
		}
	})

	t.Run("Mid-route", func(t *testing.T) {
		plan := equatorPlan(0, 10)
		p := EstimateProgress(0, 4, plan, 400)

		if math.Abs(p.Percent-40) > 0.1 {
			t.Errorf("percent = %v, want ~40", p.Percent)
		}
		// Remaining 6 deg (~360.2 nm) at 400 kts is ~54 minutes
		if p.ETA != "54m" {
			t.Errorf("eta = %q, want 54m", p.ETA)
		}
		if filled := strings.Count(p.Bar, progressBarFilled); filled != 4 {
			t.Errorf("filled cells = %d, want 4", filled)
		}
	})

	t.Run("At destination", func(t *testing.T) {
		plan := equatorPlan(0, 10)
		p := EstimateProgress(0, 10, plan, 400)

		if p.Percent != 100 {
			t.Errorf("percent = %v, want 100", p.Percent)
		}
		if p.ETA != "0m" {
			t.Errorf("eta = %q, want 0m", p.ETA)
		}
		if filled := strings.Count(p.Bar, progressBarFilled); filled != progressBarCells {
			t.Errorf("filled cells = %d, want %d", filled, progressBarCells)
		}
	})

	t.Run("Barely started", func(t *testing.T) {
		plan := equatorPlan(0, 10)
		p := EstimateProgress(0, 0.05, plan, 400)

		if p.Percent > 1 {
			t.Errorf("percent = %v, want <= 1", p.Percent)
		}
		if p.ETA != "N/A" {
			t.Errorf("eta = %q, want N/A below 1 percent", p.ETA)
		}
	})

	t.Run("Zero speed yields no ETA", func(t *testing.T) {
		plan := equatorPlan(0, 10)
		p := EstimateProgress(0, 4, plan, 0)

		if p.ETA != "N/A" {
			t.Errorf("eta = %q, want N/A at zero speed", p.ETA)
		}
	})

	t.Run("Percent always in range", func(t *testing.T) {
		plan := equatorPlan(0, 5, 10)
		positions := [][2]float64{{0, -50}, {0, 0}, {0, 7}, {0, 10}, {0, 60}, {80, 170}}
		for _, pos := range positions {
			p := EstimateProgress(pos[0], pos[1], plan, 300)
			if p.Percent < 0 || p.Percent > 100 {
				t.Errorf("percent at %v = %v, outside [0,100]", pos, p.Percent)
			}
		}
	})
}

func TestRenderProgressBar(t *testing.T) {
	cases := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{4.9, 0},
		{5, 1}, // 0.5 rounds up
		{10, 1},
		{25, 3},
		{50, 5},
		{94, 9},
		{95, 10},
		{100, 10},
	}
	for _, c := range cases {
		bar := renderProgressBar(c.percent)
		filled := strings.Count(bar, progressBarFilled)
		empty := strings.Count(bar, progressBarEmpty)
		if filled != c.filled {
			t.Errorf("renderProgressBar(%v): filled = %d, want %d", c.percent, filled, c.filled)
		}
		if filled+empty != progressBarCells {
			t.Errorf("renderProgressBar(%v): %d cells, want %d", c.percent, filled+empty, progressBarCells)
		}
	}
}

func TestFormatETA(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "0m"},
		{0.5, "30m"},
		{0.9006, "54m"},
		{1.5, "1h 30m"},
		{2.0, "2h 0m"},
		{0.995, "1h 0m"}, // 59.7 minutes rounds up to a full hour
	}
	for _, c := range cases {
		if got := formatETA(c.hours); got != c.want {
			t.Errorf("formatETA(%v) = %q, want %q", c.hours, got, c.want)
		}
	}
}

func TestRouteString(t *testing.T) {
	cases := []struct {
		name string
		plan *RoutePlan
		want string
	}{
		{
			name: "Nil plan",
			plan: nil,
			want: NoPlanRoute,
		},
		{
			name: "Empty plan",
			plan: &RoutePlan{},
			want: NoPlanRoute,
		},
		{
			name: "Plain waypoints",
			plan: &RoutePlan{Waypoints: []Waypoint{
				{Name: "CYYZ"},
				{Name: "EGLL"},
			}},
			want: "CYYZ → EGLL",
		},
		{
			name: "Runway child preferred",
			plan: &RoutePlan{Waypoints: []Waypoint{
				{Name: "CYYZ"},
				{Name: "EGLL", Children: []Waypoint{
					{Name: "FIX1"},
					{Name: "RW27L"},
				}},
			}},
			want: "CYYZ → RW27L",
		},
		{
			name: "Runway word matched",
			plan: &RoutePlan{Waypoints: []Waypoint{
				{Name: "KLAX"},
				{Name: "KSFO", Children: []Waypoint{
					{Name: "Runway 28R"},
				}},
			}},
			want: "KLAX → Runway 28R",
		},
		{
			name: "No runway child falls back to airport name",
			plan: &RoutePlan{Waypoints: []Waypoint{
				{Name: "KLAX"},
				{Name: "KSFO", Children: []Waypoint{
					{Name: "FIX2"},
				}},
			}},
			want: "KLAX → KSFO",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := RouteString(c.plan); got != c.want {
				t.Errorf("RouteString = %q, want %q", got, c.want)
			}
		})
	}
}
