package tracker

import (
	"fmt"
	"math"
	"strings"

	"github.com/skywardva/fleetboard/pkg/geo"
)

// Progress estimation constants
const (
	// Waypoints closer than this are considered already passed
	passedWaypointThresholdNm = 100.0

	// Below this ground speed no meaningful ETA can be derived
	minSpeedForETAKts = 1.0

	progressBarCells = 10

	progressBarFilled = "█"
	progressBarEmpty  = "░"

	// NoPlanRoute is displayed when a flight has no filed plan
	NoPlanRoute = "No flight plan filed"

	etaUnknown = "N/A"
)

// Progress is the estimated position of a flight along its filed route
type Progress struct {
	Percent float64 // 0..100
	Bar     string  // 10-cell textual progress bar
	ETA     string  // Estimated time en route remaining, or "N/A"
}

// FindActiveLegIndex estimates which leg of the plan currently contains the
// aircraft. The telemetry feed carries no per-leg progress, so this works off
// proximity: the leg starting at the nearest waypoint, with two sequential
// adjustments. The distance-based adjustment is computed first; the
// midpoint-based adjustment is computed second and overrides it when both
// conditions hold. The result is always in [0, len(waypoints)-2].
func FindActiveLegIndex(lat, lon float64, waypoints []Waypoint) int {
	if len(waypoints) < 2 {
		return 0
	}

	bestIdx := 0
	bestDistNm := math.MaxFloat64
	for i, wp := range waypoints {
		d := geo.DistanceNm(lat, lon, wp.Location.Latitude, wp.Location.Longitude)
		if d < bestDistNm {
			bestDistNm = d
			bestIdx = i
		}
	}

	lastIdx := len(waypoints) - 1
	estimate := bestIdx

	// Within the pass threshold the nearest waypoint is behind us already
	if bestDistNm <= passedWaypointThresholdNm {
		estimate = min(bestIdx+1, lastIdx-1)
	}

	// Past the midpoint of the sequence, clustered intermediate fixes
	// (e.g. overlapping approach fixes) tend to drag the estimate back,
	// so skip further ahead. Overrides the distance adjustment above.
	if float64(bestIdx) > 0.5*float64(len(waypoints)) {
		estimate = min(bestIdx+2, lastIdx-1)
	}

	if estimate < 0 {
		estimate = 0
	}
	if estimate > lastIdx-1 {
		estimate = lastIdx - 1
	}

	return estimate
}

// EstimateProgress estimates route completion for an aircraft at the given
// position and ground speed. The total route distance is the great-circle
// distance between the first and last waypoint, not the sum of legs.
func EstimateProgress(lat, lon float64, plan *RoutePlan, speedKts float64) Progress {
	if !plan.Usable() {
		return Progress{Percent: 0, Bar: renderProgressBar(0), ETA: etaUnknown}
	}

	waypoints := plan.Waypoints
	first := waypoints[0]
	last := waypoints[len(waypoints)-1]

	totalNm := geo.DistanceNm(
		first.Location.Latitude, first.Location.Longitude,
		last.Location.Latitude, last.Location.Longitude,
	)

	legIdx := FindActiveLegIndex(lat, lon, waypoints)
	if legIdx >= len(waypoints)-1 || totalNm <= 0 {
		return Progress{Percent: 100, Bar: renderProgressBar(100), ETA: "0m"}
	}

	remainingNm := geo.DistanceNm(lat, lon, last.Location.Latitude, last.Location.Longitude)
	if remainingNm < 0 {
		remainingNm = 0
	}
	if remainingNm > totalNm {
		remainingNm = totalNm
	}

	percent := (totalNm - remainingNm) / totalNm * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	eta := etaUnknown
	if percent > 1 && speedKts >= minSpeedForETAKts {
		eta = formatETA(remainingNm / speedKts)
	}

	return Progress{
		Percent: percent,
		Bar:     renderProgressBar(percent),
		ETA:     eta,
	}
}

// renderProgressBar renders a 10-cell bar; filled cells = round(percent/10)
func renderProgressBar(percent float64) string {
	filled := int(math.Round(percent / 100 * progressBarCells))
	if filled < 0 {
		filled = 0
	}
	if filled > progressBarCells {
		filled = progressBarCells
	}

	return strings.Repeat(progressBarFilled, filled) +
		strings.Repeat(progressBarEmpty, progressBarCells-filled)
}

// formatETA formats a duration given in fractional hours as whole hours and minutes
func formatETA(hours float64) string {
	h := int(hours)
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// RouteString formats the departure and arrival of a plan for display.
// The arrival name prefers a runway-designator child of the final waypoint
// over the generic airport waypoint name.
func RouteString(plan *RoutePlan) string {
	if plan == nil || len(plan.Waypoints) == 0 {
		return NoPlanRoute
	}

	waypoints := plan.Waypoints
	departure := waypoints[0].Name
	arrival := arrivalName(waypoints[len(waypoints)-1])

	return fmt.Sprintf("%s → %s", departure, arrival)
}

// arrivalName picks the display name of the final waypoint, preferring a
// child waypoint named like a runway designator
func arrivalName(last Waypoint) string {
	for _, child := range last.Children {
		upper := strings.ToUpper(child.Name)
		if strings.HasPrefix(upper, "RW") || strings.Contains(upper, "RUNWAY") {
			return child.Name
		}
	}
	return last.Name
}
