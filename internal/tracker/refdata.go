package tracker

import "fmt"

// UnknownAircraftLabel is used when an aircraft or livery id cannot be resolved
const UnknownAircraftLabel = "Unknown Aircraft"

// ReferenceIndex holds lookup maps built from the aircraft/livery catalog.
// Built once per snapshot and never mutated afterwards.
type ReferenceIndex struct {
	AircraftByID map[string]AircraftInfo
	LiveryByID   map[string]LiveryInfo
}

// BuildReferenceIndex builds lookup maps from the reference catalog payload.
// Purely structural - unknown ids resolve to UnknownAircraftLabel at display time.
func BuildReferenceIndex(catalog []AircraftDefinition) *ReferenceIndex {
	index := &ReferenceIndex{
		AircraftByID: make(map[string]AircraftInfo, len(catalog)),
		LiveryByID:   make(map[string]LiveryInfo),
	}

	for _, aircraft := range catalog {
		index.AircraftByID[aircraft.ID] = AircraftInfo{ID: aircraft.ID, Name: aircraft.Name}
		for _, livery := range aircraft.Liveries {
			index.LiveryByID[livery.ID] = LiveryInfo{
				ID:         livery.ID,
				Name:       livery.Name,
				AircraftID: aircraft.ID,
			}
		}
	}

	return index
}

// DisplayName resolves an aircraft+livery id pair to a display name.
// Falls back to UnknownAircraftLabel if either id is unresolvable.
func (r *ReferenceIndex) DisplayName(aircraftID, liveryID string) string {
	if r == nil {
		return UnknownAircraftLabel
	}

	aircraft, ok := r.AircraftByID[aircraftID]
	if !ok {
		return UnknownAircraftLabel
	}

	livery, ok := r.LiveryByID[liveryID]
	if !ok {
		return UnknownAircraftLabel
	}

	return fmt.Sprintf("%s (%s)", aircraft.Name, livery.Name)
}
