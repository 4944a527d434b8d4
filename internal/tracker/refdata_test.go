package tracker

import "testing"

func testCatalog() []AircraftDefinition {
	return []AircraftDefinition{
		{
			ID:   "a777",
			Name: "Boeing 777-300ER",
			Liveries: []LiveryInfo{
				{ID: "l1", Name: "Skyward"},
				{ID: "l2", Name: "Generic"},
			},
		},
		{
			ID:   "a320",
			Name: "Airbus A320",
			Liveries: []LiveryInfo{
				{ID: "l3", Name: "Skyward"},
			},
		},
	}
}

func TestBuildReferenceIndex(t *testing.T) {
	index := BuildReferenceIndex(testCatalog())

	if len(index.AircraftByID) != 2 {
		t.Errorf("aircraft entries = %d, want 2", len(index.AircraftByID))
	}
	if len(index.LiveryByID) != 3 {
		t.Errorf("livery entries = %d, want 3", len(index.LiveryByID))
	}

	livery, ok := index.LiveryByID["l3"]
	if !ok {
		t.Fatal("livery l3 not indexed")
	}
	if livery.AircraftID != "a320" {
		t.Errorf("livery l3 aircraft id = %q, want a320", livery.AircraftID)
	}
	if livery.Name != "Skyward" {
		t.Errorf("livery l3 name = %q, want Skyward", livery.Name)
	}
}

func TestDisplayName(t *testing.T) {
	index := BuildReferenceIndex(testCatalog())

	cases := []struct {
		name       string
		aircraftID string
		liveryID   string
		want       string
	}{
		{"Resolved", "a777", "l1", "Boeing 777-300ER (Skyward)"},
		{"Unknown aircraft", "missing", "l1", UnknownAircraftLabel},
		{"Unknown livery", "a777", "missing", UnknownAircraftLabel},
		{"Both unknown", "x", "y", UnknownAircraftLabel},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := index.DisplayName(c.aircraftID, c.liveryID); got != c.want {
				t.Errorf("DisplayName = %q, want %q", got, c.want)
			}
		})
	}

	t.Run("Nil index", func(t *testing.T) {
		var nilIndex *ReferenceIndex
		if got := nilIndex.DisplayName("a777", "l1"); got != UnknownAircraftLabel {
			t.Errorf("DisplayName on nil index = %q, want %q", got, UnknownAircraftLabel)
		}
	})
}
