package sheets

import (
	"testing"
	"time"

	"home_search/internal/config"
	"home_search/internal/listing"
)

func testStore() *Store {
	return &Store{
		spreadsheetID: "test",
		areas: config.AreaList{
			{Name: "Hitchin", DistanceKM: 56},
			{Name: "Sutton", DistanceKM: 21},
		},
		now: func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) },
	}
}

func TestBuildRows(t *testing.T) {
	s := testStore()

	rows := s.buildRows([]listing.Listing{{
		ID:           "1",
		URL:          "https://www.rightmove.co.uk/properties/1",
		Price:        "£750,000",
		Address:      "14 High St, Hitchin",
		Bedrooms:     4,
		PropertyType: "Detached",
		AddedDate:    "Added on 20/08/2026",
		Area:         "Hitchin",
	}})

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if len(row) != 11 {
		t.Fatalf("columns = %d, want 11", len(row))
	}

	want := []interface{}{
		"2026-08-30", "Added on 20/08/2026", "Hitchin", "56", "£750,000",
		"14 High St, Hitchin", "4", "Detached",
		"https://www.rightmove.co.uk/properties/1", "New", "",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestBuildRowsUnconfiguredAreaHasNoDistance(t *testing.T) {
	s := testStore()

	rows := s.buildRows([]listing.Listing{{ID: "1", Area: "Elsewhere", Bedrooms: 4}})

	if rows[0][3] != "" {
		t.Errorf("distance = %v, want empty for unconfigured area", rows[0][3])
	}
}

func TestBuildRowsDescriptionFallsBackForPropertyType(t *testing.T) {
	s := testStore()

	rows := s.buildRows([]listing.Listing{{
		ID:          "1",
		Area:        "Sutton",
		Bedrooms:    4,
		Description: "A lovely semi",
	}})

	if rows[0][7] != "A lovely semi" {
		t.Errorf("property type column = %v, want description fallback", rows[0][7])
	}
}

func TestURL(t *testing.T) {
	s := testStore()
	if got := s.URL(); got != "https://docs.google.com/spreadsheets/d/test" {
		t.Errorf("URL() = %q", got)
	}

	empty := &Store{}
	if got := empty.URL(); got != "" {
		t.Errorf("URL() with no sheet = %q, want empty", got)
	}
}
