package listing

import (
	"strings"
	"testing"
	"time"

	"home_search/internal/config"
)

func testAreas() config.AreaList {
	return config.AreaList{
		{Name: "Hitchin", SearchURL: "https://example.com/search/hitchin", DistanceKM: 56},
		{Name: "Potters Bar", SearchURL: "https://example.com/search/potters-bar", DistanceKM: 27},
	}
}

func testNormalizer() *Normalizer {
	return &Normalizer{
		areas:            testAreas(),
		descriptionLimit: 300,
		defaultBedrooms:  4,
		now:              func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		raw  RawListing
		want string
	}{
		{
			name: "url path segment",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/properties/123456789"},
			want: "123456789",
		},
		{
			name: "url path segment with trailing slash",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/properties/123456789/"},
			want: "123456789",
		},
		{
			name: "url path segment with fragment",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/properties/987654#/media"},
			want: "987654",
		},
		{
			name: "url path segment with query",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/properties/42?channel=RES_BUY"},
			want: "42",
		},
		{
			name: "propertyUrl fallback",
			raw:  RawListing{PropertyURL: "https://www.rightmove.co.uk/properties/555"},
			want: "555",
		},
		{
			name: "numeric provider id when no marker",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/house-for-sale", PropertyID: "777"},
			want: "777",
		},
		{
			name: "id field after propertyId",
			raw:  RawListing{URL: "https://www.rightmove.co.uk/house-for-sale", ID: "888"},
			want: "888",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveID(tt.raw); got != tt.want {
				t.Errorf("DeriveID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveIDHashFallback(t *testing.T) {
	raw := RawListing{URL: "https://www.rightmove.co.uk/somewhere-else"}

	first := DeriveID(raw)
	second := DeriveID(raw)

	if first == "" {
		t.Fatal("expected non-empty hash-derived ID")
	}
	if first != second {
		t.Errorf("hash-derived ID not deterministic: %q vs %q", first, second)
	}

	other := DeriveID(RawListing{URL: "https://www.rightmove.co.uk/a-different-page"})
	if other == first {
		t.Errorf("different URLs produced the same ID %q", first)
	}
}

func TestNormalizeAreaInference(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name string
		raw  RawListing
		want string
	}{
		{
			name: "address substring match",
			raw:  RawListing{Address: "14 High St, Hitchin"},
			want: "Hitchin",
		},
		{
			name: "case insensitive match",
			raw:  RawListing{DisplayAddress: "3 Elm Close, POTTERS BAR, Herts"},
			want: "Potters Bar",
		},
		{
			name: "no match",
			raw:  RawListing{Address: "1 Unknown Rd"},
			want: AreaUnknown,
		},
		{
			name: "search url echo wins",
			raw:  RawListing{SearchURL: "https://example.com/search/potters-bar", Address: "14 High St, Hitchin"},
			want: "Potters Bar",
		},
		{
			name: "unrecognized search url falls back to address",
			raw:  RawListing{SearchURL: "https://example.com/search/elsewhere", Address: "14 High St, Hitchin"},
			want: "Hitchin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw)
			if got.Area != tt.want {
				t.Errorf("area = %q, want %q", got.Area, tt.want)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	n := testNormalizer()

	got := n.Normalize(RawListing{URL: "https://www.rightmove.co.uk/properties/1"})

	if got.ID != "1" {
		t.Errorf("ID = %q, want %q", got.ID, "1")
	}
	if got.Bedrooms != 4 {
		t.Errorf("Bedrooms = %d, want 4", got.Bedrooms)
	}
	if got.Price != "Unknown" {
		t.Errorf("Price = %q, want %q", got.Price, "Unknown")
	}
	if got.Address != "Unknown" {
		t.Errorf("Address = %q, want %q", got.Address, "Unknown")
	}
	if got.Source != "rightmove" {
		t.Errorf("Source = %q, want %q", got.Source, "rightmove")
	}
	if got.ScrapedAt.IsZero() {
		t.Error("ScrapedAt not set")
	}
}

func TestNormalizeFieldFallbacks(t *testing.T) {
	n := testNormalizer()

	raw := RawListing{
		PropertyURL:       "https://www.rightmove.co.uk/properties/99",
		DisplayPrice:      "£750,000",
		DisplayAddress:    "2 Station Rd, Hitchin",
		Bedrooms:          5,
		PropertyType:      "Detached",
		Description:       "A lovely house",
		BranchName:        "Acme Estates",
		ListingUpdateDate: "2026-08-20",
	}
	got := n.Normalize(raw)

	if got.URL != raw.PropertyURL {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Price != "£750,000" {
		t.Errorf("Price = %q", got.Price)
	}
	if got.Bedrooms != 5 {
		t.Errorf("Bedrooms = %d", got.Bedrooms)
	}
	if got.PropertyType != "Detached" {
		t.Errorf("PropertyType = %q", got.PropertyType)
	}
	if got.Agent != "Acme Estates" {
		t.Errorf("Agent = %q", got.Agent)
	}
	if got.AddedDate != "2026-08-20" {
		t.Errorf("AddedDate = %q", got.AddedDate)
	}
}

func TestNormalizeTruncation(t *testing.T) {
	n := testNormalizer()

	raw := RawListing{
		URL:     "https://www.rightmove.co.uk/properties/7",
		Summary: strings.Repeat("x", 500),
	}
	got := n.Normalize(raw)

	if len([]rune(got.Description)) != 300 {
		t.Errorf("description length = %d, want 300", len([]rune(got.Description)))
	}
}

func TestNormalizeImageCap(t *testing.T) {
	n := testNormalizer()

	raw := RawListing{
		URL:    "https://www.rightmove.co.uk/properties/7",
		Images: imageList{"a", "b", "c", "d", "e"},
	}
	got := n.Normalize(raw)

	if len(got.Images) != 3 {
		t.Errorf("images = %d, want 3", len(got.Images))
	}
}
