package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAreasMissingFileUsesDefaults(t *testing.T) {
	areas, err := LoadAreas(filepath.Join(t.TempDir(), "areas.yaml"))
	if err != nil {
		t.Fatalf("LoadAreas() error = %v", err)
	}
	if len(areas) != 11 {
		t.Errorf("default areas = %d, want 11", len(areas))
	}
	if areas[0].Name != "Hitchin" {
		t.Errorf("first default area = %q, want Hitchin", areas[0].Name)
	}
}

func TestLoadAreasFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.yaml")
	content := `areas:
  - name: Hitchin
    search_url: "https://example.com/hitchin"
    distance_km: 56
    commute: "38-45 min"
  - name: Sutton
    search_url: "https://example.com/sutton"
    distance_km: 21
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	areas, err := LoadAreas(path)
	if err != nil {
		t.Fatalf("LoadAreas() error = %v", err)
	}
	if len(areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(areas))
	}
	if areas[0].DistanceKM != 56 || areas[0].Commute != "38-45 min" {
		t.Errorf("first area = %+v", areas[0])
	}
	if areas[1].Name != "Sutton" {
		t.Errorf("order not preserved: %+v", areas)
	}
}

func TestLoadAreasRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.yaml")

	for name, content := range map[string]string{
		"bad yaml":       "areas: [",
		"no areas":       "areas: []",
		"missing fields": "areas:\n  - name: Hitchin\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadAreas(path); err == nil {
			t.Errorf("%s: LoadAreas() = nil error, want error", name)
		}
	}
}

func TestAreaListSelect(t *testing.T) {
	areas := AreaList{
		{Name: "Hitchin", SearchURL: "u1"},
		{Name: "Sutton", SearchURL: "u2"},
		{Name: "Purley", SearchURL: "u3"},
	}

	selected, unknown := areas.Select(" Sutton , Hitchin , Croydon ")

	if len(selected) != 2 || selected[0].Name != "Sutton" || selected[1].Name != "Hitchin" {
		t.Errorf("selected = %+v", selected)
	}
	if len(unknown) != 1 || unknown[0] != "Croydon" {
		t.Errorf("unknown = %v", unknown)
	}

	all, none := areas.Select("")
	if len(all) != 3 || none != nil {
		t.Errorf("empty selection: %d areas, unknown %v", len(all), none)
	}
}

func TestAreaListSearchURLs(t *testing.T) {
	areas := AreaList{{Name: "A", SearchURL: "u1"}, {Name: "B", SearchURL: "u2"}}

	urls := areas.SearchURLs()
	if len(urls) != 2 || urls[0] != "u1" || urls[1] != "u2" {
		t.Errorf("SearchURLs() = %v", urls)
	}
}
