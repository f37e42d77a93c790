package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Area is one configured search area: the Rightmove search URL that produces
// its listings plus display attributes used for spreadsheet enrichment.
type Area struct {
	Name       string `yaml:"name"`
	SearchURL  string `yaml:"search_url"`
	DistanceKM int    `yaml:"distance_km"`
	Commute    string `yaml:"commute"`
}

// AreaList preserves configured order; area inference and spreadsheet
// reference rows both iterate in this order.
type AreaList []Area

type areasFile struct {
	Areas []Area `yaml:"areas"`
}

// LoadAreas reads the areas YAML file. A missing file falls back to the
// compiled-in default set; a malformed file is an error.
func LoadAreas(path string) (AreaList, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultAreas(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f areasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Areas) == 0 {
		return nil, fmt.Errorf("%s defines no areas", path)
	}
	for i, a := range f.Areas {
		if a.Name == "" || a.SearchURL == "" {
			return nil, fmt.Errorf("%s: area %d missing name or search_url", path, i)
		}
	}
	return f.Areas, nil
}

// Names returns area names in configured order.
func (l AreaList) Names() []string {
	names := make([]string, len(l))
	for i, a := range l {
		names[i] = a.Name
	}
	return names
}

// ByName returns the area with the given name, if configured.
func (l AreaList) ByName(name string) (Area, bool) {
	for _, a := range l {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

// Select filters the list down to a comma-separated name selection.
// Unknown names are reported back so the caller can warn about them.
func (l AreaList) Select(csv string) (AreaList, []string) {
	if strings.TrimSpace(csv) == "" {
		return l, nil
	}
	var selected AreaList
	var unknown []string
	for _, raw := range strings.Split(csv, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if a, ok := l.ByName(name); ok {
			selected = append(selected, a)
		} else {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}

// SearchURLs returns the provider queries in configured order.
func (l AreaList) SearchURLs() []string {
	urls := make([]string, len(l))
	for i, a := range l {
		urls[i] = a.SearchURL
	}
	return urls
}

const rightmoveSearch = "https://www.rightmove.co.uk/property-for-sale/find.html?locationIdentifier=REGION%%5E%s&minBedrooms=4&maxBedrooms=4&minPrice=600000&maxPrice=900000&propertyTypes=detached%%2Csemi-detached&dontShow=sharedOwnership&maxDaysSinceAdded=30&sortType=6"

// defaultAreas is the compiled-in search set: 4 bed detached/semi-detached,
// £600k-£900k, listed within 30 days.
func defaultAreas() AreaList {
	mk := func(name, region string, distance int, commute string) Area {
		return Area{
			Name:       name,
			SearchURL:  fmt.Sprintf(rightmoveSearch, region),
			DistanceKM: distance,
			Commute:    commute,
		}
	}
	return AreaList{
		mk("Hitchin", "61356", 56, "38-45 min"),
		mk("Potters Bar", "1040", 27, "33-37 min"),
		mk("Welwyn Garden City", "1326", 35, "~40 min"),
		mk("Watford", "1306", 27, "25-30 min"),
		mk("Barnet", "93536", 16, "30-35 min"),
		mk("Hatch End", "61267", 24, "~30 min"),
		mk("Dartford", "330", 29, "33-38 min"),
		mk("Gravesend", "513", 39, "40-45 min"),
		mk("Orpington", "949", 24, "35-40 min"),
		mk("Sutton", "40444", 21, "35-40 min"),
		mk("Purley", "1056", 22, "30-35 min"),
	}
}
