package listing

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// AreaUnknown is assigned when neither the originating search query nor the
// address text identifies a configured area.
const AreaUnknown = "Unknown"

// Listing is the canonical record the rest of the pipeline works with.
// ID is stable per property and never recomputed once assigned.
type Listing struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Price        string    `json:"price"`
	Address      string    `json:"address"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    string    `json:"bathrooms"`
	PropertyType string    `json:"property_type"`
	Description  string    `json:"description"`
	Agent        string    `json:"agent"`
	AddedDate    string    `json:"added_date"`
	Images       []string  `json:"images"`
	Area         string    `json:"area"`
	ScrapedAt    time.Time `json:"scraped_at"`
	Source       string    `json:"source"`
}

// RawListing is the loosely-structured record the Apify actor returns.
// Historical actor versions disagree on field names, so every attribute
// carries its full fallback chain here; Normalize resolves each chain once
// and nothing downstream ever consults raw fields again.
type RawListing struct {
	URL         string     `json:"url"`
	PropertyURL string     `json:"propertyUrl"`
	SearchURL   string     `json:"searchUrl"`
	ID          flexString `json:"id"`
	PropertyID  flexString `json:"propertyId"`

	Price        flexString `json:"price"`
	DisplayPrice flexString `json:"displayPrice"`

	Address        string `json:"address"`
	DisplayAddress string `json:"displayAddress"`

	Bedrooms  flexInt    `json:"bedrooms"`
	Bathrooms flexString `json:"bathrooms"`

	PropertySubType string `json:"propertySubType"`
	PropertyType    string `json:"propertyType"`

	Summary     string `json:"summary"`
	Description string `json:"description"`

	Agent      agentRef `json:"agent"`
	BranchName string   `json:"branchName"`

	AddedOrReduced    string `json:"addedOrReduced"`
	ListingUpdateDate string `json:"listingUpdateDate"`

	Images         imageList `json:"images"`
	PropertyImages imageList `json:"propertyImages"`
}

// ListingURL resolves the URL fallback chain.
func (r RawListing) ListingURL() string {
	if r.URL != "" {
		return r.URL
	}
	return r.PropertyURL
}

type agentRef struct {
	Name string `json:"name"`
}

// flexString tolerates the actor returning a string, a number, or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*f = ""
	case len(s) >= 2 && s[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	}
	return nil
}

// flexInt tolerates the actor returning a number, a numeric string, or null.
// Zero means absent.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// imageList tolerates either ["url", ...] or [{"url": "..."}, ...].
type imageList []string

func (l *imageList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*l = plain
		return nil
	}
	var wrapped []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	urls := make([]string, 0, len(wrapped))
	for _, w := range wrapped {
		if w.URL != "" {
			urls = append(urls, w.URL)
		}
	}
	*l = urls
	return nil
}
