package listing

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"home_search/internal/config"
)

const propertiesMarker = "/properties/"

// Normalizer maps raw actor records to canonical Listings. It is pure: no
// I/O, never fails, defaults applied for missing fields.
type Normalizer struct {
	areas            config.AreaList
	descriptionLimit int
	defaultBedrooms  int
	now              func() time.Time
}

// NewNormalizer builds a Normalizer bound to the configured areas and bounds.
func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{
		areas:            cfg.Areas,
		descriptionLimit: cfg.DescriptionLimit,
		defaultBedrooms:  cfg.DefaultBedrooms,
		now:              time.Now,
	}
}

// Normalize converts one raw record into a canonical Listing.
func (n *Normalizer) Normalize(raw RawListing) Listing {
	url := raw.ListingURL()

	bedrooms := int(raw.Bedrooms)
	if bedrooms == 0 {
		bedrooms = n.defaultBedrooms
	}

	propertyType := firstNonEmpty(raw.PropertySubType, raw.PropertyType)
	description := truncate(firstNonEmpty(raw.Summary, raw.Description), n.descriptionLimit)

	images := raw.Images
	if len(images) == 0 {
		images = raw.PropertyImages
	}
	if len(images) > 3 {
		images = images[:3]
	}

	return Listing{
		ID:           DeriveID(raw),
		URL:          url,
		Price:        firstNonEmpty(string(raw.Price), string(raw.DisplayPrice), "Unknown"),
		Address:      firstNonEmpty(raw.Address, raw.DisplayAddress, "Unknown"),
		Bedrooms:     bedrooms,
		Bathrooms:    string(raw.Bathrooms),
		PropertyType: propertyType,
		Description:  description,
		Agent:        firstNonEmpty(raw.Agent.Name, raw.BranchName),
		AddedDate:    firstNonEmpty(raw.AddedOrReduced, raw.ListingUpdateDate),
		Images:       images,
		Area:         n.inferArea(raw),
		ScrapedAt:    n.now(),
		Source:       "rightmove",
	}
}

// NormalizeBatch maps a whole raw batch, preserving order.
func (n *Normalizer) NormalizeBatch(raws []RawListing) []Listing {
	out := make([]Listing, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(raw))
	}
	return out
}

// DeriveID computes the stable listing identifier. The scheme is fixed:
// the path segment after "/properties/" in the listing URL, else the
// provider-supplied numeric ID, else an FNV-1a hash of the URL. Changing
// this scheme invalidates any existing ledger and requires a rebuild.
func DeriveID(raw RawListing) string {
	url := raw.ListingURL()

	if idx := strings.Index(url, propertiesMarker); idx >= 0 {
		seg := url[idx+len(propertiesMarker):]
		if cut := strings.IndexAny(seg, "/#?"); cut >= 0 {
			seg = seg[:cut]
		}
		if seg != "" {
			return seg
		}
	}

	if raw.PropertyID != "" {
		return string(raw.PropertyID)
	}
	if raw.ID != "" {
		return string(raw.ID)
	}

	h := fnv.New64a()
	h.Write([]byte(url))
	return fmt.Sprintf("u%d", h.Sum64())
}

// inferArea assigns the area: the originating search URL when the actor
// echoes it back, else a case-insensitive substring match of configured
// area names against the address, first match wins in configured order.
func (n *Normalizer) inferArea(raw RawListing) string {
	if raw.SearchURL != "" {
		for _, a := range n.areas {
			if raw.SearchURL == a.SearchURL {
				return a.Name
			}
		}
	}

	address := strings.ToLower(firstNonEmpty(raw.Address, raw.DisplayAddress))
	for _, a := range n.areas {
		if strings.Contains(address, strings.ToLower(a.Name)) {
			return a.Name
		}
	}
	return AreaUnknown
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
