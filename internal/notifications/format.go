package notifications

import (
	"fmt"
	"sort"
	"strings"

	"home_search/internal/listing"
)

// maxExamples is how many listings a summary message shows in full.
const maxExamples = 3

// FormatBatchMessage renders the notification body for a batch of new
// listings. One listing gets a single detailed card; more get a per-area
// count summary, up to three example cards, an overflow count, and a link
// to the spreadsheet when one exists. Empty input yields "".
func FormatBatchMessage(listings []listing.Listing, sheetURL string) string {
	if len(listings) == 0 {
		return ""
	}

	if len(listings) == 1 {
		l := listings[0]
		return fmt.Sprintf("*New Property!*\n\n*%s*\n%s\nArea: %s\n\n%s",
			l.Price, l.Address, l.Area, l.URL)
	}

	lines := []string{fmt.Sprintf("*%d New Properties!*\n", len(listings))}

	for _, ac := range areaCounts(listings) {
		lines = append(lines, fmt.Sprintf("  %s: %d", ac.area, ac.count))
	}

	lines = append(lines, fmt.Sprintf("\n*Top %d:*", maxExamples))
	shown := listings
	if len(shown) > maxExamples {
		shown = shown[:maxExamples]
	}
	for _, l := range shown {
		lines = append(lines, fmt.Sprintf("\n%s - %s\n%s\n%s",
			l.Price, l.Area, clip(l.Address, 50), l.URL))
	}

	if len(listings) > maxExamples {
		lines = append(lines, fmt.Sprintf("\n...and %d more", len(listings)-maxExamples))
	}

	if sheetURL != "" {
		lines = append(lines, fmt.Sprintf("\nView all: %s", sheetURL))
	}

	return strings.Join(lines, "\n")
}

type areaCount struct {
	area  string
	count int
}

// areaCounts tallies listings per area, descending by count with ties
// broken alphabetically so the summary is deterministic.
func areaCounts(listings []listing.Listing) []areaCount {
	counts := make(map[string]int)
	for _, l := range listings {
		area := l.Area
		if area == "" {
			area = listing.AreaUnknown
		}
		counts[area]++
	}

	out := make([]areaCount, 0, len(counts))
	for area, n := range counts {
		out = append(out, areaCount{area: area, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].area < out[j].area
	})
	return out
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
