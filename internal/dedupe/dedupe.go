// Package dedupe partitions a normalized batch into new and already-seen
// listings against the persisted seen-set.
package dedupe

import "home_search/internal/listing"

// Result is the outcome of one partition pass.
type Result struct {
	// All is the full input batch, order preserved.
	All []listing.Listing
	// New is the subset whose IDs were not in the seen-set, order preserved.
	New []listing.Listing
}

// Partition walks the batch once, appending unseen listings to New and
// adding their IDs to seen as it goes. Because a single mutable set is
// consulted across the whole pass, a batch that repeats an ID keeps only
// the first occurrence as new. The caller persists seen only after this
// returns, so a failure mid-pass never marks unprocessed listings as seen.
func Partition(batch []listing.Listing, seen map[string]struct{}) Result {
	res := Result{All: batch}
	for _, l := range batch {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		res.New = append(res.New, l)
		seen[l.ID] = struct{}{}
	}
	return res
}

// FilterKnownArea drops listings carrying the Unknown area sentinel.
// The spreadsheet view is organized by area, so unplaceable listings are
// excluded from storage (they still count for notification).
func FilterKnownArea(in []listing.Listing) []listing.Listing {
	out := make([]listing.Listing, 0, len(in))
	for _, l := range in {
		if l.Area != listing.AreaUnknown {
			out = append(out, l)
		}
	}
	return out
}
