package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"home_search/internal/config"
	"home_search/internal/listing"

	"github.com/rs/zerolog/log"
)

// Tab names inside the spreadsheet.
const (
	listingsTab = "Property Listings"
	areasTab    = "Search Areas"
	seenTab     = "Seen Listings"
)

// listingsGridID is the grid ID of the first tab in a spreadsheet we create.
const listingsGridID = 0

var listingHeaders = []interface{}{
	"Date Added", "Date Listed", "Area", "Distance (km)", "Price",
	"Address", "Bedrooms", "Property Type", "URL", "Status", "Notes",
}

// Store is the spreadsheet sink. It keeps its own record of which listing
// IDs it has written (the Seen Listings tab), because the sheet may be
// shared by more than one ledger-owning process. That record is a write
// confirmation only; the local ledger decides what gets notified.
type Store struct {
	client        *Client
	spreadsheetID string
	idPath        string
	title         string
	areas         config.AreaList
	now           func() time.Time
}

// NewStore builds the spreadsheet sink from configuration. The spreadsheet
// ID comes from GOOGLE_SHEET_ID when set, else from the state-dir file a
// previous run wrote; when neither exists the first Upload creates one.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	s := &Store{
		client:        client,
		spreadsheetID: cfg.SheetID,
		idPath:        cfg.SheetIDPath(),
		title:         "London Home Search",
		areas:         cfg.Areas,
		now:           time.Now,
	}
	if s.spreadsheetID == "" {
		if data, err := os.ReadFile(s.idPath); err == nil {
			s.spreadsheetID = strings.TrimSpace(string(data))
		}
	}
	return s, nil
}

// URL returns the spreadsheet link, or "" when no spreadsheet exists yet.
func (s *Store) URL() string {
	if s.spreadsheetID == "" {
		return ""
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", s.spreadsheetID)
}

// Ensure creates the backing spreadsheet if none is configured, writing the
// header rows and the area reference block, and persists the new ID.
func (s *Store) Ensure(ctx context.Context) error {
	if s.spreadsheetID != "" {
		return nil
	}

	log.Info().Str("title", s.title).Msg("No spreadsheet configured, creating one")

	id, err := s.client.CreateSpreadsheet(ctx, s.title, []string{listingsTab, areasTab, seenTab})
	if err != nil {
		return err
	}
	s.spreadsheetID = id

	headerRange := fmt.Sprintf("%s!A1:K1", listingsTab)
	if err := s.client.UpdateRange(ctx, id, headerRange, [][]interface{}{listingHeaders}); err != nil {
		return err
	}

	areaRows := [][]interface{}{{"Area", "Commute to Moorgate", "Distance (km)", "Search URL"}}
	for _, a := range s.areas {
		areaRows = append(areaRows, []interface{}{a.Name, a.Commute, strconv.Itoa(a.DistanceKM), a.SearchURL})
	}
	areaRange := fmt.Sprintf("%s!A1:D%d", areasTab, len(areaRows))
	if err := s.client.UpdateRange(ctx, id, areaRange, areaRows); err != nil {
		return err
	}

	seenRange := fmt.Sprintf("%s!A1:B1", seenTab)
	if err := s.client.UpdateRange(ctx, id, seenRange, [][]interface{}{{"Listing ID", "First Seen Date"}}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.idPath), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.idPath, []byte(id), 0o644); err != nil {
		return fmt.Errorf("persist sheet id: %w", err)
	}

	log.Info().Str("url", s.URL()).Msg("Created spreadsheet")
	return nil
}

// SeenIDs reads the Seen Listings tab into a set.
func (s *Store) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	if s.spreadsheetID == "" {
		return make(map[string]struct{}), nil
	}

	values, err := s.client.ReadSheet(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:A", seenTab))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for i, row := range values {
		if i == 0 || len(row) == 0 || row[0] == nil {
			continue // header or blank
		}
		id := fmt.Sprintf("%v", row[0])
		if id != "" {
			seen[id] = struct{}{}
		}
	}
	return seen, nil
}

// Upload writes listings to the Property Listings tab, newest first, and
// records their IDs on the Seen Listings tab. With onlyNew set, listings
// whose IDs the sheet already carries are skipped entirely. The returned
// subset is what was genuinely appended this call.
func (s *Store) Upload(ctx context.Context, listings []listing.Listing, onlyNew bool) ([]listing.Listing, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}

	sheetSeen, err := s.SeenIDs(ctx)
	if err != nil {
		return nil, err
	}

	if onlyNew {
		var kept []listing.Listing
		for _, l := range listings {
			if _, ok := sheetSeen[l.ID]; !ok {
				kept = append(kept, l)
			}
		}
		listings = kept
	}

	if len(listings) == 0 {
		log.Info().Msg("No listings to upload")
		return nil, nil
	}

	rows := s.buildRows(listings)

	var added []listing.Listing
	var seenRows [][]interface{}
	for _, l := range listings {
		if _, ok := sheetSeen[l.ID]; ok {
			continue
		}
		seenRows = append(seenRows, []interface{}{l.ID, s.now().Format(time.RFC3339)})
		added = append(added, l)
	}

	// Insert at row 2 so the newest listings sit directly under the header.
	if err := s.client.InsertRows(ctx, s.spreadsheetID, listingsGridID, 1, len(rows)); err != nil {
		return nil, err
	}
	dataRange := fmt.Sprintf("%s!A2:K%d", listingsTab, 1+len(rows))
	if err := s.client.UpdateRange(ctx, s.spreadsheetID, dataRange, rows); err != nil {
		return nil, err
	}

	if len(seenRows) > 0 {
		if err := s.client.AppendRows(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:B", seenTab), seenRows); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("uploaded", len(rows)).
		Int("newly_seen", len(added)).
		Str("url", s.URL()).
		Msg("Sheet update complete")

	return added, nil
}

// buildRows maps listings to Property Listings rows, in column order:
// Date Added, Date Listed, Area, Distance (km), Price, Address, Bedrooms,
// Property Type, URL, Status, Notes.
func (s *Store) buildRows(listings []listing.Listing) [][]interface{} {
	today := s.now().Format("2006-01-02")

	rows := make([][]interface{}, 0, len(listings))
	for _, l := range listings {
		distance := ""
		if a, ok := s.areas.ByName(l.Area); ok {
			distance = strconv.Itoa(a.DistanceKM)
		}

		propertyType := l.PropertyType
		if propertyType == "" {
			propertyType = l.Description
		}

		rows = append(rows, []interface{}{
			today,
			l.AddedDate,
			l.Area,
			distance,
			l.Price,
			l.Address,
			strconv.Itoa(l.Bedrooms),
			propertyType,
			l.URL,
			"New",
			"",
		})
	}
	return rows
}
