package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config carries everything the pipeline needs, resolved once at startup.
// Components receive it explicitly; nothing reads the environment after Load.
type Config struct {
	// Apify
	ApifyToken string
	ActorID    string
	MaxItems   int

	// Google Sheets
	SheetID         string // optional; discovered from StateDir when empty
	CredentialsFile string

	// Twilio WhatsApp
	TwilioAccountSID string
	TwilioAuthToken  string
	WhatsAppFrom     string
	WhatsAppTo       string

	// Local state
	StateDir string

	// Bounds
	DescriptionLimit int
	DefaultBedrooms  int
	PollInterval     time.Duration
	PollTimeout      time.Duration

	Areas AreaList
}

const (
	defaultActorID          = "dhrumil~rightmove-scraper"
	defaultMaxItems         = 100
	defaultStateDir         = ".tmp"
	defaultDescriptionLimit = 300
	defaultBedrooms         = 4
)

// Load builds a Config from environment variables and the areas file.
// Credentials may be absent; the affected collaborator is disabled rather
// than failing here.
func Load(areasFile string) (*Config, error) {
	areas, err := LoadAreas(areasFile)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}

	cfg := &Config{
		ApifyToken: os.Getenv("APIFY_API_TOKEN"),
		ActorID:    getEnvWithDefault("APIFY_ACTOR_ID", defaultActorID),
		MaxItems:   getEnvInt("APIFY_MAX_ITEMS", defaultMaxItems),

		SheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		CredentialsFile: getEnvWithDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		WhatsAppFrom:     getEnvWithDefault("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
		WhatsAppTo:       os.Getenv("WHATSAPP_TO"),

		StateDir: getEnvWithDefault("STATE_DIR", defaultStateDir),

		DescriptionLimit: defaultDescriptionLimit,
		DefaultBedrooms:  defaultBedrooms,
		PollInterval:     5 * time.Second,
		PollTimeout:      10 * time.Minute,

		Areas: areas,
	}
	return cfg, nil
}

// LedgerPath is the JSON array of seen listing IDs.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.StateDir, "seen_listings.json")
}

// ListingsPath is the full-batch snapshot written each run.
func (c *Config) ListingsPath() string {
	return filepath.Join(c.StateDir, "listings.json")
}

// NewListingsPath is the new-listings snapshot consumed by --notify-only.
func (c *Config) NewListingsPath() string {
	return filepath.Join(c.StateDir, "new_listings.json")
}

// SheetIDPath is the fallback location for a created spreadsheet's ID.
func (c *Config) SheetIDPath() string {
	return filepath.Join(c.StateDir, "sheet_id.txt")
}

// getEnvWithDefault fetches an environment variable with a default fallback.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt fetches an integer environment variable with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
