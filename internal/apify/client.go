// Package apify talks to the Apify platform: it starts an actor run that
// scrapes the configured search URLs, waits for the run to finish, and
// pages through the result dataset. All rendering and anti-bot handling
// happens on Apify's side; this client only orchestrates the calls.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"home_search/internal/listing"
	"home_search/internal/poll"

	"github.com/rs/zerolog/log"
)

const baseURL = "https://api.apify.com/v2"

// datasetPageSize is the item limit per dataset request.
const datasetPageSize = 1000

type Client struct {
	token        string
	actorID      string
	client       *http.Client
	pollConfig   poll.Config
	apiCallCount int64
	apiCallMutex sync.Mutex
}

type runInput struct {
	StartURLs []startURL `json:"startUrls"`
	MaxItems  int        `json:"maxItems"`
	Proxy     proxyOpts  `json:"proxy"`
}

type startURL struct {
	URL string `json:"url"`
}

type proxyOpts struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data runData `json:"data"`
}

type userData struct {
	Username string `json:"username"`
	Plan     struct {
		ID string `json:"id"`
	} `json:"plan"`
}

type userResponse struct {
	Data userData `json:"data"`
}

func NewClient(token, actorID string, pollConfig poll.Config) *Client {
	return &Client{
		token:   token,
		actorID: actorID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollConfig: pollConfig,
	}
}

// Enabled reports whether an API token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// RunScraper starts the actor against the given search URLs, waits for the
// run to reach a terminal state, and returns the dataset items.
func (c *Client) RunScraper(ctx context.Context, searchURLs []string, maxItems int) ([]listing.RawListing, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("APIFY_API_TOKEN is not set")
	}

	run, err := c.startRun(ctx, searchURLs, maxItems)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", run.ID).
		Str("actor", c.actorID).
		Int("search_urls", len(searchURLs)).
		Msg("Started actor run")

	finished, err := c.waitForRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if finished.Status != "SUCCEEDED" {
		return nil, fmt.Errorf("actor run %s ended with status %s", finished.ID, finished.Status)
	}

	items, err := c.datasetItems(ctx, finished.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", finished.ID).
		Int("items", len(items)).
		Msg("Actor run complete")
	return items, nil
}

// Whoami fetches the authenticated account, used for connectivity checks.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("APIFY_API_TOKEN is not set")
	}

	var resp userResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/me?token=%s", baseURL, url.QueryEscape(c.token)), &resp); err != nil {
		return "", err
	}
	return resp.Data.Username, nil
}

func (c *Client) startRun(ctx context.Context, searchURLs []string, maxItems int) (*runData, error) {
	input := runInput{
		MaxItems: maxItems,
		Proxy:    proxyOpts{UseApifyProxy: true},
	}
	for _, u := range searchURLs {
		input.StartURLs = append(input.StartURLs, startURL{URL: u})
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	// Actor IDs use ~ instead of / in request paths.
	actorPath := strings.ReplaceAll(c.actorID, "/", "~")
	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s", baseURL, actorPath, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.IncrementAPICall()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start actor run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("start run failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run response: %w", err)
	}
	return &run.Data, nil
}

// waitForRun polls the run until it reaches a terminal status.
func (c *Client) waitForRun(ctx context.Context, runID string) (*runData, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s", baseURL, url.QueryEscape(runID), url.QueryEscape(c.token))

	return poll.Until(ctx, c.pollConfig, func(ctx context.Context) (*runData, bool, error) {
		var resp runResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, false, err
		}

		switch resp.Data.Status {
		case "SUCCEEDED", "FAILED", "ABORTED", "TIMED-OUT":
			return &resp.Data, true, nil
		default:
			log.Debug().
				Str("run_id", runID).
				Str("status", resp.Data.Status).
				Msg("Actor run still in progress")
			return nil, false, nil
		}
	})
}

// datasetItems pages through the run's default dataset.
func (c *Client) datasetItems(ctx context.Context, datasetID string) ([]listing.RawListing, error) {
	var all []listing.RawListing

	for offset := 0; ; offset += datasetPageSize {
		endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s&format=json&clean=true&offset=%d&limit=%d",
			baseURL, url.QueryEscape(datasetID), url.QueryEscape(c.token), offset, datasetPageSize)

		var page []listing.RawListing
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, fmt.Errorf("failed to read dataset page at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		if len(page) < datasetPageSize {
			return all, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.IncrementAPICall()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
