// Package geocode resolves free-text queries into candidate locations via
// the Open-Meteo geocoding API and maintains the recent-selection list.
// Search results and recents are advisory: every failure here degrades to
// an empty list instead of reaching the caller.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"solar-dashboard/internal/weather"
)

const (
	// MaxResults caps a search to the provider's top matches; the provider
	// order is relevance-ranked and preserved as-is.
	MaxResults = 5
	// MaxRecent bounds the recent-location list.
	MaxRecent = 5
	// Queries shorter than this short-circuit to empty without touching the
	// network, to control request volume while the user is still typing.
	minQueryLength = 2
)

// RecentsStore is the slice of persisted state the resolver needs.
type RecentsStore interface {
	LoadRecents() []weather.Location
	SaveRecents(recents []weather.Location) error
}

// Resolver performs location search and tracks recent selections.
type Resolver struct {
	baseURL string
	client  *http.Client
	backoff weather.BackoffConfig
	circuit *gobreaker.CircuitBreaker
	recents RecentsStore
}

// NewResolver creates a Resolver. baseURL overrides the production
// geocoding endpoint, mainly for tests; pass "" for the default.
func NewResolver(httpClient *http.Client, baseURL string, recents RecentsStore) *Resolver {
	if baseURL == "" {
		baseURL = "https://geocoding-api.open-meteo.com"
	}
	return &Resolver{
		baseURL: baseURL,
		client:  httpClient,
		backoff: weather.DefaultBackoff,
		circuit: weather.NewBreaker("open-meteo-geocoding"),
		recents: recents,
	}
}

// Search returns up to MaxResults candidate locations for the query, in
// provider relevance order. Transport and parse failures are swallowed: the
// UI degrades to "no results", never to an error.
func (r *Resolver) Search(ctx context.Context, query string) []weather.Location {
	results, err := r.search(ctx, query)
	if err != nil {
		log.Printf("geocode: search %q failed: %v", query, err)
		return nil
	}
	return results
}

// search is the typed inner result, so tests can distinguish "legitimately
// empty" from "failed and defaulted".
func (r *Resolver) search(ctx context.Context, query string) ([]weather.Location, error) {
	if len(query) < minQueryLength {
		return nil, nil
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", fmt.Sprintf("%d", MaxResults))
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s/v1/search?%s", r.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := weather.DoWithResilience(ctx, r.client, r.backoff, r.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	locs := make([]weather.Location, 0, len(payload.Results))
	for _, res := range payload.Results {
		if len(locs) >= MaxResults {
			break
		}
		locs = append(locs, weather.Location{
			Name:      res.Name,
			Country:   res.Country,
			Admin1:    res.Admin1,
			Latitude:  res.Latitude,
			Longitude: res.Longitude,
		})
	}
	return locs, nil
}

// RecordSelection inserts loc at the front of the recent-location list,
// removing any structurally equal prior entry and truncating to MaxRecent.
func (r *Resolver) RecordSelection(loc weather.Location) {
	recents := r.recents.LoadRecents()

	updated := make([]weather.Location, 0, len(recents)+1)
	updated = append(updated, loc)
	for _, prev := range recents {
		if prev.Equal(loc) {
			continue
		}
		updated = append(updated, prev)
	}
	if len(updated) > MaxRecent {
		updated = updated[:MaxRecent]
	}

	if err := r.recents.SaveRecents(updated); err != nil {
		log.Printf("geocode: persisting recent locations failed: %v", err)
	}
}

// Recents returns the persisted recent-location list, most recent first.
func (r *Resolver) Recents() []weather.Location {
	return r.recents.LoadRecents()
}
