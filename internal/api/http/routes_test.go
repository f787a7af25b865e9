package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"solar-dashboard/internal/dashboard"
	"solar-dashboard/internal/geocode"
	"solar-dashboard/internal/store"
	"solar-dashboard/internal/weather"
)

type stubFetcher struct {
	day weather.WeatherDay
	err error
}

func (s *stubFetcher) FetchDay(ctx context.Context, lat, lon float64, date time.Time) (weather.WeatherDay, error) {
	return s.day, s.err
}

func (s *stubFetcher) FetchRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.WeatherDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []weather.WeatherDay{s.day}, nil
}

func newTestApp(t *testing.T, fetcher dashboard.WeatherFetcher) *fiber.App {
	t.Helper()
	app := fiber.New()

	cache := store.NewCache(store.NewMemory())
	resolver := geocode.NewResolver(http.DefaultClient, "", cache)
	svc := dashboard.NewService(fetcher, cache, resolver)
	RegisterRoutes(app, svc, resolver, dashboard.DefaultForecastDays)
	return app
}

// TestForecastDaysValidation verifies that the forecast endpoint enforces
// the expected 1-7 range for the `days` query parameter.
func TestForecastDaysValidation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{day: weather.WeatherDay{Date: "2025-06-03"}})

	for _, days := range []string{"0", "8", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/solar/forecast?days="+days, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("days=%s: expected status %d, got %d", days, http.StatusBadRequest, resp.StatusCode)
		}
	}

	// Missing days falls back to the default window.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/solar/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestForecastFetchFailure(t *testing.T) {
	app := newTestApp(t, &stubFetcher{err: &weather.FetchError{Kind: weather.FetchErrorNetwork}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/solar/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestCurrentFetchFailure(t *testing.T) {
	app := newTestApp(t, &stubFetcher{err: &weather.FetchError{Kind: weather.FetchErrorNetwork}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/solar/current", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestSearchShortQueryReturnsEmptyList(t *testing.T) {
	app := newTestApp(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/search?q=a", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search must degrade, not fail: got %d", resp.StatusCode)
	}

	var body struct {
		Results []weather.Location `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if body.Results == nil || len(body.Results) != 0 {
		t.Fatalf("expected empty (non-null) results array, got %v", body.Results)
	}
}

func TestPutLocationValidation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{})

	// Out-of-range latitude is rejected.
	bad := `{"name": "Nowhere", "country": "XX", "latitude": 95, "longitude": 0}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/location", strings.NewReader(bad))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	good := `{"name": "Lisbon", "country": "Portugal", "latitude": 38.72, "longitude": -9.14}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/location", strings.NewReader(good))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	// The selection lands in the recents list.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/locations/recents", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Recents []weather.Location `json:"recents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if len(body.Recents) != 1 || body.Recents[0].Name != "Lisbon" {
		t.Fatalf("expected Lisbon in recents, got %v", body.Recents)
	}
}

func TestPutCapacityValidation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/capacity", strings.NewReader(`{"capacity": "-3"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/capacity", strings.NewReader(`{"capacity": "5.5"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/capacity", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Capacity string `json:"capacity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if body.Capacity != "5.5" {
		t.Fatalf("expected capacity 5.5, got %q", body.Capacity)
	}
}
