package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
}

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		t.Fatalf("bad test date %s: %v", s, err)
	}
	return d
}

func TestFetchRange(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"daily": {
				"time": ["2025-06-01", "2025-06-02", "2025-06-03"],
				"temperature_2m_mean": [21.5, 19.0, 18.2],
				"cloudcover_mean": [10, 55, 100],
				"sunshine_duration": [36000, 18000, null]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	c.backoff = testBackoff()

	series, err := c.FetchRange(context.Background(), 40.7128, -74.006, testDate(t, "2025-06-01"), testDate(t, "2025-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("expected 3 days, got %d", len(series))
	}
	if series[0].Date != "2025-06-01" || series[2].Date != "2025-06-03" {
		t.Fatalf("series not in ascending date order: %v", series)
	}
	// 36000 s -> 10.0 h, null -> 0 h.
	if series[0].SunshineHours != 10.0 {
		t.Fatalf("expected 10.0 sunshine hours, got %v", series[0].SunshineHours)
	}
	if series[2].SunshineHours != 0 {
		t.Fatalf("expected 0 sunshine hours for null duration, got %v", series[2].SunshineHours)
	}
	if series[1].Temperature != 19.0 || series[1].CloudCover != 55 {
		t.Fatalf("unexpected day values: %+v", series[1])
	}

	for _, want := range []string{
		"daily=temperature_2m_mean%2Ccloudcover_mean%2Csunshine_duration",
		"timezone=auto",
		"start_date=2025-06-01",
		"end_date=2025-06-03",
	} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("request query missing %q: %s", want, gotQuery)
		}
	}
}

func TestFetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"daily": {
				"time": ["2025-06-01"],
				"temperature_2m_mean": [21.5],
				"cloudcover_mean": [10],
				"sunshine_duration": [28800]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	c.backoff = testBackoff()

	day, err := c.FetchDay(context.Background(), 40.7128, -74.006, testDate(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Date != "2025-06-01" || day.SunshineHours != 8.0 {
		t.Fatalf("unexpected day: %+v", day)
	}
}

func TestFetchRangeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	c.backoff = testBackoff()

	_, err := c.FetchRange(context.Background(), 0, 0, testDate(t, "2025-06-01"), testDate(t, "2025-06-01"))
	fetchErr, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorNetwork {
		t.Fatalf("expected network kind, got %s", fetchErr.Kind)
	}
}

func TestFetchRangeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily": not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	c.backoff = testBackoff()

	_, err := c.FetchRange(context.Background(), 0, 0, testDate(t, "2025-06-01"), testDate(t, "2025-06-01"))
	fetchErr, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorParse {
		t.Fatalf("expected parse kind, got %s", fetchErr.Kind)
	}
}

func TestFetchRangeMismatchedArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"daily": {
				"time": ["2025-06-01", "2025-06-02"],
				"temperature_2m_mean": [21.5],
				"cloudcover_mean": [10, 20],
				"sunshine_duration": [36000, 36000]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	c.backoff = testBackoff()

	_, err := c.FetchRange(context.Background(), 0, 0, testDate(t, "2025-06-01"), testDate(t, "2025-06-02"))
	fetchErr, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorParse {
		t.Fatalf("expected parse kind, got %s", fetchErr.Kind)
	}
}

func TestSunshineSecondsToHours(t *testing.T) {
	secs := 36000.0
	if got := SunshineSecondsToHours(&secs); got != 10.0 {
		t.Fatalf("36000 s: expected 10.0 h, got %v", got)
	}

	secs = 5130 // 1.425 h rounds to 1.4
	if got := SunshineSecondsToHours(&secs); got != 1.4 {
		t.Fatalf("5130 s: expected 1.4 h, got %v", got)
	}

	if got := SunshineSecondsToHours(nil); got != 0 {
		t.Fatalf("nil duration: expected 0 h, got %v", got)
	}
}
