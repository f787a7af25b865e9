package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// DateFormat is the calendar-date layout the Open-Meteo API speaks.
const DateFormat = "2006-01-02"

// Client fetches daily aggregate weather metrics from the Open-Meteo
// forecast API.
type Client struct {
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. baseURL overrides the production endpoint,
// mainly for tests; pass "" for the default.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
		backoff: DefaultBackoff,
		circuit: NewBreaker("open-meteo-weather"),
	}
}

// FetchDay fetches a single day's aggregates for the coordinate.
func (c *Client) FetchDay(ctx context.Context, lat, lon float64, date time.Time) (WeatherDay, error) {
	series, err := c.FetchRange(ctx, lat, lon, date, date)
	if err != nil {
		return WeatherDay{}, err
	}
	if len(series) == 0 {
		return WeatherDay{}, &FetchError{Kind: FetchErrorParse, Err: fmt.Errorf("no daily entry for %s", date.Format(DateFormat))}
	}
	return series[0], nil
}

// FetchRange fetches the inclusive date window [start, end] in one request
// and returns one WeatherDay per day, ascending by date. On any transport
// or shape error the whole call fails with a *FetchError; there are no
// partial results.
func (c *Client) FetchRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]WeatherDay, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%v", lat))
		values.Set("longitude", fmt.Sprintf("%v", lon))
		values.Set("daily", "temperature_2m_mean,cloudcover_mean,sunshine_duration")
		values.Set("timezone", "auto")
		values.Set("start_date", start.Format(DateFormat))
		values.Set("end_date", end.Format(DateFormat))

		u := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := DoWithResilience(ctx, c.client, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, Err: err}
	}
	defer resp.Body.Close()

	// Parallel arrays indexed by day offset. Sunshine duration is nullable:
	// the provider reports null for days it has no sun data for.
	var payload struct {
		Daily struct {
			Time             []string   `json:"time"`
			Temperature      []float64  `json:"temperature_2m_mean"`
			CloudCover       []float64  `json:"cloudcover_mean"`
			SunshineDuration []*float64 `json:"sunshine_duration"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Kind: FetchErrorParse, Err: err}
	}

	d := payload.Daily
	if len(d.Time) == 0 {
		return nil, &FetchError{Kind: FetchErrorParse, Err: fmt.Errorf("response contains no daily data")}
	}
	if len(d.Temperature) != len(d.Time) || len(d.CloudCover) != len(d.Time) || len(d.SunshineDuration) != len(d.Time) {
		return nil, &FetchError{Kind: FetchErrorParse, Err: fmt.Errorf("daily arrays have mismatched lengths")}
	}

	series := make([]WeatherDay, 0, len(d.Time))
	for i := range d.Time {
		series = append(series, WeatherDay{
			Date:          d.Time[i],
			Temperature:   d.Temperature[i],
			CloudCover:    d.CloudCover[i],
			SunshineHours: SunshineSecondsToHours(d.SunshineDuration[i]),
		})
	}
	return series, nil
}

// SunshineSecondsToHours converts the provider's sunshine duration
// (seconds, nullable) into hours rounded to one decimal. A missing value
// counts as zero seconds.
func SunshineSecondsToHours(seconds *float64) float64 {
	var s float64
	if seconds != nil {
		s = *seconds
	}
	return math.Round(s/3600*10) / 10
}
