// Package dashboard orchestrates the core components into the views the
// presentation layer consumes: current-day analysis, the multi-day
// forecast, and the cached history series.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"solar-dashboard/internal/geocode"
	"solar-dashboard/internal/solar"
	"solar-dashboard/internal/store"
	"solar-dashboard/internal/weather"
)

// DefaultForecastDays matches the original five-day forecast window
// (today plus four days).
const DefaultForecastDays = 5

// WeatherFetcher is the slice of the weather client the service needs.
type WeatherFetcher interface {
	FetchDay(ctx context.Context, lat, lon float64, date time.Time) (weather.WeatherDay, error)
	FetchRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.WeatherDay, error)
}

// SeriesPoint is one cached day enriched with its potential score, ready
// for charting.
type SeriesPoint struct {
	weather.WeatherDay
	Analysis solar.Analysis `json:"analysis"`
}

// CurrentView is the current-day payload: today's observation, its
// analysis, the optional energy estimate, and the full cached series.
type CurrentView struct {
	Location  weather.Location   `json:"location"`
	Today     weather.WeatherDay `json:"today"`
	Analysis  solar.Analysis     `json:"analysis"`
	EnergyKWh *float64           `json:"energyKwh,omitempty"`
	Series    []SeriesPoint      `json:"series"`
}

// ForecastDay is one forecast entry with its optional energy estimate.
// Forecast data is never cached.
type ForecastDay struct {
	weather.WeatherDay
	EnergyKWh *float64 `json:"energyKwh,omitempty"`
}

// Service holds the active location and capacity input and coordinates
// fetching, caching, and derivation. A mutex guards the active state; the
// location tag taken before a fetch is re-checked before any cache commit
// so a response for a superseded location never overwrites newer state.
type Service struct {
	fetcher  WeatherFetcher
	cache    *store.Cache
	resolver *geocode.Resolver
	now      func() time.Time

	mu       sync.Mutex
	location weather.Location
	capacity string
}

// NewService restores the last-used location and capacity from the cache
// and returns a ready service.
func NewService(fetcher WeatherFetcher, cache *store.Cache, resolver *geocode.Resolver) *Service {
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		resolver: resolver,
		now:      time.Now,
		location: cache.LoadLastLocation(),
		capacity: cache.LoadCapacity(),
	}
}

// Location returns the active location.
func (s *Service) Location() weather.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// SetLocation makes loc the active location, persists it, and records it in
// the recent-selection list.
func (s *Service) SetLocation(loc weather.Location) error {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()

	s.resolver.RecordSelection(loc)
	return s.cache.SaveLastLocation(loc)
}

// Capacity returns the persisted system-capacity input, "" when unset.
func (s *Service) Capacity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// SetCapacity validates and persists the capacity input. Empty means
// "unset" and removes the persisted key.
func (s *Service) SetCapacity(v string) error {
	if v != "" {
		kw, err := strconv.ParseFloat(v, 64)
		if err != nil || kw < 0 {
			return fmt.Errorf("capacity must be a non-negative decimal or empty")
		}
	}

	s.mu.Lock()
	s.capacity = v
	s.mu.Unlock()

	return s.cache.SaveCapacity(v)
}

// Current builds the current-day view for the active location. When the
// cached series misses today's entry it fetches it, appends it, and saves
// the series back. On fetch failure the cached data is left untouched and
// the error surfaces to the caller.
func (s *Service) Current(ctx context.Context) (CurrentView, error) {
	s.mu.Lock()
	loc := s.location
	capacity := s.capacity
	s.mu.Unlock()

	key := loc.Key()
	series := s.cache.LoadSeries(loc)
	today := s.now().Format(weather.DateFormat)

	if !hasDate(series, today) {
		day, err := s.fetcher.FetchDay(ctx, loc.Latitude, loc.Longitude, s.now())
		if err != nil {
			return CurrentView{}, err
		}

		series = upsert(series, day)

		s.mu.Lock()
		stale := s.location.Key() != key
		s.mu.Unlock()
		if stale {
			// Location changed while the request was in flight; do not
			// overwrite the newer location's state.
			log.Printf("dashboard: discarding stale weather response for %s", key)
			return CurrentView{}, fmt.Errorf("location changed during fetch")
		}

		if err := s.cache.SaveSeries(loc, series); err != nil {
			log.Printf("dashboard: saving series for %s failed: %v", key, err)
		}
	}

	view := CurrentView{Location: loc, Series: scoreSeries(series)}
	if len(series) > 0 {
		view.Today = series[len(series)-1]
		view.Analysis = solar.Analyze(view.Today)
		view.EnergyKWh = estimateFor(capacity, view.Today)
	}
	return view, nil
}

// Forecast fetches the inclusive window today..today+days-1 and returns
// per-day entries with optional energy estimates. Forecast data is not
// cached.
func (s *Service) Forecast(ctx context.Context, days int) ([]ForecastDay, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}

	s.mu.Lock()
	loc := s.location
	capacity := s.capacity
	s.mu.Unlock()

	start := s.now()
	end := start.AddDate(0, 0, days-1)

	series, err := s.fetcher.FetchRange(ctx, loc.Latitude, loc.Longitude, start, end)
	if err != nil {
		return nil, err
	}

	forecast := make([]ForecastDay, 0, len(series))
	for _, day := range series {
		forecast = append(forecast, ForecastDay{
			WeatherDay: day,
			EnergyKWh:  estimateFor(capacity, day),
		})
	}
	return forecast, nil
}

// RefreshToday fetches today's observation for the active location and
// folds it into the cached series, replacing any existing entry for the
// date. The scheduler calls this periodically.
func (s *Service) RefreshToday(ctx context.Context) error {
	s.mu.Lock()
	loc := s.location
	s.mu.Unlock()

	key := loc.Key()
	day, err := s.fetcher.FetchDay(ctx, loc.Latitude, loc.Longitude, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	stale := s.location.Key() != key
	s.mu.Unlock()
	if stale {
		log.Printf("dashboard: discarding stale refresh for %s", key)
		return nil
	}

	series := upsert(s.cache.LoadSeries(loc), day)
	return s.cache.SaveSeries(loc, series)
}

// estimateFor returns the energy estimate for the day, or nil when no
// valid capacity has been entered. Absence means "do not estimate"; no
// zero default is substituted.
func estimateFor(capacity string, day weather.WeatherDay) *float64 {
	if capacity == "" {
		return nil
	}
	kw, err := strconv.ParseFloat(capacity, 64)
	if err != nil {
		return nil
	}
	est := solar.Estimate(kw, day)
	return &est
}

func scoreSeries(series []weather.WeatherDay) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(series))
	for _, day := range series {
		points = append(points, SeriesPoint{WeatherDay: day, Analysis: solar.Analyze(day)})
	}
	return points
}

func hasDate(series []weather.WeatherDay, date string) bool {
	for _, day := range series {
		if day.Date == date {
			return true
		}
	}
	return false
}

// upsert replaces the entry sharing day's date or appends it, keeping the
// series unique by date and sorted ascending.
func upsert(series []weather.WeatherDay, day weather.WeatherDay) []weather.WeatherDay {
	replaced := false
	for i := range series {
		if series[i].Date == day.Date {
			series[i] = day
			replaced = true
			break
		}
	}
	if !replaced {
		series = append(series, day)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
