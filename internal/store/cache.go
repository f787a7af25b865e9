package store

import (
	"encoding/json"
	"errors"
	"log"

	"solar-dashboard/internal/weather"
)

// Persisted keyspaces. The series key is derived from coordinates only, so
// two locations with identical coordinates but different display names
// intentionally share one series.
const (
	seriesKeyPrefix = "solar_weather_data_"
	lastLocationKey = "solar_weather_location"
	recentsKey      = "solar_recent_locations"
	capacityKey     = "solar_kw_capacity"
)

// errCorrupt marks a persisted value that existed but failed to decode.
// It never escapes the exported surface; reads degrade to defaults.
var errCorrupt = errors.New("corrupted persisted value")

// Cache is the typed layer over a Backend. Exported reads never fail: a
// missing or corrupted value falls back to the documented default, because
// cached history and recents are advisory, not essential.
type Cache struct {
	backend Backend
}

// NewCache wraps the given backend.
func NewCache(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// get decodes the value under key into out, distinguishing "absent" from
// "present but unreadable" so tests can tell a legitimate miss from a
// swallowed failure.
func (c *Cache) get(key string, out interface{}) (found bool, err error) {
	data, found, err := c.backend.Get(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, errCorrupt
	}
	return true, nil
}

func (c *Cache) set(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(key, data)
}

// LoadSeries returns the cached weather series for the location's
// coordinates, or an empty series when absent or unreadable.
func (c *Cache) LoadSeries(loc weather.Location) []weather.WeatherDay {
	var series []weather.WeatherDay
	if _, err := c.get(seriesKeyPrefix+loc.Key(), &series); err != nil {
		log.Printf("store: unreadable series for %s, starting empty: %v", loc.Key(), err)
		return nil
	}
	return series
}

// SaveSeries overwrites the persisted series for the location's coordinates.
func (c *Cache) SaveSeries(loc weather.Location, series []weather.WeatherDay) error {
	return c.set(seriesKeyPrefix+loc.Key(), series)
}

// LoadLastLocation returns the persisted last-used location, or the fixed
// default when absent or unreadable.
func (c *Cache) LoadLastLocation() weather.Location {
	var loc weather.Location
	found, err := c.get(lastLocationKey, &loc)
	if err != nil {
		log.Printf("store: unreadable last location, using default: %v", err)
		return weather.DefaultLocation
	}
	if !found {
		return weather.DefaultLocation
	}
	return loc
}

// SaveLastLocation persists the active location.
func (c *Cache) SaveLastLocation(loc weather.Location) error {
	return c.set(lastLocationKey, loc)
}

// LoadRecents returns the persisted recent-location list, most recent
// first, or an empty list when absent or unreadable.
func (c *Cache) LoadRecents() []weather.Location {
	var recents []weather.Location
	if _, err := c.get(recentsKey, &recents); err != nil {
		log.Printf("store: unreadable recent locations, starting empty: %v", err)
		return nil
	}
	return recents
}

// SaveRecents persists the recent-location list.
func (c *Cache) SaveRecents(recents []weather.Location) error {
	return c.set(recentsKey, recents)
}

// LoadCapacity returns the persisted system-capacity input, empty string
// meaning "unset".
func (c *Cache) LoadCapacity() string {
	var v string
	if _, err := c.get(capacityKey, &v); err != nil {
		log.Printf("store: unreadable capacity, treating as unset: %v", err)
		return ""
	}
	return v
}

// SaveCapacity persists the capacity input. An empty value removes the key
// rather than storing an empty string.
func (c *Cache) SaveCapacity(v string) error {
	if v == "" {
		return c.backend.Delete(capacityKey)
	}
	return c.set(capacityKey, v)
}
