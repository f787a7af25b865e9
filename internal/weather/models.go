package weather

import "fmt"

// Location identifies a geographic point resolved from a free-text search
// or restored from the cache.
type Location struct {
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns a canonical string key for indexing this location in stores.
// Only the coordinates participate: two locations with different display
// names but identical coordinates share one weather series.
func (l Location) Key() string {
	return fmt.Sprintf("%v_%v", l.Latitude, l.Longitude)
}

// Equal reports structural equality over all five fields. The recent-location
// list deduplicates with this, where the display name matters.
func (l Location) Equal(other Location) bool {
	return l == other
}

// DefaultLocation is used when no last-selected location has been persisted.
var DefaultLocation = Location{
	Name:      "New York",
	Country:   "United States",
	Admin1:    "New York",
	Latitude:  40.7128,
	Longitude: -74.0060,
}

// WeatherDay is one calendar day's aggregate observation.
type WeatherDay struct {
	Date          string  `json:"date"`          // ISO 8601 calendar date, unique within a series
	Temperature   float64 `json:"temperature"`   // °C, daily mean
	CloudCover    float64 `json:"cloudCover"`    // percent, 0-100, daily mean
	SunshineHours float64 `json:"sunshineHours"` // hours, one decimal
}
