// Package solar holds the pure derivations: the 0-100 solar potential
// score and the daily energy-output estimate. Both assume inputs already
// validated upstream and never touch the network or storage.
package solar

import (
	"math"

	"solar-dashboard/internal/weather"
)

// Label is the qualitative bucket for a potential score.
type Label string

const (
	LabelExcellent Label = "Excellent"
	LabelGood      Label = "Good"
	LabelModerate  Label = "Moderate"
	LabelLow       Label = "Low"
)

// Analysis is the result of scoring one day.
type Analysis struct {
	Score int   `json:"score"` // 0-100
	Label Label `json:"label"`
}

// maxSunshineHours is the assumed maximum daily sunshine used to normalize
// the sunshine contribution.
const maxSunshineHours = 14

// Analyze maps one day's weather metrics to a potential score and label.
// Sunshine contributes up to 70 points, inverse cloud cover up to 30.
func Analyze(day weather.WeatherDay) Analysis {
	sunshineScore := math.Min(day.SunshineHours/maxSunshineHours, 1) * 70
	cloudScore := (1 - day.CloudCover/100) * 30
	score := int(math.Round(sunshineScore + cloudScore))

	label := LabelLow
	switch {
	case score > 70:
		label = LabelExcellent
	case score > 50:
		label = LabelGood
	case score > 30:
		label = LabelModerate
	}

	return Analysis{Score: score, Label: label}
}

// MinCloudFactor is the floor of the cloud de-rating factor: cloud cover
// never suppresses output below this share of clear-sky potential, which
// models residual diffuse irradiance.
const MinCloudFactor = 0.15

// CloudFactor returns the multiplicative de-rating of clear-sky output for
// the given cloud cover percentage, never below minFactor.
func CloudFactor(cloudCover, minFactor float64) float64 {
	return math.Max(1-cloudCover/100, minFactor)
}

// Estimate returns the estimated daily energy output in kWh, rounded to one
// decimal, for a system of capacityKW. Callers skip the call entirely when
// no capacity has been entered; absence means "do not estimate".
func Estimate(capacityKW float64, day weather.WeatherDay) float64 {
	factor := CloudFactor(day.CloudCover, MinCloudFactor)
	return math.Round(capacityKW*day.SunshineHours*factor*10) / 10
}
