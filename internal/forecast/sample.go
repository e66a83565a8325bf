// Package forecast turns a provider's 3-hour forecast samples into per-day
// summaries and hourly breakdowns.
package forecast

import "time"

// DefaultMaxDays is the number of day summaries returned when no cap is given.
const DefaultMaxDays = 5

// Sample is one provider-supplied 3-hour reading.
type Sample struct {
	Timestamp     int64   `json:"dt"` // unix seconds, UTC
	TempC         float64 `json:"temp"`
	ConditionCode int     `json:"conditionCode"`
	Icon          string  `json:"icon"`
	Description   string  `json:"description"`
}

// Time returns the sample timestamp as a UTC time.
func (s Sample) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// DailySummary aggregates all samples that fall on one calendar day.
type DailySummary struct {
	Day         string    `json:"day"`
	Date        time.Time `json:"date"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
}

// Key returns the day key (YYYY-MM-DD) of the summary.
func (d DailySummary) Key() string {
	return d.Date.UTC().Format(dayKeyLayout)
}

// HourlyEstimate is one entry of an hourly breakdown.
type HourlyEstimate struct {
	Hour        int    `json:"hour"`
	Temp        int    `json:"temp"`
	Icon        string `json:"icon"`
	Description string `json:"description"`

	// Estimated is false when the entry comes from a real sample.
	Estimated bool `json:"estimated"`
}
