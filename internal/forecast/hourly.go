package forecast

import (
	"math"
	"sort"
)

// gridHours is the provider's 3-hour sampling grid.
var gridHours = []int{0, 3, 6, 9, 12, 15, 18, 21}

// maxLateHours caps the fallback breakdown used once the grid is exhausted.
const maxLateHours = 6

// tempFactor places an hour on a fixed intraday curve between the day's
// minimum (-1) and maximum (+1).
func tempFactor(hour int) float64 {
	switch {
	case hour >= 12 && hour <= 15:
		return 1
	case hour >= 3 && hour <= 6:
		return -1
	case (hour >= 9 && hour < 12) || (hour > 15 && hour <= 18):
		return 0.5
	default:
		return -0.5
	}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// EstimateTemp approximates the temperature at hour from a day's range.
func EstimateTemp(tempMin, tempMax float64, hour int) int {
	mid := (tempMax + tempMin) / 2
	spread := tempMax - tempMin
	return roundHalfUp(mid + tempFactor(hour)*spread/2)
}

// hoursFor selects the hours of a breakdown. For today only the hours from
// the current one onward are kept; late in the evening, when no grid hour is
// left, consecutive hours up to the end of the day are used instead.
func hoursFor(today bool, current int) []int {
	if !today {
		return gridHours
	}
	var hours []int
	for _, h := range gridHours {
		if h >= current {
			hours = append(hours, h)
		}
	}
	if len(hours) > 0 {
		return hours
	}
	for h := current; h < 24 && len(hours) < maxLateHours; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Hourly synthesizes an hourly breakdown for a day from its summary alone.
func Hourly(day DailySummary, today bool, clock Clock) []HourlyEstimate {
	hours := hoursFor(today, clock.Hour())
	out := make([]HourlyEstimate, 0, len(hours))
	for _, h := range hours {
		out = append(out, HourlyEstimate{
			Hour:        h,
			Temp:        EstimateTemp(day.TempMin, day.TempMax, h),
			Icon:        ResuffixIcon(day.Icon, h),
			Description: day.Description,
			Estimated:   true,
		})
	}
	return out
}

// ObservedHours returns the real samples that fall on dateKey, with hours
// expressed in the clock's offset and ordered by that local hour.
//
// The day is still the UTC bucket of DayKey, so far from UTC the early local
// hours belong to the next local date; they are listed first, like a clock face.
func ObservedHours(samples []Sample, dateKey string, clock Clock) []HourlyEstimate {
	var out []HourlyEstimate
	zone := clock.Local().Location()
	for _, s := range samples {
		if DayKey(s.Timestamp) != dateKey {
			continue
		}
		out = append(out, HourlyEstimate{
			Hour:        s.Time().In(zone).Hour(),
			Temp:        roundHalfUp(s.TempC),
			Icon:        s.Icon,
			Description: s.Description,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// HourlyForDay prefers real samples for the day and falls back to a
// synthesized breakdown when the provider window has none.
func HourlyForDay(samples []Sample, day DailySummary, clock Clock) []HourlyEstimate {
	key := day.Key()
	if observed := ObservedHours(samples, key, clock); len(observed) > 0 {
		return observed
	}
	return Hourly(day, key == clock.TodayKey(), clock)
}
