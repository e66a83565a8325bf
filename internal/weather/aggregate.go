package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; the condition code is selected by majority (first
// seen wins a tie) and icon and description follow the reading that supplied it.
// Place names and the timezone come from the first reading.
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ClassifyCode(0),
		}
	}

	var (
		sumTemp     float64
		sumFeels    float64
		sumMin      float64
		sumMax      float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
	)

	codeCounts := make(map[int]int)
	firstWithCode := make(map[int]int)
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for i, r := range readings {
		sumTemp += r.TemperatureC
		sumFeels += r.FeelsLikeC
		sumMin += r.TempMinC
		sumMax += r.TempMaxC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS
		sumPressure += r.PressureHpa

		if _, seen := codeCounts[r.ConditionCode]; !seen {
			firstWithCode[r.ConditionCode] = i
		}
		codeCounts[r.ConditionCode]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	// Pick majority condition; iterate in input order so ties are stable.
	best := readings[0]
	bestCount := 0
	for _, r := range readings {
		if c := codeCounts[r.ConditionCode]; c > bestCount {
			bestCount = c
			best = readings[firstWithCode[r.ConditionCode]]
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	first := readings[0]
	return WeatherSnapshot{
		Location:      loc,
		Name:          first.Name,
		Country:       first.Country,
		Coord:         first.Coord,
		UTCOffset:     first.UTCOffset,
		Timestamp:     newestTS,
		Temperature:   sumTemp / n,
		FeelsLike:     sumFeels / n,
		TempMin:       sumMin / n,
		TempMax:       sumMax / n,
		Humidity:      sumHumidity / n,
		WindSpeed:     sumWind / n,
		Pressure:      sumPressure / n,
		ConditionCode: best.ConditionCode,
		Condition:     ClassifyCode(best.ConditionCode),
		Icon:          best.Icon,
		Description:   best.Description,
		Providers:     providers,
	}
}
