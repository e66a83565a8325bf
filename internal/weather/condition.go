package weather

// Condition represents a coarse weather category used to theme the dashboard.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionClouds Condition = "clouds"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionStorm  Condition = "storm"
	ConditionMist   Condition = "mist"
)

// ClassifyCode maps an OpenWeather condition id onto a Condition.
// Codes outside the known groups are treated as clear.
func ClassifyCode(code int) Condition {
	switch {
	case code >= 200 && code < 300:
		return ConditionStorm
	case code >= 300 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code < 800:
		return ConditionMist
	case code == 800:
		return ConditionClear
	case code > 800:
		return ConditionClouds
	default:
		return ConditionClear
	}
}

// DayPeriod is the part of the day a background is drawn for.
type DayPeriod string

const (
	PeriodMorning DayPeriod = "morning"
	PeriodDay     DayPeriod = "day"
	PeriodEvening DayPeriod = "evening"
	PeriodNight   DayPeriod = "night"
)

// TimeOfDay buckets a local hour.
func TimeOfDay(hour int) DayPeriod {
	switch {
	case hour >= 5 && hour < 10:
		return PeriodMorning
	case hour >= 10 && hour < 17:
		return PeriodDay
	case hour >= 17 && hour < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Theme selects the animated background of the dashboard.
type Theme struct {
	Condition Condition `json:"condition"`
	Period    DayPeriod `json:"period"`
}

// NewTheme combines the current condition code with the local hour.
func NewTheme(code, localHour int) Theme {
	return Theme{Condition: ClassifyCode(code), Period: TimeOfDay(localHour)}
}
