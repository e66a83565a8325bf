package providers

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// owmCode is an OpenWeather condition id with its icon base and description.
// Other providers are normalized onto it so forecast samples look alike.
type owmCode struct {
	id          int
	icon        string
	description string
}

var wmoCodes = map[int]owmCode{
	0:  {800, "01", "clear sky"},
	1:  {801, "02", "few clouds"},
	2:  {802, "03", "scattered clouds"},
	3:  {804, "04", "overcast clouds"},
	45: {741, "50", "fog"},
	48: {741, "50", "fog"},
	51: {300, "09", "light drizzle"},
	53: {301, "09", "drizzle"},
	55: {302, "09", "heavy drizzle"},
	56: {311, "09", "freezing drizzle"},
	57: {311, "09", "freezing drizzle"},
	61: {500, "10", "light rain"},
	63: {501, "10", "moderate rain"},
	65: {502, "10", "heavy rain"},
	66: {511, "13", "freezing rain"},
	67: {511, "13", "freezing rain"},
	71: {600, "13", "light snow"},
	73: {601, "13", "snow"},
	75: {602, "13", "heavy snow"},
	77: {600, "13", "snow grains"},
	80: {520, "09", "light shower rain"},
	81: {521, "09", "shower rain"},
	82: {522, "09", "heavy shower rain"},
	85: {620, "13", "light shower snow"},
	86: {621, "13", "shower snow"},
	95: {211, "11", "thunderstorm"},
	96: {202, "11", "thunderstorm with hail"},
	99: {202, "11", "thunderstorm with heavy hail"},
}

// mapWMOCode translates an Open-Meteo (WMO) weather code.
func mapWMOCode(code int) owmCode {
	if c, ok := wmoCodes[code]; ok {
		return c
	}
	return owmCode{800, "01", "clear sky"}
}

// mapConditionText classifies a free-text condition such as WeatherAPI's.
func mapConditionText(text string) owmCode {
	t := strings.ToLower(text)
	switch {
	case common.HasAny(t, "thunder", "storm"):
		return owmCode{211, "11", text}
	case common.HasAny(t, "snow", "sleet", "blizzard", "ice pellets"):
		return owmCode{600, "13", text}
	case common.HasAny(t, "drizzle"):
		return owmCode{300, "09", text}
	case common.HasAny(t, "rain", "shower"):
		return owmCode{500, "10", text}
	case common.HasAny(t, "fog", "mist", "haze"):
		return owmCode{741, "50", text}
	case common.HasAny(t, "overcast"):
		return owmCode{804, "04", text}
	case common.HasAny(t, "cloud"):
		return owmCode{802, "03", text}
	default:
		return owmCode{800, "01", text}
	}
}

// iconFor appends the day/night marker to an icon base.
func iconFor(base string, isDay bool) string {
	if isDay {
		return base + "d"
	}
	return base + "n"
}
