package forecast

import (
	"fmt"
	"regexp"
	"sync"
)

var daySuffix = regexp.MustCompile(`[dn]$`)

// BaseIcon strips a trailing day/night marker from an icon token. Tokens
// without a marker are returned unchanged.
func BaseIcon(icon string) string {
	return daySuffix.ReplaceAllString(icon, "")
}

// ResuffixIcon keeps the phenomenon of icon and sets the marker for hour:
// "d" for hours in [6,19), "n" otherwise.
func ResuffixIcon(icon string, hour int) string {
	suffix := "n"
	if hour >= 6 && hour < 19 {
		suffix = "d"
	}
	return BaseIcon(icon) + suffix
}

type iconKey struct {
	icon  string
	large bool
}

var iconURLs sync.Map // iconKey -> string

// IconURL returns the OpenWeather image URL for an icon token. Results are
// memoized; the cache has no effect on the returned value.
func IconURL(icon string, large bool) string {
	if icon == "" {
		return ""
	}
	k := iconKey{icon: icon, large: large}
	if v, ok := iconURLs.Load(k); ok {
		return v.(string)
	}
	u := fmt.Sprintf("https://openweathermap.org/img/wn/%s.png", icon)
	if large {
		u = fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", icon)
	}
	iconURLs.Store(k, u)
	return u
}
