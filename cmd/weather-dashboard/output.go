package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func printCurrent(w io.Writer, s weather.WeatherSnapshot, locale language.Tag) {
	fmt.Fprintf(w, "Weather in %s, %s\n", s.Name, s.Country)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Temperature: %.1f°C (min: %.1f°C, max: %.1f°C)\n", s.Temperature, s.TempMin, s.TempMax)
	fmt.Fprintf(w, "Feels like:  %.1f°C\n", s.FeelsLike)
	fmt.Fprintf(w, "Humidity:    %.0f%%\n", s.Humidity)
	fmt.Fprintf(w, "Pressure:    %.0f hPa\n", s.Pressure)
	fmt.Fprintf(w, "Wind:        %.1f m/s\n", s.WindSpeed)
	fmt.Fprintf(w, "Conditions:  %s (%s)\n", forecast.Capitalize(s.Description, locale), s.Condition)

	names := make([]string, 0, len(s.Providers))
	for _, p := range s.Providers {
		names = append(names, p.ProviderName)
	}
	fmt.Fprintf(w, "Sources:     %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Updated:     %s UTC\n", s.Timestamp.UTC().Format("2006-01-02 15:04"))
}

func printDaily(w io.Writer, city string, d weather.DailyForecast) {
	fmt.Fprintf(w, "Forecast for %s (%s)\n", city, d.Provider)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	if len(d.Days) == 0 {
		fmt.Fprintln(w, "no forecast data")
		return
	}
	for _, day := range d.Days {
		fmt.Fprintf(w, "%-3s %s  %3.0f°C / %3.0f°C  %s\n",
			day.Day, day.Key(), day.TempMin, day.TempMax, day.Description)
	}
}

func printHourly(w io.Writer, city string, h weather.HourlyForecast) {
	fmt.Fprintf(w, "%s, %s %s\n", city, h.Day.Day, h.Date)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, e := range h.Hours {
		marker := ""
		if e.Estimated {
			marker = " ~"
		}
		fmt.Fprintf(w, "%02d:00  %3d°C%s  %s\n", e.Hour, e.Temp, marker, e.Description)
	}
}
