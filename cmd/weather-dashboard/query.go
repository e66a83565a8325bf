package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const cliTimeout = 30 * time.Second

// locationFlags are shared by the commands that query one place.
type locationFlags struct {
	country string
	lang    string
	output  string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.country, "country", "c", "", "Country code (for example RU, US)")
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "", "Label language (en, ru); defaults to WEATHER_LANG")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "Output format (text, json)")
}

func (f *locationFlags) location(city string) weather.Location {
	return weather.Location{City: city, Country: strings.ToUpper(f.country)}
}

// locale returns the --lang flag as a locale, or def when the flag is empty.
func (f *locationFlags) locale(def language.Tag) language.Tag {
	if f.lang == "" {
		return def
	}
	return forecast.ParseLocale(f.lang)
}

func (f *locationFlags) validate() error {
	if f.output != "text" && f.output != "json" {
		return fmt.Errorf("unsupported output %q; use text or json", f.output)
	}
	return nil
}

func newCurrentCmd() *cobra.Command {
	var flags locationFlags
	cmd := &cobra.Command{
		Use:   "current [city]",
		Short: "Show aggregated current conditions for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			snapshot, err := a.service.Current(ctx, flags.location(args[0]))
			if err != nil {
				return err
			}
			if flags.output == "json" {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}
			printCurrent(cmd.OutOrStdout(), snapshot, flags.locale(a.service.Defaults().Locale))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newForecastCmd() *cobra.Command {
	var (
		flags        locationFlags
		days         int
		excludeToday bool
	)
	cmd := &cobra.Command{
		Use:   "forecast [city]",
		Short: "Show the daily forecast for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			if days < 0 || days > 6 {
				return fmt.Errorf("days must be between 1 and 6")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			q := a.service.Defaults()
			if days > 0 {
				q.Days = days
			}
			q.Locale = flags.locale(q.Locale)
			if cmd.Flags().Changed("exclude-today") {
				q.ExcludeToday = excludeToday
			}

			daily, err := a.service.DailyForecast(ctx, flags.location(args[0]), q)
			if err != nil {
				return err
			}
			if flags.output == "json" {
				return writeJSON(cmd.OutOrStdout(), daily)
			}
			printDaily(cmd.OutOrStdout(), args[0], daily)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days (1-6); defaults to FORECAST_DAYS")
	cmd.Flags().BoolVar(&excludeToday, "exclude-today", false, "Start the list at tomorrow")
	return cmd
}

func newHourlyCmd() *cobra.Command {
	var (
		flags locationFlags
		date  string
	)
	cmd := &cobra.Command{
		Use:   "hourly [city]",
		Short: "Show the hourly breakdown of one forecast day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			if date != "" {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
				}
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			loc := flags.location(args[0])
			locale := flags.locale(a.service.Defaults().Locale)
			if date == "" {
				// First listed day of the forecast.
				daily, err := a.service.DailyForecast(ctx, loc, weather.ForecastQuery{Days: 1, Locale: locale})
				if err != nil {
					return err
				}
				if len(daily.Days) == 0 {
					return weather.ErrNoData
				}
				date = daily.Days[0].Key()
			}

			hourly, err := a.service.Hourly(ctx, loc, date, locale)
			if err != nil {
				return err
			}
			if flags.output == "json" {
				return writeJSON(cmd.OutOrStdout(), hourly)
			}
			printHourly(cmd.OutOrStdout(), args[0], hourly)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Day to break down (YYYY-MM-DD); defaults to the first forecast day")
	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the configured weather providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, name := range a.service.ProviderNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
