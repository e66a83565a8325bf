package forecast

import (
	"reflect"
	"regexp"
	"testing"
	"time"
)

func TestHourlyNotToday(t *testing.T) {
	day := DailySummary{Date: jan1, TempMin: 10, TempMax: 20, Icon: "02d", Description: "few clouds"}

	got := Hourly(day, false, Clock{Now: jan1.AddDate(0, 0, -1)})

	var hours []int
	for _, h := range got {
		hours = append(hours, h.Hour)
		if !h.Estimated {
			t.Fatalf("hour %d not marked as estimated", h.Hour)
		}
		if h.Description != "few clouds" {
			t.Fatalf("hour %d: expected inherited description, got %q", h.Hour, h.Description)
		}
	}
	if !reflect.DeepEqual(hours, gridHours) {
		t.Fatalf("expected grid hours %v, got %v", gridHours, hours)
	}

	byHour := make(map[int]HourlyEstimate)
	for _, h := range got {
		byHour[h.Hour] = h
	}
	want := map[int]int{0: 13, 3: 10, 6: 10, 9: 18, 12: 20, 15: 20, 18: 18, 21: 13}
	for hour, temp := range want {
		if byHour[hour].Temp != temp {
			t.Errorf("hour %d: expected %d, got %d", hour, temp, byHour[hour].Temp)
		}
	}
	if byHour[3].Icon != "02n" || byHour[6].Icon != "02d" || byHour[18].Icon != "02d" || byHour[21].Icon != "02n" {
		t.Fatalf("unexpected icons: %+v", got)
	}
}

func TestEstimateTemp(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{13, 20}, // peak
		{4, 10},  // trough
		{10, 18},
		{17, 18},
		{20, 13},
		{1, 13},
	}
	for _, tt := range tests {
		if got := EstimateTemp(10, 20, tt.hour); got != tt.want {
			t.Errorf("hour %d: expected %d, got %d", tt.hour, tt.want, got)
		}
	}
}

func TestEstimateTempFlatDay(t *testing.T) {
	for _, v := range []float64{7, -3, 0.4, -2.5} {
		want := roundHalfUp(v)
		for hour := 0; hour < 24; hour++ {
			if got := EstimateTemp(v, v, hour); got != want {
				t.Fatalf("temp %v hour %d: expected %d, got %d", v, hour, want, got)
			}
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int{2.5: 3, -2.5: -2, -2.6: -3, 0.49: 0}
	for in, want := range tests {
		if got := roundHalfUp(in); got != want {
			t.Errorf("roundHalfUp(%v): expected %d, got %d", in, want, got)
		}
	}
}

func TestHourlyTodaySelection(t *testing.T) {
	day := DailySummary{Date: jan1, TempMin: 0, TempMax: 4, Icon: "10d"}

	tests := []struct {
		hour int
		want []int
	}{
		{0, []int{0, 3, 6, 9, 12, 15, 18, 21}},
		{10, []int{12, 15, 18, 21}},
		{21, []int{21}},
		{22, []int{22, 23}},
		{23, []int{23}},
	}
	for _, tt := range tests {
		clock := Clock{Now: jan1.Add(time.Duration(tt.hour)*time.Hour + 15*time.Minute)}
		var got []int
		for _, h := range Hourly(day, true, clock) {
			got = append(got, h.Hour)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("hour %d: expected %v, got %v", tt.hour, tt.want, got)
		}
	}
}

func TestHoursForLateFallbackCap(t *testing.T) {
	// hours before the last grid slot never reach the fallback, so exercise it directly.
	got := hoursFor(true, 22)
	if len(got) > maxLateHours {
		t.Fatalf("fallback exceeded cap: %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] != got[i-1]+1 {
			t.Fatalf("fallback hours not consecutive: %v", got)
		}
	}
}

func TestHourlyUsesClockOffset(t *testing.T) {
	day := DailySummary{Date: jan1, TempMin: 0, TempMax: 4, Icon: "01d"}
	// 08:00 UTC is 17:00 at UTC+9.
	clock := NewClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), 9*3600)
	got := Hourly(day, true, clock)
	if len(got) != 2 || got[0].Hour != 18 || got[1].Hour != 21 {
		t.Fatalf("unexpected hours: %+v", got)
	}
}

func TestObservedHours(t *testing.T) {
	samples := []Sample{
		sampleAt(jan1, 0, 1.5, "01n", "clear sky"),
		sampleAt(jan1, 3, -0.5, "02n", "few clouds"),
		sampleAt(jan1, 24, 4, "01d", "clear sky"),
	}
	got := ObservedHours(samples, "2024-01-01", Clock{})
	want := []HourlyEstimate{
		{Hour: 0, Temp: 2, Icon: "01n", Description: "clear sky"},
		{Hour: 3, Temp: 0, Icon: "02n", Description: "few clouds"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestObservedHoursOrderedByLocalHour(t *testing.T) {
	samples := fullDay(jan1, []float64{0, 1, 2, 3, 4, 5, 6, 7}, "01d")
	clock := NewClock(jan1, 9*3600)

	got := ObservedHours(samples, "2024-01-01", clock)

	var hours []int
	for _, h := range got {
		hours = append(hours, h.Hour)
	}
	if want := []int{0, 3, 6, 9, 12, 15, 18, 21}; !reflect.DeepEqual(hours, want) {
		t.Fatalf("expected hours %v, got %v", want, hours)
	}
	// 00:00 local at UTC+9 is the 15:00 UTC sample.
	if got[0].Temp != 5 || got[3].Temp != 0 {
		t.Fatalf("hours carry the wrong samples: %+v", got)
	}
}

func TestHourlyForDay(t *testing.T) {
	samples := fullDay(jan1, []float64{1, 2, 3}, "01n")
	days := Summarize(samples, Options{})

	observed := HourlyForDay(samples, days[0], Clock{Now: jan1})
	if len(observed) != 3 || observed[0].Estimated {
		t.Fatalf("expected observed hours, got %+v", observed)
	}

	next := DailySummary{Date: jan1.AddDate(0, 0, 1), TempMin: 1, TempMax: 3, Icon: "01d"}
	synth := HourlyForDay(samples, next, Clock{Now: jan1})
	if len(synth) != len(gridHours) || !synth[0].Estimated {
		t.Fatalf("expected synthesized grid, got %+v", synth)
	}
}

var iconPattern = regexp.MustCompile(`^\d{2}[dn]$`)

func TestResuffixIcon(t *testing.T) {
	for _, base := range []string{"01", "01d", "01n", "10d", "50n"} {
		for hour := 0; hour < 24; hour++ {
			got := ResuffixIcon(base, hour)
			if !iconPattern.MatchString(got) {
				t.Fatalf("ResuffixIcon(%q, %d) = %q", base, hour, got)
			}
			wantDay := hour >= 6 && hour < 19
			if (got[2] == 'd') != wantDay {
				t.Fatalf("ResuffixIcon(%q, %d) = %q: wrong marker", base, hour, got)
			}
		}
	}
	if got := ResuffixIcon("", 12); got != "d" {
		t.Fatalf("expected bare marker for empty icon, got %q", got)
	}
}

func TestIconURL(t *testing.T) {
	if got := IconURL("10d", true); got != "https://openweathermap.org/img/wn/10d@2x.png" {
		t.Fatalf("unexpected large url %q", got)
	}
	if got := IconURL("10d", false); got != "https://openweathermap.org/img/wn/10d.png" {
		t.Fatalf("unexpected small url %q", got)
	}
	if IconURL("10d", true) != IconURL("10d", true) {
		t.Fatal("memoized url differs")
	}
	if IconURL("", true) != "" {
		t.Fatal("expected empty url for empty icon")
	}
}
