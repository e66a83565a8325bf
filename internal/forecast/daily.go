package forecast

import (
	"sort"
	"time"

	"golang.org/x/text/language"
)

// Options controls how samples are reduced into day summaries.
type Options struct {
	// MaxDays caps the number of summaries. Values <= 0 use DefaultMaxDays.
	MaxDays int

	// ExcludeToday starts the window at the day after Clock.TodayKey when
	// that day is present in the samples.
	ExcludeToday bool

	Clock  Clock
	Locale language.Tag
}

// tally counts values and remembers the order they were first seen in.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(v string) {
	if _, seen := t.counts[v]; !seen {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

// mode returns the most frequent value; ties go to the value seen first.
func (t *tally) mode() string {
	best, bestCount := "", 0
	for _, v := range t.order {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

type dayBucket struct {
	min, max     float64
	icons        *tally
	descriptions *tally
}

// Summarize groups samples by UTC calendar day and reduces each day to its
// temperature range and most frequent icon and description. The result is
// ordered by date and holds at most opts.MaxDays entries. Empty input yields
// an empty slice.
func Summarize(samples []Sample, opts Options) []DailySummary {
	if len(samples) == 0 {
		return []DailySummary{}
	}

	buckets := make(map[string]*dayBucket)
	for _, s := range samples {
		k := DayKey(s.Timestamp)
		b, ok := buckets[k]
		if !ok {
			b = &dayBucket{
				min:          s.TempC,
				max:          s.TempC,
				icons:        newTally(),
				descriptions: newTally(),
			}
			buckets[k] = b
		}
		if s.TempC < b.min {
			b.min = s.TempC
		}
		if s.TempC > b.max {
			b.max = s.TempC
		}
		b.icons.add(s.Icon)
		b.descriptions.add(s.Description)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if opts.ExcludeToday {
		today := opts.Clock.TodayKey()
		for i, k := range keys {
			if k == today {
				keys = keys[i+1:]
				break
			}
		}
	}

	limit := opts.MaxDays
	if limit <= 0 {
		limit = DefaultMaxDays
	}
	if len(keys) > limit {
		keys = keys[:limit]
	}

	days := make([]DailySummary, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		date, _ := time.Parse(dayKeyLayout, k)
		days = append(days, DailySummary{
			Day:         WeekdayLabel(date, opts.Locale),
			Date:        date,
			TempMin:     b.min,
			TempMax:     b.max,
			Icon:        b.icons.mode(),
			Description: b.descriptions.mode(),
		})
	}
	return days
}
