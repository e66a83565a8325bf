package forecast

import "time"

const dayKeyLayout = "2006-01-02"

// Clock pins "now" to an explicit instant and the target location's UTC
// offset, so day boundaries do not depend on the host's wall clock or zone.
type Clock struct {
	Now       time.Time
	UTCOffset time.Duration
}

// NewClock builds a Clock from an instant and an offset in seconds, which is
// how providers report a city's timezone.
func NewClock(now time.Time, offsetSeconds int) Clock {
	return Clock{Now: now, UTCOffset: time.Duration(offsetSeconds) * time.Second}
}

// Local returns the reference instant shifted to the target offset. The
// result carries a fixed zone so Format and Hour see local wall time.
func (c Clock) Local() time.Time {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	zone := time.FixedZone("", int(c.UTCOffset/time.Second))
	return now.In(zone)
}

// TodayKey is the local calendar date of the reference instant.
func (c Clock) TodayKey() string {
	return c.Local().Format(dayKeyLayout)
}

// Hour is the local hour of the reference instant.
func (c Clock) Hour() int {
	return c.Local().Hour()
}

// DayKey buckets a timestamp by its UTC calendar date.
//
// Samples are not shifted by the location's offset: a sample at 23:00 UTC in
// a city already past midnight lands in the previous local day. Callers that
// compare against Clock.TodayKey inherit this approximation.
func DayKey(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(dayKeyLayout)
}
