package forecast

import (
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var supportedLocales = []language.Tag{
	language.English, // first entry is the fallback
	language.Russian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var shortWeekdays = map[language.Tag][7]string{
	language.English: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	language.Russian: {"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
}

// ParseLocale maps a language string such as "ru", "ru-RU" or an
// Accept-Language header onto a supported locale. Unknown input yields English.
func ParseLocale(s string) language.Tag {
	if s == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := localeMatcher.Match(tags...)
	return supportedLocales[idx]
}

// WeekdayLabel returns the short weekday name of t in the given locale.
func WeekdayLabel(t time.Time, locale language.Tag) string {
	names, ok := shortWeekdays[locale]
	if !ok {
		names = shortWeekdays[ParseLocale(locale.String())]
	}
	return names[t.Weekday()]
}

// Capitalize upper-cases the first letter of a provider description.
func Capitalize(s string, locale language.Tag) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(locale).String(string(r)) + s[size:]
}
