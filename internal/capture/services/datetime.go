package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jharden/divflow/internal/capture/domain"
)

// datePattern resolves a matched date expression to a concrete day. A nil
// return means the match could not be resolved and the next pattern in the
// list is tried.
type datePattern struct {
	re      *regexp.Regexp
	resolve func(m []string, now time.Time) *time.Time
}

// timePattern resolves a matched time expression to hour and minute.
type timePattern struct {
	re      *regexp.Regexp
	resolve func(m []string) (hour, minute int, ok bool)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sep":       time.September,
	"sept":      time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

// datePatterns are tried in order; the first pattern that matches and
// resolves wins, regardless of position in the text.
var datePatterns = []datePattern{
	{
		re: regexp.MustCompile(`\b(today|tomorrow|yesterday)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			d := startOfDay(now)
			switch m[1] {
			case "tomorrow":
				d = d.AddDate(0, 0, 1)
			case "yesterday":
				d = d.AddDate(0, 0, -1)
			}
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\bin (\d+) (day|days|week|weeks)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			if strings.HasPrefix(m[2], "week") {
				n *= 7
			}
			d := startOfDay(now).AddDate(0, 0, n)
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\b(next|this) (sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			target := weekdayNames[m[2]]
			ahead := (int(target) - int(now.Weekday()) + 7) % 7
			if ahead == 0 && m[1] == "next" {
				ahead = 7
			}
			d := startOfDay(now).AddDate(0, 0, ahead)
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\bnext (week|month)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			d := startOfDay(now)
			if m[1] == "week" {
				d = d.AddDate(0, 0, 7)
			} else {
				d = d.AddDate(0, 1, 0)
			}
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\b(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec) (\d{1,2})(?:st|nd|rd|th)?\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			month := monthNames[m[1]]
			day, err := strconv.Atoi(m[2])
			if err != nil || day < 1 || day > 31 {
				return nil
			}
			d := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
			if d.Day() != day {
				return nil
			}
			if beforeToday(d, now) {
				d = d.AddDate(1, 0, 0)
			}
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			month, err := strconv.Atoi(m[1])
			if err != nil || month < 1 || month > 12 {
				return nil
			}
			day, err := strconv.Atoi(m[2])
			if err != nil || day < 1 || day > 31 {
				return nil
			}
			year := now.Year()
			hasYear := m[3] != ""
			if hasYear {
				year, err = strconv.Atoi(m[3])
				if err != nil {
					return nil
				}
				if year < 100 {
					year += 2000
				}
			}
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
			if d.Day() != day {
				return nil
			}
			if !hasYear && beforeToday(d, now) {
				d = d.AddDate(1, 0, 0)
			}
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\b(eow|end of (the )?week)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			ahead := (int(time.Friday) - int(now.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			d := startOfDay(now).AddDate(0, 0, ahead)
			return &d
		},
	},
	{
		re: regexp.MustCompile(`\b(eom|end of (the )?month)\b`),
		resolve: func(m []string, now time.Time) *time.Time {
			d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
				AddDate(0, 1, -1)
			return &d
		},
	},
}

var timePatterns = []timePattern{
	{
		re: regexp.MustCompile(`(?:\bat |\bin the )?\b(noon|midnight|morning|afternoon|evening|night)\b`),
		resolve: func(m []string) (int, int, bool) {
			switch m[1] {
			case "noon":
				return 12, 0, true
			case "midnight":
				return 0, 0, true
			case "morning":
				return 9, 0, true
			case "afternoon":
				return 14, 0, true
			case "evening":
				return 18, 0, true
			case "night":
				return 20, 0, true
			}
			return 0, 0, false
		},
	},
	{
		re: regexp.MustCompile(`(?:\bat )?\b(\d{1,2})(?::(\d{2}))? ?(am|pm)\b`),
		resolve: func(m []string) (int, int, bool) {
			hour, err := strconv.Atoi(m[1])
			if err != nil || hour < 1 || hour > 12 {
				return 0, 0, false
			}
			minute := 0
			if m[2] != "" {
				minute, err = strconv.Atoi(m[2])
				if err != nil || minute > 59 {
					return 0, 0, false
				}
			}
			if m[3] == "pm" && hour != 12 {
				hour += 12
			}
			if m[3] == "am" && hour == 12 {
				hour = 0
			}
			return hour, minute, true
		},
	},
	{
		re: regexp.MustCompile(`(?:\bat )?\b(\d{1,2}):(\d{2})\b`),
		resolve: func(m []string) (int, int, bool) {
			hour, err := strconv.Atoi(m[1])
			if err != nil || hour > 23 {
				return 0, 0, false
			}
			minute, err := strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				return 0, 0, false
			}
			return hour, minute, true
		},
	},
}

type span struct{ start, end int }

type dateMatch struct {
	day  time.Time
	span span
}

type timeMatch struct {
	hour, minute int
	span         span
}

// ExtractDateTime scans text for the first recognizable date and time
// expressions, resolves them relative to now, and returns the combined
// moment plus the text with the matched expressions removed. When neither a
// date nor a time is found, When is nil and Remaining is the original text
// with whitespace collapsed.
func ExtractDateTime(text string, now time.Time) domain.DateTimeResult {
	lower := asciiLower(text)

	date := findDate(lower, now)

	timeSearch := lower
	if date != nil {
		// Blank the date span so time patterns cannot rematch inside it.
		b := []byte(timeSearch)
		for i := date.span.start; i < date.span.end && i < len(b); i++ {
			b[i] = ' '
		}
		timeSearch = string(b)
	}
	tm := findTime(timeSearch)

	var spans []span
	if date != nil {
		spans = append(spans, date.span)
	}
	if tm != nil {
		spans = append(spans, tm.span)
	}
	remaining := collapseWhitespace(cutSpans(text, spans))

	switch {
	case date != nil && tm != nil:
		when := time.Date(date.day.Year(), date.day.Month(), date.day.Day(),
			tm.hour, tm.minute, 0, 0, now.Location())
		return domain.DateTimeResult{When: &when, Remaining: remaining}
	case date != nil:
		when := date.day
		return domain.DateTimeResult{When: &when, Remaining: remaining}
	case tm != nil:
		when := time.Date(now.Year(), now.Month(), now.Day(),
			tm.hour, tm.minute, 0, 0, now.Location())
		if !when.After(now) {
			when = when.AddDate(0, 0, 1)
		}
		return domain.DateTimeResult{When: &when, Remaining: remaining}
	default:
		return domain.DateTimeResult{Remaining: remaining}
	}
}

func findDate(lower string, now time.Time) *dateMatch {
	for _, p := range datePatterns {
		idx := p.re.FindStringSubmatchIndex(lower)
		if idx == nil {
			continue
		}
		day := p.resolve(submatches(lower, idx), now)
		if day == nil {
			continue
		}
		return &dateMatch{day: *day, span: span{start: idx[0], end: idx[1]}}
	}
	return nil
}

func findTime(lower string) *timeMatch {
	for _, p := range timePatterns {
		idx := p.re.FindStringSubmatchIndex(lower)
		if idx == nil {
			continue
		}
		hour, minute, ok := p.resolve(submatches(lower, idx))
		if !ok {
			continue
		}
		return &timeMatch{hour: hour, minute: minute, span: span{start: idx[0], end: idx[1]}}
	}
	return nil
}

// submatches expands FindStringSubmatchIndex output into submatch strings,
// with "" for groups that did not participate.
func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		lo, hi := idx[2*i], idx[2*i+1]
		if lo < 0 {
			continue
		}
		out[i] = s[lo:hi]
	}
	return out
}

// cutSpans removes the given byte ranges from text. Spans must not overlap.
func cutSpans(text string, spans []span) string {
	if len(spans) == 0 {
		return text
	}
	if len(spans) == 2 && spans[1].start < spans[0].start {
		spans[0], spans[1] = spans[1], spans[0]
	}
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		if sp.start > prev {
			b.WriteString(text[prev:sp.start])
		}
		prev = sp.end
	}
	if prev < len(text) {
		b.WriteString(text[prev:])
	}
	return b.String()
}

// asciiLower lowercases ASCII letters only. Unlike strings.ToLower it
// never changes byte length, so match offsets computed on the result
// apply directly to the original text. Non-ASCII runes pass through
// untouched; the date and time vocabularies are all ASCII.
func asciiLower(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + ('a' - 'A')
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func beforeToday(d, now time.Time) bool {
	return d.Before(startOfDay(now))
}
