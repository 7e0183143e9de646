package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharden/divflow/internal/capture/domain"
)

// fixedNow is a Tuesday.
var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func TestExtractDateTime_RelativeDays(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"today", "pay rent today", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", "call mom tomorrow", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "saw this yesterday", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDateTime(tt.text, fixedNow)
			require.NotNil(t, result.When)
			assert.Equal(t, tt.want, *result.When)
		})
	}
}

func TestExtractDateTime_DateAndTimeCombine(t *testing.T) {
	result := ExtractDateTime("dentist tomorrow at 3pm", fixedNow)

	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), *result.When)
	assert.Equal(t, "dentist", result.Remaining)
}

func TestExtractDateTime_InNDaysAndWeeks(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"review in 3 days", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"renew in 1 day", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"checkup in 2 weeks", time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result := ExtractDateTime(tt.text, fixedNow)
			require.NotNil(t, result.When)
			assert.Equal(t, tt.want, *result.When)
		})
	}
}

func TestExtractDateTime_Weekdays(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		// fixedNow is Tuesday Mar 10.
		{"this friday", "meeting this friday", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"next friday", "meeting next friday", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"this tuesday is today", "due this tuesday", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"next tuesday skips today", "due next tuesday", time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)},
		{"next monday", "standup next monday", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDateTime(tt.text, fixedNow)
			require.NotNil(t, result.When)
			assert.Equal(t, tt.want, *result.When)
		})
	}
}

func TestExtractDateTime_NextWeekAndMonth(t *testing.T) {
	result := ExtractDateTime("plan sprint next week", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), *result.When)

	result = ExtractDateTime("renew lease next month", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_MonthName(t *testing.T) {
	result := ExtractDateTime("taxes due april 15th", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), *result.When)

	// A month-day already past rolls into next year.
	result = ExtractDateTime("party on january 5", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_NumericDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"month/day ahead", "ship on 4/20", time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)},
		{"month/day past rolls forward", "ship on 1/5", time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"full year", "ship on 4/20/2027", time.Date(2027, 4, 20, 0, 0, 0, 0, time.UTC)},
		{"two-digit year", "ship on 4/20/27", time.Date(2027, 4, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDateTime(tt.text, fixedNow)
			require.NotNil(t, result.When)
			assert.Equal(t, tt.want, *result.When)
		})
	}
}

func TestExtractDateTime_EndOfWeekAndMonth(t *testing.T) {
	result := ExtractDateTime("report due eow", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), *result.When)

	result = ExtractDateTime("invoices by end of month", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *result.When)

	// eow on a Friday means the following Friday.
	friday := time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC)
	result = ExtractDateTime("report due eow", friday)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_TimeOnlyAnchoring(t *testing.T) {
	// 3pm is still ahead of the 10:00 reference, so it lands today.
	result := ExtractDateTime("gym at 3pm", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), *result.When)

	// 7am already passed, so it rolls to tomorrow.
	result = ExtractDateTime("run at 7am", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_NamedTimes(t *testing.T) {
	tests := []struct {
		text       string
		wantHour   int
		wantMinute int
	}{
		{"lunch at noon tomorrow", 12, 0},
		{"party tomorrow at midnight", 0, 0},
		{"walk tomorrow morning", 9, 0},
		{"call tomorrow afternoon", 14, 0},
		{"dinner tomorrow evening", 18, 0},
		{"movie tomorrow night", 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result := ExtractDateTime(tt.text, fixedNow)
			require.NotNil(t, result.When)
			assert.Equal(t, tt.wantHour, result.When.Hour())
			assert.Equal(t, tt.wantMinute, result.When.Minute())
			assert.Equal(t, 11, result.When.Day())
		})
	}
}

func TestExtractDateTime_24HourClock(t *testing.T) {
	result := ExtractDateTime("standup tomorrow at 14:30", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_InvalidTimeRejected(t *testing.T) {
	// 13pm is not a valid 12-hour time; no other time expression exists.
	result := ExtractDateTime("nonsense at 13pm", fixedNow)
	assert.Nil(t, result.When)
}

func TestExtractDateTime_NoTemporalExpression(t *testing.T) {
	result := ExtractDateTime("random idea about birds", fixedNow)
	assert.Nil(t, result.When)
	assert.Equal(t, "random idea about birds", result.Remaining)
}

func TestExtractDateTime_FirstPatternWins(t *testing.T) {
	// "tomorrow" sits later in the text but its pattern has higher
	// priority than the numeric date.
	result := ExtractDateTime("move 3/20 boxes tomorrow", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *result.When)
}

func TestExtractDateTime_RemainingWhitespaceCollapsed(t *testing.T) {
	result := ExtractDateTime("dentist  tomorrow  at 3pm  downtown", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, "dentist downtown", result.Remaining)
}

func TestExtractDateTime_MixedCase(t *testing.T) {
	result := ExtractDateTime("Dentist Tomorrow at 3PM", fixedNow)
	require.NotNil(t, result.When)
	assert.Equal(t, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), *result.When)
	assert.Equal(t, "Dentist", result.Remaining)
}

func TestExtractDateTime_NonASCIIText(t *testing.T) {
	// Runes whose byte length changes under Unicode case mapping must not
	// shift the match offsets used to cut the date phrase out.
	t.Run("growing rune", func(t *testing.T) {
		text := strings.Repeat("Ⱥ", 10) + " tomorrow"
		var result domain.DateTimeResult
		require.NotPanics(t, func() { result = ExtractDateTime(text, fixedNow) })
		require.NotNil(t, result.When)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *result.When)
		assert.Equal(t, strings.Repeat("Ⱥ", 10), result.Remaining)
	})

	t.Run("shrinking rune", func(t *testing.T) {
		text := strings.Repeat("İ", 6) + " tomorrow"
		result := ExtractDateTime(text, fixedNow)
		require.NotNil(t, result.When)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *result.When)
		assert.Equal(t, strings.Repeat("İ", 6), result.Remaining)
	})

	t.Run("emoji and accents around a combined expression", func(t *testing.T) {
		result := ExtractDateTime("café ✨ tomorrow at 3pm naïve", fixedNow)
		require.NotNil(t, result.When)
		assert.Equal(t, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), *result.When)
		assert.Equal(t, "café ✨ naïve", result.Remaining)
	})
}
