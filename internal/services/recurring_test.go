package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finboard/finboard-api/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// TestNextOccurrence_Daily tests the daily step
func TestNextOccurrence_Daily(t *testing.T) {
	start := day(2026, time.March, 10)
	got := NextOccurrence(start, models.FrequencyDaily, start)
	assert.Equal(t, day(2026, time.March, 11), got)
}

// TestNextOccurrence_Weekly tests the weekly step across a month boundary
func TestNextOccurrence_Weekly(t *testing.T) {
	start := day(2026, time.March, 28)
	got := NextOccurrence(start, models.FrequencyWeekly, start)
	assert.Equal(t, day(2026, time.April, 4), got)
}

// TestNextOccurrence_Monthly tests month stepping with day-of-month
// clamping: a Jan 31 schedule posts Feb 28, then returns to Mar 31.
func TestNextOccurrence_Monthly(t *testing.T) {
	start := day(2026, time.January, 31)

	tests := []struct {
		name    string
		current time.Time
		want    time.Time
	}{
		{"Jan 31 to Feb 28", day(2026, time.January, 31), day(2026, time.February, 28)},
		{"Feb 28 back to Mar 31", day(2026, time.February, 28), day(2026, time.March, 31)},
		{"Mar 31 to Apr 30", day(2026, time.March, 31), day(2026, time.April, 30)},
		{"Apr 30 back to May 31", day(2026, time.April, 30), day(2026, time.May, 31)},
		{"December rolls into next year", day(2026, time.December, 31), day(2027, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.current, models.FrequencyMonthly, start)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNextOccurrence_MonthlyLeapYear tests February in a leap year
func TestNextOccurrence_MonthlyLeapYear(t *testing.T) {
	start := day(2028, time.January, 31)
	got := NextOccurrence(start, models.FrequencyMonthly, start)
	assert.Equal(t, day(2028, time.February, 29), got)
}

// TestNextOccurrence_Yearly tests the yearly step and Feb 29 clamping
func TestNextOccurrence_Yearly(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		current time.Time
		want    time.Time
	}{
		{"Plain yearly step", day(2026, time.June, 15), day(2026, time.June, 15), day(2027, time.June, 15)},
		{"Feb 29 clamps in a common year", day(2028, time.February, 29), day(2028, time.February, 29), day(2029, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.current, models.FrequencyYearly, tt.start)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNextOccurrence_UnknownFrequency tests that a bad frequency can never
// keep a template due
func TestNextOccurrence_UnknownFrequency(t *testing.T) {
	start := day(2026, time.March, 1)
	got := NextOccurrence(start, models.Frequency("biweekly"), start)
	assert.True(t, got.After(start.AddDate(1, 0, 0)))
}

// TestTruncateToDay tests that time-of-day is dropped
func TestTruncateToDay(t *testing.T) {
	in := time.Date(2026, time.May, 7, 23, 59, 58, 12345, time.UTC)
	assert.Equal(t, day(2026, time.May, 7), truncateToDay(in))
}
