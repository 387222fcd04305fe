package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCategoryType_Valid tests the accepted category types
func TestCategoryType_Valid(t *testing.T) {
	assert.True(t, CategoryIncome.Valid())
	assert.True(t, CategoryExpense.Valid())
	assert.False(t, CategoryType("transfer").Valid())
	assert.False(t, CategoryType("").Valid())
	assert.False(t, CategoryType("Income").Valid(), "types are case sensitive")
}

// TestFrequency_Valid tests the accepted recurrence frequencies
func TestFrequency_Valid(t *testing.T) {
	for _, f := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly} {
		assert.True(t, f.Valid(), "expected %s to be valid", f)
	}
	assert.False(t, Frequency("hourly").Valid())
	assert.False(t, Frequency("").Valid())
}
