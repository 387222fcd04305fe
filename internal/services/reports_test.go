package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/models"
)

// TestBuildMonthlyWorkbook tests the sheet layout of a generated report
func TestBuildMonthlyWorkbook(t *testing.T) {
	desc := "Lunch"
	category := "Dining"
	account := "Checking"

	data := MonthlyReportData{
		Month: 3,
		Year:  2026,
		Summary: finance.Summary{
			TotalIncome:  decimal.RequireFromString("2500"),
			TotalExpense: decimal.RequireFromString("800.50"),
			Balance:      decimal.RequireFromString("1699.50"),
		},
		Transactions: []models.Transaction{
			{
				Amount:          decimal.RequireFromString("-12.50"),
				Description:     &desc,
				CategoryName:    &category,
				AccountName:     &account,
				TransactionDate: time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
			},
		},
		Budgets: []finance.BudgetStatus{
			{
				Budget:   models.Budget{Amount: decimal.RequireFromString("300")},
				Spent:    decimal.RequireFromString("150"),
				Progress: 50,
			},
		},
	}
	data.Budgets[0].CategoryName = &category

	body, err := BuildMonthlyWorkbook(data)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Transactions", "Budgets"}, f.GetSheetList())

	period, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-03", period)

	income, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2500", income)

	txDate, err := f.GetCellValue("Transactions", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", txDate)

	txCategory, err := f.GetCellValue("Transactions", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Dining", txCategory)

	budgetName, err := f.GetCellValue("Budgets", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Dining", budgetName)
}

// TestBuildMonthlyWorkbook_UncategorizedTransaction tests the fallback
// label for rows without a category
func TestBuildMonthlyWorkbook_UncategorizedTransaction(t *testing.T) {
	data := MonthlyReportData{
		Month: 1,
		Year:  2026,
		Transactions: []models.Transaction{
			{
				Amount:          decimal.RequireFromString("-5"),
				TransactionDate: time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	body, err := BuildMonthlyWorkbook(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	category, err := f.GetCellValue("Transactions", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Uncategorized", category)
}
