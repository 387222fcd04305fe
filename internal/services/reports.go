package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/finboard/finboard-api/internal/finance"
	"github.com/finboard/finboard-api/internal/models"
)

// ReportService renders a month of activity into an XLSX workbook, stores
// it in S3 and returns a presigned download link.
type ReportService struct {
	storage    *StorageService
	linkExpiry time.Duration
	log        *logrus.Entry
}

func NewReportService(storage *StorageService, linkExpiry time.Duration) *ReportService {
	return &ReportService{
		storage:    storage,
		linkExpiry: linkExpiry,
		log:        logrus.WithField("component", "reports"),
	}
}

// MonthlyReportData is everything that goes into one report
type MonthlyReportData struct {
	Month        int
	Year         int
	Summary      finance.Summary
	Transactions []models.Transaction
	Budgets      []finance.BudgetStatus
}

// GenerateMonthlyReport builds the workbook, uploads it and returns a
// presigned URL for the caller to hand to the user.
func (s *ReportService) GenerateMonthlyReport(ctx context.Context, userID string, data MonthlyReportData) (string, error) {
	body, err := BuildMonthlyWorkbook(data)
	if err != nil {
		return "", fmt.Errorf("build workbook: %w", err)
	}

	key, err := s.storage.ReportKey(userID, data.Month, data.Year)
	if err != nil {
		return "", err
	}

	if err := s.storage.UploadReport(ctx, key, body); err != nil {
		return "", err
	}

	url, err := s.storage.PresignDownloadURL(ctx, key, s.linkExpiry)
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"key":          key,
		"transactions": len(data.Transactions),
	}).Info("monthly report generated")

	return url, nil
}

// DeleteMonthlyReport removes a previously generated report from storage.
func (s *ReportService) DeleteMonthlyReport(ctx context.Context, userID string, month, year int) error {
	key, err := s.storage.ReportKey(userID, month, year)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteReport(ctx, key); err != nil {
		return err
	}
	s.log.WithField("key", key).Info("monthly report deleted")
	return nil
}

// BuildMonthlyWorkbook renders the report as XLSX bytes: a summary sheet,
// the month's transactions and the budget statuses.
func BuildMonthlyWorkbook(data MonthlyReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%04d-%02d", data.Year, data.Month)
	summaryRows := [][]interface{}{
		{"Monthly Report", period},
		{},
		{"Total Income", data.Summary.TotalIncome.InexactFloat64()},
		{"Total Expense", data.Summary.TotalExpense.InexactFloat64()},
		{"Balance Across Accounts", data.Summary.Balance.InexactFloat64()},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	txSheet := "Transactions"
	if _, err := f.NewSheet(txSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Date", "Description", "Category", "Account", "Amount"}
	if err := f.SetSheetRow(txSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, tx := range data.Transactions {
		desc := ""
		if tx.Description != nil {
			desc = *tx.Description
		}
		category := "Uncategorized"
		if tx.CategoryName != nil {
			category = *tx.CategoryName
		}
		account := ""
		if tx.AccountName != nil {
			account = *tx.AccountName
		}
		row := []interface{}{
			tx.TransactionDate.Format("2006-01-02"),
			desc,
			category,
			account,
			tx.Amount.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(txSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	budgetSheet := "Budgets"
	if _, err := f.NewSheet(budgetSheet); err != nil {
		return nil, err
	}
	budgetHeader := []interface{}{"Category", "Limit", "Spent", "Progress %"}
	if err := f.SetSheetRow(budgetSheet, "A1", &budgetHeader); err != nil {
		return nil, err
	}
	for i, b := range data.Budgets {
		name := ""
		if b.CategoryName != nil {
			name = *b.CategoryName
		}
		row := []interface{}{
			name,
			b.Amount.InexactFloat64(),
			b.Spent.InexactFloat64(),
			b.Progress,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(budgetSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
