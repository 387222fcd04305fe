package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard-api/internal/utils"
)

// newTestApp builds an app with the production error handler so APIError
// values map to their status codes.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
	})
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// TestCreateTransaction_Validation tests the request checks that run
// before the store is touched
func TestCreateTransaction_Validation(t *testing.T) {
	handler := NewTransactionsHandler(nil, nil, nil, time.Second)
	app := newTestApp()
	app.Post("/transactions", handler.Create)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "Missing account",
			body:    `{"type":"expense","amount":"10"}`,
			wantMsg: "account_id is required",
		},
		{
			name:    "Malformed account id",
			body:    `{"account_id":"not-a-uuid","type":"expense","amount":"10"}`,
			wantMsg: "invalid request body",
		},
		{
			name:    "Unknown type",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"refund","amount":"10"}`,
			wantMsg: "type must be income or expense",
		},
		{
			name:    "Zero amount",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"0"}`,
			wantMsg: "amount must be greater than zero",
		},
		{
			name:    "Negative amount",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"income","amount":"-5"}`,
			wantMsg: "amount must be greater than zero",
		},
		{
			name:    "Bad date format",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"10","transaction_date":"05/03/2026"}`,
			wantMsg: "invalid transaction_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/transactions", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
			if tt.wantMsg != "" {
				assert.Contains(t, body["message"], tt.wantMsg)
			}
		})
	}
}

// TestUpdateTransaction_Validation tests the edit request checks that run
// before the store is touched
func TestUpdateTransaction_Validation(t *testing.T) {
	handler := NewTransactionsHandler(nil, nil, nil, time.Second)
	app := newTestApp()
	app.Put("/transactions/:id", handler.Update)

	tests := []struct {
		name    string
		path    string
		body    string
		wantMsg string
	}{
		{
			name:    "Malformed id",
			path:    "/transactions/not-a-uuid",
			body:    `{"type":"expense","amount":"10","transaction_date":"2026-08-01"}`,
			wantMsg: "invalid id",
		},
		{
			name:    "Unknown type",
			path:    "/transactions/7d444840-9dc0-11d1-b245-5ffdce74fad2",
			body:    `{"type":"refund","amount":"10","transaction_date":"2026-08-01"}`,
			wantMsg: "type must be income or expense",
		},
		{
			name:    "Zero amount",
			path:    "/transactions/7d444840-9dc0-11d1-b245-5ffdce74fad2",
			body:    `{"type":"expense","amount":"0","transaction_date":"2026-08-01"}`,
			wantMsg: "amount must be greater than zero",
		},
		{
			name:    "Missing date",
			path:    "/transactions/7d444840-9dc0-11d1-b245-5ffdce74fad2",
			body:    `{"type":"expense","amount":"10"}`,
			wantMsg: "transaction_date is required",
		},
		{
			name:    "Bad date format",
			path:    "/transactions/7d444840-9dc0-11d1-b245-5ffdce74fad2",
			body:    `{"type":"expense","amount":"10","transaction_date":"08/01/2026"}`,
			wantMsg: "invalid transaction_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

// TestCreateTransfer_Validation tests transfer request checks
func TestCreateTransfer_Validation(t *testing.T) {
	handler := NewTransfersHandler(nil, nil, time.Second)
	app := newTestApp()
	app.Post("/transfers", handler.Create)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "Missing accounts",
			body:    `{"amount":"25"}`,
			wantMsg: "from_account_id and to_account_id are required",
		},
		{
			name:    "Bad date format",
			body:    `{"from_account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","to_account_id":"9b2b1bd2-9dc0-11d1-b245-5ffdce74fad2","amount":"25","transfer_date":"yesterday"}`,
			wantMsg: "invalid transfer_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/transfers", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

// TestCreateGoal_Validation tests saving goal request checks
func TestCreateGoal_Validation(t *testing.T) {
	handler := NewGoalsHandler(nil, nil, nil, time.Second)
	app := newTestApp()
	app.Post("/saving-goals", handler.Create)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"Missing name", `{"target_amount":"100"}`, "name is required"},
		{"Zero target", `{"name":"Vacation","target_amount":"0"}`, "target_amount must be greater than zero"},
		{"Negative target", `{"name":"Vacation","target_amount":"-10"}`, "target_amount must be greater than zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/saving-goals", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

// TestCreateRecurring_Validation tests recurring template request checks
func TestCreateRecurring_Validation(t *testing.T) {
	handler := NewRecurringHandler(nil, nil, time.Second)
	app := newTestApp()
	app.Post("/recurring-transactions", handler.Create)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "Missing account",
			body:    `{"type":"expense","amount":"10","description":"Rent","frequency":"monthly","start_date":"2026-01-01"}`,
			wantMsg: "account_id is required",
		},
		{
			name:    "Missing description",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"10","frequency":"monthly","start_date":"2026-01-01"}`,
			wantMsg: "description is required",
		},
		{
			name:    "Bad frequency",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"10","description":"Rent","frequency":"fortnightly","start_date":"2026-01-01"}`,
			wantMsg: "frequency must be daily, weekly, monthly or yearly",
		},
		{
			name:    "Missing start date",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"10","description":"Rent","frequency":"monthly"}`,
			wantMsg: "start_date is required",
		},
		{
			name:    "Bad start date format",
			body:    `{"account_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","type":"expense","amount":"10","description":"Rent","frequency":"monthly","start_date":"Jan 1"}`,
			wantMsg: "invalid start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/recurring-transactions", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

// TestDeleteReport_Validation tests that bad month/year query params are
// rejected before storage is touched
func TestDeleteReport_Validation(t *testing.T) {
	handler := NewReportsHandler(nil, nil, nil, nil, nil, time.Second)
	app := newTestApp()
	app.Delete("/reports/monthly", handler.Delete)

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"Non-numeric month", "/reports/monthly?month=abc", "invalid month"},
		{"Month out of range", "/reports/monthly?month=13&year=2026", "month must be between 1 and 12"},
		{"Year out of range", "/reports/monthly?month=9&year=12", "year out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

// TestParseID_Invalid tests that malformed path ids are rejected before
// any lookup
func TestParseID_Invalid(t *testing.T) {
	handler := NewGoalsHandler(nil, nil, nil, time.Second)
	app := newTestApp()
	app.Delete("/saving-goals/:id", handler.Delete)

	req := httptest.NewRequest("DELETE", "/saving-goals/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
