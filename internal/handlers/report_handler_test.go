package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "danaku/internal/errors"
	"danaku/internal/report"
)

type mockReportService struct {
	summaryFn func(userID string) (*report.Summary, error)
}

func (m *mockReportService) Summary(_ context.Context, userID string) (*report.Summary, error) {
	return m.summaryFn(userID)
}

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	r.GET("/reports/summary", injectUserID(testUserID), handler.Summary)
	return r
}

func TestReportHandler_Summary(t *testing.T) {
	t.Run("returns the summary for the caller", func(t *testing.T) {
		var gotUser string
		svc := &mockReportService{
			summaryFn: func(userID string) (*report.Summary, error) {
				gotUser = userID
				return &report.Summary{
					TotalBalance:        decimal.NewFromInt(150000),
					WalletCount:         2,
					ExpenseDistribution: []report.CategoryTotal{},
					Pockets:             []report.PocketStatus{},
				}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != testUserID {
			t.Errorf("expected user %s, got %s", testUserID, gotUser)
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["total_balance"] != "150000" {
			t.Errorf("expected total_balance 150000, got %v", summary["total_balance"])
		}
		if summary["wallet_count"].(float64) != 2 {
			t.Errorf("expected wallet_count 2, got %v", summary["wallet_count"])
		}
	})

	t.Run("masks unexpected errors", func(t *testing.T) {
		svc := &mockReportService{
			summaryFn: func(string) (*report.Summary, error) { return nil, errors.New("boom") },
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/summary", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})

	t.Run("passes transient errors through", func(t *testing.T) {
		svc := &mockReportService{
			summaryFn: func(string) (*report.Summary, error) {
				return nil, apperrors.Wrap(apperrors.ErrTransient, errors.New("connection refused"))
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/summary", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSIENT_ERROR")
	})
}
