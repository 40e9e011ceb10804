package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "danaku/internal/errors"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/services"
)

// --- mock savings service ---

type mockSavingsService struct {
	createPocketFn func(userID, name string, target decimal.Decimal) (*models.SavingsPocket, error)
	getPocketFn    func(userID, pocketID string) (*models.SavingsPocket, error)
	listPocketsFn  func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPocket], error)
	adjustFn       func(userID, pocketID string, delta decimal.Decimal) (*models.SavingsPocket, error)
	deletePocketFn func(userID, pocketID string) error
}

func (m *mockSavingsService) CreatePocket(_ context.Context, userID, name string, target decimal.Decimal) (*models.SavingsPocket, error) {
	if m.createPocketFn != nil {
		return m.createPocketFn(userID, name, target)
	}
	return &models.SavingsPocket{Name: name, Target: target}, nil
}

func (m *mockSavingsService) GetPocket(_ context.Context, userID, pocketID string) (*models.SavingsPocket, error) {
	if m.getPocketFn != nil {
		return m.getPocketFn(userID, pocketID)
	}
	return &models.SavingsPocket{Base: models.Base{ID: pocketID}}, nil
}

func (m *mockSavingsService) ListPockets(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPocket], error) {
	if m.listPocketsFn != nil {
		return m.listPocketsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.SavingsPocket{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockSavingsService) AdjustSavingsPocket(_ context.Context, userID, pocketID string, delta decimal.Decimal) (*models.SavingsPocket, error) {
	if m.adjustFn != nil {
		return m.adjustFn(userID, pocketID, delta)
	}
	return &models.SavingsPocket{Base: models.Base{ID: pocketID}}, nil
}

func (m *mockSavingsService) DeletePocket(_ context.Context, userID, pocketID string) error {
	if m.deletePocketFn != nil {
		return m.deletePocketFn(userID, pocketID)
	}
	return nil
}

var _ services.SavingsServicer = (*mockSavingsService)(nil)

func setupSavingsRouter(handler *SavingsHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/savings", handler.CreatePocket)
	auth.GET("/savings", handler.ListPockets)
	auth.GET("/savings/:id", handler.GetPocket)
	auth.POST("/savings/:id/adjust", handler.AdjustPocket)
	auth.DELETE("/savings/:id", handler.DeletePocket)
	return r
}

func TestSavingsHandler_CreatePocket(t *testing.T) {
	t.Run("returns 201 with zero progress", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/savings", `{"name":"Liburan","target":"5000000"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		pocket := parseJSON(t, rec)["pocket"].(map[string]interface{})
		if pocket["progress"].(float64) != 0 {
			t.Errorf("expected progress 0, got %v", pocket["progress"])
		}
	})

	t.Run("returns 400 on non-positive target", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/savings", `{"name":"Liburan","target":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSavingsHandler_AdjustPocket(t *testing.T) {
	t.Run("forwards a withdrawal and reports progress", func(t *testing.T) {
		var gotDelta decimal.Decimal
		svc := &mockSavingsService{
			adjustFn: func(_, id string, delta decimal.Decimal) (*models.SavingsPocket, error) {
				gotDelta = delta
				return &models.SavingsPocket{
					Base:          models.Base{ID: id},
					Target:        decimal.NewFromInt(500000),
					CurrentAmount: decimal.NewFromInt(125000),
					Version:       3,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSavingsRouter(NewSavingsHandler(svc, audit))

		rec := doRequest(r, "POST", "/savings/"+testWalletID+"/adjust", `{"delta":"-75000"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotDelta.Equal(decimal.NewFromInt(-75000)) {
			t.Errorf("expected delta -75000, got %s", gotDelta)
		}
		pocket := parseJSON(t, rec)["pocket"].(map[string]interface{})
		if pocket["progress"].(float64) != 25 {
			t.Errorf("expected progress 25, got %v", pocket["progress"])
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "ADJUST_POCKET" {
			t.Errorf("expected ADJUST_POCKET audit entry, got %v", got)
		}
	})

	t.Run("returns 400 on zero delta", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/savings/"+testWalletID+"/adjust", `{"delta":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 422 when the amount would go below zero", func(t *testing.T) {
		svc := &mockSavingsService{
			adjustFn: func(string, string, decimal.Decimal) (*models.SavingsPocket, error) {
				return nil, apperrors.ErrInvalidAmount
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/savings/"+testWalletID+"/adjust", `{"delta":-1}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})
}

func TestSavingsHandler_ListAndGet(t *testing.T) {
	t.Run("lists with progress", func(t *testing.T) {
		svc := &mockSavingsService{
			listPocketsFn: func(string, pagination.PageRequest) (*pagination.PageResponse[models.SavingsPocket], error) {
				resp := pagination.NewPageResponse([]models.SavingsPocket{
					{Target: decimal.NewFromInt(100), CurrentAmount: decimal.NewFromInt(50)},
				}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/savings", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 || data[0].(map[string]interface{})["progress"].(float64) != 50 {
			t.Errorf("unexpected data %v", data)
		}
	})

	t.Run("returns 404 for a malformed id", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/savings/xyz", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "POCKET_NOT_FOUND")
	})
}

func TestSavingsHandler_DeletePocket(t *testing.T) {
	r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/savings/"+testWalletID, "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
