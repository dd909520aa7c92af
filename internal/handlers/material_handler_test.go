package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stubLedger devuelve respuestas fijas para probar el mapeo HTTP
type stubLedger struct {
	services.LedgerService

	applyErr       error
	applyResult    *models.OperationResult
	lastMaterialID int
	lastRequest    *models.MaterialOperationRequest
}

func (s *stubLedger) ApplyOperation(ctx context.Context, materialID int, req *models.MaterialOperationRequest) (*models.OperationResult, error) {
	s.lastMaterialID = materialID
	s.lastRequest = req
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	return s.applyResult, nil
}

func setupOperationRouter(ledger services.LedgerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewMaterialHandler(nil, ledger, zap.NewNop())
	router.POST("/materials/:id/operation", handler.ApplyOperation)
	return router
}

func performOperation(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestApplyOperationStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"material inexistente", services.ErrNotFound, http.StatusNotFound},
		{"stock insuficiente", services.ErrInsufficientStock, http.StatusConflict},
		{"ubicación de otro material", services.ErrLocationMismatch, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &stubLedger{applyErr: tt.serviceErr}
			router := setupOperationRouter(ledger)

			w := performOperation(t, router, "/materials/1/operation", gin.H{
				"operation":       "REMOVE",
				"quantity_change": 5,
				"reason":          "USO",
			})

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if success, _ := body["success"].(bool); success {
				t.Errorf("success = true en respuesta de error")
			}
		})
	}
}

func TestApplyOperationSuccess(t *testing.T) {
	ledger := &stubLedger{
		applyResult: &models.OperationResult{
			Material: &models.Material{ID: 1, Name: "Cable 2.5mm", Quantity: 95},
		},
	}
	router := setupOperationRouter(ledger)

	w := performOperation(t, router, "/materials/1/operation", gin.H{
		"operation":       "REMOVE",
		"quantity_change": 5,
		"reason":          "USO",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ledger.lastMaterialID != 1 {
		t.Errorf("material id = %d, want 1", ledger.lastMaterialID)
	}
	if ledger.lastRequest == nil || ledger.lastRequest.UserID != 1 {
		t.Errorf("el handler debe fijar el usuario por defecto")
	}
}

func TestApplyOperationRejectsBadPayload(t *testing.T) {
	router := setupOperationRouter(&stubLedger{})

	// quantity_change faltante no pasa la validación
	w := performOperation(t, router, "/materials/1/operation", gin.H{
		"operation": "REMOVE",
		"reason":    "USO",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	// id no numérico
	w = performOperation(t, router, "/materials/abc/operation", gin.H{
		"operation":       "REMOVE",
		"quantity_change": 5,
		"reason":          "USO",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 con id inválido", w.Code)
	}
}
