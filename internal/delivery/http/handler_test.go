package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/repairlens/backend/internal/domain"
)

// stubEngine returns canned values and records what the handlers passed in
type stubEngine struct {
	profile    *domain.VehicleProfile
	resolveErr error
	result     *domain.EngineResult

	resolvedVIN string
	searchedFor string
}

func (s *stubEngine) ResolveVehicle(ctx context.Context, vin string) (*domain.VehicleProfile, error) {
	s.resolvedVIN = vin
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.profile, nil
}

func (s *stubEngine) ResolveOrSkip(ctx context.Context, vin string) *domain.VehicleProfile {
	s.resolvedVIN = vin
	if s.resolveErr != nil {
		return nil
	}
	return s.profile
}

func (s *stubEngine) SearchPartPrice(ctx context.Context, description string, profile *domain.VehicleProfile) *domain.EngineResult {
	s.searchedFor = description
	return s.result
}

func (s *stubEngine) SearchLaborTime(ctx context.Context, repairDescription string, profile *domain.VehicleProfile) *domain.EngineResult {
	s.searchedFor = repairDescription
	return s.result
}

func newTestRouter(engine EngineService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(engine)

	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	router.GET("/api/v1/vehicle/:vin", handler.ResolveVehicle)
	router.POST("/api/v1/estimate/parts", handler.SearchPartPrice)
	router.POST("/api/v1/estimate/labor", handler.SearchLaborTime)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want %q", body["status"], "healthy")
	}
}

func TestResolveVehicle_Success(t *testing.T) {
	engine := &stubEngine{profile: &domain.VehicleProfile{
		Year:  1991,
		Make:  "Honda",
		Model: "Accord",
		VIN:   "1HGBH41JXMN109186",
	}}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle/1HGBH41JXMN109186", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if engine.resolvedVIN != "1HGBH41JXMN109186" {
		t.Errorf("resolved VIN = %q", engine.resolvedVIN)
	}

	var profile domain.VehicleProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if profile.Make != "Honda" || profile.Year != 1991 {
		t.Errorf("profile = %+v, want 1991 Honda", profile)
	}
}

func TestResolveVehicle_InvalidVIN(t *testing.T) {
	engine := &stubEngine{resolveErr: domain.ErrInvalidVIN}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle/NOTAVIN", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResolveVehicle_DecodeServiceDown(t *testing.T) {
	engine := &stubEngine{resolveErr: domain.ErrResolutionFailed}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle/1HGBH41JXMN109186", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestSearchPartPrice_Endpoint(t *testing.T) {
	engine := &stubEngine{result: &domain.EngineResult{
		Query:             "brake pads",
		Source:            domain.SourceLive,
		TierUsed:          domain.TierGeneric,
		OverallConfidence: 65,
		PriceEstimate:     &domain.PriceEstimate{Low: 100, High: 160, Median: 130, Currency: "USD"},
	}}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate/parts",
		strings.NewReader(`{"description": "brake pads"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if engine.searchedFor != "brake pads" {
		t.Errorf("searched description = %q", engine.searchedFor)
	}

	var result domain.EngineResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.PriceEstimate == nil || result.PriceEstimate.Median != 130 {
		t.Errorf("result = %+v, want median 130", result)
	}
}

func TestSearchPartPrice_MissingDescription(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate/parts",
		strings.NewReader(`{"vin": "1HGBH41JXMN109186"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchPartPrice_BadVINStillReturns200(t *testing.T) {
	// A failed VIN decode downgrades the search, it never fails the request
	engine := &stubEngine{
		resolveErr: domain.ErrInvalidVIN,
		result: &domain.EngineResult{
			Query:             "brake pads",
			Source:            domain.SourceLive,
			TierUsed:          domain.TierGeneric,
			OverallConfidence: 65,
		},
	}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate/parts",
		strings.NewReader(`{"description": "brake pads", "vin": "INVALID123456789"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var result domain.EngineResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.TierUsed != domain.TierGeneric {
		t.Errorf("TierUsed = %d, want 3 after downgrade", result.TierUsed)
	}
}

func TestSearchLaborTime_Endpoint(t *testing.T) {
	engine := &stubEngine{result: &domain.EngineResult{
		Query:             "replace brake pads",
		Source:            domain.SourceLive,
		TierUsed:          domain.TierMakeModel,
		OverallConfidence: 48,
		LaborEstimate:     &domain.LaborEstimate{MinutesPoint: 45, MinutesLow: 30, MinutesHigh: 60, SampleCount: 3},
	}}
	router := newTestRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate/labor",
		strings.NewReader(`{"description": "replace brake pads"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var result domain.EngineResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.LaborEstimate == nil || result.LaborEstimate.MinutesPoint != 45 {
		t.Errorf("result = %+v, want 45 minute estimate", result)
	}
}
