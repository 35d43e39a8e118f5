package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crowd-intelligence-api/models"
	"crowd-intelligence-api/services"
)

type fakePredictionService struct {
	rows    []models.Forecast
	summary *services.ForecastSummary
	err     error
	gotDate time.Time
}

func (f *fakePredictionService) GetPredictions(ctx context.Context, placeID string, date time.Time) ([]models.Forecast, *services.ForecastSummary, error) {
	f.gotDate = date
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.rows, f.summary, nil
}

// A zero-value cache service behaves as a degraded no-op cache.
func noCache() *services.CacheService { return &services.CacheService{} }

func forecastRows(n int) []models.Forecast {
	rows := make([]models.Forecast, n)
	for i := range rows {
		rows[i] = models.Forecast{ID: "f", PlaceID: "p1", Hour: i, PredictedIndex: 40}
	}
	return rows
}

func TestGetPredictionsOK(t *testing.T) {
	svc := &fakePredictionService{
		rows:    forecastRows(24),
		summary: &services.ForecastSummary{BestHour: 4, PeakHour: 21},
	}
	router := newTestRouter()
	router.GET("/api/v1/places/:id/predictions", NewPredictionsHandler(svc, noCache()).GetPredictions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/places/p1/predictions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body predictionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 24 {
		t.Errorf("got %d rows, want 24", len(body.Data))
	}
	if body.Summary == nil || body.Summary.BestHour != 4 {
		t.Errorf("summary = %+v", body.Summary)
	}
}

func TestGetPredictionsDateParam(t *testing.T) {
	svc := &fakePredictionService{rows: forecastRows(24), summary: &services.ForecastSummary{}}
	router := newTestRouter()
	router.GET("/api/v1/places/:id/predictions", NewPredictionsHandler(svc, noCache()).GetPredictions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/places/p1/predictions?date=2026-08-15", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if !svc.gotDate.Equal(want) {
		t.Errorf("service received date %v, want %v", svc.gotDate, want)
	}
}

func TestGetPredictionsBadDate(t *testing.T) {
	router := newTestRouter()
	router.GET("/api/v1/places/:id/predictions", NewPredictionsHandler(&fakePredictionService{}, noCache()).GetPredictions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/places/p1/predictions?date=15-08-2026", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetPredictionsPlaceNotFound(t *testing.T) {
	svc := &fakePredictionService{err: services.ErrPlaceNotFound}
	router := newTestRouter()
	router.GET("/api/v1/places/:id/predictions", NewPredictionsHandler(svc, noCache()).GetPredictions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/places/nope/predictions", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
