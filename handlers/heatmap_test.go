package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crowd-intelligence-api/services"
)

type fakeHeatmapService struct {
	points      []services.HeatmapPoint
	err         error
	gotIDs      []string
	gotCategory string
}

func (f *fakeHeatmapService) Build(ctx context.Context, placeIDs []string, category string) ([]services.HeatmapPoint, error) {
	f.gotIDs = placeIDs
	f.gotCategory = category
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

func TestGetHeatmapOK(t *testing.T) {
	svc := &fakeHeatmapService{
		points: []services.HeatmapPoint{
			{PlaceID: "p1", Name: "Main Square", CrowdIndex: 80, CrowdLevel: "VERY_BUSY", Color: "#e53935"},
		},
	}
	router := newTestRouter()
	router.GET("/api/v1/crowd/heatmap", NewHeatmapHandler(svc, noCache()).GetHeatmap)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/crowd/heatmap?category=plaza&place_ids=p1,p2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body heatmapResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].PlaceID != "p1" {
		t.Errorf("unexpected points: %+v", body.Data)
	}
	if svc.gotCategory != "plaza" {
		t.Errorf("category = %q, want plaza", svc.gotCategory)
	}
	if len(svc.gotIDs) != 2 || svc.gotIDs[0] != "p1" || svc.gotIDs[1] != "p2" {
		t.Errorf("place ids = %v, want [p1 p2]", svc.gotIDs)
	}
}

func TestGetHeatmapBuildError(t *testing.T) {
	svc := &fakeHeatmapService{err: errors.New("db down")}
	router := newTestRouter()
	router.GET("/api/v1/crowd/heatmap", NewHeatmapHandler(svc, noCache()).GetHeatmap)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/crowd/heatmap", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
