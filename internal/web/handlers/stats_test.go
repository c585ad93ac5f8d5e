package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-indexer/internal/database"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
)

func TestStatsGet(t *testing.T) {
	store := newMockStore()
	store.faces["1_a"] = database.StoredFace{FaceID: "1_a"}
	store.faces["1_b"] = database.StoredFace{FaceID: "1_b"}
	store.indices[1] = faceindex.LocalFaceIndex{FileID: 1}

	recorder := httptest.NewRecorder()
	NewStatsHandler(store).Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	var stats StatsResponse
	parseJSON(t, recorder, &stats)
	if stats.TotalFaces != 2 || stats.TotalFiles != 1 {
		t.Errorf("stats = %+v, want 2 faces across 1 file", stats)
	}
}

func TestStatsGetStoreFailure(t *testing.T) {
	store := newMockStore()
	store.failing = true

	recorder := httptest.NewRecorder()
	NewStatsHandler(store).Get(recorder, httptest.NewRequest("GET", "/api/v1/stats", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", recorder.Code)
	}
}
