package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// parseJSON decodes a recorded JSON response body.
func parseJSON(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, httptest.NewRequest("GET", "/api/v1/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	var body map[string]string
	parseJSON(t, recorder, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}
