package handlers

import (
	"net/http"
)

// StatsResponse summarizes the stored face index.
type StatsResponse struct {
	TotalFaces int `json:"total_faces"`
	TotalFiles int `json:"total_files"`
}

// StatsHandler serves index statistics.
type StatsHandler struct {
	store FaceStore
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store FaceStore) *StatsHandler {
	return &StatsHandler{store: store}
}

// Get returns face and file counts.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	faces, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	files, err := h.store.CountFiles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{TotalFaces: faces, TotalFiles: files})
}
