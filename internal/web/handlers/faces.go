package handlers

import (
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/database"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/imaging"
)

// maxUploadBytes caps uploaded image size for on-demand indexing.
const maxUploadBytes = 64 << 20

// FaceStore is the persistence surface the handlers need.
type FaceStore interface {
	GetFaceIndex(ctx context.Context, fileID int64) (*faceindex.LocalFaceIndex, error)
	SaveFaceIndex(ctx context.Context, index faceindex.LocalFaceIndex, runID string) error
	GetFace(ctx context.Context, faceID string) (*database.StoredFace, error)
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.SimilarFace, error)
	Count(ctx context.Context) (int, error)
	CountFiles(ctx context.Context) (int, error)
}

// Pipeline runs the indexing pipeline for an uploaded image.
type Pipeline interface {
	IndexFaces(ctx context.Context, fileID int64, img *image.RGBA) (*faceindex.FaceIndex, error)
}

// FacesHandler serves face index queries and on-demand indexing.
type FacesHandler struct {
	config   *config.Config
	store    FaceStore
	pipeline Pipeline
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(cfg *config.Config, store FaceStore, pipeline Pipeline) *FacesHandler {
	return &FacesHandler{config: cfg, store: store, pipeline: pipeline}
}

func fileIDParam(r *http.Request) (int64, bool) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	return fileID, err == nil
}

// Get returns the stored face index for a file.
func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileID, ok := fileIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	index, err := h.store.GetFaceIndex(r.Context(), fileID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "file not indexed")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, index)
}

// Remote returns the stored face index wrapped in the remote transport
// envelope, tagged with the pipeline version and client.
func (h *FacesHandler) Remote(w http.ResponseWriter, r *http.Request) {
	fileID, ok := fileIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	index, err := h.store.GetFaceIndex(r.Context(), fileID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "file not indexed")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, faceindex.RemoteFaceIndex{
		FaceIndex: index.FaceIndex,
		Version:   h.config.Pipeline.Version,
		Client:    h.config.Pipeline.Client,
	})
}

// Index runs the pipeline over an uploaded image and stores the result.
func (h *FacesHandler) Index(w http.ResponseWriter, r *http.Request) {
	fileID, ok := fileIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image body")
		return
	}

	img, _, err := imaging.DecodeRGBA(data)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	index, err := h.pipeline.IndexFaces(r.Context(), fileID, img)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	local := faceindex.LocalFaceIndex{FileID: fileID, FaceIndex: *index}
	if err := h.store.SaveFaceIndex(r.Context(), local, uuid.NewString()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, local)
}

// similarResponse is one similar-face hit.
type similarResponse struct {
	FaceID   string  `json:"faceID"`
	FileID   int64   `json:"fileID"`
	Score    float64 `json:"score"`
	Blur     float64 `json:"blur"`
	Distance float64 `json:"distance"`
}

// Similar finds the faces nearest to a stored face by embedding distance.
func (h *FacesHandler) Similar(w http.ResponseWriter, r *http.Request) {
	faceID := chi.URLParam(r, "faceID")

	limit := database.DefaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	face, err := h.store.GetFace(r.Context(), faceID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "face not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hits, err := h.store.FindSimilar(r.Context(), face.Embedding, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]similarResponse, 0, len(hits))
	for _, hit := range hits {
		results = append(results, similarResponse{
			FaceID:   hit.FaceID,
			FileID:   hit.FileID,
			Score:    hit.Score,
			Blur:     hit.Blur,
			Distance: hit.Distance,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"faces": results})
}
