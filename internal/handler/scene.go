package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"neuromesh/internal/codec"
	"neuromesh/internal/domain"
	"neuromesh/internal/service"
)

// SceneHandler handles scene API requests
type SceneHandler struct {
	svc *service.MeshService
}

// NewSceneHandler creates a new scene handler
func NewSceneHandler(svc *service.MeshService) *SceneHandler {
	return &SceneHandler{svc: svc}
}

// GetScene returns the current scene
func (h *SceneHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Scene(), http.StatusOK)
}

// AddActorRequest is the request body for adding a mesh to the scene
type AddActorRequest struct {
	MeshID  string       `json:"mesh_id"`
	Color   domain.Color `json:"color"`
	Opacity float64      `json:"opacity"`
}

// AddActor adds a mesh to the scene
func (h *SceneHandler) AddActor(w http.ResponseWriter, r *http.Request) {
	var req AddActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.MeshID == "" {
		writeError(w, "Mesh ID required", "", http.StatusBadRequest)
		return
	}

	actor, err := h.svc.AddActor(r.Context(), req.MeshID, req.Color, req.Opacity)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to add actor: %v", err)
		writeError(w, "Failed to add actor", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, actor, http.StatusCreated)
}

// RemoveActor removes an actor from the scene
func (h *SceneHandler) RemoveActor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.RemoveActor(id); err != nil {
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportScene writes the scene in the requested format (json or yaml)
func (h *SceneHandler) ExportScene(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	exporter := codec.ExporterFor(format)
	if exporter == nil {
		writeError(w, "Unknown format", fmt.Sprintf("No exporter for format %q", format), http.StatusBadRequest)
		return
	}

	contentType := "application/json"
	if exporter.Format() == "yaml" {
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=scene."+exporter.Format())

	if err := exporter.Export(h.svc.Scene(), w); err != nil {
		log.Printf("Failed to export scene: %v", err)
		// Headers are already written, nothing more to report.
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
