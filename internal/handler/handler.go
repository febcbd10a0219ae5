package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"neuromesh/internal/service"
)

// MaintenanceTrigger allows triggering integrity verification from the handler
type MaintenanceTrigger interface {
	TriggerSyncAll(ctx context.Context) error
}

// MeshHandler handles mesh API requests
type MeshHandler struct {
	svc         *service.MeshService
	maintenance MaintenanceTrigger
}

// NewMeshHandler creates a new mesh handler
func NewMeshHandler(svc *service.MeshService) *MeshHandler {
	return &MeshHandler{svc: svc}
}

// SetMaintenanceTrigger sets the verification trigger (adapter registry)
func (h *MeshHandler) SetMaintenanceTrigger(m MaintenanceTrigger) {
	h.maintenance = m
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListMeshes returns all manifest records, optionally filtered by kind
func (h *MeshHandler) ListMeshes(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	records, err := h.svc.ListMeshes(r.Context(), kind)
	if err != nil {
		log.Printf("Failed to list meshes: %v", err)
		h.writeError(w, "Failed to list meshes", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, records, http.StatusOK)
}

// GetMesh returns a single manifest record
func (h *MeshHandler) GetMesh(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.svc.GetMesh(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get mesh: %v", err)
		h.writeError(w, "Failed to get mesh", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, rec, http.StatusOK)
}

// FetchMesh downloads a mesh by segment ID, serving from cache if present
func (h *MeshHandler) FetchMesh(w http.ResponseWriter, r *http.Request) {
	segmentID, ok := h.segmentID(w, r)
	if !ok {
		return
	}

	rec, fromCache, err := h.svc.Fetch(r.Context(), segmentID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to fetch segment %d: %v", segmentID, err)
		h.writeError(w, "Failed to fetch mesh", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"mesh":       rec,
		"from_cache": fromCache,
	}, http.StatusOK)
}

// BulkFetchRequest is the request body for a bulk download
type BulkFetchRequest struct {
	SegmentIDs []uint64 `json:"segment_ids"`
	Workers    int      `json:"workers,omitempty"`
}

// FetchBulk starts a background bulk download. Progress is streamed over
// the SSE events endpoint.
func (h *MeshHandler) FetchBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkFetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.SegmentIDs) == 0 {
		h.writeError(w, "No segments requested", "Provide at least one segment ID", http.StatusBadRequest)
		return
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}

	// Run the download in background and return immediately.
	go func() {
		if _, err := h.svc.FetchBulk(context.Background(), req.SegmentIDs, req.Workers); err != nil {
			log.Printf("Bulk fetch failed: %v", err)
		}
	}()

	h.writeJSON(w, map[string]interface{}{
		"status":  "fetch_started",
		"count":   len(req.SegmentIDs),
		"workers": req.Workers,
	}, http.StatusAccepted)
}

// HealMesh applies merge-log link edges to a cached mesh
func (h *MeshHandler) HealMesh(w http.ResponseWriter, r *http.Request) {
	segmentID, ok := h.segmentID(w, r)
	if !ok {
		return
	}

	rec, added, err := h.svc.Heal(r.Context(), segmentID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to heal segment %d: %v", segmentID, err)
		h.writeError(w, "Failed to heal mesh", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"mesh":        rec,
		"edges_added": added,
	}, http.StatusOK)
}

// MaskRequest is the request body for applying a filter chain
type MaskRequest struct {
	Filters []service.FilterSpec `json:"filters"`
}

// MaskMesh applies a filter chain and stores the result as a derived mesh
func (h *MeshHandler) MaskMesh(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req MaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	derived, err := h.svc.Mask(r.Context(), id, req.Filters)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to mask mesh %s: %v", id, err)
		h.writeError(w, "Failed to mask mesh", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, derived, http.StatusCreated)
}

// GetStats returns the geometry summary for a cached mesh
func (h *MeshHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	stats, err := h.svc.Stats(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to compute stats for %s: %v", id, err)
		h.writeError(w, "Failed to compute stats", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats, http.StatusOK)
}

// DeleteMesh evicts a mesh from the cache and the manifest
func (h *MeshHandler) DeleteMesh(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.Evict(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to evict mesh %s: %v", id, err)
		h.writeError(w, "Failed to evict mesh", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListIntegrity returns integrity findings
func (h *MeshHandler) ListIntegrity(w http.ResponseWriter, r *http.Request) {
	includeResolved := r.URL.Query().Get("include_resolved") == "true"

	findings, err := h.svc.Integrity(r.Context(), includeResolved)
	if err != nil {
		log.Printf("Failed to list integrity findings: %v", err)
		h.writeError(w, "Failed to list integrity findings", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, findings, http.StatusOK)
}

// ResolveIntegrity marks an integrity finding as resolved
func (h *MeshHandler) ResolveIntegrity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.ResolveFinding(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to resolve finding %s: %v", id, err)
		h.writeError(w, "Failed to resolve finding", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "resolved", "id": id}, http.StatusOK)
}

// TriggerVerify runs integrity verification in the background
func (h *MeshHandler) TriggerVerify(w http.ResponseWriter, r *http.Request) {
	if h.maintenance == nil {
		h.writeError(w, "Verification not configured", "No maintenance adapters are registered", http.StatusServiceUnavailable)
		return
	}

	go func() {
		if err := h.maintenance.TriggerSyncAll(context.Background()); err != nil {
			log.Printf("Verification sync failed: %v", err)
		}
	}()

	h.writeJSON(w, map[string]string{"status": "verification_triggered"}, http.StatusAccepted)
}

// segmentID parses the {id} path parameter as a segment ID
func (h *MeshHandler) segmentID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("id")
	segmentID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.writeError(w, "Invalid segment ID", "Segment ID must be an unsigned integer", http.StatusBadRequest)
		return 0, false
	}
	return segmentID, true
}

// Helper methods

func (h *MeshHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *MeshHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
