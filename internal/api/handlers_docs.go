package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleGetDocument returns the cached outline for a content hash.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.Store()
	if store == nil {
		jsonError(w, "document store not configured", http.StatusServiceUnavailable)
		return
	}
	hash, ok := contentHashParam(r)
	if !ok {
		jsonError(w, "hash must be a hex sha-256 digest", http.StatusBadRequest)
		return
	}

	entry, err := store.GetOutline(r.Context(), hash)
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if entry == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"content_hash": entry.ContentHash,
		"filename":     entry.Filename,
		"created_at":   entry.CreatedAt,
		"result":       s.present(entry.Result),
	})
}

// handleDeleteDocument drops the cached outline for a content hash.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.Store()
	if store == nil {
		jsonError(w, "document store not configured", http.StatusServiceUnavailable)
		return
	}
	hash, ok := contentHashParam(r)
	if !ok {
		jsonError(w, "hash must be a hex sha-256 digest", http.StatusBadRequest)
		return
	}

	if err := store.DeleteOutline(r.Context(), hash); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": hash})
}

func contentHashParam(r *http.Request) (string, bool) {
	hash := strings.ToLower(chi.URLParam(r, "hash"))
	if len(hash) != 64 {
		return "", false
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return "", false
	}
	return hash, true
}
