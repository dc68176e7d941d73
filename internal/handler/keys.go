package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/server/middleware"
	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

// KeyHandler serves API key issuance and the admin-gated key endpoints.
type KeyHandler struct {
	keys   *service.KeyService
	store  *store.Store
	logger *slog.Logger
}

// NewKeyHandler creates a KeyHandler.
func NewKeyHandler(keys *service.KeyService, st *store.Store, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keys:   keys,
		store:  st,
		logger: logger,
	}
}

// generateResponse is the payload returned for a freshly issued key.
type generateResponse struct {
	ID     int64  `json:"id"`
	APIKey string `json:"apiKey"`
}

// Generate issues a new 30-day API key.
// GET /generate-apikey
func (h *KeyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.Generate(r.Context())
	if err != nil {
		h.logger.Error("generate key failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal membuat API key")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		ID:     key.ID,
		APIKey: key.Key,
	})
}

// List returns all keys, newest first.
// GET /api/admin/apikey
func (h *KeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		h.logger.Error("list keys failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal mengambil data apikey")
		return
	}
	if keys == nil {
		keys = []model.APIKey{}
	}

	writeJSON(w, http.StatusOK, keys)
}

// Revoke marks a key inactive by id. The transition is one-way and
// unconditional: revoking an already-inactive key succeeds again.
// DELETE /api/admin/apikey/{id}
func (h *KeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		// A non-numeric id can't reference any key.
		writeError(w, http.StatusNotFound, "API Key tidak ditemukan")
		return
	}

	if err := h.keys.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "API Key tidak ditemukan")
			return
		}
		h.logger.Error("revoke key failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal menonaktifkan apikey")
		return
	}

	if p := middleware.GetPrincipal(r.Context()); p != nil {
		h.logger.Info("api key revoked", "id", id, "admin_id", p.AdminID)
	}
	writeMessage(w, fmt.Sprintf("API Key %d dinonaktifkan", id))
}
