package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

// RegisterHandler serves key-gated user self-registration.
type RegisterHandler struct {
	keys   *service.KeyService
	store  *store.Store
	logger *slog.Logger
}

// NewRegisterHandler creates a RegisterHandler.
func NewRegisterHandler(keys *service.KeyService, st *store.Store, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		keys:   keys,
		store:  st,
		logger: logger,
	}
}

type registerRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	APIKeyID  int64  `json:"apikey_id"`
}

// Register validates the supplied key id and creates a user bound to it.
// Duplicate emails are allowed. The key check and the user insert are two
// statements, not a transaction; a revocation racing between them wins.
// POST /api/register
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "firstname, lastname, email, apikey_id wajib diisi")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.APIKeyID == 0 {
		writeError(w, http.StatusBadRequest, "firstname, lastname, email, apikey_id wajib diisi")
		return
	}

	if err := h.keys.ValidateForRegistration(r.Context(), req.APIKeyID); err != nil {
		if errors.Is(err, service.ErrKeyInvalid) {
			writeError(w, http.StatusBadRequest, "API Key tidak valid")
			return
		}
		h.logger.Error("key validation failed", "apikey_id", req.APIKeyID, "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal mendaftar user")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		StartDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		APIKeyID:  req.APIKeyID,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal mendaftar user")
		return
	}

	writeMessage(w, "User berhasil dibuat")
}
