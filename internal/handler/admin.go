package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

// AdminHandler serves admin account creation, login, and the gated user
// listing.
type AdminHandler struct {
	store  *store.Store
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(st *store.Store, auth *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		store:  st,
		auth:   auth,
		logger: logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create registers a new admin account with a bcrypt-hashed password.
// POST /api/admin/create
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "email dan password tidak boleh kosong")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email dan password tidak boleh kosong")
		return
	}

	hash, err := service.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal membuat admin")
		return
	}

	admin := &model.Admin{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateAdmin(r.Context(), admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Email admin sudah ada")
			return
		}
		h.logger.Error("create admin failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal membuat admin")
		return
	}

	writeMessage(w, "Admin berhasil dibuat")
}

// loginResponse is the payload for a successful login.
type loginResponse struct {
	Token string `json:"token"`
}

// Login verifies admin credentials and returns a 1-hour session token. The
// unknown-email and wrong-password responses are identical.
// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnauthorized, "Email atau password salah")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Email atau password salah")
			return
		}
		h.logger.Error("admin login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal login admin")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// ListUsers returns every registered user, unfiltered.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gagal mengambil data user")
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, users)
}
