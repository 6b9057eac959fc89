package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/services"
)

// AuthHandler обрабатывает запросы аутентификации и профиля.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации.
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register обрабатывает POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, имя пользователя и пароль обязательны")
		return
	}

	if err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("[AuthHandler] Ошибка регистрации: %v", err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "пользователь зарегистрирован"})
}

// Login обрабатывает POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email и пароль обязательны")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("[AuthHandler] Ошибка входа: %v", err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

// GetProfile обрабатывает GET /api/profile.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[AuthHandler] Ошибка чтения профиля %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// SaveProfile обрабатывает PUT /api/profile.
func (h *AuthHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := h.authService.SaveProfile(r.Context(), userID, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[AuthHandler] Ошибка сохранения профиля %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdatePassword обрабатывает PUT /api/password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.UpdatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "текущий и новый пароль обязательны")
		return
	}

	if err = h.authService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("[AuthHandler] Ошибка смены пароля %d: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "пароль обновлён"})
}
