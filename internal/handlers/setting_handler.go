package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/services"
)

// SettingHandler обрабатывает запросы пользовательских настроек.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler создает новый обработчик настроек.
func NewSettingHandler(settingService services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get обрабатывает GET /api/settings.
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	setting, err := h.settingService.GetSetting(r.Context(), userID)
	if err != nil {
		log.Printf("[SettingHandler] Ошибка чтения настроек пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	// Настройки хранятся готовым JSON-блобом, повторная сериализация не нужна
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write([]byte(setting)); err != nil {
		log.Printf("[SettingHandler] Ошибка записи ответа: %v", err)
	}
}

// Save обрабатывает PUT /api/settings: тело запроса целиком
// сохраняется как блоб настроек.
func (h *SettingHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}

	if err = h.settingService.SaveSetting(r.Context(), userID, string(raw)); err != nil {
		if errors.Is(err, services.ErrInvalidSetting) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[SettingHandler] Ошибка сохранения настроек пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "настройки сохранены"})
}

// ChangePlan обрабатывает PUT /api/settings/plan.
func (h *SettingHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err = h.settingService.ChangePlan(r.Context(), userID, req.Plan); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("[SettingHandler] Ошибка смены плана пользователя %d: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "план изменён"})
}
