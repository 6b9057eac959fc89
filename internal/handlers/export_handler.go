package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/onefin/server/internal/export"
	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/services"
)

// ExportHandler обрабатывает запросы экспорта данных.
type ExportHandler struct {
	exportService services.ExportService
}

// NewExportHandler создает новый обработчик экспорта.
func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export обрабатывает POST /api/export: собирает выбранные наборы данных
// пользователя и отдаёт документ как вложение. Отсутствие данных — 404,
// неподдерживаемый формат — 400.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.ExportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.exportService.Export(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoData):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[ExportHandler] Ошибка экспорта пользователя %d: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(result.Data); err != nil {
		log.Printf("[ExportHandler] Ошибка отдачи документа пользователю %d: %v", userID, err)
	}
}
