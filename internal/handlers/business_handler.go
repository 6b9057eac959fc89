package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/services"
)

// BusinessHandler обрабатывает запросы деловых контактов.
// Тип контакта (supplier/customer) приходит URL-параметром {operation}.
type BusinessHandler struct {
	businessService services.BusinessService
}

// NewBusinessHandler создает новый обработчик деловых контактов.
func NewBusinessHandler(businessService services.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// Create обрабатывает POST /api/business/{operation}.
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.BusinessContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	operation := chi.URLParam(r, "operation")
	rec, err := h.businessService.CreateContact(r.Context(), userID, operation, req)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List обрабатывает GET /api/business/{operation}.
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	operation := chi.URLParam(r, "operation")
	records, err := h.businessService.ListContacts(r.Context(), userID, operation)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Update обрабатывает PUT /api/business/{operation}.
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.BusinessContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	operation := chi.URLParam(r, "operation")
	rec, err := h.businessService.UpdateContact(r.Context(), userID, operation, req)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete обрабатывает DELETE /api/business.
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.DeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err = h.businessService.DeleteContact(r.Context(), userID, req.ID); err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "контакт удалён"})
}

func (h *BusinessHandler) writeServiceError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[BusinessHandler] Ошибка обработки запроса пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
