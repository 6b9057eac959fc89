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

// CashflowHandler обрабатывает запросы движения средств.
// Операция (income/expense) приходит URL-параметром {operation}.
type CashflowHandler struct {
	cashflowService services.CashflowService
}

// NewCashflowHandler создает новый обработчик движения средств.
func NewCashflowHandler(cashflowService services.CashflowService) *CashflowHandler {
	return &CashflowHandler{cashflowService: cashflowService}
}

// Create обрабатывает POST /api/cashflow/{operation}.
func (h *CashflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.CashflowEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	operation := chi.URLParam(r, "operation")
	rec, err := h.cashflowService.CreateEntry(r.Context(), userID, operation, req)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List обрабатывает GET /api/cashflow/{operation}.
func (h *CashflowHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	operation := chi.URLParam(r, "operation")
	records, err := h.cashflowService.ListEntries(r.Context(), userID, operation)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Update обрабатывает PUT /api/cashflow/{operation}.
func (h *CashflowHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.CashflowEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	operation := chi.URLParam(r, "operation")
	rec, err := h.cashflowService.UpdateEntry(r.Context(), userID, operation, req)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete обрабатывает DELETE /api/cashflow.
func (h *CashflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.DeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err = h.cashflowService.DeleteEntry(r.Context(), userID, req.ID); err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "запись удалена"})
}

func (h *CashflowHandler) writeServiceError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[CashflowHandler] Ошибка обработки запроса пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
