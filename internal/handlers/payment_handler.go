package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/services"
)

// PaymentHandler обрабатывает запросы учёта оплат подписки.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler создает новый обработчик оплат.
func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Confirm обрабатывает POST /api/payments.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
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

	if err = h.paymentService.ConfirmPayment(r.Context(), userID, req.Plan); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrAlreadyPaid):
			writeError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("[PaymentHandler] Ошибка записи оплаты пользователя %d: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "оплата зафиксирована"})
}

// Status обрабатывает GET /api/payments/status.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	paid, err := h.paymentService.IsPaid(r.Context(), userID)
	if err != nil {
		log.Printf("[PaymentHandler] Ошибка проверки оплаты пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"paid": paid})
}

// Price обрабатывает GET /api/payments/price.
func (h *PaymentHandler) Price(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	price, err := h.paymentService.PlanPrice(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[PaymentHandler] Ошибка получения цены плана пользователя %d: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"price": price})
}
