package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/services"
)

// Лимит разбора multipart-формы с PDF-файлом фактуры.
const uploadMemoryLimit = 10 << 20 // 10 MiB

// InvoiceHandler обрабатывает запросы фактур и их PDF-файлов.
type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandler создает новый обработчик фактур.
func NewInvoiceHandler(invoiceService services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create обрабатывает POST /api/invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.InvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	number, err := h.invoiceService.CreateInvoice(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"invoiceNumber": number})
}

// List обрабатывает GET /api/invoices/{type}.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	invoiceType := chi.URLParam(r, "type")
	records, err := h.invoiceService.ListInvoices(r.Context(), userID, invoiceType)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Delete обрабатывает DELETE /api/invoices.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	var req models.DeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err = h.invoiceService.DeleteInvoice(r.Context(), userID, req.ID); err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "фактура удалена"})
}

// UploadPDF обрабатывает POST /api/invoices/pdf: multipart-форма
// с полем "file".
func (h *InvoiceHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	if err = r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "некорректная multipart-форма")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "в форме отсутствует поле file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("[InvoiceHandler] Ошибка закрытия загруженного файла: %v", closeErr)
		}
	}()

	objectKey, err := h.invoiceService.UploadPDF(
		r.Context(), userID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"objectKey": objectKey})
}

// DownloadPDF обрабатывает GET /api/invoices/pdf?key=<objectKey>.
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return
	}

	objectKey := r.URL.Query().Get("key")
	if objectKey == "" {
		writeError(w, http.StatusBadRequest, "не указан ключ объекта")
		return
	}

	object, err := h.invoiceService.DownloadPDF(r.Context(), userID, objectKey)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}
	defer func() {
		if closeErr := object.Close(); closeErr != nil {
			log.Printf("[InvoiceHandler] Ошибка закрытия объекта: %v", closeErr)
		}
	}()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice.pdf"`)
	if _, err = io.Copy(w, object); err != nil {
		log.Printf("[InvoiceHandler] Ошибка отдачи PDF пользователю %d: %v", userID, err)
	}
}

func (h *InvoiceHandler) writeServiceError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRecordNotFound), errors.Is(err, services.ErrFileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[InvoiceHandler] Ошибка обработки запроса пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
