package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
	"github.com/onefin/server/internal/repository"
	"github.com/onefin/server/internal/storage"
)

// InvoiceService определяет интерфейс сервиса фактур.
// Одна фактура хранится несколькими строками, по строке на позицию;
// строки одной фактуры связаны номером фактуры.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID int64, req models.InvoiceRequest) (string, error)
	ListInvoices(ctx context.Context, userID int64, invoiceType string) ([]models.Record, error)
	DeleteInvoice(ctx context.Context, userID int64, id int64) error
	UploadPDF(ctx context.Context, userID int64, reader io.Reader, size int64, contentType string) (string, error)
	DownloadPDF(ctx context.Context, userID int64, objectKey string) (io.ReadCloser, error)
}

// Известные типы фактур.
const (
	InvoiceTypeIssued   = "issued"
	InvoiceTypeReceived = "received"
)

// Ограничения на загружаемые PDF-файлы фактур.
const maxInvoicePDFSize = 10 << 20 // 10 MiB

// Кастомные ошибки сервиса фактур.
var (
	ErrInvalidFile  = errors.New("допускается только PDF-файл размером до 10 МиБ")
	ErrFileNotFound = errors.New("файл не найден")
)

// Убедимся, что invoiceService удовлетворяет интерфейсу InvoiceService.
var _ InvoiceService = (*invoiceService)(nil)

type invoiceService struct {
	recordRepo repository.RecordRepository
	registry   *registry.Registry
	files      storage.FileStorage
}

// NewInvoiceService создает новый экземпляр сервиса фактур.
func NewInvoiceService(
	recordRepo repository.RecordRepository,
	reg *registry.Registry,
	files storage.FileStorage,
) InvoiceService {
	return &invoiceService{recordRepo: recordRepo, registry: reg, files: files}
}

// CreateInvoice сохраняет фактуру: по строке на позицию, реквизиты сторон
// и итоговые суммы дублируются в каждой строке. Возвращает номер фактуры.
func (s *invoiceService) CreateInvoice(
	ctx context.Context,
	userID int64,
	req models.InvoiceRequest,
) (string, error) {
	if err := validateInvoiceRequest(req); err != nil {
		return "", err
	}

	ds, _ := s.registry.Resolve(registry.DatasetInvoices)
	for _, item := range req.InvoiceItems {
		rec := invoiceItemRecord(userID, req, item)
		if _, err := s.recordRepo.Insert(ctx, ds, rec); err != nil {
			log.Printf("[InvoiceService] Ошибка вставки позиции фактуры %s пользователя %d: %v",
				req.InvoiceDetails.InvoiceNumber, userID, err)
			return "", errors.New("внутренняя ошибка сервера при сохранении фактуры")
		}
	}

	log.Printf("[InvoiceService] Фактура %s пользователя %d сохранена (%d позиций)",
		req.InvoiceDetails.InvoiceNumber, userID, len(req.InvoiceItems))
	return req.InvoiceDetails.InvoiceNumber, nil
}

// ListInvoices возвращает строки фактур пользователя по типу.
// Строки хранятся в открытом виде, расшифровка не требуется.
func (s *invoiceService) ListInvoices(
	ctx context.Context,
	userID int64,
	invoiceType string,
) ([]models.Record, error) {
	if invoiceType != InvoiceTypeIssued && invoiceType != InvoiceTypeReceived {
		return nil, fmt.Errorf("%w: неизвестный тип фактуры %q", ErrValidation, invoiceType)
	}

	ds, _ := s.registry.Resolve(registry.DatasetInvoices)
	records, err := s.recordRepo.List(ctx, ds, userID, invoiceType)
	if err != nil {
		log.Printf("[InvoiceService] Ошибка выборки фактур пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении фактур")
	}
	return records, nil
}

// DeleteInvoice удаляет одну строку фактуры пользователя.
func (s *invoiceService) DeleteInvoice(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: не указан ID строки фактуры", ErrValidation)
	}

	ds, _ := s.registry.Resolve(registry.DatasetInvoices)
	if err := s.recordRepo.Delete(ctx, ds, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		log.Printf("[InvoiceService] Ошибка удаления строки фактуры %d пользователя %d: %v", id, userID, err)
		return errors.New("внутренняя ошибка сервера при удалении фактуры")
	}
	return nil
}

// UploadPDF сохраняет PDF-файл фактуры в объектное хранилище и возвращает
// ключ объекта. Ключ содержит случайный UUID: имя загруженного файла
// в хранилище не попадает.
func (s *invoiceService) UploadPDF(
	ctx context.Context,
	userID int64,
	reader io.Reader,
	size int64,
	contentType string,
) (string, error) {
	if size <= 0 || size > maxInvoicePDFSize || contentType != "application/pdf" {
		return "", ErrInvalidFile
	}

	objectKey := fmt.Sprintf("invoices/%d/%s.pdf", userID, uuid.NewString())
	if err := s.files.UploadFile(ctx, objectKey, reader, size, contentType); err != nil {
		log.Printf("[InvoiceService] Ошибка загрузки PDF пользователя %d: %v", userID, err)
		return "", errors.New("внутренняя ошибка сервера при загрузке файла")
	}

	log.Printf("[InvoiceService] PDF фактуры пользователя %d сохранён как %s", userID, objectKey)
	return objectKey, nil
}

// DownloadPDF возвращает PDF-файл фактуры из объектного хранилища.
// Ключ должен лежать в пространстве пользователя: чужой файл недоступен
// даже при известном ключе.
func (s *invoiceService) DownloadPDF(
	ctx context.Context,
	userID int64,
	objectKey string,
) (io.ReadCloser, error) {
	prefix := fmt.Sprintf("invoices/%d/", userID)
	if !strings.HasPrefix(objectKey, prefix) || strings.Contains(objectKey, "..") {
		return nil, ErrFileNotFound
	}

	object, err := s.files.DownloadFile(ctx, objectKey)
	if err != nil {
		log.Printf("[InvoiceService] Ошибка скачивания %s: %v", objectKey, err)
		return nil, ErrFileNotFound
	}
	return object, nil
}

// validateInvoiceRequest проверяет обязательные поля фактуры.
func validateInvoiceRequest(req models.InvoiceRequest) error {
	if req.InvoiceDetails.InvoiceNumber == "" || req.InvoiceDetails.CreatedDate == "" {
		return fmt.Errorf("%w: номер и дата фактуры обязательны", ErrValidation)
	}
	if req.SupplierInfo.Name == "" || req.CustomerInfo.Name == "" {
		return fmt.Errorf("%w: стороны фактуры обязательны", ErrValidation)
	}
	if len(req.InvoiceItems) == 0 {
		return fmt.Errorf("%w: фактура должна содержать хотя бы одну позицию", ErrValidation)
	}
	for _, item := range req.InvoiceItems {
		if item.Type != "" && item.Type != InvoiceTypeIssued && item.Type != InvoiceTypeReceived {
			return fmt.Errorf("%w: неизвестный тип позиции %q", ErrValidation, item.Type)
		}
	}
	return nil
}

// invoiceItemRecord собирает строку фактуры для вставки.
func invoiceItemRecord(userID int64, req models.InvoiceRequest, item models.InvoiceItem) models.Record {
	invoiceType := item.Type
	if invoiceType == "" {
		invoiceType = InvoiceTypeIssued
	}
	return models.Record{
		"user_id":           userID,
		"invoice_type":      invoiceType,
		"invoice_number":    req.InvoiceDetails.InvoiceNumber,
		"created_date":      req.InvoiceDetails.CreatedDate,
		"due_date":          nullIfEmpty(req.InvoiceDetails.DueDate),
		"currency":          nullIfEmpty(req.InvoiceDetails.Currency),
		"supplier_name":     req.SupplierInfo.Name,
		"supplier_address":  req.SupplierInfo.Address,
		"supplier_ico":      req.SupplierInfo.ICO,
		"supplier_dic":      req.SupplierInfo.DIC,
		"supplier_email":    nullIfEmpty(req.SupplierInfo.Email),
		"supplier_iban":     nullIfEmpty(req.SupplierInfo.IBAN),
		"supplier_swift":    nullIfEmpty(req.SupplierInfo.SWIFT),
		"supplier_bank":     nullIfEmpty(req.SupplierInfo.BankAccount),
		"customer_name":     req.CustomerInfo.Name,
		"customer_address":  req.CustomerInfo.Address,
		"customer_ico":      req.CustomerInfo.ICO,
		"customer_dic":      req.CustomerInfo.DIC,
		"item_index":        int64(item.Index),
		"item_description":  item.Description,
		"item_quantity":     item.Quantity,
		"item_unit_price":   item.UnitPrice,
		"item_vat_rate":     item.VatRate,
		"item_total":        item.Total,
		"item_vat_amount":   item.VatAmount,
		"total_without_vat": req.Totals.TotalWithoutVat,
		"total_vat":         req.Totals.TotalVat,
		"total_to_pay":      req.Totals.TotalToPay,
		"paid_amount":       req.Totals.PaidAmount,
		"balance_due":       req.Totals.BalanceDue,
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
