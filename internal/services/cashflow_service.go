package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/onefin/server/internal/codec"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
	"github.com/onefin/server/internal/repository"
)

// CashflowService определяет интерфейс сервиса движения средств.
// Operation ("income" или "expense") выбирает подмножество записей.
type CashflowService interface {
	CreateEntry(ctx context.Context, userID int64, operation string, req models.CashflowEntryRequest) (models.Record, error)
	ListEntries(ctx context.Context, userID int64, operation string) ([]models.Record, error)
	UpdateEntry(ctx context.Context, userID int64, operation string, req models.CashflowEntryRequest) (models.Record, error)
	DeleteEntry(ctx context.Context, userID int64, id int64) error
}

// Известные операции движения средств.
const (
	OperationIncome  = "income"
	OperationExpense = "expense"
)

// Кастомные ошибки сервисов записей.
var (
	ErrValidation     = errors.New("некорректные данные запроса")
	ErrRecordNotFound = errors.New("запись не найдена")
)

// Убедимся, что cashflowService удовлетворяет интерфейсу CashflowService.
var _ CashflowService = (*cashflowService)(nil)

type cashflowService struct {
	recordRepo repository.RecordRepository
	codec      *codec.Codec
	registry   *registry.Registry
}

// NewCashflowService создает новый экземпляр сервиса движения средств.
func NewCashflowService(
	recordRepo repository.RecordRepository,
	cdc *codec.Codec,
	reg *registry.Registry,
) CashflowService {
	return &cashflowService{recordRepo: recordRepo, codec: cdc, registry: reg}
}

// CreateEntry создает запись движения средств. Чувствительные поля
// шифруются перед вставкой, вызывающему возвращается открытый вид записи.
func (s *cashflowService) CreateEntry(
	ctx context.Context,
	userID int64,
	operation string,
	req models.CashflowEntryRequest,
) (models.Record, error) {
	if err := validateCashflowRequest(operation, req); err != nil {
		return nil, err
	}

	ds, _ := s.registry.Resolve(registry.DatasetCashflow)
	rec := cashflowRecord(userID, operation, req)

	encrypted, err := s.codec.EncryptFields(rec, ds.Sensitive)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования записи: %w", err)
	}

	id, err := s.recordRepo.Insert(ctx, ds, encrypted)
	if err != nil {
		log.Printf("[CashflowService] Ошибка создания записи пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при создании записи")
	}

	rec["id"] = id
	log.Printf("[CashflowService] Запись %d (%s) пользователя %d создана", id, operation, userID)
	return rec, nil
}

// ListEntries возвращает расшифрованные записи пользователя по операции.
func (s *cashflowService) ListEntries(
	ctx context.Context,
	userID int64,
	operation string,
) ([]models.Record, error) {
	if operation != OperationIncome && operation != OperationExpense {
		return nil, fmt.Errorf("%w: неизвестная операция %q", ErrValidation, operation)
	}

	ds, _ := s.registry.Resolve(registry.DatasetCashflow)
	records, err := s.recordRepo.List(ctx, ds, userID, operation)
	if err != nil {
		log.Printf("[CashflowService] Ошибка выборки записей пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении записей")
	}
	return s.codec.DecryptRecords(records, ds.Sensitive), nil
}

// UpdateEntry обновляет запись движения средств и возвращает её
// расшифрованное новое состояние.
func (s *cashflowService) UpdateEntry(
	ctx context.Context,
	userID int64,
	operation string,
	req models.CashflowEntryRequest,
) (models.Record, error) {
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: не указан ID записи", ErrValidation)
	}
	if err := validateCashflowRequest(operation, req); err != nil {
		return nil, err
	}

	ds, _ := s.registry.Resolve(registry.DatasetCashflow)
	rec := cashflowRecord(userID, operation, req)
	delete(rec, "userID") // владелец задаётся предикатом запроса, не данными

	encrypted, err := s.codec.EncryptFields(rec, ds.Sensitive)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования записи: %w", err)
	}

	updated, err := s.recordRepo.Update(ctx, ds, userID, req.ID, encrypted)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		log.Printf("[CashflowService] Ошибка обновления записи %d пользователя %d: %v", req.ID, userID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении записи")
	}

	log.Printf("[CashflowService] Запись %d пользователя %d обновлена", req.ID, userID)
	return s.codec.DecryptRecord(updated, ds.Sensitive), nil
}

// DeleteEntry удаляет запись движения средств пользователя.
func (s *cashflowService) DeleteEntry(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: не указан ID записи", ErrValidation)
	}

	ds, _ := s.registry.Resolve(registry.DatasetCashflow)
	if err := s.recordRepo.Delete(ctx, ds, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		log.Printf("[CashflowService] Ошибка удаления записи %d пользователя %d: %v", id, userID, err)
		return errors.New("внутренняя ошибка сервера при удалении записи")
	}

	log.Printf("[CashflowService] Запись %d пользователя %d удалена", id, userID)
	return nil
}

// validateCashflowRequest проверяет обязательные поля запроса.
func validateCashflowRequest(operation string, req models.CashflowEntryRequest) error {
	if operation != OperationIncome && operation != OperationExpense {
		return fmt.Errorf("%w: неизвестная операция %q", ErrValidation, operation)
	}
	if req.Date == "" || req.Description == "" || req.Payment == "" || req.Categorie == "" {
		return fmt.Errorf("%w: дата, описание, способ оплаты и категория обязательны", ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: сумма должна быть положительной", ErrValidation)
	}
	return nil
}

// cashflowRecord собирает запись для вставки из тела запроса.
// Пустая заметка сохраняется как NULL.
func cashflowRecord(userID int64, operation string, req models.CashflowEntryRequest) models.Record {
	rec := models.Record{
		"userID":      userID,
		"operation":   operation,
		"date":        req.Date,
		"description": req.Description,
		"payment":     req.Payment,
		"amount":      req.Amount,
		"categorie":   req.Categorie,
	}
	if req.Note != "" {
		rec["note"] = req.Note
	} else {
		rec["note"] = nil
	}
	return rec
}
