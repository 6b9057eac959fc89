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

// BusinessService определяет интерфейс сервиса деловых контактов.
// Operation ("supplier" или "customer") выбирает подмножество записей.
type BusinessService interface {
	CreateContact(ctx context.Context, userID int64, operation string, req models.BusinessContactRequest) (models.Record, error)
	ListContacts(ctx context.Context, userID int64, operation string) ([]models.Record, error)
	UpdateContact(ctx context.Context, userID int64, operation string, req models.BusinessContactRequest) (models.Record, error)
	DeleteContact(ctx context.Context, userID int64, id int64) error
}

// Известные типы контактов.
const (
	OperationSupplier = "supplier"
	OperationCustomer = "customer"
)

// Убедимся, что businessService удовлетворяет интерфейсу BusinessService.
var _ BusinessService = (*businessService)(nil)

type businessService struct {
	recordRepo repository.RecordRepository
	codec      *codec.Codec
	registry   *registry.Registry
}

// NewBusinessService создает новый экземпляр сервиса деловых контактов.
func NewBusinessService(
	recordRepo repository.RecordRepository,
	cdc *codec.Codec,
	reg *registry.Registry,
) BusinessService {
	return &businessService{recordRepo: recordRepo, codec: cdc, registry: reg}
}

// CreateContact создает контакт. Все текстовые реквизиты контакта
// чувствительны и шифруются перед вставкой.
func (s *businessService) CreateContact(
	ctx context.Context,
	userID int64,
	operation string,
	req models.BusinessContactRequest,
) (models.Record, error) {
	if err := validateBusinessRequest(operation, req); err != nil {
		return nil, err
	}

	ds, _ := s.registry.Resolve(registry.DatasetBusiness)
	rec := businessRecord(userID, operation, req)

	encrypted, err := s.codec.EncryptFields(rec, ds.Sensitive)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования контакта: %w", err)
	}

	id, err := s.recordRepo.Insert(ctx, ds, encrypted)
	if err != nil {
		log.Printf("[BusinessService] Ошибка создания контакта пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при создании контакта")
	}

	rec["id"] = id
	log.Printf("[BusinessService] Контакт %d (%s) пользователя %d создан", id, operation, userID)
	return rec, nil
}

// ListContacts возвращает расшифрованные контакты пользователя по типу.
func (s *businessService) ListContacts(
	ctx context.Context,
	userID int64,
	operation string,
) ([]models.Record, error) {
	if operation != OperationSupplier && operation != OperationCustomer {
		return nil, fmt.Errorf("%w: неизвестный тип контакта %q", ErrValidation, operation)
	}

	ds, _ := s.registry.Resolve(registry.DatasetBusiness)
	records, err := s.recordRepo.List(ctx, ds, userID, operation)
	if err != nil {
		log.Printf("[BusinessService] Ошибка выборки контактов пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении контактов")
	}
	return s.codec.DecryptRecords(records, ds.Sensitive), nil
}

// UpdateContact обновляет контакт и возвращает его расшифрованное
// новое состояние.
func (s *businessService) UpdateContact(
	ctx context.Context,
	userID int64,
	operation string,
	req models.BusinessContactRequest,
) (models.Record, error) {
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: не указан ID контакта", ErrValidation)
	}
	if err := validateBusinessRequest(operation, req); err != nil {
		return nil, err
	}

	ds, _ := s.registry.Resolve(registry.DatasetBusiness)
	rec := businessRecord(userID, operation, req)
	delete(rec, "userID") // владелец задаётся предикатом запроса, не данными

	encrypted, err := s.codec.EncryptFields(rec, ds.Sensitive)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования контакта: %w", err)
	}

	updated, err := s.recordRepo.Update(ctx, ds, userID, req.ID, encrypted)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		log.Printf("[BusinessService] Ошибка обновления контакта %d пользователя %d: %v", req.ID, userID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении контакта")
	}

	log.Printf("[BusinessService] Контакт %d пользователя %d обновлён", req.ID, userID)
	return s.codec.DecryptRecord(updated, ds.Sensitive), nil
}

// DeleteContact удаляет контакт пользователя.
func (s *businessService) DeleteContact(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: не указан ID контакта", ErrValidation)
	}

	ds, _ := s.registry.Resolve(registry.DatasetBusiness)
	if err := s.recordRepo.Delete(ctx, ds, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		log.Printf("[BusinessService] Ошибка удаления контакта %d пользователя %d: %v", id, userID, err)
		return errors.New("внутренняя ошибка сервера при удалении контакта")
	}

	log.Printf("[BusinessService] Контакт %d пользователя %d удалён", id, userID)
	return nil
}

// validateBusinessRequest проверяет обязательные поля запроса.
func validateBusinessRequest(operation string, req models.BusinessContactRequest) error {
	if operation != OperationSupplier && operation != OperationCustomer {
		return fmt.Errorf("%w: неизвестный тип контакта %q", ErrValidation, operation)
	}
	if req.Name == "" || req.Email == "" || req.Phone == "" ||
		req.Address == "" || req.ICO == "" || req.BankAccount == "" {
		return fmt.Errorf("%w: все реквизиты контакта, кроме заметки, обязательны", ErrValidation)
	}
	return nil
}

// businessRecord собирает запись для вставки из тела запроса.
// Пустая заметка сохраняется как NULL.
func businessRecord(userID int64, operation string, req models.BusinessContactRequest) models.Record {
	rec := models.Record{
		"userID":    userID,
		"operation": operation,
		"name":      req.Name,
		"email":     req.Email,
		"phone":     req.Phone,
		"place":     req.Address,
		"ico":       req.ICO,
		"bank":      req.BankAccount,
	}
	if req.Note != "" {
		rec["note"] = req.Note
	} else {
		rec["note"] = nil
	}
	return rec
}
