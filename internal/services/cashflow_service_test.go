package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
	"github.com/onefin/server/internal/repository"
)

func validCashflowRequest() models.CashflowEntryRequest {
	return models.CashflowEntryRequest{
		Date:        "03.10.2024",
		Description: "nákup materiálu",
		Payment:     "karta",
		Amount:      250.0,
		Categorie:   "provoz",
		Note:        "paragon v šanonu",
	}
}

func TestCashflowService_CreateEntry(t *testing.T) {
	cipher, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	ds, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("Insert", mock.Anything, ds, mock.MatchedBy(func(rec models.Record) bool {
		// В БД уходит шифртекст, не открытый текст
		desc, _ := rec.StringField("description")
		if desc == "nákup materiálu" {
			return false
		}
		plain, err := cipher.Decrypt(desc)
		return err == nil && plain == "nákup materiálu" && rec["amount"] == 250.0
	})).Return(int64(41), nil)

	rec, err := svc.CreateEntry(context.Background(), 7, OperationExpense, validCashflowRequest())
	require.NoError(t, err)

	// Вызывающему возвращается открытый вид с присвоенным ID
	assert.Equal(t, int64(41), rec["id"])
	assert.Equal(t, "nákup materiálu", rec["description"])
	repo.AssertExpectations(t)
}

func TestCashflowService_CreateEntry_Validation(t *testing.T) {
	_, cdc := newTestCrypto(t)
	svc := NewCashflowService(new(MockRecordRepository), cdc, registry.New(nil, nil, nil))

	tests := []struct {
		name      string
		operation string
		mutate    func(*models.CashflowEntryRequest)
	}{
		{name: "Неизвестная операция", operation: "transfer", mutate: func(*models.CashflowEntryRequest) {}},
		{name: "Пустая дата", operation: OperationIncome,
			mutate: func(r *models.CashflowEntryRequest) { r.Date = "" }},
		{name: "Пустое описание", operation: OperationIncome,
			mutate: func(r *models.CashflowEntryRequest) { r.Description = "" }},
		{name: "Нулевая сумма", operation: OperationIncome,
			mutate: func(r *models.CashflowEntryRequest) { r.Amount = 0 }},
		{name: "Отрицательная сумма", operation: OperationIncome,
			mutate: func(r *models.CashflowEntryRequest) { r.Amount = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCashflowRequest()
			tt.mutate(&req)
			_, err := svc.CreateEntry(context.Background(), 7, tt.operation, req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCashflowService_ListEntries_Decrypted(t *testing.T) {
	cipher, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	ds, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("List", mock.Anything, ds, int64(7), OperationIncome).Return([]models.Record{
		{
			"id":          int64(1),
			"description": encryptField(t, cipher, "prodej zboží"),
			"payment":     encryptField(t, cipher, "převodem"),
			"amount":      500.0,
			"note":        nil,
		},
	}, nil)

	records, err := svc.ListEntries(context.Background(), 7, OperationIncome)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "prodej zboží", records[0]["description"])
	assert.Equal(t, "převodem", records[0]["payment"])
	assert.Nil(t, records[0]["note"])
	repo.AssertExpectations(t)
}

func TestCashflowService_UpdateEntry(t *testing.T) {
	cipher, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	req := validCashflowRequest()
	req.ID = 41

	ds, _ := reg.Resolve(registry.DatasetCashflow)
	stored := models.Record{
		"id":          int64(41),
		"description": encryptField(t, cipher, "nákup materiálu"),
		"amount":      250.0,
	}
	repo.On("Update", mock.Anything, ds, int64(7), int64(41),
		mock.MatchedBy(func(rec models.Record) bool {
			// Владелец задаётся предикатом запроса, в данных его нет
			_, hasOwner := rec["userID"]
			return !hasOwner
		})).Return(stored, nil)

	rec, err := svc.UpdateEntry(context.Background(), 7, OperationExpense, req)
	require.NoError(t, err)
	assert.Equal(t, "nákup materiálu", rec["description"])
	repo.AssertExpectations(t)
}

func TestCashflowService_UpdateEntry_NotFound(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	req := validCashflowRequest()
	req.ID = 999

	repo.On("Update", mock.Anything, mock.Anything, int64(7), int64(999), mock.Anything).
		Return(nil, repository.ErrRecordNotFound)

	_, err := svc.UpdateEntry(context.Background(), 7, OperationExpense, req)
	require.ErrorIs(t, err, ErrRecordNotFound)
	repo.AssertExpectations(t)
}

func TestCashflowService_DeleteEntry(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	ds, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("Delete", mock.Anything, ds, int64(7), int64(41)).Return(nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), 7, 41))
	repo.AssertExpectations(t)
}

func TestCashflowService_DeleteEntry_NotFound(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewCashflowService(repo, cdc, reg)

	repo.On("Delete", mock.Anything, mock.Anything, int64(7), int64(999)).
		Return(repository.ErrRecordNotFound)

	err := svc.DeleteEntry(context.Background(), 7, 999)
	require.ErrorIs(t, err, ErrRecordNotFound)
	repo.AssertExpectations(t)
}
