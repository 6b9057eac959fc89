package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onefin/server/internal/codec"
	"github.com/onefin/server/internal/crypto"
	"github.com/onefin/server/internal/export"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
)

func newTestCrypto(t *testing.T) (*crypto.Cipher, *codec.Codec) {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	cipher, err := crypto.New(key)
	require.NoError(t, err)
	return cipher, codec.New(cipher)
}

func encryptField(t *testing.T, cipher *crypto.Cipher, plaintext string) string {
	t.Helper()
	enc, err := cipher.Encrypt(plaintext)
	require.NoError(t, err)
	return enc
}

func TestExportService_Export_CSVEndToEnd(t *testing.T) {
	cipher, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewExportService(repo, cdc, reg)

	cashflowDS, _ := reg.Resolve(registry.DatasetCashflow)
	businessDS, _ := reg.Resolve(registry.DatasetBusiness)

	// Строки лежат в БД зашифрованными
	repo.On("List", mock.Anything, cashflowDS, int64(7), "income").Return([]models.Record{
		{
			"id":          int64(1),
			"description": encryptField(t, cipher, "prodej zboží"),
			"payment":     encryptField(t, cipher, "převodem"),
			"amount":      500.0,
		},
	}, nil)
	repo.On("List", mock.Anything, businessDS, int64(7), "supplier").Return([]models.Record{
		{
			"id":   int64(3),
			"name": encryptField(t, cipher, "Dodavatel s.r.o."),
		},
	}, nil)

	result, err := svc.Export(context.Background(), 7, models.ExportRequest{
		DataSets: []models.DatasetSubject{
			{Dataset: registry.DatasetCashflow, Subject: "income"},
			{Dataset: registry.DatasetBusiness, Subject: "supplier"},
		},
		Format: export.FormatCSV,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	out := string(result.Data)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, "export.csv", result.FileName)

	// Группы идут в порядке запроса, данные расшифрованы
	incomeIdx := strings.Index(out, "--- Datová sada: one_cashflow_income ---")
	supplierIdx := strings.Index(out, "--- Datová sada: one_business_supplier ---")
	require.NotEqual(t, -1, incomeIdx)
	require.NotEqual(t, -1, supplierIdx)
	assert.Less(t, incomeIdx, supplierIdx)
	assert.Contains(t, out, "prodej zboží")
	assert.Contains(t, out, "Dodavatel s.r.o.")
	assert.Contains(t, out, "Description")

	repo.AssertExpectations(t)
}

func TestExportService_Export_UnknownDatasetSkipped(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewExportService(repo, cdc, reg)

	cashflowDS, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("List", mock.Anything, cashflowDS, int64(7), "expense").Return([]models.Record{
		{"id": int64(1), "amount": 10.0},
	}, nil)

	result, err := svc.Export(context.Background(), 7, models.ExportRequest{
		DataSets: []models.DatasetSubject{
			{Dataset: "one_neznamy", Subject: "default"},
			{Dataset: registry.DatasetCashflow, Subject: "expense"},
		},
		Format: export.FormatCSV,
	})
	require.NoError(t, err)

	// Неизвестный набор пропущен, известный выгружен
	assert.Contains(t, string(result.Data), "one_cashflow_expense")
	assert.NotContains(t, string(result.Data), "one_neznamy")
	repo.AssertExpectations(t)
}

func TestExportService_Export_NoData(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewExportService(repo, cdc, reg)

	cashflowDS, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("List", mock.Anything, cashflowDS, int64(7), "income").Return([]models.Record{}, nil)

	// Формат заведомо неподдерживаемый: при пустом результате
	// до проверки формата дело не доходит
	_, err := svc.Export(context.Background(), 7, models.ExportRequest{
		DataSets: []models.DatasetSubject{{Dataset: registry.DatasetCashflow, Subject: "income"}},
		Format:   "xml",
	})
	require.ErrorIs(t, err, ErrNoData)
	repo.AssertExpectations(t)
}

func TestExportService_Export_UnsupportedFormat(t *testing.T) {
	_, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewExportService(repo, cdc, reg)

	cashflowDS, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("List", mock.Anything, cashflowDS, int64(7), "income").Return([]models.Record{
		{"id": int64(1)},
	}, nil)

	_, err := svc.Export(context.Background(), 7, models.ExportRequest{
		DataSets: []models.DatasetSubject{{Dataset: registry.DatasetCashflow, Subject: "income"}},
		Format:   "xml",
	})
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	repo.AssertExpectations(t)
}

func TestExportService_Export_EmptySelection(t *testing.T) {
	_, cdc := newTestCrypto(t)
	svc := NewExportService(new(MockRecordRepository), cdc, registry.New(nil, nil, nil))

	_, err := svc.Export(context.Background(), 7, models.ExportRequest{Format: export.FormatCSV})
	require.ErrorIs(t, err, ErrValidation)
}

func TestExportService_Export_CorruptRowStillExported(t *testing.T) {
	cipher, cdc := newTestCrypto(t)
	reg := registry.New(nil, nil, nil)
	repo := new(MockRecordRepository)
	svc := NewExportService(repo, cdc, reg)

	cashflowDS, _ := reg.Resolve(registry.DatasetCashflow)
	repo.On("List", mock.Anything, cashflowDS, int64(7), "income").Return([]models.Record{
		{"id": int64(1), "description": "not-a-valid-format"},
		{"id": int64(2), "description": encryptField(t, cipher, "čitelný záznam")},
	}, nil)

	result, err := svc.Export(context.Background(), 7, models.ExportRequest{
		DataSets: []models.DatasetSubject{{Dataset: registry.DatasetCashflow, Subject: "income"}},
		Format:   export.FormatCSV,
	})
	require.NoError(t, err)

	// Повреждённая строка не прервала экспорт: обе строки в документе,
	// повреждённое поле осталось в исходном виде
	out := string(result.Data)
	assert.Contains(t, out, "not-a-valid-format")
	assert.Contains(t, out, "čitelný záznam")
	repo.AssertExpectations(t)
}
