package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
)

// MockRecordRepository - мок для repository.RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) List(
	ctx context.Context, ds *registry.Dataset, ownerID int64, subject string,
) ([]models.Record, error) {
	args := m.Called(ctx, ds, ownerID, subject)
	if recs, ok := args.Get(0).([]models.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordRepository) GetByID(
	ctx context.Context, ds *registry.Dataset, ownerID, id int64,
) (models.Record, error) {
	args := m.Called(ctx, ds, ownerID, id)
	if rec, ok := args.Get(0).(models.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordRepository) Insert(
	ctx context.Context, ds *registry.Dataset, rec models.Record,
) (int64, error) {
	args := m.Called(ctx, ds, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) Update(
	ctx context.Context, ds *registry.Dataset, ownerID, id int64, rec models.Record,
) (models.Record, error) {
	args := m.Called(ctx, ds, ownerID, id, rec)
	if updated, ok := args.Get(0).(models.Record); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordRepository) Delete(
	ctx context.Context, ds *registry.Dataset, ownerID, id int64,
) error {
	args := m.Called(ctx, ds, ownerID, id)
	return args.Error(0)
}

// MockUserRepository - мок для repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, username, email string) error {
	args := m.Called(ctx, id, username, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateCode(ctx context.Context, id int64, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePlan(ctx context.Context, id int64, plan string) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

// MockSettingRepository - мок для repository.SettingRepository.
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) GetSetting(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSettingRepository) SaveSetting(ctx context.Context, userID int64, settingJSON string) error {
	args := m.Called(ctx, userID, settingJSON)
	return args.Error(0)
}

// MockPaymentRepository - мок для repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, userID int64, plan string) error {
	args := m.Called(ctx, userID, plan)
	return args.Error(0)
}

func (m *MockPaymentRepository) HasPaymentToday(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockFileStorage - мок для storage.FileStorage.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) UploadFile(
	ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string,
) error {
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *MockFileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectKey)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}
