package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/onefin/server/internal/repository"
)

// SettingService определяет интерфейс сервиса пользовательских настроек.
type SettingService interface {
	GetSetting(ctx context.Context, userID int64) (string, error)
	SaveSetting(ctx context.Context, userID int64, settingJSON string) error
	CreateDefault(ctx context.Context, userID int64) error
	ChangePlan(ctx context.Context, userID int64, plan string) error
}

// defaultSettingJSON — настройки нового пользователя.
const defaultSettingJSON = `{"dark":false,"synch":false,"gdpr":true,"cookie":true}`

// Допустимые тарифные планы.
var knownPlans = map[string]bool{"1": true, "2": true}

// Кастомные ошибки сервиса настроек.
var (
	ErrSettingNotFound = errors.New("настройки не найдены")
	ErrInvalidSetting  = errors.New("настройки должны быть корректным JSON")
	ErrUnknownPlan     = errors.New("неизвестный тарифный план")
)

// Убедимся, что settingService удовлетворяет интерфейсу SettingService.
var _ SettingService = (*settingService)(nil)

type settingService struct {
	settingRepo repository.SettingRepository
	userRepo    repository.UserRepository
}

// NewSettingService создает новый экземпляр сервиса настроек.
func NewSettingService(settingRepo repository.SettingRepository, userRepo repository.UserRepository) SettingService {
	return &settingService{settingRepo: settingRepo, userRepo: userRepo}
}

// GetSetting возвращает JSON настроек пользователя.
// Если настроек ещё нет, возвращаются настройки по умолчанию.
func (s *settingService) GetSetting(ctx context.Context, userID int64) (string, error) {
	setting, err := s.settingRepo.GetSetting(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return defaultSettingJSON, nil
		}
		log.Printf("[SettingService] Ошибка чтения настроек пользователя %d: %v", userID, err)
		return "", errors.New("внутренняя ошибка сервера при чтении настроек")
	}
	return setting, nil
}

// SaveSetting сохраняет настройки пользователя после проверки, что это
// корректный JSON. Блоб хранится как есть, схема полей не навязывается.
func (s *settingService) SaveSetting(ctx context.Context, userID int64, settingJSON string) error {
	if !json.Valid([]byte(settingJSON)) {
		return ErrInvalidSetting
	}
	if err := s.settingRepo.SaveSetting(ctx, userID, settingJSON); err != nil {
		log.Printf("[SettingService] Ошибка сохранения настроек пользователя %d: %v", userID, err)
		return errors.New("внутренняя ошибка сервера при сохранении настроек")
	}
	return nil
}

// CreateDefault создает настройки по умолчанию для нового пользователя.
func (s *settingService) CreateDefault(ctx context.Context, userID int64) error {
	return s.settingRepo.SaveSetting(ctx, userID, defaultSettingJSON)
}

// ChangePlan меняет тарифный план пользователя.
func (s *settingService) ChangePlan(ctx context.Context, userID int64, plan string) error {
	if !knownPlans[plan] {
		return ErrUnknownPlan
	}
	if err := s.userRepo.UpdatePlan(ctx, userID, plan); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		log.Printf("[SettingService] Ошибка смены плана пользователя %d: %v", userID, err)
		return errors.New("внутренняя ошибка сервера при смене плана")
	}
	log.Printf("[SettingService] План пользователя %d изменён на %s", userID, plan)
	return nil
}
