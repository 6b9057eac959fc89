package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// SettingRepository определяет методы для работы с JSON-настройками
// пользователей. Настройки хранятся одним блобом на пользователя.
type SettingRepository interface {
	GetSetting(ctx context.Context, userID int64) (string, error)
	SaveSetting(ctx context.Context, userID int64, settingJSON string) error
}

// Кастомные ошибки репозитория настроек.
var (
	ErrSettingNotFound = errors.New("настройки не найдены")
)

// postgresSettingRepository реализует SettingRepository для PostgreSQL.
type postgresSettingRepository struct {
	db *sqlx.DB
}

// NewPostgresSettingRepository создает новый экземпляр репозитория настроек.
func NewPostgresSettingRepository(db *sqlx.DB) SettingRepository {
	return &postgresSettingRepository{db: db}
}

// GetSetting возвращает JSON настроек пользователя.
func (r *postgresSettingRepository) GetSetting(ctx context.Context, userID int64) (string, error) {
	query := `SELECT setting FROM one_general_setting WHERE "user" = $1`
	var setting string

	err := r.db.GetContext(ctx, &setting, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		log.Printf("[SettingRepo] Ошибка при чтении настроек пользователя %d: %v", userID, err)
		return "", fmt.Errorf("ошибка выполнения запроса на получение настроек: %w", err)
	}
	return setting, nil
}

// SaveSetting вставляет или обновляет настройки пользователя (upsert).
func (r *postgresSettingRepository) SaveSetting(ctx context.Context, userID int64, settingJSON string) error {
	query := `INSERT INTO one_general_setting ("user", setting) VALUES ($1, $2)
	          ON CONFLICT ("user") DO UPDATE SET setting = EXCLUDED.setting`

	if _, err := r.db.ExecContext(ctx, query, userID, settingJSON); err != nil {
		log.Printf("[SettingRepo] Ошибка при сохранении настроек пользователя %d: %v", userID, err)
		return fmt.Errorf("ошибка выполнения запроса на сохранение настроек: %w", err)
	}
	return nil
}
