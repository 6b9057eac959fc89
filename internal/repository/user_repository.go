package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/onefin/server/internal/models"
)

// UserRepository определяет методы для работы с данными пользователей.
// Имя пользователя и email лежат в БД зашифрованными со случайным IV,
// поэтому равенство по ним не выражается SQL-предикатом: репозиторий
// отдаёт всех пользователей, а сравнение после расшифровки делает сервис.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, username, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateCode(ctx context.Context, id int64, code string) error
	UpdatePlan(ctx context.Context, id int64, plan string) error
}

// Кастомные ошибки репозитория пользователей.
var (
	ErrUserNotFound = errors.New("пользователь не найден")
)

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser создает нового пользователя в базе данных.
// Возвращает ID созданного пользователя или ошибку.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO one_user (username, email, password_hash, plan, code, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`
	var userID int64

	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Plan, user.Code).Scan(&userID)
	if err != nil {
		log.Printf("[UserRepo] Ошибка при создании пользователя: %v", err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[UserRepo] Пользователь успешно создан с ID %d", userID)
	return userID, nil
}

// ListUsers возвращает всех пользователей.
// Используется сервисом для поиска по расшифрованным username/email.
func (r *postgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, username, email, password_hash, plan, code, created_at FROM one_user`
	var users []models.User

	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		log.Printf("[UserRepo] Ошибка при выборке пользователей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователей: %w", err)
	}
	return users, nil
}

// GetUserByID находит пользователя по его ID.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, plan, code, created_at FROM one_user WHERE id=$1`
	var user models.User

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[UserRepo] Пользователь с ID %d не найден", id)
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepo] Ошибка при поиске пользователя %d: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return &user, nil
}

// UpdateProfile обновляет зашифрованные username и email пользователя.
func (r *postgresUserRepository) UpdateProfile(ctx context.Context, id int64, username, email string) error {
	query := `UPDATE one_user SET username = $1, email = $2 WHERE id = $3`
	return r.exec(ctx, query, "профиля", username, email, id)
}

// UpdatePassword обновляет хеш пароля пользователя.
func (r *postgresUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE one_user SET password_hash = $1 WHERE id = $2`
	return r.exec(ctx, query, "пароля", passwordHash, id)
}

// UpdateCode обновляет одноразовый код сессии пользователя.
func (r *postgresUserRepository) UpdateCode(ctx context.Context, id int64, code string) error {
	query := `UPDATE one_user SET code = $1 WHERE id = $2`
	return r.exec(ctx, query, "кода сессии", code, id)
}

// UpdatePlan обновляет тарифный план пользователя.
func (r *postgresUserRepository) UpdatePlan(ctx context.Context, id int64, plan string) error {
	query := `UPDATE one_user SET plan = $1 WHERE id = $2`
	return r.exec(ctx, query, "тарифного плана", plan, id)
}

// exec выполняет UPDATE и переводит нулевое число строк в ErrUserNotFound.
func (r *postgresUserRepository) exec(ctx context.Context, query, what string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("[UserRepo] Ошибка обновления %s: %v", what, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление %s: %w", what, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа обновлённых строк: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
