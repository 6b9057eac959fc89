package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// PaymentRepository определяет методы для учёта подтверждённых оплат.
type PaymentRepository interface {
	RecordPayment(ctx context.Context, userID int64, plan string) error
	HasPaymentToday(ctx context.Context, userID int64) (bool, error)
}

// postgresPaymentRepository реализует PaymentRepository для PostgreSQL.
type postgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository создает новый экземпляр репозитория платежей.
func NewPostgresPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

// RecordPayment сохраняет подтверждённую оплату с текущей датой.
func (r *postgresPaymentRepository) RecordPayment(ctx context.Context, userID int64, plan string) error {
	query := `INSERT INTO one_payment ("userID", paid, plan, date) VALUES ($1, $2, $3, CURRENT_DATE)`

	if _, err := r.db.ExecContext(ctx, query, userID, true, plan); err != nil {
		log.Printf("[PaymentRepo] Ошибка записи оплаты пользователя %d: %v", userID, err)
		return fmt.Errorf("ошибка выполнения запроса на запись оплаты: %w", err)
	}
	return nil
}

// HasPaymentToday проверяет, есть ли у пользователя оплата за сегодня.
func (r *postgresPaymentRepository) HasPaymentToday(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM one_payment WHERE "userID" = $1 AND date = CURRENT_DATE`
	var count int

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		log.Printf("[PaymentRepo] Ошибка проверки оплаты пользователя %d: %v", userID, err)
		return false, fmt.Errorf("ошибка выполнения запроса на проверку оплаты: %w", err)
	}
	return count > 0, nil
}
