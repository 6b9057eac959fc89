package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onefin/server/internal/models"
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewPostgresUserRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	query := regexp.QuoteMeta(`INSERT INTO one_user (username, email, password_hash, plan, code, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`)
	mock.ExpectQuery(query).
		WithArgs("enc-username", "enc-email", "hash", "1", "code-uuid").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	id, err := repo.CreateUser(context.Background(), &models.User{
		Username:     "enc-username",
		Email:        "enc-email",
		PasswordHash: "hash",
		Plan:         "1",
		Code:         "code-uuid",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListUsers(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	query := regexp.QuoteMeta(
		`SELECT id, username, email, password_hash, plan, code, created_at FROM one_user`)
	now := time.Now()
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "plan", "code", "created_at"}).
			AddRow(int64(1), "enc-a", "enc-a@", "h1", "1", "c1", now).
			AddRow(int64(2), "enc-b", "enc-b@", "h2", "2", "c2", now))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "enc-b", users[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetUserByID_NotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	query := regexp.QuoteMeta(
		`SELECT id, username, email, password_hash, plan, code, created_at FROM one_user WHERE id=$1`)
	mock.ExpectQuery(query).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetUserByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePlan(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "План обновлён", affected: 1, wantErr: nil},
		{name: "Пользователь не найден", affected: 0, wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockUserRepo(t)

			query := regexp.QuoteMeta(`UPDATE one_user SET plan = $1 WHERE id = $2`)
			mock.ExpectExec(query).WithArgs("2", int64(5)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.UpdatePlan(context.Background(), 5, "2")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
