package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
)

// RecordRepository определяет обобщённые owner-scoped операции над записями
// наборов данных из реестра. Все запросы включают предикат владельца:
// запись другого пользователя невозможно ни прочитать, ни изменить.
type RecordRepository interface {
	List(ctx context.Context, ds *registry.Dataset, ownerID int64, subject string) ([]models.Record, error)
	GetByID(ctx context.Context, ds *registry.Dataset, ownerID, id int64) (models.Record, error)
	Insert(ctx context.Context, ds *registry.Dataset, rec models.Record) (int64, error)
	Update(ctx context.Context, ds *registry.Dataset, ownerID, id int64, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, ds *registry.Dataset, ownerID, id int64) error
}

// Кастомные ошибки репозитория записей.
var (
	ErrRecordNotFound = errors.New("запись не найдена")
)

// sqlRecordRepository реализует RecordRepository поверх пулов из реестра.
type sqlRecordRepository struct{}

// NewRecordRepository создает репозиторий записей.
// Пул соединений берётся из набора данных, поэтому состояние не нужно.
func NewRecordRepository() RecordRepository {
	return &sqlRecordRepository{}
}

// List возвращает записи владельца, отсортированные по естественной колонке
// дат набора по убыванию. Пустой subject или сентинел "default" означают
// выборку без фильтра по дискриминатору.
func (r *sqlRecordRepository) List(
	ctx context.Context,
	ds *registry.Dataset,
	ownerID int64,
	subject string,
) ([]models.Record, error) {
	query, args := ds.ListQuery(ownerID, subject)

	rows, err := ds.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка выборки из %s для пользователя %d: %v", ds.Name, ownerID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса списка записей: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("[RecordRepo] Ошибка закрытия курсора: %v", closeErr)
		}
	}()

	var records []models.Record
	for rows.Next() {
		rec := models.Record{}
		if err = rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки набора %s: %w", ds.Name, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода результата: %w", err)
	}
	return records, nil
}

// GetByID находит одну запись владельца по ID.
func (r *sqlRecordRepository) GetByID(
	ctx context.Context,
	ds *registry.Dataset,
	ownerID, id int64,
) (models.Record, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1 AND id = $2`, ds.Table, ds.OwnerColumn)

	row := ds.DB.QueryRowxContext(ctx, query, ownerID, id)
	rec := models.Record{}
	if err := row.MapScan(rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		log.Printf("[RecordRepo] Ошибка поиска записи %d в %s: %v", id, ds.Name, err)
		return nil, fmt.Errorf("ошибка выполнения запроса записи: %w", err)
	}
	return rec, nil
}

// Insert вставляет запись и возвращает её ID. Колонки берутся из записи
// (значения уже зашифрованы кодеком) и сортируются для детерминированного
// текста запроса.
func (r *sqlRecordRepository) Insert(
	ctx context.Context,
	ds *registry.Dataset,
	rec models.Record,
) (int64, error) {
	cols := sortedColumns(rec)
	if len(cols) == 0 {
		return 0, errors.New("пустая запись для вставки")
	}

	placeholders := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, rec[col])
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		ds.Table, strings.Join(quoteAll(cols), ", "), strings.Join(placeholders, ", "),
	)

	var id int64
	if err := ds.DB.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		log.Printf("[RecordRepo] Ошибка вставки в %s: %v", ds.Name, err)
		return 0, fmt.Errorf("ошибка выполнения запроса вставки записи: %w", err)
	}
	return id, nil
}

// Update обновляет запись владельца и возвращает её новое состояние.
// UPDATE и повторный SELECT выполняются в одной транзакции: вызывающий
// гарантированно читает то, что записал, и конкурентное удаление между
// ними не превращается в ложное "не найдено".
func (r *sqlRecordRepository) Update(
	ctx context.Context,
	ds *registry.Dataset,
	ownerID, id int64,
	rec models.Record,
) (models.Record, error) {
	cols := sortedColumns(rec)
	if len(cols) == 0 {
		return nil, errors.New("пустая запись для обновления")
	}

	tx, err := ds.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	// Откат безопасен и после успешного коммита
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("[RecordRepo] Ошибка отката транзакции: %v", rbErr)
		}
	}()

	assignments := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, col := range cols {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", quoteIdent(col), i+1))
		args = append(args, rec[col])
	}
	args = append(args, ownerID, id)

	updateQuery := fmt.Sprintf(
		`UPDATE %s SET %s WHERE %s = $%d AND id = $%d`,
		ds.Table, strings.Join(assignments, ", "), ds.OwnerColumn, len(cols)+1, len(cols)+2,
	)

	res, err := tx.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка обновления записи %d в %s: %v", id, ds.Name, err)
		return nil, fmt.Errorf("ошибка выполнения запроса обновления записи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения числа обновлённых строк: %w", err)
	}
	if affected == 0 {
		return nil, ErrRecordNotFound
	}

	selectQuery := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1 AND id = $2`, ds.Table, ds.OwnerColumn)
	updated := models.Record{}
	if err = tx.QueryRowxContext(ctx, selectQuery, ownerID, id).MapScan(updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка чтения обновлённой записи: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка коммита транзакции: %w", err)
	}
	return updated, nil
}

// Delete удаляет запись владельца. Предикат владельца обязателен:
// чужую запись удалить нельзя даже при известном ID.
func (r *sqlRecordRepository) Delete(
	ctx context.Context,
	ds *registry.Dataset,
	ownerID, id int64,
) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND id = $2`, ds.Table, ds.OwnerColumn)

	res, err := ds.DB.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка удаления записи %d из %s: %v", id, ds.Name, err)
		return fmt.Errorf("ошибка выполнения запроса удаления записи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа удалённых строк: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// sortedColumns возвращает отсортированный список колонок записи.
func sortedColumns(rec models.Record) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// quoteIdent заключает идентификатор в кавычки, если они ещё не проставлены.
// Колонки вида userID требуют кавычек из-за регистра.
func quoteIdent(col string) string {
	if strings.HasPrefix(col, `"`) {
		return col
	}
	return `"` + col + `"`
}

func quoteAll(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		out = append(out, quoteIdent(col))
	}
	return out
}
