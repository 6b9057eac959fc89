// Package registry описывает реестр наборов данных: закрытое перечисление
// известных таблиц с их пулами соединений, колонками владельца и
// дискриминатора и списками чувствительных полей. Имена таблиц и колонок
// берутся только из этого реестра — внешние строки в текст запросов
// не попадают никогда, параметры используются только для значений.
package registry

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Имена наборов данных (совпадают с именами таблиц в своих БД).
const (
	DatasetCashflow = "one_cashflow"
	DatasetBusiness = "one_business"
	DatasetInvoices = "one_invoice"
)

// DefaultSubject — сентинел "без фильтра по дискриминатору".
const DefaultSubject = "default"

// Dataset описывает один набор данных: таблицу, её пул соединений
// и правила построения owner-scoped запросов.
type Dataset struct {
	Name          string   // логическое имя набора
	Table         string   // имя таблицы (фиксированное, из реестра)
	OwnerColumn   string   // колонка владельца записи
	Discriminator string   // колонка subject ("operation", "invoice_type"), пустая если нет
	OrderColumn   string   // естественная колонка сортировки (даты), DESC
	Sensitive     []string // поля, подлежащие шифрованию
	DB            *sqlx.DB // пул соединений своей БД
}

// Registry — построенное при старте отображение имени набора в Dataset.
// Передаётся явно в сервисы вместо глобальных пулов.
type Registry struct {
	datasets map[string]*Dataset
}

// New создает реестр с наборами данных по отдельным пулам соединений.
func New(cashflowDB, businessDB, invoicesDB *sqlx.DB) *Registry {
	r := &Registry{datasets: make(map[string]*Dataset)}
	r.add(&Dataset{
		Name:          DatasetCashflow,
		Table:         "one_cashflow",
		OwnerColumn:   `"userID"`,
		Discriminator: "operation",
		OrderColumn:   "date",
		Sensitive:     []string{"description", "payment", "categorie", "note"},
		DB:            cashflowDB,
	})
	r.add(&Dataset{
		Name:          DatasetBusiness,
		Table:         "one_business",
		OwnerColumn:   `"userID"`,
		Discriminator: "operation",
		OrderColumn:   "id",
		Sensitive:     []string{"name", "email", "phone", "place", "ico", "bank", "note"},
		DB:            businessDB,
	})
	r.add(&Dataset{
		Name:          DatasetInvoices,
		Table:         "one_invoice",
		OwnerColumn:   "user_id",
		Discriminator: "invoice_type",
		OrderColumn:   "created_date",
		Sensitive:     nil, // фактуры хранятся в открытом виде
		DB:            invoicesDB,
	})
	return r
}

func (r *Registry) add(ds *Dataset) {
	r.datasets[ds.Name] = ds
}

// Resolve возвращает набор данных по имени. Неизвестное имя — (nil, false):
// вызывающий пропускает такой набор, а не падает целиком.
func (r *Registry) Resolve(name string) (*Dataset, bool) {
	ds, ok := r.datasets[name]
	return ds, ok
}

// ListQuery строит запрос списка записей набора: всегда с предикатом
// владельца, при непустом subject (кроме сентинела "default") — с
// дополнительным равенством по дискриминатору. Сортировка по естественной
// колонке дат по убыванию — стабильный контракт, на который опирается экспорт.
func (d *Dataset) ListQuery(ownerID int64, subject string) (string, []any) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1`, d.Table, d.OwnerColumn)
	args := []any{ownerID}
	if d.Discriminator != "" && subject != "" && subject != DefaultSubject {
		query += fmt.Sprintf(` AND %s = $2`, d.Discriminator)
		args = append(args, subject)
	}
	query += fmt.Sprintf(` ORDER BY %s DESC`, d.OrderColumn)
	return query, args
}
