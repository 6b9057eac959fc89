package models

// Record представляет одну запись набора данных в виде отображения
// "имя поля -> значение". Такой обобщённый вид используется хранилищем
// записей (sqlx MapScan) и кодеком шифрования: часть полей на диске
// лежит в зашифрованном виде, после декодирования — в открытом.
type Record map[string]any

// Служебные ключи записи.
const (
	// DatasetTagKey — тег источника записи, проставляется экспортом
	// ("<датасет>_<subject>") и не попадает в итоговые документы.
	DatasetTagKey = "__dataset"

	// DecryptionErrorKey — флаг строки, в которой не удалось
	// расшифровать хотя бы одно поле. Строка при этом возвращается
	// вызывающему вместе с остальными (изоляция ошибок на уровне строк).
	DecryptionErrorKey = "decryptionError"
)

// Clone возвращает поверхностную копию записи.
// Кодек не модифицирует исходные строки из БД.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// StringField возвращает строковое значение поля.
// Драйвер lib/pq может возвращать text-колонки как []byte.
func (r Record) StringField(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
