// Package codec реализует кодек записей: единственную точку, через которую
// записи пересекают границу "открытый текст в памяти / шифртекст в БД".
// Какие поля считать чувствительными, решает реестр наборов данных —
// кодек получает их список явно и не знает о схемах таблиц.
package codec

import (
	"errors"
	"fmt"
	"log"

	"github.com/onefin/server/internal/crypto"
	"github.com/onefin/server/internal/models"
)

// ErrNotEncryptable возвращается, когда чувствительное поле присутствует,
// но имеет нестроковый тип: числа и даты не шифруются по контракту.
var ErrNotEncryptable = errors.New("поле не может быть зашифровано: ожидается строка")

// Codec применяет Cipher к объявленным чувствительным полям записи.
type Codec struct {
	cipher *crypto.Cipher
}

// New создает новый кодек поверх заданного шифра.
func New(cipher *crypto.Cipher) *Codec {
	return &Codec{cipher: cipher}
}

// EncryptFields возвращает копию записи, в которой каждое из перечисленных
// чувствительных полей зашифровано. Отсутствующие и nil-поля проходят без
// изменений: необязательная заметка сохраняется как NULL, а не как
// зашифрованная пустая строка. Остальные поля не трогаются.
func (c *Codec) EncryptFields(rec models.Record, sensitive []string) (models.Record, error) {
	out := rec.Clone()
	for _, field := range sensitive {
		val, ok := out[field]
		if !ok || val == nil {
			continue
		}
		s, isStr := out.StringField(field)
		if !isStr {
			return nil, fmt.Errorf("%w: поле %q имеет тип %T", ErrNotEncryptable, field, val)
		}
		enc, err := c.cipher.Encrypt(s)
		if err != nil {
			return nil, fmt.Errorf("ошибка шифрования поля %q: %w", field, err)
		}
		out[field] = enc
	}
	return out, nil
}

// DecryptRecord возвращает копию строки из БД с расшифрованными
// чувствительными полями. Ошибка расшифровки одного поля не прерывает
// обработку: поле остаётся в исходном виде, строка помечается флагом
// decryptionError и возвращается вызывающему вместе с остальными.
func (c *Codec) DecryptRecord(rec models.Record, sensitive []string) models.Record {
	out := rec.Clone()
	for _, field := range sensitive {
		val, ok := out[field]
		if !ok || val == nil {
			continue
		}
		s, isStr := out.StringField(field)
		if !isStr {
			// Числа и даты в списке чувствительных не встречаются,
			// но на всякий случай пропускаем их без пометки
			continue
		}
		plain, err := c.cipher.Decrypt(s)
		if err != nil {
			log.Printf("[Codec] Ошибка расшифровки поля %q: %v", field, err)
			out[models.DecryptionErrorKey] = true
			continue
		}
		out[field] = plain
	}
	return out
}

// DecryptRecords расшифровывает пакет строк. Повреждённая строка не
// прерывает пакет: результат всегда содержит столько же записей,
// сколько было на входе.
func (c *Codec) DecryptRecords(recs []models.Record, sensitive []string) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, c.DecryptRecord(rec, sensitive))
	}
	return out
}
