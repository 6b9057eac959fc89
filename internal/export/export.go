// Package export реализует рендеры экспорта: четыре представления одного
// и того же нормализованного набора записей. Все рендеры работают
// синхронно и целиком в памяти — для целевых объёмов (малые наборы
// одного пользователя) этого достаточно.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/onefin/server/internal/models"
)

// Поддерживаемые форматы экспорта.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
	FormatDOCX  = "docx"
)

// ErrUnsupportedFormat возвращается для формата вне четырёх известных.
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат экспорта")

// Renderer превращает последовательность записей в документ одного формата.
type Renderer interface {
	// Render пишет документ в w. Записи уже расшифрованы и помечены
	// тегом источника; сам тег в выходной документ не попадает.
	Render(w io.Writer, records []models.Record) error
	// ContentType возвращает MIME-тип документа.
	ContentType() string
	// FileName возвращает имя файла для Content-Disposition.
	FileName() string
}

// ForFormat возвращает рендер для указанного формата.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case FormatCSV:
		return &csvRenderer{}, nil
	case FormatExcel:
		return &excelRenderer{}, nil
	case FormatPDF:
		return &pdfRenderer{}, nil
	case FormatDOCX:
		return &docxRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// exportDateLayout — представление дат в документах.
const exportDateLayout = "02.01.2006"

// fieldColumns возвращает отсортированные имена полей записи без служебных
// ключей. Сортировка даёт стабильный порядок колонок во всех форматах.
func fieldColumns(rec models.Record) []string {
	cols := make([]string, 0, len(rec))
	for k := range rec {
		if k == models.DatasetTagKey || k == models.DecryptionErrorKey {
			continue
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// cellString приводит значение поля к строке для документа.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(exportDateLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// groupByDataset группирует записи по тегу источника, сохраняя порядок
// первого появления групп и порядок записей внутри группы.
func groupByDataset(records []models.Record) ([]string, map[string][]models.Record) {
	var order []string
	groups := make(map[string][]models.Record)
	for _, rec := range records {
		tag, _ := rec.StringField(models.DatasetTagKey)
		if _, seen := groups[tag]; !seen {
			order = append(order, tag)
		}
		groups[tag] = append(groups[tag], rec)
	}
	return order, groups
}
