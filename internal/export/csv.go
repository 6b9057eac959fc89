package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/onefin/server/internal/models"
)

// utf8BOM проставляется в начале документа, чтобы Excel корректно
// распознавал кодировку.
const utf8BOM = "\uFEFF"

// csvRenderer рендерит записи в один текстовый документ с разделителями:
// записи группируются по тегу источника, каждая группа предваряется
// человекочитаемым разделителем с именем группы, внутри группы — строка
// заголовков и строки данных.
type csvRenderer struct{}

func (r *csvRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (r *csvRenderer) FileName() string    { return "export.csv" }

func (r *csvRenderer) Render(w io.Writer, records []models.Record) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("ошибка записи BOM: %w", err)
	}

	order, groups := groupByDataset(records)
	for _, tag := range order {
		group := groups[tag]
		if len(group) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "\n--- Datová sada: %s ---\n", tag); err != nil {
			return fmt.Errorf("ошибка записи разделителя группы: %w", err)
		}

		cols := fieldColumns(group[0])
		cw := csv.NewWriter(w)

		headers := make([]string, 0, len(cols))
		for _, col := range cols {
			headers = append(headers, NormalizeHeader(col))
		}
		if err := cw.Write(headers); err != nil {
			return fmt.Errorf("ошибка записи заголовков: %w", err)
		}

		for _, rec := range group {
			row := make([]string, 0, len(cols))
			for _, col := range cols {
				row = append(row, cellString(rec[col]))
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("ошибка записи строки данных: %w", err)
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("ошибка сброса буфера CSV: %w", err)
		}
	}
	return nil
}
