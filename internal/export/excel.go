package export

import (
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/onefin/server/internal/models"
)

const (
	excelSheetName = "Firemní export"
	excelColWidth  = 25
)

// excelRenderer рендерит записи в один лист книги XLSX: колонки берутся из
// первого набора полей, строка заголовков выделяется жирным шрифтом и
// заливкой, строки данных обрамляются тонкими границами. Разделителей
// групп нет — одна строка на запись по всем группам подряд.
type excelRenderer struct{}

func (r *excelRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (r *excelRenderer) FileName() string { return "export.xlsx" }

func (r *excelRenderer) Render(w io.Writer, records []models.Record) error {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Printf("[Export] Ошибка закрытия книги XLSX: %v", closeErr)
		}
	}()

	if err := f.SetSheetName("Sheet1", excelSheetName); err != nil {
		return fmt.Errorf("ошибка переименования листа: %w", err)
	}

	cols := fieldColumns(records[0])

	// Строка заголовков
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("ошибка вычисления адреса ячейки: %w", err)
		}
		if err = f.SetCellValue(excelSheetName, cell, NormalizeHeader(col)); err != nil {
			return fmt.Errorf("ошибка записи заголовка: %w", err)
		}
	}

	// Строки данных
	for rowIdx, rec := range records {
		for colIdx, col := range cols {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("ошибка вычисления адреса ячейки: %w", err)
			}
			if err = f.SetCellValue(excelSheetName, cell, cellString(rec[col])); err != nil {
				return fmt.Errorf("ошибка записи значения: %w", err)
			}
		}
	}

	if err := r.applyStyles(f, len(cols), len(records)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("ошибка записи книги XLSX: %w", err)
	}
	return nil
}

// applyStyles оформляет заголовок (жирный белый текст на синей заливке,
// границы) и строки данных (тонкие серые границы), выставляет ширину колонок.
func (r *excelRenderer) applyStyles(f *excelize.File, colCount, rowCount int) error {
	thinBorder := func(color string) []excelize.Border {
		return []excelize.Border{
			{Type: "top", Style: 1, Color: color},
			{Type: "left", Style: 1, Color: color},
			{Type: "bottom", Style: 1, Color: color},
			{Type: "right", Style: 1, Color: color},
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF", Family: "Calibri"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder("000000"),
	})
	if err != nil {
		return fmt.Errorf("ошибка создания стиля заголовка: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11, Family: "Calibri"},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thinBorder("DDDDDD"),
	})
	if err != nil {
		return fmt.Errorf("ошибка создания стиля данных: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(colCount)
	if err != nil {
		return fmt.Errorf("ошибка вычисления имени колонки: %w", err)
	}

	if err = f.SetCellStyle(excelSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("ошибка применения стиля заголовка: %w", err)
	}
	if rowCount > 0 {
		lastCell := fmt.Sprintf("%s%d", lastCol, rowCount+1)
		if err = f.SetCellStyle(excelSheetName, "A2", lastCell, dataStyle); err != nil {
			return fmt.Errorf("ошибка применения стиля данных: %w", err)
		}
	}
	if err = f.SetColWidth(excelSheetName, "A", lastCol, excelColWidth); err != nil {
		return fmt.Errorf("ошибка установки ширины колонок: %w", err)
	}
	return nil
}
