package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/onefin/server/internal/models"
)

// pdfRenderer рендерит записи в постраничный документ: общий заголовок с
// датой экспорта, далее по блоку на запись — заголовок "Záznam č. N",
// строки "жирная подпись: значение" по каждому полю, горизонтальная
// линейка между записями.
type pdfRenderer struct{}

func (r *pdfRenderer) ContentType() string { return "application/pdf" }
func (r *pdfRenderer) FileName() string    { return "export.pdf" }

func (r *pdfRenderer) Render(w io.Writer, records []models.Record) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// Базовые шрифты PDF не содержат чешских символов,
	// поэтому текст транслитерируется в cp1250
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250")

	// Заголовок документа и дата экспорта
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 12, tr("Faktura / Export dat"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Datum exportu: %s", time.Now().Format(exportDateLayout))),
		"", 1, "C", false, 0, "")
	pdf.Ln(8)

	for i, rec := range records {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Záznam č. %d", i+1)), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetTextColor(0, 0, 0)
		for _, col := range fieldColumns(rec) {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(55, 6, tr(NormalizeHeader(col)+": "), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(cellString(rec[col])), "", "L", false)
		}

		// Линейка между записями
		pdf.Ln(6)
		pdf.SetDrawColor(204, 204, 204)
		y := pdf.GetY()
		left, _, right, _ := pdf.GetMargins()
		pageWidth, _ := pdf.GetPageSize()
		pdf.Line(left, y, pageWidth-right, y)
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("ошибка записи PDF-документа: %w", err)
	}
	return nil
}
