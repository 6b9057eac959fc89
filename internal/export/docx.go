package export

import (
	"fmt"
	"io"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/onefin/server/internal/models"
)

// docxRenderer рендерит записи в документ WordprocessingML: та же структура,
// что и у постраничного PDF — заголовок с датой экспорта, затем по блоку
// на запись с абзацами "жирная подпись: значение".
type docxRenderer struct{}

func (r *docxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *docxRenderer) FileName() string { return "export.docx" }

func (r *docxRenderer) Render(w io.Writer, records []models.Record) error {
	doc := docx.New().WithDefaultTheme()

	// Заголовок документа и дата экспорта
	title := doc.AddParagraph().Justification("center")
	title.AddText("Faktura / Export dat").Size("32").Bold()
	sub := doc.AddParagraph().Justification("center")
	sub.AddText(fmt.Sprintf("Datum exportu: %s", time.Now().Format(exportDateLayout))).Italic()
	doc.AddParagraph()

	for i, rec := range records {
		heading := doc.AddParagraph()
		heading.AddText(fmt.Sprintf("Záznam č. %d", i+1)).Size("28").Bold().Color("003366")

		for _, col := range fieldColumns(rec) {
			p := doc.AddParagraph()
			p.AddText(NormalizeHeader(col) + ": ").Bold()
			p.AddText(cellString(rec[col]))
		}

		// Пустой абзац между записями
		doc.AddParagraph()
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("ошибка записи DOCX-документа: %w", err)
	}
	return nil
}
