package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/onefin/server/internal/codec"
	"github.com/onefin/server/internal/export"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/registry"
	"github.com/onefin/server/internal/repository"
)

// ExportService определяет интерфейс сервиса экспорта: сбор выбранных
// наборов данных пользователя, расшифровка и рендер в документ одного
// из поддерживаемых форматов.
type ExportService interface {
	Export(ctx context.Context, userID int64, req models.ExportRequest) (*ExportResult, error)
}

// ExportResult — готовый документ экспорта.
type ExportResult struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ErrNoData возвращается, когда ни один из запрошенных наборов
// не дал ни одной записи.
var ErrNoData = errors.New("нет данных для экспорта")

// Убедимся, что exportService удовлетворяет интерфейсу ExportService.
var _ ExportService = (*exportService)(nil)

type exportService struct {
	recordRepo repository.RecordRepository
	codec      *codec.Codec
	registry   *registry.Registry
}

// NewExportService создает новый экземпляр сервиса экспорта.
func NewExportService(
	recordRepo repository.RecordRepository,
	cdc *codec.Codec,
	reg *registry.Registry,
) ExportService {
	return &exportService{recordRepo: recordRepo, codec: cdc, registry: reg}
}

// Export собирает записи по парам "набор + subject" в порядке запроса.
// Неизвестный набор пропускается, ошибка выборки одного набора прерывает
// весь экспорт. Каждая запись расшифровывается и помечается тегом
// источника; повреждённые поля попадают в документ в исходном виде
// с флагом decryptionError. Пустой результат — ErrNoData, и только
// непустой результат доходит до проверки формата.
func (s *exportService) Export(
	ctx context.Context,
	userID int64,
	req models.ExportRequest,
) (*ExportResult, error) {
	if len(req.DataSets) == 0 {
		return nil, fmt.Errorf("%w: не выбран ни один набор данных", ErrValidation)
	}

	var collected []models.Record
	for _, pair := range req.DataSets {
		ds, ok := s.registry.Resolve(pair.Dataset)
		if !ok {
			log.Printf("[ExportService] Неизвестный набор данных %q пропущен", pair.Dataset)
			continue
		}

		records, err := s.recordRepo.List(ctx, ds, userID, pair.Subject)
		if err != nil {
			log.Printf("[ExportService] Ошибка выборки набора %s пользователя %d: %v", ds.Name, userID, err)
			return nil, errors.New("внутренняя ошибка сервера при сборе данных экспорта")
		}

		decrypted := s.codec.DecryptRecords(records, ds.Sensitive)
		tag := datasetTag(pair)
		for _, rec := range decrypted {
			rec[models.DatasetTagKey] = tag
			collected = append(collected, rec)
		}
	}

	if len(collected) == 0 {
		return nil, ErrNoData
	}

	renderer, err := export.ForFormat(req.Format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err = renderer.Render(&buf, collected); err != nil {
		log.Printf("[ExportService] Ошибка рендера %s для пользователя %d: %v", req.Format, userID, err)
		return nil, errors.New("внутренняя ошибка сервера при формировании документа")
	}

	log.Printf("[ExportService] Экспорт %s пользователя %d готов: %d записей, %d байт",
		req.Format, userID, len(collected), buf.Len())
	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: renderer.ContentType(),
		FileName:    renderer.FileName(),
	}, nil
}

// datasetTag формирует тег источника записи для группировки в документе.
func datasetTag(pair models.DatasetSubject) string {
	subject := pair.Subject
	if subject == "" {
		subject = registry.DefaultSubject
	}
	return pair.Dataset + "_" + subject
}
