package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStorage определяет интерфейс для взаимодействия с объектным хранилищем.
// Используется для загруженных PDF-файлов фактур.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioClient реализует FileStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string // Логин
	SecretAccessKey string // Пароль
	UseSSL          bool   // Использовать SSL (обычно false для локальной разработки)
	BucketName      string // Имя бакета для хранения файлов
	Region          string // Регион (не обязательно для MinIO, но может требоваться)
}

// NewMinioClient создает новый клиент MinIO.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	log.Printf("Инициализация клиента MinIO для эндпоинта %s...", cfg.Endpoint)

	// Инициализация клиента MinIO
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	// Проверка существования бакета и создание при необходимости
	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		log.Printf("Бакет '%s' не найден, попытка создания...", cfg.BucketName)
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
		log.Printf("Бакет '%s' успешно создан.", cfg.BucketName)
	}

	log.Printf("Клиент MinIO успешно инициализирован для бакета '%s'.", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
	}, nil
}

// UploadFile загружает файл (объект) в MinIO.
func (m *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	log.Printf("[MinioClient] Загрузка объекта '%s' (размер: %d, тип: %s)...", objectKey, size, contentType)

	opts := minio.PutObjectOptions{ContentType: contentType}
	info, err := m.client.PutObject(ctx, m.bucketName, objectKey, reader, size, opts)
	if err != nil {
		return fmt.Errorf("ошибка загрузки объекта '%s' в MinIO: %w", objectKey, err)
	}

	log.Printf("[MinioClient] Объект '%s' успешно загружен (ETag: %s)", objectKey, info.ETag)
	return nil
}

// DownloadFile скачивает файл (объект) из MinIO.
// Возвращает io.ReadCloser, который должен закрыть вызывающий.
func (m *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	log.Printf("[MinioClient] Скачивание объекта '%s'...", objectKey)

	object, err := m.client.GetObject(ctx, m.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания объекта '%s' из MinIO: %w", objectKey, err)
	}

	// GetObject ленивый: ошибка отсутствия объекта всплывает при первом чтении,
	// поэтому проверяем метаданные сразу
	if _, err = object.Stat(); err != nil {
		closeErr := object.Close()
		if closeErr != nil {
			log.Printf("[MinioClient] Ошибка закрытия объекта после неудачного Stat: %v", closeErr)
		}
		return nil, fmt.Errorf("объект '%s' недоступен: %w", objectKey, err)
	}

	return object, nil
}
