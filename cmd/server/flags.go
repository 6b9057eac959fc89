package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	// Порт по умолчанию (непривилегированный).
	defaultServerPort = "8080"

	// Переменные окружения.
	envServerPort    = "SERVER_PORT"
	envTLSCertFile   = "TLS_CERT_FILE"
	envTLSKeyFile    = "TLS_KEY_FILE"
	envEncryptionKey = "ENCRYPTION_KEY"
	envJWTSecret     = "JWT_SECRET" //nolint:gosec // Имя переменной окружения, не секрет

	// Общие параметры подключения к PostgreSQL.
	envDBUser     = "POSTGRES_USER"
	envDBPass     = "POSTGRES_PASSWORD" //nolint:gosec // Имя переменной окружения, не секрет
	envDBHost     = "POSTGRES_HOST"
	envDBPort     = "POSTGRES_PORT"
	defaultDBUser = "onefin"
	defaultDBPass = "secret"
	defaultDBHost = "localhost"
	defaultDBPort = "5432"

	// Имена БД наборов данных: каждый набор живёт в своей базе.
	envUsersDB        = "USERS_DB"
	envSettingsDB     = "SETTINGS_DB"
	envCashflowDB     = "CASHFLOW_DB"
	envBusinessDB     = "BUSINESS_DB"
	envPaymentsDB     = "PAYMENTS_DB"
	envInvoicesDB     = "INVOICES_DB"
	defaultUsersDB    = "one_users"
	defaultSettingsDB = "one_settings"
	defaultCashflowDB = "one_cashflow"
	defaultBusinessDB = "one_business"
	defaultPaymentsDB = "one_payments"
	defaultInvoicesDB = "one_invoices"

	// Переменные окружения для MinIO.
	envMinioEndpoint     = "MINIO_ENDPOINT"
	envMinioUser         = "MINIO_USER"
	envMinioPassword     = "MINIO_PASSWORD"
	envMinioBucket       = "MINIO_BUCKET"
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioUser     = "minioadmin"
	defaultMinioPassword = "minioadmin"
	defaultMinioBucket   = "onefin-invoices"
	minioUseSSL          = false // Для локальной разработки
)

// config хранит конфигурацию сервера.
type config struct {
	Port     string
	CertFile string
	KeyFile  string

	EncryptionKeyHex string
	JWTSecret        string

	DBUser string
	DBPass string
	DBHost string
	DBPort string

	UsersDB    string
	SettingsDB string
	CashflowDB string
	BusinessDB string
	PaymentsDB string
	InvoicesDB string

	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	MinioUseSSL   bool
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
func parseFlags() (*config, error) {
	cfg := &config{MinioUseSSL: minioUseSSL}

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт для запуска сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.Parse()

	if cfg.Port == "" {
		cfg.Port = getEnv(envServerPort, defaultServerPort)
	}
	if cfg.CertFile == "" {
		cfg.CertFile = os.Getenv(envTLSCertFile)
	}
	if cfg.KeyFile == "" {
		cfg.KeyFile = os.Getenv(envTLSKeyFile)
	}

	// Секреты принимаются только из окружения, не из флагов:
	// флаги видны в списке процессов
	cfg.EncryptionKeyHex = os.Getenv(envEncryptionKey)
	if cfg.EncryptionKeyHex == "" {
		return nil, errors.New("не указан ключ шифрования (" + envEncryptionKey + ")")
	}
	cfg.JWTSecret = os.Getenv(envJWTSecret)
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан секрет подписи JWT (" + envJWTSecret + ")")
	}

	cfg.DBUser = getEnv(envDBUser, defaultDBUser)
	cfg.DBPass = getEnv(envDBPass, defaultDBPass)
	cfg.DBHost = getEnv(envDBHost, defaultDBHost)
	cfg.DBPort = getEnv(envDBPort, defaultDBPort)

	cfg.UsersDB = getEnv(envUsersDB, defaultUsersDB)
	cfg.SettingsDB = getEnv(envSettingsDB, defaultSettingsDB)
	cfg.CashflowDB = getEnv(envCashflowDB, defaultCashflowDB)
	cfg.BusinessDB = getEnv(envBusinessDB, defaultBusinessDB)
	cfg.PaymentsDB = getEnv(envPaymentsDB, defaultPaymentsDB)
	cfg.InvoicesDB = getEnv(envInvoicesDB, defaultInvoicesDB)

	cfg.MinioEndpoint = getEnv(envMinioEndpoint, defaultMinioEndpoint)
	cfg.MinioUser = getEnv(envMinioUser, defaultMinioUser)
	cfg.MinioPassword = getEnv(envMinioPassword, defaultMinioPassword)
	cfg.MinioBucket = getEnv(envMinioBucket, defaultMinioBucket)

	return cfg, nil
}

// DSNFor формирует строку подключения к заданной базе.
func (c *config) DSNFor(dbName string) string {
	// sslmode=disable - небезопасно для продакшена, но удобно для локальной разработки с Docker
	//nolint:nosprintfhostport // DSN - это URL, а не просто host:port
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, dbName)
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
