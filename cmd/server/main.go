package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL

	"github.com/onefin/server/internal/codec"
	"github.com/onefin/server/internal/crypto"
	"github.com/onefin/server/internal/handlers"
	appmiddleware "github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/registry"
	"github.com/onefin/server/internal/repository"
	"github.com/onefin/server/internal/services"
	"github.com/onefin/server/internal/storage"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second // Рендер экспорта может занять время
	defaultIdleTimeout  = 30 * time.Second
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	pools []*sqlx.DB // Все открытые пулы, закрываются при выходе

	authHandler     *handlers.AuthHandler
	cashflowHandler *handlers.CashflowHandler
	businessHandler *handlers.BusinessHandler
	invoiceHandler  *handlers.InvoiceHandler
	settingHandler  *handlers.SettingHandler
	paymentHandler  *handlers.PaymentHandler
	exportHandler   *handlers.ExportHandler

	jwtSecret []byte
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера OneFin...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		for _, pool := range deps.pools {
			if closeErr := pool.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	r := setupRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	// TLS включается при наличии сертификата и ключа, иначе — обычный HTTP
	// (за обратным прокси, который терминирует TLS)
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}

	key, err := hex.DecodeString(cfg.EncryptionKeyHex)
	if err != nil || len(key) != crypto.KeySize {
		return nil, errors.New("ключ шифрования должен быть 64 шестнадцатеричных символа (32 байта)")
	}
	cipher, err := crypto.New(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации шифра: %w", err)
	}
	cdc := codec.New(cipher)
	deps.jwtSecret = []byte(cfg.JWTSecret)

	// Каждый набор данных живёт в своей БД со своим пулом соединений
	openPool := func(dbName string) (*sqlx.DB, error) {
		db, dbErr := repository.NewPostgresDB(cfg.DSNFor(dbName))
		if dbErr != nil {
			return nil, fmt.Errorf("ошибка подключения к БД %s: %w", dbName, dbErr)
		}
		deps.pools = append(deps.pools, db)
		return db, nil
	}

	usersDB, err := openPool(cfg.UsersDB)
	if err != nil {
		return nil, err
	}
	settingsDB, err := openPool(cfg.SettingsDB)
	if err != nil {
		return nil, err
	}
	cashflowDB, err := openPool(cfg.CashflowDB)
	if err != nil {
		return nil, err
	}
	businessDB, err := openPool(cfg.BusinessDB)
	if err != nil {
		return nil, err
	}
	paymentsDB, err := openPool(cfg.PaymentsDB)
	if err != nil {
		return nil, err
	}
	invoicesDB, err := openPool(cfg.InvoicesDB)
	if err != nil {
		return nil, err
	}
	log.Println("Соединения с БД успешно установлены.")

	minioCfg := storage.MinioConfig{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioUser,
		SecretAccessKey: cfg.MinioPassword,
		UseSSL:          cfg.MinioUseSSL,
		BucketName:      cfg.MinioBucket,
	}
	fileStorage, err := storage.NewMinioClient(minioCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	reg := registry.New(cashflowDB, businessDB, invoicesDB)

	userRepo := repository.NewPostgresUserRepository(usersDB)
	settingRepo := repository.NewPostgresSettingRepository(settingsDB)
	paymentRepo := repository.NewPostgresPaymentRepository(paymentsDB)
	recordRepo := repository.NewRecordRepository()

	settingService := services.NewSettingService(settingRepo, userRepo)
	authService := services.NewAuthService(userRepo, settingService, cipher, deps.jwtSecret)
	cashflowService := services.NewCashflowService(recordRepo, cdc, reg)
	businessService := services.NewBusinessService(recordRepo, cdc, reg)
	invoiceService := services.NewInvoiceService(recordRepo, reg, fileStorage)
	paymentService := services.NewPaymentService(paymentRepo, userRepo)
	exportService := services.NewExportService(recordRepo, cdc, reg)

	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.cashflowHandler = handlers.NewCashflowHandler(cashflowService)
	deps.businessHandler = handlers.NewBusinessHandler(businessService)
	deps.invoiceHandler = handlers.NewInvoiceHandler(invoiceService)
	deps.settingHandler = handlers.NewSettingHandler(settingService)
	deps.paymentHandler = handlers.NewPaymentHandler(paymentService)
	deps.exportHandler = handlers.NewExportHandler(exportService)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты (регистрация, вход)
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Authenticator(deps.jwtSecret))

			r.Get("/profile", deps.authHandler.GetProfile)
			r.Put("/profile", deps.authHandler.SaveProfile)
			r.Put("/password", deps.authHandler.UpdatePassword)

			r.Route("/cashflow", func(r chi.Router) {
				r.Delete("/", deps.cashflowHandler.Delete)
				r.Get("/{operation}", deps.cashflowHandler.List)
				r.Post("/{operation}", deps.cashflowHandler.Create)
				r.Put("/{operation}", deps.cashflowHandler.Update)
			})

			r.Route("/business", func(r chi.Router) {
				r.Delete("/", deps.businessHandler.Delete)
				r.Get("/{operation}", deps.businessHandler.List)
				r.Post("/{operation}", deps.businessHandler.Create)
				r.Put("/{operation}", deps.businessHandler.Update)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", deps.invoiceHandler.Create)
				r.Delete("/", deps.invoiceHandler.Delete)
				r.Post("/pdf", deps.invoiceHandler.UploadPDF)
				r.Get("/pdf", deps.invoiceHandler.DownloadPDF)
				r.Get("/{type}", deps.invoiceHandler.List)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", deps.settingHandler.Get)
				r.Put("/", deps.settingHandler.Save)
				r.Put("/plan", deps.settingHandler.ChangePlan)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", deps.paymentHandler.Confirm)
				r.Get("/status", deps.paymentHandler.Status)
				r.Get("/price", deps.paymentHandler.Price)
			})

			r.Post("/export", deps.exportHandler.Export)
		})
	})
	return r
}
