package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/onefin/server/internal/crypto"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/repository"
)

// AuthService определяет интерфейс сервиса аутентификации и профиля.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) error
	Login(ctx context.Context, email, password string) (string, error) // Возвращает JWT токен или ошибку
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID int64, username, email string) (*models.Profile, error)
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

// Параметры JWT.
const (
	tokenTTL  = time.Hour * 24 // Время жизни токена - 24 часа
	jwtIssuer = "onefin-server"
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserExists         = errors.New("пользователь с таким email или именем уже существует")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrWrongPassword      = errors.New("текущий пароль указан неверно")
)

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo  repository.UserRepository
	settings  SettingService // Для создания настроек по умолчанию при регистрации
	cipher    *crypto.Cipher // Email и username хранятся зашифрованными
	jwtSecret []byte
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	settings SettingService,
	cipher *crypto.Cipher,
	jwtSecret []byte,
) AuthService {
	return &authService{userRepo: userRepo, settings: settings, cipher: cipher, jwtSecret: jwtSecret}
}

// Register регистрирует нового пользователя.
// Email и username шифруются со случайным IV, поэтому проверка уникальности
// выполняется перебором существующих пользователей с расшифровкой.
func (s *authService) Register(ctx context.Context, email, username, password string) error {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		log.Printf("[AuthService] Ошибка получения пользователей при регистрации: %v", err)
		return errors.New("внутренняя ошибка сервера при регистрации")
	}

	for i := range users {
		existing, matchErr := s.matchesUser(&users[i], email, username)
		if matchErr != nil {
			// Нечитаемая запись не должна блокировать регистрацию остальных
			continue
		}
		if existing {
			log.Printf("[AuthService] Попытка регистрации с занятым email/именем (пользователь %d)", users[i].ID)
			return ErrUserExists
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля: %v", err)
		return errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	encEmail, err := s.cipher.Encrypt(email)
	if err != nil {
		return fmt.Errorf("ошибка шифрования email: %w", err)
	}
	encUsername, err := s.cipher.Encrypt(username)
	if err != nil {
		return fmt.Errorf("ошибка шифрования имени пользователя: %w", err)
	}

	user := &models.User{
		Username:     encUsername,
		Email:        encEmail,
		PasswordHash: string(hashedPassword),
		Plan:         "1",
		Code:         uuid.NewString(),
	}

	userID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		log.Printf("[AuthService] Ошибка репозитория при регистрации: %v", err)
		return errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	// Настройки по умолчанию для нового пользователя.
	// Ошибка не фатальна: настройки создадутся при первом сохранении.
	if err = s.settings.CreateDefault(ctx, userID); err != nil {
		log.Printf("[AuthService] Не удалось создать настройки по умолчанию для %d: %v", userID, err)
	}

	log.Printf("[AuthService] Пользователь %d успешно зарегистрирован", userID)
	return nil
}

// Login аутентифицирует пользователя по email и возвращает JWT токен.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		log.Printf("[AuthService] Ошибка получения пользователей при входе: %v", err)
		return "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	var user *models.User
	for i := range users {
		plainEmail, decErr := s.cipher.Decrypt(users[i].Email)
		if decErr != nil {
			log.Printf("[AuthService] Не удалось расшифровать email пользователя %d: %v", users[i].ID, decErr)
			continue
		}
		if plainEmail == email {
			user = &users[i]
			break
		}
	}
	if user == nil {
		log.Printf("[AuthService] Попытка входа с неизвестным email")
		return "", ErrInvalidCredentials // Общая ошибка для неизвестного email и неверного пароля
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя %d", user.ID)
		return "", ErrInvalidCredentials
	}

	// Обновляем одноразовый код сессии при каждом входе
	if err = s.userRepo.UpdateCode(ctx, user.ID, uuid.NewString()); err != nil {
		log.Printf("[AuthService] Не удалось обновить код сессии пользователя %d: %v", user.ID, err)
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для пользователя %d: %v", user.ID, err)
		return "", errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь %d успешно аутентифицирован", user.ID)
	return token, nil
}

// GetProfile возвращает расшифрованный профиль пользователя.
func (s *authService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[AuthService] Ошибка репозитория при чтении профиля %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при чтении профиля")
	}

	username, err := s.cipher.Decrypt(user.Username)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки имени пользователя: %w", err)
	}
	email, err := s.cipher.Decrypt(user.Email)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки email: %w", err)
	}

	return &models.Profile{Username: username, Email: email, Plan: user.Plan}, nil
}

// SaveProfile обновляет имя пользователя и email (с повторным шифрованием)
// и возвращает актуальный профиль. Пустые значения означают "не менять".
func (s *authService) SaveProfile(ctx context.Context, userID int64, username, email string) (*models.Profile, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username == "" {
		username = current.Username
	}
	if email == "" {
		email = current.Email
	}

	encUsername, err := s.cipher.Encrypt(username)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования имени пользователя: %w", err)
	}
	encEmail, err := s.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("ошибка шифрования email: %w", err)
	}

	if err = s.userRepo.UpdateProfile(ctx, userID, encUsername, encEmail); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[AuthService] Ошибка обновления профиля %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении профиля")
	}

	log.Printf("[AuthService] Профиль пользователя %d обновлён", userID)
	return &models.Profile{Username: username, Email: email, Plan: current.Plan}, nil
}

// UpdatePassword меняет пароль после проверки текущего.
func (s *authService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	if err = s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		log.Printf("[AuthService] Ошибка обновления пароля пользователя %d: %v", userID, err)
		return errors.New("внутренняя ошибка сервера при обновлении пароля")
	}

	log.Printf("[AuthService] Пароль пользователя %d обновлён", userID)
	return nil
}

// matchesUser сравнивает расшифрованные email/username пользователя с заданными.
func (s *authService) matchesUser(user *models.User, email, username string) (bool, error) {
	plainEmail, err := s.cipher.Decrypt(user.Email)
	if err != nil {
		return false, err
	}
	plainUsername, err := s.cipher.Decrypt(user.Username)
	if err != nil {
		return false, err
	}
	return plainEmail == email || plainUsername == username, nil
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(userID int64) (string, error) {
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)), // Время истечения
			IssuedAt:  jwt.NewNumericDate(time.Now()),               // Время выдачи
			NotBefore: jwt.NewNumericDate(time.Now()),               // Время, с которого токен валиден
			Issuer:    jwtIssuer,                                    // Источник токена
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signedToken, nil
}
