// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey — отдельный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

// UserIDKey — ключ, по которому ID пользователя кладётся в контекст запроса.
const UserIDKey contextKey = "userID"

// ErrNoUserID возвращается, когда в контексте нет ID пользователя.
var ErrNoUserID = errors.New("в контексте запроса нет ID пользователя")

// jwtClaims повторяет структуру claims, которую подписывает сервис
// аутентификации.
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator возвращает middleware, проверяющий JWT из заголовка
// Authorization: Bearer <token>. При успехе ID пользователя кладётся
// в контекст запроса, иначе — 401.
func Authenticator(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "некорректный формат заголовка Authorization")
				return
			}

			claims := &jwtClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				log.Printf("[AuthMiddleware] Невалидный токен: %v", err)
				unauthorized(w, "невалидный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext извлекает ID пользователя, положенный Authenticator.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, ErrNoUserID
	}
	return userID, nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error": %q}`, msg)
}
