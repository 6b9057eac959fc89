package models

import "time"

// User представляет пользователя системы.
// Поля Username и Email хранятся в БД в зашифрованном виде (формат "iv:hex"),
// поэтому поиск по ним возможен только перебором с расшифровкой.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Не отправляем хеш пароля в JSON
	Plan         string    `db:"plan" json:"plan"`
	Code         string    `db:"code" json:"-"` // Одноразовый код сессии, обновляется при входе
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile представляет расшифрованные данные профиля для выдачи клиенту.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Plan     string `json:"plan"`
}

// Payment представляет запись о подтверждённой оплате подписки.
type Payment struct {
	ID     int64     `db:"id" json:"id"`
	UserID int64     `db:"userID" json:"user_id"`
	Paid   bool      `db:"paid" json:"paid"`
	Plan   string    `db:"plan" json:"plan"`
	Date   time.Time `db:"date" json:"date"`
}

// Setting представляет JSON-блоб пользовательских настроек.
type Setting struct {
	UserID  int64  `db:"user" json:"user_id"`
	Setting string `db:"setting" json:"setting"`
}
