// Package handlers содержит HTTP-обработчики сервера.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorResponse — единый формат тела ошибки для всех обработчиков.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует payload в тело ответа с заданным статусом.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Handlers] Ошибка сериализации ответа: %v", err)
	}
}

// writeError пишет тело ошибки {"error": "..."} с заданным статусом.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody разбирает JSON-тело запроса в dst. При ошибке сам пишет 400
// и возвращает false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return false
	}
	return true
}
