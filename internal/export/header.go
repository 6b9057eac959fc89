package export

import (
	"strings"
	"unicode"
)

// NormalizeHeader превращает имя поля в человекочитаемый заголовок:
// подчёркивания заменяются пробелами, на границах camelCase вставляется
// пробел, первая буква каждого слова переводится в верхний регистр.
// Применяется одинаково во всех форматах экспорта — это общий контракт,
// а не логика отдельного рендера: "bankAccount" -> "Bank Account",
// "total_vat" -> "Total Vat".
func NormalizeHeader(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)

	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
