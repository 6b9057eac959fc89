// Package crypto реализует пополевое симметричное шифрование.
// Значения хранятся в формате "hex(iv):hex(ciphertext)": AES-256-CBC,
// свежий случайный IV на каждый вызов Encrypt, поэтому расшифровка
// самодостаточна и не требует внешнего состояния.
//
// MAC не используется (CBC, а не GCM): подмена битов внутри структурно
// корректного шифртекста не детектируется и может дать мусор без ошибки.
// Это осознанное ограничение формата хранения, зафиксированное тестами.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// KeySize — размер ключа AES-256 в байтах.
	KeySize = 32
	// ivSize — размер вектора инициализации (один блок AES).
	ivSize = aes.BlockSize
)

// Кастомные ошибки шифрования.
var (
	ErrInvalidKeySize      = errors.New("ключ шифрования должен быть длиной 32 байта")
	ErrMalformedCiphertext = errors.New("неверный формат зашифрованного значения")
	ErrDecryptionFailed    = errors.New("не удалось расшифровать значение")
)

// Cipher шифрует и расшифровывает отдельные строковые поля.
// Ключ фиксируется при создании и не меняется до перезапуска процесса;
// ротация ключа делает все ранее зашифрованные данные нечитаемыми
// (версионирования ключей нет). Безопасен для конкурентного использования.
type Cipher struct {
	key []byte
}

// New создает Cipher с указанным ключом. Ключ должен быть ровно 32 байта.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w (получено %d)", ErrInvalidKeySize, len(key))
	}
	// Копируем ключ, чтобы вызывающий не мог изменить его после создания
	k := make([]byte, KeySize)
	copy(k, key)
	return &Cipher{key: k}, nil
}

// Encrypt шифрует открытый текст и возвращает строку "hex(iv):hex(ct)".
// Каждый вызов использует новый криптографически случайный IV, поэтому
// два шифрования одной строки дают разные результаты.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("ошибка инициализации AES: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err = rand.Read(iv); err != nil {
		return "", fmt.Errorf("ошибка генерации IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt расшифровывает значение, ранее полученное из Encrypt.
// Возвращает ErrMalformedCiphertext, если значение не разбирается на две
// hex-части с корректными длинами, и ErrDecryptionFailed, если после
// расшифровки не снимается паддинг (чужой ключ, усечённые данные).
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 2 {
		return "", ErrMalformedCiphertext
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformedCiphertext
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("ошибка инициализации AES: %w", err)
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

// pkcs7Pad дополняет данные до кратности размеру блока (PKCS#7).
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad снимает паддинг PKCS#7 и валидирует его.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("некорректная длина данных")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, errors.New("некорректный паддинг")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("некорректный паддинг")
		}
	}
	return data[:len(data)-padLen], nil
}
