package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onefin/server/internal/crypto"
	"github.com/onefin/server/internal/models"
)

var testSensitive = []string{"description", "payment", "categorie", "note"}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	cipher, err := crypto.New(key)
	require.NoError(t, err)
	return New(cipher)
}

func TestCodec_EncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	rec := models.Record{
		"id":          int64(1),
		"description": "nákup kancelářských potřeb",
		"payment":     "karta",
		"amount":      1250.50,
		"categorie":   "provoz",
		"note":        "paragon v šanonu",
	}

	encrypted, err := c.EncryptFields(rec, testSensitive)
	require.NoError(t, err)

	// Нечувствительные поля не тронуты, чувствительные изменились
	assert.Equal(t, int64(1), encrypted["id"])
	assert.Equal(t, 1250.50, encrypted["amount"])
	assert.NotEqual(t, rec["description"], encrypted["description"])
	assert.NotEqual(t, rec["note"], encrypted["note"])

	// Исходная запись не изменена
	assert.Equal(t, "karta", rec["payment"])

	decrypted := c.DecryptRecord(encrypted, testSensitive)
	assert.Equal(t, "nákup kancelářských potřeb", decrypted["description"])
	assert.Equal(t, "karta", decrypted["payment"])
	assert.Equal(t, "paragon v šanonu", decrypted["note"])
	_, flagged := decrypted[models.DecryptionErrorKey]
	assert.False(t, flagged)
}

func TestCodec_EncryptFields_SkipsAbsentAndNil(t *testing.T) {
	c := newTestCodec(t)

	rec := models.Record{
		"description": "bez poznámky",
		"payment":     "hotově",
		"categorie":   "jídlo",
		"note":        nil, // необязательная заметка
	}

	encrypted, err := c.EncryptFields(rec, testSensitive)
	require.NoError(t, err)

	// NULL остаётся NULL, а не зашифрованной пустой строкой
	assert.Nil(t, encrypted["note"])
	assert.NotEqual(t, "bez poznámky", encrypted["description"])
}

func TestCodec_EncryptFields_RejectsNonString(t *testing.T) {
	c := newTestCodec(t)

	rec := models.Record{
		"description": 42, // число в чувствительном поле
		"payment":     "karta",
	}

	_, err := c.EncryptFields(rec, testSensitive)
	require.ErrorIs(t, err, ErrNotEncryptable)
}

func TestCodec_DecryptRecord_CorruptFieldIsolated(t *testing.T) {
	c := newTestCodec(t)

	rec := models.Record{
		"description": "platný záznam",
		"payment":     "karta",
		"categorie":   "služby",
	}
	encrypted, err := c.EncryptFields(rec, testSensitive)
	require.NoError(t, err)

	// Портим одно поле: не похоже на формат iv:ct
	encrypted["payment"] = "корявый-шифртекст"

	decrypted := c.DecryptRecord(encrypted, testSensitive)

	// Повреждённое поле осталось как есть, остальные расшифрованы
	assert.Equal(t, "корявый-шифртекст", decrypted["payment"])
	assert.Equal(t, "platný záznam", decrypted["description"])
	assert.Equal(t, "služby", decrypted["categorie"])
	assert.Equal(t, true, decrypted[models.DecryptionErrorKey])
}

func TestCodec_DecryptRecords_BadRowDoesNotAbortBatch(t *testing.T) {
	c := newTestCodec(t)

	const total = 5
	records := make([]models.Record, 0, total)
	for i := 0; i < total; i++ {
		rec, err := c.EncryptFields(models.Record{
			"id":          int64(i),
			"description": "záznam",
			"payment":     "karta",
		}, testSensitive)
		require.NoError(t, err)
		records = append(records, rec)
	}
	// Две строки из пяти повреждены
	records[1]["description"] = "not-a-valid-format"
	records[3]["payment"] = "deadbeef:zz"

	decrypted := c.DecryptRecords(records, testSensitive)

	// Пакет не прерван: строк столько же, сколько было
	require.Len(t, decrypted, total)

	var flagged int
	for _, rec := range decrypted {
		if v, ok := rec[models.DecryptionErrorKey]; ok && v == true {
			flagged++
		}
	}
	assert.Equal(t, 2, flagged)
	assert.Equal(t, "záznam", decrypted[0]["description"])
	assert.Equal(t, "karta", decrypted[4]["payment"])
}

func TestCodec_DecryptRecords_EmptyInput(t *testing.T) {
	c := newTestCodec(t)
	assert.Empty(t, c.DecryptRecords(nil, testSensitive))
}
