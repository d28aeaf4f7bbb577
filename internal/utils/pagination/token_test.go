package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursorToken(t *testing.T) {
	createdAt := time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeCursorToken(createdAt, "tx-42")
	assert.NotEmpty(t, token, "Token should not be empty")

	cursor, err := DecodeCursorToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(cursor.CreatedAt), "Created at time should match after decode")
	assert.Equal(t, "tx-42", cursor.ID)
}

func TestDecodeCursorTokenError(t *testing.T) {
	_, err := DecodeCursorToken("this is not base64!")
	assert.ErrorContains(t, err, "base64 decode")

	missingID := base64.StdEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z"))
	_, err = DecodeCursorToken(missingID)
	assert.ErrorContains(t, err, "split")

	badTime := EncodeMultiFieldToken("notadate", "tx-1")
	_, err = DecodeCursorToken(badTime)
	assert.ErrorContains(t, err, "created_at parse")
}

func TestCursorAfter(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cursor := Cursor{CreatedAt: at, ID: "m"}

	assert.True(t, cursor.After(at.Add(-time.Second), "z"), "older record comes after")
	assert.False(t, cursor.After(at.Add(time.Second), "a"), "newer record comes before")
	assert.True(t, cursor.After(at, "a"), "same time, smaller id comes after")
	assert.False(t, cursor.After(at, "m"), "the cursor record itself is excluded")
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fields)
}
