package service

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/repository"
)

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		cursor repository.Cursor
	}{
		{"forward", repository.Cursor{
			Created: time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC),
			ID:      "d0jq8nq3k3v8e2q1r5sg",
		}},
		{"reverse", repository.Cursor{
			Created: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
			ID:      "d0jq8nq3k3v8e2q1r5sg",
			Reverse: true,
		}},
		{"id with separators", repository.Cursor{
			Created: time.Unix(0, 1).UTC(),
			ID:      "odd:id:with:colons",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := encodeCursor(tt.cursor)
			decoded, err := decodeCursor(token)
			if err != nil {
				t.Fatalf("decodeCursor() error = %v", err)
			}
			if !decoded.Created.Equal(tt.cursor.Created) {
				t.Errorf("Created = %v, want %v", decoded.Created, tt.cursor.Created)
			}
			if decoded.ID != tt.cursor.ID {
				t.Errorf("ID = %q, want %q", decoded.ID, tt.cursor.ID)
			}
			if decoded.Reverse != tt.cursor.Reverse {
				t.Errorf("Reverse = %v, want %v", decoded.Reverse, tt.cursor.Reverse)
			}
		})
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := decodeCursor("")
	if err != nil {
		t.Fatalf("decodeCursor(\"\") error = %v", err)
	}
	if cursor != nil {
		t.Errorf("decodeCursor(\"\") = %+v, want nil", cursor)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	tokens := map[string]string{
		"not base64":        "!!!not-base64!!!",
		"wrong shape":       base64.RawURLEncoding.EncodeToString([]byte("garbage")),
		"bad direction":     base64.RawURLEncoding.EncodeToString([]byte("x:123:abc")),
		"bad timestamp":     base64.RawURLEncoding.EncodeToString([]byte("f:soon:abc")),
		"missing id":        base64.RawURLEncoding.EncodeToString([]byte("f:123:")),
		"padded encoding":   "Zjo0MjDDrGQ=",
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := decodeCursor(token)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("decodeCursor(%q) error = %v, want validation error", token, err)
			}
		})
	}
}
