package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/repository"
)

// Cursor tokens are opaque to clients: base64url over
// "<direction>:<created unix nanos>:<id>". The encoded position pins the
// page boundary to a concrete record, so page size and ordering cannot drift
// between pages of the same traversal.

const cursorForward, cursorReverse = "f", "r"

func encodeCursor(c repository.Cursor) string {
	dir := cursorForward
	if c.Reverse {
		dir = cursorReverse
	}
	raw := fmt.Sprintf("%s:%d:%s", dir, c.Created.UTC().UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses a client-supplied token. An empty token means the
// first page; anything unparseable is a validation failure.
func decodeCursor(token string) (*repository.Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperror.ValidationFailed("cursor", "invalid cursor")
	}

	parts := strings.SplitN(string(raw), ":", 3)
	if len(parts) != 3 || (parts[0] != cursorForward && parts[0] != cursorReverse) {
		return nil, apperror.ValidationFailed("cursor", "invalid cursor")
	}

	nanos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[2] == "" {
		return nil, apperror.ValidationFailed("cursor", "invalid cursor")
	}

	return &repository.Cursor{
		Created: time.Unix(0, nanos).UTC(),
		ID:      parts[2],
		Reverse: parts[0] == cursorReverse,
	}, nil
}
