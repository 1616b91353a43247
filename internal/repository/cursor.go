package repository

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/minato/dormgate/internal/domain"
)

// Notification lists paginate with a keyset cursor over (created_at, id),
// encoded so clients treat it as opaque.

func encodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	createdAt, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	return ts, id, nil
}
