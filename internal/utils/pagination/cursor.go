package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for tokens that do not decode.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is keyset state for lists ordered by (created_at DESC, id DESC).
// CreatedNano keeps the stored timestamp at full precision so rows sharing a
// millisecond are not skipped.
type Cursor struct {
	ID          uint64 `json:"id"`
	CreatedNano int64  `json:"created_nano,omitempty"`
}

// Position is the browse cursor: index into a candidate snapshot for one filter.
type Position struct {
	Filter string `json:"filter"`
	Pos    int    `json:"pos"`
}

// Encode converts cursor state into a Base64 string.
func Encode[T any](c T) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into cursor state.
// Empty token → zero value (first page).
func Decode[T any](token string) (T, error) {
	var c T
	if token == "" {
		return c, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return c, ErrInvalidToken
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, ErrInvalidToken
	}
	return c, nil
}
