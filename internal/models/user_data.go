package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserData is an arbitrary JSON document attached to a user.
// The raw text is kept as received so key order survives the store.
type UserData []byte

// EmptyUserData is the default document.
var EmptyUserData = UserData("{}")

// IsObject reports whether d holds a valid JSON object.
func (d UserData) IsObject() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

// MarshalJSON implements json.Marshaler.
func (d UserData) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves d unset.
func (d *UserData) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	*d = append((*d)[0:0], b...)
	return nil
}

// Value implements driver.Valuer.
func (d UserData) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return string(d), nil
}

// Scan implements sql.Scanner.
func (d *UserData) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append(UserData(nil), v...)
	case string:
		*d = UserData(v)
	default:
		return fmt.Errorf("user_data: unsupported scan type %T", src)
	}
	return nil
}
