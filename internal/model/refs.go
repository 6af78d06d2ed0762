package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Refs is an ordered list of opaque attachment references (Telegram file IDs or
// stored file names) persisted as a JSON array.
type Refs []string

func (r Refs) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (r *Refs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan refs: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*r = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("scan refs: %w", err)
	}
	*r = list
	return nil
}
