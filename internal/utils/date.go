package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// Date is a JSON timestamp accepting RFC 3339 or a bare YYYY-MM-DD date
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns the wrapped time, or nil for a nil Date
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// OptionalDate distinguishes an absent date from an explicit null in a
// partial update
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when the key
// is present.
func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Value = nil
		return nil
	}

	var date Date
	if err := date.UnmarshalJSON(data); err != nil {
		return err
	}
	d.Value = date.Ptr()
	return nil
}

// ParseDate parses RFC 3339 timestamps and YYYY-MM-DD dates (as UTC midnight)
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", raw)
}
