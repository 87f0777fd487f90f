package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ayakodama/wishboard/internal/apperror"
)

// The partial-update endpoint needs to tell three cases apart for each
// field: absent (leave unchanged), null (clear), and value (set). Plain
// pointers cannot distinguish absent from null — UnmarshalJSON is only
// called for keys that are present, so a custom type can record presence.

// optionalString is a JSON string field that knows whether it appeared in
// the body and whether it was null.
type optionalString struct {
	Set   bool   // the key was present
	Valid bool   // the value was a string (false means null)
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// optionalTime is the same idea for RFC 3339 timestamps. An empty string
// counts as null — the frontend clears a lock by submitting an empty date
// input.
type optionalTime struct {
	Set   bool
	Valid bool
	Value time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Returned through json.Decode; decodeBody unwraps it back into
		// a 400 with this message.
		return apperror.ValidationFailed("lockedUntil",
			"timestamps must be RFC 3339, e.g. 2026-01-01T00:00:00Z")
	}
	o.Valid = true
	o.Value = t
	return nil
}
