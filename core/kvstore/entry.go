package kvstore

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kind tags the payload type of an Entry.
type Kind string

const (
	// KindString marks an entry holding a plain string value.
	KindString Kind = "string"
	// KindJSON marks an entry holding a structured JSON value.
	KindJSON Kind = "json"
)

// Entry is a tagged storage envelope. The explicit kind replaces the legacy
// convention of sniffing the first character of the raw value to decide
// whether it was JSON, which misreads string values that happen to start
// with '{' or '['.
type Entry struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// NewString creates a string-kind entry.
func NewString(s string) Entry {
	payload, _ := json.Marshal(s)
	return Entry{Kind: KindString, Payload: payload}
}

// NewJSON creates a JSON-kind entry from any marshalable value.
func NewJSON(v any) (Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Entry{}, errors.Join(ErrCorruptEntry, err)
	}
	return Entry{Kind: KindJSON, Payload: payload}, nil
}

// IsZero reports whether the entry is empty.
func (e Entry) IsZero() bool {
	return e.Kind == "" && len(e.Payload) == 0
}

// Text returns the string value of a string-kind entry.
func (e Entry) Text() (string, error) {
	if e.Kind != KindString {
		return "", ErrKindMismatch
	}
	var s string
	if err := json.Unmarshal(e.Payload, &s); err != nil {
		return "", errors.Join(ErrCorruptEntry, err)
	}
	return s, nil
}

// Decode unmarshals the payload of a JSON-kind entry into dst.
func (e Entry) Decode(dst any) error {
	if e.Kind != KindJSON {
		return ErrKindMismatch
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return errors.Join(ErrCorruptEntry, err)
	}
	return nil
}

// Encode serializes an entry to its on-disk envelope form.
func Encode(e Entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}
	return data, nil
}

// Decode parses raw stored bytes into an Entry.
//
// Values written by older clients were stored untagged: objects and arrays as
// bare JSON, everything else as the raw string. Those are recognized by the
// original first-character heuristic and upgraded to tagged entries on read,
// so existing stores keep working.
func Decode(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err == nil && (e.Kind == KindString || e.Kind == KindJSON) && len(e.Payload) > 0 {
		return e, nil
	}
	return decodeLegacy(data), nil
}

func decodeLegacy(data []byte) Entry {
	s := string(data)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		if json.Valid(data) {
			return Entry{Kind: KindJSON, Payload: json.RawMessage(data)}
		}
	}
	return NewString(s)
}
