package sighting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wildwatch/sightings/internal/errors"
)

// Description length bounds, in characters.
const (
	MinDescriptionLength = 1
	MaxDescriptionLength = 255
)

// ErrInvalidField matches every *FieldError via errors.Is.
var ErrInvalidField = errors.NewStd("invalid field")

// FieldError reports a request field that failed a shape or bounds check.
type FieldError struct {
	Field      string
	Constraint string
	Message    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidField.
func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

func fieldError(field, constraint, format string, args ...any) error {
	fe := &FieldError{Field: field, Constraint: constraint, Message: fmt.Sprintf(format, args...)}
	return errors.New(fe).
		Component("sighting").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("constraint", constraint).
		Build()
}

// RawCreateInput is the creation payload as received. A field that was
// absent from the document stays nil; an explicit JSON null is kept as the
// literal "null". Unknown fields, including any client supplied id, are
// dropped by decoding.
type RawCreateInput struct {
	SpeciesID   json.RawMessage `json:"speciesId"`
	Species     json.RawMessage `json:"species"`
	Count       json.RawMessage `json:"count"`
	Description json.RawMessage `json:"description"`
	DateTime    json.RawMessage `json:"dateTime"`
	Latitude    json.RawMessage `json:"latitude"`
	Longitude   json.RawMessage `json:"longitude"`
}

// CreateInput is a type checked creation request. Nil pointers are absent
// values. Coordinates keep their textual form until the service validates them.
type CreateInput struct {
	SpeciesID   *int64
	Species     *string
	Count       int64
	Description *string
	DateTime    *time.Time
	Latitude    *json.Number
	Longitude   *json.Number
}

// HasLocation reports whether both coordinates were supplied. One coordinate
// on its own is treated as no location.
func (in *CreateInput) HasLocation() bool {
	return in.Latitude != nil && in.Longitude != nil
}

// ParseCreateInput type checks raw and returns the first failure as a
// *FieldError. It performs no I/O.
func ParseCreateInput(raw *RawCreateInput) (*CreateInput, error) {
	if raw == nil {
		return nil, fieldError("body", "required", "request body is required")
	}

	in := &CreateInput{}
	var err error

	if in.SpeciesID, err = parseSpeciesID(raw.SpeciesID); err != nil {
		return nil, err
	}
	if in.Species, err = parseOptionalString(raw.Species, "species"); err != nil {
		return nil, err
	}
	if in.Count, err = parseCount(raw.Count); err != nil {
		return nil, err
	}
	if in.Description, err = parseDescription(raw.Description); err != nil {
		return nil, err
	}
	if in.DateTime, err = parseDateTime(raw.DateTime); err != nil {
		return nil, err
	}
	if in.Latitude, err = parseCoordinate(raw.Latitude, "latitude"); err != nil {
		return nil, err
	}
	if in.Longitude, err = parseCoordinate(raw.Longitude, "longitude"); err != nil {
		return nil, err
	}

	return in, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeScalar decodes a JSON scalar keeping numbers as json.Number.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseInteger accepts JSON numbers with no fractional part.
func parseInteger(n json.Number) (int64, bool) {
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseSpeciesID(raw json.RawMessage) (*int64, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return nil, fieldError("speciesId", "type", "must be an integer")
	}

	var id int64
	var ok bool
	switch t := v.(type) {
	case json.Number:
		id, ok = parseInteger(t)
	case string:
		// numeric strings are accepted for ids, as query strings and forms send them
		id, err = strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		ok = err == nil
	}
	if !ok {
		return nil, fieldError("speciesId", "type", "must be an integer")
	}
	return &id, nil
}

func parseOptionalString(raw json.RawMessage, field string) (*string, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fieldError(field, "type", "must be a string")
	}
	return &s, nil
}

func parseCount(raw json.RawMessage) (int64, error) {
	if isAbsent(raw) {
		return 0, fieldError("count", "required", "is required")
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, fieldError("count", "type", "must be an integer")
	}
	n, isNumber := v.(json.Number)
	if !isNumber {
		return 0, fieldError("count", "type", "must be an integer")
	}
	count, ok := parseInteger(n)
	if !ok {
		return 0, fieldError("count", "integer", "must be an integer, got %s", n)
	}
	if count < 1 {
		return 0, fieldError("count", "minimum", "must be at least 1, got %d", count)
	}
	return count, nil
}

func parseDescription(raw json.RawMessage) (*string, error) {
	desc, err := parseOptionalString(raw, "description")
	if err != nil || desc == nil {
		return desc, err
	}
	switch n := utf8.RuneCountInString(*desc); {
	case n < MinDescriptionLength:
		return nil, fieldError("description", "minLength", "must not be empty")
	case n > MaxDescriptionLength:
		return nil, fieldError("description", "maxLength", "must be at most %d characters, got %d", MaxDescriptionLength, n)
	}
	return desc, nil
}

func parseDateTime(raw json.RawMessage) (*time.Time, error) {
	s, err := parseOptionalString(raw, "dateTime")
	if err != nil || s == nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, fieldError("dateTime", "format", "must be an RFC 3339 timestamp")
	}
	return &ts, nil
}

// parseCoordinate keeps numbers and strings as text for the coordinate
// validator. Other JSON types are passed through verbatim and fail there as
// a format error.
func parseCoordinate(raw json.RawMessage, field string) (*json.Number, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return nil, fieldError(field, "type", "must be a number")
	}

	var n json.Number
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		n = json.Number(bytes.TrimSpace(raw))
	}
	return &n, nil
}
