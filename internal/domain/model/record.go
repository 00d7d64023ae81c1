package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one row of a backend collection. Collections differ per resource
// and the client only reads a handful of well-known fields, so rows stay
// loosely typed.
type Record map[string]any

// ID returns the record identifier as a decimal string, or "" if absent.
func (r Record) ID() string {
	return r.String("id")
}

// Deleted reports whether the record carries a soft-delete marker.
func (r Record) Deleted() bool {
	v, ok := r["deleted_at"]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// String returns field as text. Numbers render without a trailing ".0".
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns field as a number, accepting numeric strings. Missing or
// malformed values are 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Truthy follows loose truthiness: nil, false, 0 and "" are false.
func (r Record) Truthy(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// Matches reports whether any of fields contains query, case-insensitively.
// An empty query matches everything.
func (r Record) Matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(r.String(f)), q) {
			return true
		}
	}
	return false
}
