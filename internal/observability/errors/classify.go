// Package errors names foreign errors for metric tags.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"
)

// Classify returns the innermost concrete type of err in snake form, such as
// "url_error" for a transport failure or "api_statuserror" for a rejected
// request. It returns "" for nil.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
