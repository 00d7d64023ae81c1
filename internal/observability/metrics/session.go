// Package metrics names the client's metrics and their tags.
package metrics

import (
	"time"

	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	obserrors "github.com/Mendozape/PayComMobile/internal/observability/errors"
	"github.com/Mendozape/PayComMobile/internal/observability/statsd"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// SessionEvent describes one session lifecycle step.
type SessionEvent struct {
	// Operation is "bootstrap", "login", "logout" or "profile_refresh".
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitSession records a session lifecycle step. Errors are tagged with their
// AppError code, or "other" plus their type for foreign errors.
func EmitSession(sink statsd.Sink, ev SessionEvent) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"operation": ev.Operation,
		"result":    ev.Result,
	}
	addErrorTags(tags, ev.Err)
	sink.Count("session.event", 1, tags)
	if ev.Duration > 0 {
		sink.Timing("session.duration", ev.Duration, map[string]string{"operation": ev.Operation})
	}
}

// ResourceEvent describes one collection read or write.
type ResourceEvent struct {
	Resource string
	// Action is "list", "save", "deactivate", "restore" or a payment action.
	Action string
	Result string
	Err    error
}

// EmitResource records a collection operation.
func EmitResource(sink statsd.Sink, ev ResourceEvent) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"resource": ev.Resource,
		"action":   ev.Action,
		"result":   ev.Result,
	}
	addErrorTags(tags, ev.Err)
	sink.Count("resource.op", 1, tags)
}

func addErrorTags(tags map[string]string, err error) {
	if err == nil {
		return
	}
	if code := apperrors.GetCode(err); code != "" {
		tags["error_code"] = string(code)
		return
	}
	tags["error_code"] = "other"
	tags["error_type"] = obserrors.Classify(err)
}

// ResultOf maps an error to a result tag.
func ResultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
