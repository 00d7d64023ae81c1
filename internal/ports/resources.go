package ports

import (
	"context"
	"net/url"

	"github.com/Mendozape/PayComMobile/internal/domain/model"
)

// ResourceBackend reads and writes backend collections on behalf of a
// signed-in user. Paths are relative to the API base, e.g. "streets" or
// "address_payments/history/4".
type ResourceBackend interface {
	// List fetches a collection; an envelope {"data": [...]} is unwrapped and a
	// non-array payload yields an empty list.
	List(ctx context.Context, token, path string, query url.Values) ([]model.Record, error)
	// Fetch fetches a single object, unwrapping {"data": {...}}.
	Fetch(ctx context.Context, token, path string, query url.Values) (model.Record, error)
	// Send issues a write (POST, PUT or DELETE) with an optional JSON body and
	// returns the decoded response object, which may be empty.
	Send(ctx context.Context, token, method, path string, body any) (model.Record, error)
}
