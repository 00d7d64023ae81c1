package api

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// headerTransport sets the headers every backend call carries and waits on
// the limiter before each request.
type headerTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(r)
}
