package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/domain/model"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/observability/metrics"
	"github.com/Mendozape/PayComMobile/internal/observability/statsd"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// SessionReader exposes the signed-in user and token. SessionService
// satisfies it.
type SessionReader interface {
	Token(ctx context.Context) (string, error)
	Current(ctx context.Context) (*domainauth.User, error)
}

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	Backend   ports.ResourceBackend
	Sessions  SessionReader
	Resolver  *domainauth.Resolver
	Evaluator JMESPathEvaluator
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// ResourceService lists and edits the managed collections on behalf of the
// signed-in user, checking capabilities before any call is made.
type ResourceService struct {
	backend  ports.ResourceBackend
	sessions SessionReader
	resolver *domainauth.Resolver
	eval     JMESPathEvaluator
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewResourceService constructs a ResourceService.
func NewResourceService(opts ResourceServiceOptions) (*ResourceService, error) {
	if opts.Backend == nil {
		return nil, errors.New("resource backend is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session reader is required")
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = &domainauth.Resolver{}
	}
	eval := opts.Evaluator
	if eval == nil {
		eval = jmespathLibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		resolver: resolver,
		eval:     eval,
		logger:   logger.With("component", "resources"),
		metrics:  opts.Metrics,
	}, nil
}

// ListOptions narrows a collection after it is fetched.
type ListOptions struct {
	// Search is a case-insensitive substring matched against the resource's
	// search fields.
	Search string
	// ActiveOnly drops soft-deleted rows.
	ActiveOnly bool
	// Filter is a JMESPath expression applied to the collection; it must
	// yield a list of objects, e.g. "[?status=='Habitada']".
	Filter string
}

// Capabilities returns the capability set of the signed-in user, empty when
// nobody is signed in.
func (s *ResourceService) Capabilities(ctx context.Context) (domainauth.CapabilitySet, error) {
	u, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolver.For(u), nil
}

// List fetches a collection the user may view.
func (s *ResourceService) List(ctx context.Context, name string, opts ListOptions) (records []model.Record, err error) {
	defer func() { s.emit(name, "list", err) }()

	res, token, err := s.authorize(ctx, name, func(r model.Resource) domainauth.Permission { return r.View })
	if err != nil {
		return nil, err
	}
	if err := s.eval.Validate(opts.Filter); err != nil {
		return nil, apperrors.ValidationField("filter", fmt.Sprintf("invalid filter: %v", err))
	}

	rows, err := s.backend.List(ctx, token, res.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", res.Name, err)
	}

	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		if opts.ActiveOnly && row.Deleted() {
			continue
		}
		if !row.Matches(opts.Search, res.SearchFields...) {
			continue
		}
		out = append(out, row)
	}
	if strings.TrimSpace(opts.Filter) == "" {
		return out, nil
	}
	return s.filter(opts.Filter, out)
}

func (s *ResourceService) filter(expr string, rows []model.Record) ([]model.Record, error) {
	input := make([]any, len(rows))
	for i, row := range rows {
		input[i] = map[string]any(row)
	}
	result, err := s.eval.Evaluate(expr, input)
	if err != nil {
		return nil, apperrors.ValidationField("filter", fmt.Sprintf("filter failed: %v", err))
	}
	list, ok := result.([]any)
	if !ok {
		if result == nil {
			return []model.Record{}, nil
		}
		return nil, apperrors.ValidationField("filter", "filter must produce a list of records")
	}
	out := make([]model.Record, 0, len(list))
	for _, item := range list {
		obj, isObj := item.(map[string]any)
		if !isObj {
			return nil, apperrors.ValidationField("filter", "filter must produce a list of records")
		}
		out = append(out, obj)
	}
	return out, nil
}

// Get fetches one record.
func (s *ResourceService) Get(ctx context.Context, name, id string) (model.Record, error) {
	res, token, err := s.authorize(ctx, name, func(r model.Resource) domainauth.Permission { return r.View })
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}
	rec, err := s.backend.Fetch(ctx, token, res.Name+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", res.Name, id, err)
	}
	return rec, nil
}

// Save creates the record when id is empty, else updates it. Required fields
// are checked before any call; a backend rejection becomes a Mutation error
// carrying the backend's message.
func (s *ResourceService) Save(ctx context.Context, name, id string, payload model.Record) (rec model.Record, err error) {
	creating := strings.TrimSpace(id) == ""
	defer func() { s.emit(name, "save", err) }()

	res, token, err := s.authorize(ctx, name, func(r model.Resource) domainauth.Permission {
		if creating {
			return r.Create
		}
		return r.Edit
	})
	if err != nil {
		return nil, err
	}
	if missing := res.MissingFields(payload, creating); len(missing) > 0 {
		return nil, apperrors.ValidationField(missing[0], "required fields missing: "+strings.Join(missing, ", "))
	}

	method, path := http.MethodPost, res.Name
	if !creating {
		method, path = http.MethodPut, res.Name+"/"+url.PathEscape(id)
	}
	rec, err = s.backend.Send(ctx, token, method, path, payload)
	if err != nil {
		return nil, s.mutationError(ctx, res.Name, "save", err)
	}
	return rec, nil
}

// Deactivate soft-deletes a record, sending the reason when the resource
// requires one.
func (s *ResourceService) Deactivate(ctx context.Context, name, id, reason string) (err error) {
	defer func() { s.emit(name, "deactivate", err) }()

	res, token, err := s.authorize(ctx, name, func(r model.Resource) domainauth.Permission { return r.Delete })
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "id is required")
	}

	var body any
	if res.ReasonRequired {
		reason = strings.TrimSpace(reason)
		if len([]rune(reason)) < res.MinReason {
			return apperrors.ValidationField("reason", fmt.Sprintf("reason must be at least %d characters", res.MinReason))
		}
		body = map[string]string{"reason": reason}
	}
	if _, err := s.backend.Send(ctx, token, http.MethodDelete, res.Name+"/"+url.PathEscape(id), body); err != nil {
		return s.mutationError(ctx, res.Name, "deactivate", err)
	}
	return nil
}

// Restore reactivates a soft-deleted record on resources that support it.
func (s *ResourceService) Restore(ctx context.Context, name, id string) (err error) {
	defer func() { s.emit(name, "restore", err) }()

	res, token, err := s.authorize(ctx, name, func(r model.Resource) domainauth.Permission { return r.Delete })
	if err != nil {
		return err
	}
	if !res.Restorable {
		return apperrors.Validationf("%s cannot be restored", res.Name)
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "id is required")
	}
	if _, err := s.backend.Send(ctx, token, http.MethodPost, res.Name+"/restore/"+url.PathEscape(id), map[string]any{}); err != nil {
		return s.mutationError(ctx, res.Name, "restore", err)
	}
	return nil
}

// LoadAll fetches several collections concurrently. Any failure fails the
// whole load.
func (s *ResourceService) LoadAll(ctx context.Context, names ...string) (map[string][]model.Record, error) {
	results := make([][]model.Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			rows, err := s.List(gctx, name, ListOptions{})
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.Record, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// authorize resolves the descriptor, the token and the permission picked by
// perm. An empty permission means the operation is not offered.
func (s *ResourceService) authorize(ctx context.Context, name string, perm func(model.Resource) domainauth.Permission) (model.Resource, string, error) {
	res, ok := model.Lookup(name)
	if !ok {
		return model.Resource{}, "", apperrors.NotFoundf("unknown resource %q", name)
	}
	required := perm(res)
	if required == "" {
		return model.Resource{}, "", apperrors.Validationf("operation not supported for %s", res.Name)
	}

	token, err := s.sessions.Token(ctx)
	if err != nil {
		return model.Resource{}, "", err
	}
	u, err := s.sessions.Current(ctx)
	if err != nil {
		return model.Resource{}, "", err
	}
	if !s.resolver.Can(u, required) {
		return model.Resource{}, "", apperrors.Forbidden(fmt.Sprintf("missing permission %s", required))
	}
	return res, token, nil
}

// mutationError wraps a rejected write with the backend's explanation when it
// provided one.
func (s *ResourceService) mutationError(ctx context.Context, resource, action string, err error) error {
	s.logger.WarnContext(ctx, "write rejected", "resource", resource, "action", action, "error", err)
	return apperrors.Mutation(backendMessage(err, fmt.Sprintf("Could not %s %s.", action, resource)), err)
}

// backendMessage extracts a user-facing message from a backend error.
func backendMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

func (s *ResourceService) emit(resource, action string, err error) {
	metrics.EmitResource(s.metrics, metrics.ResourceEvent{
		Resource: resource,
		Action:   action,
		Result:   metrics.ResultOf(err),
		Err:      err,
	})
}
