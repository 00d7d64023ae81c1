package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Mendozape/PayComMobile/internal/data"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/domain/model"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/observability/metrics"
	"github.com/Mendozape/PayComMobile/internal/observability/statsd"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// Permissions gating payment screens.
const (
	PermCreatePayment domainauth.Permission = "Crear-pagos"
	PermViewPayments  domainauth.Permission = "Ver-pagos"
	PermViewReports   domainauth.Permission = "Ver-reportes"
)

const (
	paymentsResource = "address_payments"
	minCancelReason  = 5
)

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Backend  ports.ResourceBackend
	Sessions SessionReader
	Resolver *domainauth.Resolver
	Clock    data.TimeProvider
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// PaymentService registers and cancels fee payments and reads the debtors
// report.
type PaymentService struct {
	backend  ports.ResourceBackend
	sessions SessionReader
	resolver *domainauth.Resolver
	clock    data.TimeProvider
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(opts PaymentServiceOptions) (*PaymentService, error) {
	if opts.Backend == nil {
		return nil, errors.New("resource backend is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session reader is required")
	}
	p := &PaymentService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		resolver: opts.Resolver,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if p.resolver == nil {
		p.resolver = &domainauth.Resolver{}
	}
	if p.clock == nil {
		p.clock = data.RealTimeProvider{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "payments")
	return p, nil
}

// PaidMonths returns the months of year already settled for an address and
// fee, sorted ascending. Waived months carry the waived status.
func (p *PaymentService) PaidMonths(ctx context.Context, addressID string, year int, feeID string) ([]model.PaidMonth, error) {
	token, err := p.authorize(ctx, PermCreatePayment, PermViewPayments)
	if err != nil {
		return nil, err
	}
	if addressID == "" || feeID == "" {
		return nil, apperrors.Validation("address and fee are required")
	}
	path := fmt.Sprintf("%s/paid-months/%s/%d", paymentsResource, url.PathEscape(addressID), year)
	rec, err := p.backend.Fetch(ctx, token, path, url.Values{"fee_id": {feeID}})
	if err != nil {
		return nil, fmt.Errorf("paid months: %w", err)
	}
	return model.ParsePaidMonths(rec["months"]), nil
}

// History lists the payments recorded for an address.
func (p *PaymentService) History(ctx context.Context, addressID string) ([]model.Record, error) {
	token, err := p.authorize(ctx, PermViewPayments, PermCreatePayment)
	if err != nil {
		return nil, err
	}
	if addressID == "" {
		return nil, apperrors.ValidationField("address_id", "address is required")
	}
	rows, err := p.backend.List(ctx, token, paymentsResource+"/history/"+url.PathEscape(addressID), nil)
	if err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	return rows, nil
}

// Register records a payment. Months present in both lists are sent as
// waived only.
func (p *PaymentService) Register(ctx context.Context, addressID, feeID string, year int, selected, waived []int) (rec model.Record, err error) {
	defer func() { p.emit("register", err) }()

	token, err := p.authorize(ctx, PermCreatePayment)
	if err != nil {
		return nil, err
	}
	in := model.NewPaymentInput(addressID, feeID, year, selected, waived, p.clock.Now())
	if err := in.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	rec, err = p.backend.Send(ctx, token, http.MethodPost, paymentsResource, in)
	if err != nil {
		p.logger.WarnContext(ctx, "payment rejected", "address_id", addressID, "error", err)
		return nil, apperrors.Mutation(backendMessage(err, "Could not register the payment."), err)
	}
	p.logger.InfoContext(ctx, "payment registered",
		"address_id", addressID, "fee_id", feeID, "year", year,
		"months", in.Months, "waived_months", in.WaivedMonths)
	return rec, nil
}

// Cancel cancels a payment. The reason must be at least five characters.
func (p *PaymentService) Cancel(ctx context.Context, paymentID, reason string) (err error) {
	defer func() { p.emit("cancel", err) }()

	token, err := p.sessions.Token(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(paymentID) == "" {
		return apperrors.ValidationField("id", "payment id is required")
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minCancelReason {
		return apperrors.ValidationField("reason", fmt.Sprintf("reason must be at least %d characters", minCancelReason))
	}

	path := paymentsResource + "/cancel/" + url.PathEscape(paymentID)
	if _, err := p.backend.Send(ctx, token, http.MethodPost, path, map[string]string{"reason": reason}); err != nil {
		return apperrors.Mutation(backendMessage(err, "Could not cancel the payment."), err)
	}
	return nil
}

// DebtorsReport is the debtors report with overdue totals computed locally.
type DebtorsReport struct {
	Year int
	Rows []model.DebtorRow
	// Overdue holds the overdue month count of each row, by index.
	Overdue []int
}

// Debtors fetches the debtors report for a fee name and year.
func (p *PaymentService) Debtors(ctx context.Context, paymentType string, year int) (DebtorsReport, error) {
	token, err := p.authorize(ctx, PermViewReports)
	if err != nil {
		return DebtorsReport{}, err
	}
	now := p.clock.Now()
	if year == 0 {
		year = now.Year()
	}
	q := url.Values{"year": {strconv.Itoa(year)}}
	if paymentType != "" {
		q.Set("payment_type", paymentType)
	}

	rows, err := p.backend.List(ctx, token, "reports/debtors", q)
	if err != nil {
		return DebtorsReport{}, fmt.Errorf("debtors report: %w", err)
	}
	report := DebtorsReport{
		Year:    year,
		Rows:    make([]model.DebtorRow, len(rows)),
		Overdue: make([]int, len(rows)),
	}
	for i, row := range rows {
		report.Rows[i] = model.DebtorRow(row)
		report.Overdue[i] = model.OverdueMonths(row, year, now)
	}
	return report, nil
}

func (p *PaymentService) authorize(ctx context.Context, anyOf ...domainauth.Permission) (string, error) {
	token, err := p.sessions.Token(ctx)
	if err != nil {
		return "", err
	}
	u, err := p.sessions.Current(ctx)
	if err != nil {
		return "", err
	}
	if !p.resolver.Can(u, anyOf...) {
		return "", apperrors.Forbidden(fmt.Sprintf("missing permission %s", anyOf[0]))
	}
	return token, nil
}

func (p *PaymentService) emit(action string, err error) {
	metrics.EmitResource(p.metrics, metrics.ResourceEvent{
		Resource: paymentsResource,
		Action:   action,
		Result:   metrics.ResultOf(err),
		Err:      err,
	})
}
