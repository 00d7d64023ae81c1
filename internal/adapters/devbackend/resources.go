package devbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Mendozape/PayComMobile/internal/adapters/api"
	"github.com/Mendozape/PayComMobile/internal/domain/model"
)

const (
	paymentsPath = "address_payments"
	debtorsPath  = "reports/debtors"

	paymentPaid      = "Pagado"
	paymentCancelled = "Cancelado"
)

// Resources is an in-memory implementation of ports.ResourceBackend. Rows get
// sequential IDs per collection and DELETE is a soft delete.
type Resources struct {
	auth *Backend
	now  func() time.Time

	mu     sync.Mutex
	tables map[string][]model.Record
	nextID map[string]int
}

// NewResources returns an empty store. When auth is non-nil every call must
// carry a token it issued.
func NewResources(auth *Backend) *Resources {
	r := &Resources{
		auth:   auth,
		now:    time.Now,
		tables: map[string][]model.Record{},
		nextID: map[string]int{},
	}
	if auth != nil {
		r.now = auth.now
	}
	return r
}

// Insert adds a row to collection and returns it with its assigned id.
func (r *Resources) Insert(_ context.Context, collection string, rec model.Record) (model.Record, error) {
	if collection == "" {
		return nil, badRequest("collection is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(collection, rec), nil
}

func (r *Resources) insertLocked(collection string, rec model.Record) model.Record {
	r.nextID[collection]++
	row := clone(rec)
	row["id"] = float64(r.nextID[collection])
	if _, ok := row["deleted_at"]; !ok {
		row["deleted_at"] = nil
	}
	r.tables[collection] = append(r.tables[collection], row)
	return clone(row)
}

// List serves collections, payment history and the debtors report.
func (r *Resources) List(_ context.Context, token, path string, query url.Values) ([]model.Record, error) {
	if err := r.authorize(token); err != nil {
		return nil, err
	}
	parts := split(path)
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case strings.Join(parts, "/") == debtorsPath:
		return r.debtorsLocked(query)
	case len(parts) == 3 && parts[0] == paymentsPath && parts[1] == "history":
		var out []model.Record
		for _, p := range r.tables[paymentsPath] {
			if p.String("address_id") == parts[2] {
				out = append(out, clone(p))
			}
		}
		return nonNil(out), nil
	case len(parts) == 1:
		rows := r.tables[parts[0]]
		out := make([]model.Record, 0, len(rows))
		for _, row := range rows {
			out = append(out, clone(row))
		}
		return out, nil
	}
	return nil, notFound(path)
}

// Fetch serves single rows and the paid-months lookup.
func (r *Resources) Fetch(_ context.Context, token, path string, query url.Values) (model.Record, error) {
	if err := r.authorize(token); err != nil {
		return nil, err
	}
	parts := split(path)
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(parts) == 4 && parts[0] == paymentsPath && parts[1] == "paid-months" {
		year, _ := strconv.Atoi(parts[3])
		months := r.settledMonthsLocked(parts[2], query.Get("fee_id"), year)
		list := make([]any, 0, len(months))
		for m := 1; m <= 12; m++ {
			if status, ok := months[m]; ok {
				list = append(list, map[string]any{"month": float64(m), "status": status})
			}
		}
		return model.Record{"months": list}, nil
	}
	if len(parts) == 2 {
		if row := r.findLocked(parts[0], parts[1]); row != nil {
			return clone(row), nil
		}
	}
	return nil, notFound(path)
}

// Send serves create, update, soft delete, restore and payment writes.
func (r *Resources) Send(_ context.Context, token, method, path string, body any) (model.Record, error) {
	if err := r.authorize(token); err != nil {
		return nil, err
	}
	payload, err := toRecord(body)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	parts := split(path)
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case len(parts) == 1 && parts[0] == paymentsPath && method == http.MethodPost:
		return r.registerPaymentLocked(payload)
	case len(parts) == 3 && parts[0] == paymentsPath && parts[1] == "cancel":
		return r.cancelPaymentLocked(parts[2], payload)
	case len(parts) == 3 && parts[1] == "restore":
		row := r.findLocked(parts[0], parts[2])
		if row == nil {
			return nil, notFound(path)
		}
		row["deleted_at"] = nil
		delete(row, "deletion_reason")
		return model.Record{"message": "restored"}, nil
	case len(parts) == 1 && method == http.MethodPost:
		return model.Record{"data": map[string]any(r.insertLocked(parts[0], payload))}, nil
	case len(parts) == 2 && method == http.MethodPut:
		row := r.findLocked(parts[0], parts[1])
		if row == nil {
			return nil, notFound(path)
		}
		for k, v := range payload {
			if k != "id" {
				row[k] = v
			}
		}
		return clone(row), nil
	case len(parts) == 2 && method == http.MethodDelete:
		row := r.findLocked(parts[0], parts[1])
		if row == nil {
			return nil, notFound(path)
		}
		row["deleted_at"] = r.now().UTC().Format(time.RFC3339)
		if reason := payload.String("reason"); reason != "" {
			row["deletion_reason"] = reason
		}
		return model.Record{}, nil
	}
	return nil, &api.StatusError{Status: http.StatusMethodNotAllowed, Message: method + " " + path + " is not supported"}
}

func (r *Resources) registerPaymentLocked(payload model.Record) (model.Record, error) {
	addressID := payload.String("address_id")
	feeID := payload.String("fee_id")
	year := int(payload.Float("year"))
	if r.findLocked(model.Addresses, addressID) == nil {
		return nil, invalid("address_id", "The selected address is invalid.")
	}
	if r.findLocked(model.Fees, feeID) == nil {
		return nil, invalid("fee_id", "The selected fee is invalid.")
	}

	settled := r.settledMonthsLocked(addressID, feeID, year)
	paid, waived := months(payload["months"]), months(payload["waived_months"])
	for _, m := range append(append([]int{}, paid...), waived...) {
		if _, dup := settled[m]; dup {
			return nil, invalid("months", fmt.Sprintf("Month %d is already paid.", m))
		}
	}

	created := 0
	add := func(m int, status string) {
		r.insertLocked(paymentsPath, model.Record{
			"address_id":   payload["address_id"],
			"fee_id":       payload["fee_id"],
			"year":         float64(year),
			"month":        float64(m),
			"status":       status,
			"payment_date": payload["payment_date"],
		})
		created++
	}
	for _, m := range paid {
		add(m, paymentPaid)
	}
	for _, m := range waived {
		add(m, model.WaivedStatus)
	}
	return model.Record{"message": "Payment registered", "created": float64(created)}, nil
}

func (r *Resources) cancelPaymentLocked(id string, payload model.Record) (model.Record, error) {
	row := r.findLocked(paymentsPath, id)
	if row == nil {
		return nil, notFound(paymentsPath + "/" + id)
	}
	reason := strings.TrimSpace(payload.String("reason"))
	if len([]rune(reason)) < 5 {
		return nil, invalid("reason", "The reason must be at least 5 characters.")
	}
	if row.String("status") == paymentCancelled {
		return nil, invalid("id", "The payment is already cancelled.")
	}
	row["status"] = paymentCancelled
	row["cancellation_reason"] = reason
	row["deleted_at"] = r.now().UTC().Format(time.RFC3339)
	return model.Record{"message": "Payment cancelled"}, nil
}

// settledMonthsLocked maps each paid or waived month to its payment status.
// An empty feeID matches every fee.
func (r *Resources) settledMonthsLocked(addressID, feeID string, year int) map[int]string {
	out := map[int]string{}
	for _, p := range r.tables[paymentsPath] {
		if p.String("address_id") != addressID || int(p.Float("year")) != year {
			continue
		}
		if feeID != "" && p.String("fee_id") != feeID {
			continue
		}
		if p.String("status") == paymentCancelled {
			continue
		}
		out[int(p.Float("month"))] = p.String("status")
	}
	return out
}

func (r *Resources) debtorsLocked(query url.Values) ([]model.Record, error) {
	year := r.now().Year()
	if y := query.Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			return nil, invalid("year", "The year must be a number.")
		}
		year = parsed
	}
	feeID := ""
	if pt := query.Get("payment_type"); pt != "" {
		for _, fee := range r.tables[model.Fees] {
			if strings.EqualFold(fee.String("name"), pt) {
				feeID = fee.ID()
			}
		}
	}

	now := r.now()
	rows := []model.Record{}
	for _, addr := range r.tables[model.Addresses] {
		if addr.Deleted() {
			continue
		}
		settled := r.settledMonthsLocked(addr.ID(), feeID, year)
		row := model.Record{
			"address_id":     addr["id"],
			"street_number":  addr["street_number"],
			"full_address":   addr["full_address"],
			"months_overdue": float64(0),
		}
		for m := 1; m <= 12; m++ {
			status, ok := settled[m]
			row[fmt.Sprintf("month_%d", m)] = ok
			if ok && status == model.WaivedStatus {
				row[fmt.Sprintf("month_%d_status", m)] = model.WaivedStatus
			}
		}
		if model.OverdueMonths(row, year, now) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *Resources) findLocked(collection, id string) model.Record {
	for _, row := range r.tables[collection] {
		if row.ID() == id {
			return row
		}
	}
	return nil
}

func (r *Resources) authorize(token string) error {
	if r.auth == nil {
		return nil
	}
	return r.auth.verify(token)
}

func notFound(path string) error {
	return &api.StatusError{Status: http.StatusNotFound, Message: "No query results for " + path}
}

func badRequest(msg string) error {
	return &api.StatusError{Status: http.StatusBadRequest, Message: msg}
}

func invalid(field, msg string) error {
	return &api.StatusError{
		Status:  http.StatusUnprocessableEntity,
		Message: msg,
		Errors:  map[string][]string{field: {msg}},
	}
}

func split(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func clone(rec model.Record) model.Record {
	out := make(model.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func nonNil(rows []model.Record) []model.Record {
	if rows == nil {
		return []model.Record{}
	}
	return rows
}

func toRecord(body any) (model.Record, error) {
	if body == nil {
		return model.Record{}, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	rec := model.Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}
	return rec, nil
}

func months(v any) []int {
	list, _ := v.([]any)
	out := make([]int, 0, len(list))
	for _, item := range list {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}
