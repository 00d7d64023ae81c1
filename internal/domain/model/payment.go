package model

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// PaymentInput registers fee payments for an address. Waived months are
// marked settled without charge and are sent separately from paid months.
type PaymentInput struct {
	AddressID    string `json:"address_id"`
	FeeID        string `json:"fee_id"`
	Year         int    `json:"year"`
	PaymentDate  string `json:"payment_date"`
	Months       []int  `json:"months"`
	WaivedMonths []int  `json:"waived_months"`
}

// NewPaymentInput builds a payment from the months the user selected. A month
// in both lists is treated as waived.
func NewPaymentInput(addressID, feeID string, year int, selected, waived []int, now time.Time) PaymentInput {
	paid := make([]int, 0, len(selected))
	for _, m := range selected {
		if !slices.Contains(waived, m) && !slices.Contains(paid, m) {
			paid = append(paid, m)
		}
	}
	w := slices.Clone(waived)
	slices.Sort(w)
	w = slices.Compact(w)
	slices.Sort(paid)
	if w == nil {
		w = []int{}
	}
	return PaymentInput{
		AddressID:    addressID,
		FeeID:        feeID,
		Year:         year,
		PaymentDate:  now.Format(time.DateOnly),
		Months:       paid,
		WaivedMonths: w,
	}
}

// Validate checks the payment before it is sent.
func (p PaymentInput) Validate() error {
	if p.AddressID == "" {
		return fmt.Errorf("address is required")
	}
	if p.FeeID == "" {
		return fmt.Errorf("fee is required")
	}
	if len(p.Months)+len(p.WaivedMonths) == 0 {
		return fmt.Errorf("select at least one month")
	}
	for _, m := range append(slices.Clone(p.Months), p.WaivedMonths...) {
		if m < 1 || m > 12 {
			return fmt.Errorf("month %d out of range", m)
		}
	}
	return nil
}

// Address occupancy and lot types that select a fee amount.
const (
	AddressTypeLand = "TERRENO"
	StatusOccupied  = "Habitada"
)

// FeeAmount returns the monthly amount a fee charges for an address: the land
// amount for vacant lots, otherwise the occupied or empty amount by status.
func FeeAmount(fee, address Record) float64 {
	if address.String("type") == AddressTypeLand {
		return fee.Float("amount_land")
	}
	if address.String("status") == StatusOccupied {
		return fee.Float("amount_occupied")
	}
	return fee.Float("amount_empty")
}

// WaivedStatus marks a month settled by waiver in the debtors report.
const WaivedStatus = "Condonado"

// PaidMonth is a month already settled for an address and fee.
type PaidMonth struct {
	Month  int
	Status string
}

// Waived reports whether the month was settled by waiver.
func (p PaidMonth) Waived() bool { return p.Status == WaivedStatus }

// ParsePaidMonths decodes the paid-months list. Entries are either objects
// with month and status or bare month numbers. Unreadable entries and months
// outside 1..12 are skipped; a repeated month keeps its first entry.
func ParsePaidMonths(raw any) []PaidMonth {
	list, _ := raw.([]any)
	out := make([]PaidMonth, 0, len(list))
	for _, v := range list {
		var pm PaidMonth
		switch e := v.(type) {
		case map[string]any:
			rec := Record(e)
			n, err := strconv.Atoi(rec.String("month"))
			if err != nil {
				continue
			}
			pm = PaidMonth{Month: n, Status: rec.String("status")}
		case float64:
			pm = PaidMonth{Month: int(e)}
		case string:
			n, err := strconv.Atoi(e)
			if err != nil {
				continue
			}
			pm = PaidMonth{Month: n}
		default:
			continue
		}
		if pm.Month < 1 || pm.Month > 12 {
			continue
		}
		if slices.ContainsFunc(out, func(p PaidMonth) bool { return p.Month == pm.Month }) {
			continue
		}
		out = append(out, pm)
	}
	slices.SortFunc(out, func(a, b PaidMonth) int { return a.Month - b.Month })
	return out
}

// MonthState is the state of one month in a debtor row.
type MonthState int

const (
	MonthPending MonthState = iota
	MonthOverdue
	MonthPaid
	MonthWaived
)

// DebtorRow is one address in the debtors report: month_1..month_12 hold the
// payment marker, month_N_status flags waivers, months_overdue carries the
// debt from earlier years.
type DebtorRow Record

func (d DebtorRow) record() Record { return Record(d) }

// monthElapsed reports whether month m of year is fully in the past at now.
func monthElapsed(year, m int, now time.Time) bool {
	cur := now.Year()
	return year < cur || (year == cur && m < int(now.Month()))
}

// Month returns the state of month m (1..12) for the report year.
func (d DebtorRow) Month(year, m int, now time.Time) MonthState {
	r := d.record()
	if r.Truthy(fmt.Sprintf("month_%d", m)) {
		if r.String(fmt.Sprintf("month_%d_status", m)) == WaivedStatus {
			return MonthWaived
		}
		return MonthPaid
	}
	if monthElapsed(year, m, now) {
		return MonthOverdue
	}
	return MonthPending
}

// OverdueTotal returns the historical overdue months plus the unpaid elapsed
// months of year.
func (d DebtorRow) OverdueTotal(year int, now time.Time) int {
	total := int(d.record().Float("months_overdue"))
	for m := 1; m <= 12; m++ {
		if d.Month(year, m, now) == MonthOverdue {
			total++
		}
	}
	return total
}

// OverdueMonths is the overdue total for a raw debtors-report row.
func OverdueMonths(row Record, year int, now time.Time) int {
	return DebtorRow(row).OverdueTotal(year, now)
}
