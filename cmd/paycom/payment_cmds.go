package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Mendozape/PayComMobile/internal/domain/model"
)

type payOptions struct {
	AddressID string
	FeeID     string
	Year      int
	Months    []int
	Waived    []int
}

func parsePayFlags(args []string) (payOptions, error) {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts payOptions
	var months, waived string
	fs.StringVar(&opts.AddressID, "address", "", "Address id")
	fs.StringVar(&opts.FeeID, "fee", "", "Fee id")
	fs.IntVar(&opts.Year, "year", 0, "Payment year (defaults to the current year)")
	fs.StringVar(&months, "months", "", "Comma-separated months to pay")
	fs.StringVar(&waived, "waived", "", "Comma-separated months to waive")
	if err := fs.Parse(args); err != nil {
		return payOptions{}, usageError{err}
	}

	var err error
	if opts.Months, err = parseMonths(months); err != nil {
		return payOptions{}, err
	}
	if opts.Waived, err = parseMonths(waived); err != nil {
		return payOptions{}, err
	}
	if opts.AddressID == "" || opts.FeeID == "" {
		return payOptions{}, usageErrorf("-address and -fee are required")
	}
	if opts.Year == 0 {
		opts.Year = time.Now().Year()
	}
	return opts, nil
}

func runPay(cc *commandContext, args []string) error {
	opts, err := parsePayFlags(args)
	if err != nil {
		return err
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	if _, err := app.Payments.Register(cc.Ctx, opts.AddressID, opts.FeeID, opts.Year, opts.Months, opts.Waived); err != nil {
		return err
	}
	paid, err := app.Payments.PaidMonths(cc.Ctx, opts.AddressID, opts.Year, opts.FeeID)
	if err != nil {
		return err
	}
	var months, waived []int
	for _, pm := range paid {
		if pm.Waived() {
			waived = append(waived, pm.Month)
			continue
		}
		months = append(months, pm.Month)
	}
	return writef(cc.Out, "Payment registered. Paid months in %d: %s. Waived: %s\n", opts.Year, joinInts(months), joinInts(waived))
}

func runPayments(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	address := fs.String("address", "", "Address id")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	if *address == "" {
		return usageErrorf("-address is required")
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	rows, err := app.Payments.History(cc.Ctx, *address)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tYEAR\tMONTH\tSTATUS\tDATE"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID(), r.String("year"), r.String("month"), r.String("status"), r.String("payment_date")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runCancelPayment(cc *commandContext, args []string) error {
	pos, rest := splitPositional(args, 1)
	fs := flag.NewFlagSet("cancel-payment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	reason := fs.String("reason", "", "Why the payment is cancelled")
	if err := fs.Parse(rest); err != nil {
		return usageError{err}
	}
	pos = append(pos, fs.Args()...)
	if len(pos) != 1 {
		return usageErrorf("payment id is required")
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	if err := app.Payments.Cancel(cc.Ctx, pos[0], *reason); err != nil {
		return err
	}
	return writef(cc.Out, "Payment %s cancelled\n", pos[0])
}

// monthGlyph renders one report cell: P paid, W waived, X overdue, . pending.
func monthGlyph(s model.MonthState) string {
	switch s {
	case model.MonthPaid:
		return "P"
	case model.MonthWaived:
		return "W"
	case model.MonthOverdue:
		return "X"
	default:
		return "."
	}
}

func runDebtors(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("debtors", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	feeName := fs.String("type", "", "Fee name, e.g. Mantenimiento")
	year := fs.Int("year", 0, "Report year (defaults to the current year)")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	report, err := app.Payments.Debtors(cc.Ctx, *feeName, *year)
	if err != nil {
		return err
	}

	now := time.Now()
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ADDRESS\tMONTHS\tOVERDUE"); err != nil {
		return err
	}
	for i, row := range report.Rows {
		var cells strings.Builder
		for m := 1; m <= 12; m++ {
			cells.WriteString(monthGlyph(row.Month(report.Year, m, now)))
		}
		addr := model.Record(row).String("full_address")
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\n", addr, cells.String(), report.Overdue[i]); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(cc.Out, "%d debtor(s) in %d\n", len(report.Rows), report.Year)
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return "none"
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
