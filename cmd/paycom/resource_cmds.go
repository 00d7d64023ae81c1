package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Mendozape/PayComMobile/internal/domain/model"
	"github.com/Mendozape/PayComMobile/internal/domain/nav"
	"github.com/Mendozape/PayComMobile/internal/service"
)

// splitPositional peels up to n leading positional arguments off args, so
// "list streets -search x" works. Positionals after the flags are left for
// the FlagSet and picked up from fs.Args().
func splitPositional(args []string, n int) ([]string, []string) {
	i := 0
	for i < len(args) && i < n && !strings.HasPrefix(args[i], "-") {
		i++
	}
	return args[:i:i], args[i:]
}

type listFlags struct {
	service.ListOptions
	JSON bool
}

func parseListFlags(args []string) (string, listFlags, error) {
	pos, rest := splitPositional(args, 1)
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts listFlags
	fs.StringVar(&opts.Search, "search", "", "Case-insensitive text search")
	fs.BoolVar(&opts.ActiveOnly, "active", false, "Hide deactivated records")
	fs.StringVar(&opts.Filter, "filter", "", "JMESPath filter, e.g. \"[?status=='Habitada']\"")
	fs.BoolVar(&opts.JSON, "json", false, "Print records as JSON")
	if err := fs.Parse(rest); err != nil {
		return "", listFlags{}, usageError{err}
	}
	pos = append(pos, fs.Args()...)
	if len(pos) != 1 {
		return "", listFlags{}, usageErrorf("exactly one resource is required (%s)", strings.Join(resourceNames(), ", "))
	}
	return pos[0], opts, nil
}

func runList(cc *commandContext, args []string) error {
	name, opts, err := parseListFlags(args)
	if err != nil {
		return err
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	rows, err := app.Resources.List(cc.Ctx, name, opts.ListOptions)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	res, _ := model.Lookup(name)
	set, err := app.Resources.Capabilities(cc.Ctx)
	if err != nil {
		return err
	}
	perms := nav.RecordPermissions{Edit: res.Edit, Delete: res.Delete}
	if res.Restorable {
		perms.Restore = res.Delete
	}

	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tEDIT\tDELETE\tRESTORE"); err != nil {
		return err
	}
	for _, row := range rows {
		status := "active"
		if row.Deleted() {
			status = "inactive"
		}
		acts := nav.RecordActions(set, perms, row.Deleted())
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID(), label(row, res), status, acts.Edit, acts.Delete, acts.Restore); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(cc.Out, "%d record(s)\n", len(rows))
}

// label is the first non-empty search field of row.
func label(row model.Record, res model.Resource) string {
	for _, f := range res.SearchFields {
		if v := row.String(f); v != "" {
			return v
		}
	}
	return "-"
}

func resourceNames() []string {
	names := make([]string, 0, len(model.Catalog))
	for n := range model.Catalog {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func runDeactivate(cc *commandContext, args []string) error {
	pos, rest := splitPositional(args, 2)
	fs := flag.NewFlagSet("deactivate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	reason := fs.String("reason", "", "Why the record is deactivated")
	if err := fs.Parse(rest); err != nil {
		return usageError{err}
	}
	pos = append(pos, fs.Args()...)
	if len(pos) != 2 {
		return usageErrorf("resource and id are required")
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	if err := app.Resources.Deactivate(cc.Ctx, pos[0], pos[1], *reason); err != nil {
		return err
	}
	return writef(cc.Out, "Deactivated %s %s\n", pos[0], pos[1])
}

func runRestore(cc *commandContext, args []string) error {
	if len(args) != 2 {
		return usageErrorf("resource and id are required")
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	if err := app.Resources.Restore(cc.Ctx, args[0], args[1]); err != nil {
		return err
	}
	return writef(cc.Out, "Restored %s %s\n", args[0], args[1])
}

// parseMonths parses "1,2, 3" into month numbers.
func parseMonths(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, usageErrorf("invalid month %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
