package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/domain/nav"
	"github.com/Mendozape/PayComMobile/internal/service"
)

func runStart(cc *commandContext, args []string) error {
	if len(args) > 0 {
		return usageErrorf("start takes no arguments")
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	res, err := app.Sessions.Bootstrap(cc.Ctx)
	if err != nil {
		return err
	}

	path := make([]string, len(res.Path))
	for i, s := range res.Path {
		path[i] = string(s)
	}
	if err := writef(cc.Out, "state: %s (%s)\n", res.State, strings.Join(path, " > ")); err != nil {
		return err
	}
	if res.State != service.StateAuthenticated {
		return writef(cc.Out, "route: /login\n")
	}
	if !res.Refreshed {
		if err := writef(cc.Out, "profile: cached (refresh failed)\n"); err != nil {
			return err
		}
	}
	if u := res.Session.User; u != nil {
		if err := writef(cc.Out, "user: %s <%s>\n", u.Name, u.Email); err != nil {
			return err
		}
	}
	return writef(cc.Out, "route: /dashboard\n")
}

type loginOptions struct {
	Email         string
	Password      string
	PasswordStdin bool
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email")
	fs.StringVar(&opts.Password, "password", "", "Account password")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, usageError{err}
	}
	if opts.Password != "" && opts.PasswordStdin {
		return loginOptions{}, usageErrorf("-password and -password-stdin are mutually exclusive")
	}
	return opts, nil
}

func runLogin(cc *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	if opts.PasswordStdin {
		line, readErr := bufio.NewReader(cc.In).ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read password: %w", readErr)
		}
		opts.Password = strings.TrimRight(line, "\r\n")
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	sess, err := app.Sessions.Login(cc.Ctx, opts.Email, opts.Password)
	if err != nil {
		return err
	}
	name := sess.Email
	if sess.User != nil && sess.User.Name != "" {
		name = sess.User.Name
	}
	return writef(cc.Out, "Logged in as %s\n", name)
}

func runLogout(cc *commandContext, args []string) error {
	if len(args) > 0 {
		return usageErrorf("logout takes no arguments")
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	if err := app.Sessions.Logout(cc.Ctx); err != nil {
		return err
	}
	return writef(cc.Out, "Logged out\n")
}

func runWhoami(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "Print the cached user as JSON")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	app, err := cc.App()
	if err != nil {
		return err
	}
	user, err := currentUser(cc)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	}

	sess, err := app.Sessions.Session(cc.Ctx)
	if err != nil {
		return err
	}
	set, err := app.Resources.Capabilities(cc.Ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"name", user.Name},
		{"email", user.Email},
		{"roles", strings.Join(user.RoleNames(), ", ")},
		{"photo", sess.ProfilePhoto},
		{"capabilities", fmt.Sprintf("%d", set.Len())},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	for _, p := range set.Sorted() {
		if _, err := fmt.Fprintf(tw, "\t%s\n", p); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// runCan exits non-zero when none of the permissions is held, so scripts can
// branch on it.
func runCan(cc *commandContext, args []string) error {
	if len(args) == 0 {
		return usageErrorf("at least one permission is required")
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	if _, err := currentUser(cc); err != nil {
		return err
	}
	set, err := app.Resources.Capabilities(cc.Ctx)
	if err != nil {
		return err
	}

	required := make([]domainauth.Permission, len(args))
	for i, a := range args {
		required[i] = domainauth.Permission(a)
		mark := "no"
		if set.Has(required[i]) {
			mark = "yes"
		}
		if err := writef(cc.Out, "%-28s %s\n", a, mark); err != nil {
			return err
		}
	}
	if !set.Can(required...) {
		return errDenied
	}
	return nil
}

func runNav(cc *commandContext, args []string) error {
	if len(args) > 0 {
		return usageErrorf("nav takes no arguments")
	}
	app, err := cc.App()
	if err != nil {
		return err
	}
	if _, err := currentUser(cc); err != nil {
		return err
	}
	set, err := app.Resources.Capabilities(cc.Ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	for _, e := range nav.Visible(nav.Shell, set) {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", e.Route, e.Title); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// currentUser returns the cached user. An active session whose profile was
// never fetched is reported apart from a missing session.
func currentUser(cc *commandContext) (*domainauth.User, error) {
	app, err := cc.App()
	if err != nil {
		return nil, err
	}
	user, err := app.Sessions.Current(cc.Ctx)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	if _, err := app.Sessions.Token(cc.Ctx); err == nil {
		return nil, errNoProfile
	}
	return nil, errNotLoggedIn
}
