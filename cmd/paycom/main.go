// Command paycom is the terminal client for the resident-management backend:
// it resumes the stored session, signs in and out, and works the collections
// the signed-in user's capabilities allow.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Mendozape/PayComMobile/internal/bootstrap"
)

type commandFn func(cc *commandContext, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

// commandContext carries what every command needs. App is built on first use
// so usage errors never touch the session store.
type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Out    io.Writer
	In     io.Reader

	newApp func(ctx context.Context) (*bootstrap.App, error)
	app    *bootstrap.App
}

func (cc *commandContext) App() (*bootstrap.App, error) {
	if cc.app != nil {
		return cc.app, nil
	}
	app, err := cc.newApp(cc.Ctx)
	if err != nil {
		return nil, err
	}
	cc.app = app
	return app, nil
}

func (cc *commandContext) close() {
	if cc.app == nil {
		return
	}
	if err := cc.app.Close(); err != nil {
		cc.Logger.Warn("close app failed", "error", err)
	}
}

func main() {
	cfg, err := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(os.Stderr, err == nil && cfg.IsDev)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cc := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Out:    os.Stdout,
		In:     os.Stdin,
		newApp: func(ctx context.Context) (*bootstrap.App, error) {
			return bootstrap.NewApp(ctx, bootstrap.AppDeps{Config: &cfg, Logger: logger})
		},
	}

	code := run(cc, os.Args[1:])
	cc.close()
	stop()
	os.Exit(code) //nolint:forbidigo // CLI exit status reflects command outcome
}

// run dispatches args to a command and returns the process exit status:
// 0 on success, 1 when the command fails, 2 on usage errors.
func run(cc *commandContext, args []string) int {
	if len(args) < 1 {
		_ = printUsage(cc.Out)
		return 2
	}
	cmd, ok := commands()[args[0]]
	if !ok {
		_ = writef(cc.Out, "unknown command %q\n\n", args[0])
		_ = printUsage(cc.Out)
		return 2
	}
	if err := cmd.run(cc, args[1:]); err != nil {
		if isUsage(err) {
			_ = writef(cc.Out, "%v\nusage: paycom %s %s\n", err, cmd.name, cmd.usage)
			return 2
		}
		_ = writef(cc.Out, "error: %s\n", userMessage(err))
		cc.Logger.ErrorContext(cc.Ctx, "command failed", "command", cmd.name, "error", err)
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"start": {
			name:        "start",
			description: "Resume the stored session and show where the app would open",
			run:         runStart,
		},
		"login": {
			name:        "login",
			usage:       "-email <email> [-password <password> | -password-stdin]",
			description: "Sign in and store the session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Remove the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			usage:       "[-json]",
			description: "Show the signed-in user and their capabilities",
			run:         runWhoami,
		},
		"can": {
			name:        "can",
			usage:       "<permission>...",
			description: "Check whether the signed-in user holds any of the permissions",
			run:         runCan,
		},
		"nav": {
			name:        "nav",
			description: "List the navigation entries visible to the signed-in user",
			run:         runNav,
		},
		"list": {
			name:        "list",
			usage:       "<resource> [-search <text>] [-active] [-filter <jmespath>] [-json]",
			description: "List a managed collection",
			run:         runList,
		},
		"deactivate": {
			name:        "deactivate",
			usage:       "<resource> <id> [-reason <text>]",
			description: "Deactivate (soft-delete) a record",
			run:         runDeactivate,
		},
		"restore": {
			name:        "restore",
			usage:       "<resource> <id>",
			description: "Reactivate a deactivated record",
			run:         runRestore,
		},
		"pay": {
			name:        "pay",
			usage:       "-address <id> -fee <id> -months 1,2,3 [-waived 2] [-year 2025]",
			description: "Register a fee payment for an address",
			run:         runPay,
		},
		"payments": {
			name:        "payments",
			usage:       "-address <id>",
			description: "Show the payment history of an address",
			run:         runPayments,
		},
		"cancel-payment": {
			name:        "cancel-payment",
			usage:       "<payment-id> -reason <text>",
			description: "Cancel a registered payment",
			run:         runCancelPayment,
		},
		"debtors": {
			name:        "debtors",
			usage:       "[-type <fee name>] [-year 2025]",
			description: "Show the debtors report",
			run:         runDebtors,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: paycom <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
