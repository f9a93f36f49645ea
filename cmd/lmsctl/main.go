// Command lmsctl is a terminal front-end for the LMS API: it logs in,
// keeps the session in the configured token store and lists courses,
// classes, assessments and scores.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/logging"
	"github.com/iliyamo/classroom-client/internal/session"
)

const usage = `usage: lmsctl <command> [flags]

commands:
  login -email ADDRESS     sign in (password is prompted)
  logout                   end the session
  me                       show the signed-in profile
  status                   inspect the stored tokens
  courses [-active]        list courses
  classes [-page -per-page | -all]
  class -id ID             teacher view of one class
  assessments [-upcoming | -recent] [-class ID]
  scores [-student ID] [-assessment TITLE]
  audit                    consume session events into the audit log
`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		slog.Error("startup failed", "error", err)
		return 1
	}
	defer a.Close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		report(os.Stderr, err)
		return 1
	}
	return 0
}

// report prints err the way the dashboard's error toast did.  A session
// expiry was already announced by the hook.
func report(w io.Writer, err error) {
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		return
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Fprintln(w, "not logged in, run: lmsctl login -email ...")
		return
	case errors.Is(err, errUsage):
		fmt.Fprintln(w, err)
		fmt.Fprint(w, usage)
		return
	}
	info := apiclient.Describe(err)
	var ae *apiclient.APIError
	if errors.As(err, &ae) && ae.Message != "" && ae.Message != info.Message {
		fmt.Fprintf(w, "error: %s (%d): %s\n", info.Message, info.Status, ae.Message)
	} else {
		fmt.Fprintf(w, "error: %s (%d)\n", info.Message, info.Status)
	}
	for field, msgs := range info.Errors {
		for _, m := range msgs {
			fmt.Fprintf(w, "  %s: %s\n", field, m)
		}
	}
}
