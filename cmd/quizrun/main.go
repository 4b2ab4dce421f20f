package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/modes"
	"github.com/reusee/quizrun/quizconfigs"
	"github.com/reusee/quizrun/runs"
	"github.com/reusee/quizrun/sandboxes"
	"github.com/reusee/quizrun/servers"
	"github.com/reusee/quizrun/storages"
)

var (
	solveURL = cmds.Var[string]("solve")
)

func init() {
	cmds.Define("serve", cmds.Func(func() {
		*solveURL = ""
	}).Desc("serve the HTTP front door (default)"))
}

func main() {
	cmds.MustExecute(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	var failed bool
	scope.Call(func(
		logger logs.Logger,
		email quizconfigs.Email,
		secret quizconfigs.Secret,
		googleKey generators.GoogleAPIKey,
		ensureDirs quizconfigs.EnsureDirs,
		applySandbox sandboxes.Apply,
		getStore storages.GetStore,
		supervisor *runs.Supervisor,
	) {
		logger.Info("starting quiz solver",
			"email", email,
			"secret_configured", secret != "",
			"api_key_configured", googleKey != "",
		)
		if err := ensureDirs(); err != nil {
			logger.Error("create working directories", "error", err)
			failed = true
			return
		}
		// opened before the sandbox applies, which may exclude its directory
		if store, err := getStore(); err == nil {
			defer store.Close()
		} else if !errors.Is(err, storages.ErrDisabled) {
			logger.Error("report store", "error", err)
			failed = true
			return
		}
		if err := applySandbox(); err != nil {
			logger.Error("sandbox", "error", err)
			failed = true
			return
		}

		if *solveURL != "" {
			report := supervisor.Run(ctx, runs.Submission{
				Email:  string(email),
				Secret: string(secret),
				URL:    *solveURL,
			})
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				logger.Error("encode report", "error", err)
			}
			failed = !report.Success
			return
		}

		scope.Call(func(
			serve servers.Serve,
		) {
			if err := serve(ctx); err != nil {
				logger.Error("serve", "error", err)
				failed = true
			}
		})

		if n := supervisor.Active(); n > 0 {
			logger.Info("waiting for active runs", "count", n)
			done := make(chan struct{})
			go func() {
				supervisor.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(30 * time.Second):
				logger.Warn("abandoning active runs", "count", supervisor.Active())
			}
		}
	})

	if failed {
		os.Exit(1)
	}
}
