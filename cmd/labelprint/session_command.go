package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"labelprint/internal/preflight"
	"labelprint/internal/session"
)

// sessionRun opens the pipeline under the cache lock, runs preflight, and
// hands the session to fn. Ctrl+C ends the session cleanly.
func sessionRun(cmd *cobra.Command, ctx *commandContext, fn func(context.Context, *session.Session) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(runCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	lock, err := p.cache.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	var shop preflight.Pinger
	if !ctx.offline {
		shop = p.shop
	}
	if err := runPreflight(runCtx, cfg, shop, cmd.ErrOrStderr()); err != nil {
		return err
	}

	s := session.New(p.deps, cmd.InOrStdin(), cmd.OutOrStdout(), session.WithPrompt(interactive(cmd)))
	err = fn(runCtx, s)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}
	return err
}

func runSession(cmd *cobra.Command, ctx *commandContext) error {
	return sessionRun(cmd, ctx, func(runCtx context.Context, s *session.Session) error {
		return s.Run(runCtx)
	})
}

// interactive reports whether the command reads from a terminal.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
