package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/mcpserver"
)

// withRuntime bootstraps, runs fn and closes the collection. One-shot
// commands log to stderr so stdout carries only their result.
func withRuntime(opts []Option, fn func(rt *runtime) error) error {
	_, rt, err := bootstrap(os.Stderr, true, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// Update runs one update pass and prints its report. A warning-level domain
// error is printed and is not a failure.
func Update(ctx context.Context, ov cardservice.Overrides, dryRun bool, opts ...Option) error {
	return withRuntime(opts, func(rt *runtime) error {
		changes, err := rt.svc.Update(ctx, ov, dryRun)
		if err != nil {
			return reportDomainError(rt.out, err)
		}
		fmt.Fprint(rt.out, changes.Report)
		switch {
		case dryRun:
			fmt.Fprintln(rt.out, "\nDry run: no cards were changed.")
		case changes.Token != "":
			fmt.Fprintf(rt.out, "\nUndo with: kwm undo %s\n", changes.Token)
		}
		return nil
	})
}

// reportDomainError prints severity-typed errors. Warnings end the command
// successfully; everything else is returned.
func reportDomainError(out io.Writer, err error) error {
	sev, ok := apperr.SeverityOf(err)
	if !ok {
		return err
	}
	if sev == apperr.SeverityWarning {
		fmt.Fprintf(out, "Warning: %s\n", err.Error())
		return nil
	}
	return err
}

// Undo reverts the update recorded under token.
func Undo(ctx context.Context, token string, opts ...Option) error {
	return withRuntime(opts, func(rt *runtime) error {
		n, err := rt.svc.Undo(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(rt.out, "Restored %d cards.\n", n)
		return nil
	})
}

// Sync imports the vault and prints what changed.
func Sync(ctx context.Context, opts ...Option) error {
	_, rt, err := bootstrap(os.Stderr, false, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.svc.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "Indexed %d, removed %d, failed %d.\n", stats.Indexed, stats.Removed, stats.Failed)
	return nil
}

// ListDecks prints every deck name, one per line.
func ListDecks(ctx context.Context, opts ...Option) error {
	return withRuntime(opts, func(rt *runtime) error {
		decks, err := rt.svc.ListDecks(ctx)
		if err != nil {
			return err
		}
		if len(decks) > 0 {
			fmt.Fprintln(rt.out, strings.Join(decks, "\n"))
		}
		return nil
	})
}

// ListFields prints the field names of deck, one per line.
func ListFields(ctx context.Context, deck string, opts ...Option) error {
	return withRuntime(opts, func(rt *runtime) error {
		fields, err := rt.svc.ListFields(ctx, deck)
		if err != nil {
			return err
		}
		fmt.Fprintln(rt.out, strings.Join(fields, "\n"))
		return nil
	})
}

// ServeMCP serves the MCP tools over stdio until stdin closes.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, rt, err := bootstrap(os.Stderr, true, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}
