// Command recipectl performs operator tasks against the recipe database.
//
// Usage:
//
//	go run ./cmd/recipectl migrate up
//	go run ./cmd/recipectl adduser --username ana --password secret
//	go run ./cmd/recipectl sessions prune
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/recipeapi/config"
	"github.com/padraicbc/recipeapi/db"
	applog "github.com/padraicbc/recipeapi/logger"
)

// app is the state shared by all subcommands, filled in by the root PersistentPreRunE.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *bun.DB
	open func(ctx context.Context, cfg *config.Config) (*bun.DB, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{open: db.Setup}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "recipectl",
		Short:         "Operator tasks for the recipe API database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.connect(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	root.AddCommand(newMigrateCmd(a), newAddUserCmd(a), newSessionsCmd(a))
	return root
}

func (a *app) connect(ctx context.Context) error {
	if a.cfg == nil {
		a.cfg = config.Load()
	}
	if a.log == nil {
		l, err := applog.New(a.cfg.Debug)
		if err != nil {
			return err
		}
		a.log = l
		zap.ReplaceGlobals(l)
	}
	if a.db == nil {
		d, err := a.open(ctx, a.cfg)
		if err != nil {
			return err
		}
		a.db = d
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
