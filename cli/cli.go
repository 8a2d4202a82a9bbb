/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cli implements the odmctl command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/suparena/entityodm"
	"github.com/suparena/entityodm/config"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/datastore/factory"
	"github.com/suparena/entityodm/errors"
	"go.uber.org/zap"
)

// Record is a loosely typed entity as handled by the CLI.
type Record = map[string]interface{}

// OpenFunc opens the datastore described by a configuration.
type OpenFunc func(ctx context.Context, cfg config.Config, logger *zap.Logger) (datastore.Connection, factory.CloseFunc, error)

// Options configures the root command.
type Options struct {
	// Open defaults to factory.Open. The memory backend is only accepted with
	// a custom Open, since factory.Open starts every run with an empty store.
	Open OpenFunc
	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the odmctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	memoryOK := opts.Open != nil
	if opts.Open == nil {
		opts.Open = factory.Open
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var flags globalFlags
	root := &cobra.Command{
		Use:   "odmctl",
		Short: "Inspect and manage entity collections",
		Long: `odmctl reads and deletes records of a DynamoDB or MongoDB datastore.

The backend is chosen by the config file or ENTITYODM_BACKEND. The in-memory
backend holds no data between runs, so odmctl refuses it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	r := &runner{opts: opts, flags: &flags, memoryOK: memoryOK}
	root.AddCommand(
		newGetCommand(r),
		newFindCommand(r),
		newDeleteCommand(r),
		newDeleteManyCommand(r),
		newVersionCommand(opts.Out),
	)
	return root
}

// runner loads configuration and opens a model for a single command run.
type runner struct {
	opts     Options
	flags    *globalFlags
	memoryOK bool
}

func (r *runner) withModel(ctx context.Context, collection string, fn func(*entityodm.Model[Record]) error) error {
	cfg, err := config.Load(r.flags.configPath)
	if err != nil {
		return err
	}
	if r.flags.logLevel != "" {
		cfg.Log.Level = r.flags.logLevel
	}
	if cfg.Backend == config.BackendMemory && !r.memoryOK {
		return errors.NewValidationError("backend", "memory keeps no data between odmctl runs, configure dynamodb or mongodb")
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	conn, closeFn, err := r.opts.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(context.Background()); err != nil {
			logger.Warn("failed to close datastore", zap.Error(err))
		}
	}()

	model, err := entityodm.NewModel(conn, entityodm.Schema[Record]{Collection: collection}, entityodm.WithLogger(logger))
	if err != nil {
		return err
	}
	return fn(model)
}

type output struct {
	ID   string `json:"id"`
	Data Record `json:"data"`
}

// printEntities writes one JSON object per entity.
func printEntities(w io.Writer, entities ...*entityodm.Entity[Record]) error {
	enc := json.NewEncoder(w)
	for _, e := range entities {
		if err := enc.Encode(output{ID: e.ID, Data: e.Data}); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
