/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/suparena/entityodm"
	"github.com/suparena/entityodm/storagemodels"
)

func newGetCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withModel(cmd.Context(), args[0], func(m *entityodm.Model[Record]) error {
				e, err := m.FindByID(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if e == nil {
					return fmt.Errorf("%s/%s not found", args[0], args[1])
				}
				return printEntities(r.opts.Out, e)
			})
		},
	}
}

type queryFlags struct {
	where []string
	order string
	limit int
}

func (f *queryFlags) options() (storagemodels.QueryOptions, error) {
	where, err := ParseWhere(f.where)
	if err != nil {
		return storagemodels.QueryOptions{}, err
	}
	orderBy, err := ParseOrder(f.order)
	if err != nil {
		return storagemodels.QueryOptions{}, err
	}
	return storagemodels.QueryOptions{Where: where, OrderBy: orderBy, Limit: f.limit}, nil
}

func newFindCommand(r *runner) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "find <collection>",
		Short: "Print the records matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := qf.options()
			if err != nil {
				return err
			}
			return r.withModel(cmd.Context(), args[0], func(m *entityodm.Model[Record]) error {
				found, err := m.FindMany(cmd.Context(), opts)
				if err != nil {
					return err
				}
				return printEntities(r.opts.Out, found...)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&qf.where, "where", "w", nil, "filter as field:op:value, op is one of eq, gt, gte, lt, lte (repeatable)")
	cmd.Flags().StringVarP(&qf.order, "order", "o", "", "order as field[:asc|desc]")
	cmd.Flags().IntVarP(&qf.limit, "limit", "l", 0, "maximum number of records, 0 for all")
	return cmd
}

func newDeleteCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record and print its last state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withModel(cmd.Context(), args[0], func(m *entityodm.Model[Record]) error {
				e, err := m.DeleteByID(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if e == nil {
					return fmt.Errorf("%s/%s not found", args[0], args[1])
				}
				return printEntities(r.opts.Out, e)
			})
		},
	}
}

func newDeleteManyCommand(r *runner) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "delete-many <collection>",
		Short: "Delete every record matching the filter and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := qf.options()
			if err != nil {
				return err
			}
			return r.withModel(cmd.Context(), args[0], func(m *entityodm.Model[Record]) error {
				deleted, err := m.DeleteMany(cmd.Context(), opts)
				if err != nil {
					return err
				}
				return printEntities(r.opts.Out, deleted...)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&qf.where, "where", "w", nil, "filter as field:op:value (repeatable)")
	return cmd
}

func newVersionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := entityodm.GetVersionInfo()
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Commit:     %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
		},
	}
}
