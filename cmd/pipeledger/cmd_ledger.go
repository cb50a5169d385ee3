package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pipeledger/internal/app"
	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

var (
	initKind    string
	initColumns []string
	serveWatch  bool
)

var initCmd = &cobra.Command{
	Use:   "init <entity>",
	Short: "Create an empty ledger table for an entity",
	Example: `  pipeledger init ulsd --kind inventory
  pipeledger init route-1 --kind cycle
  pipeledger init tariffs --kind inventory --columns Rate:number,Effective:date`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := schemaFromFlags(initKind, initColumns)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			if err := a.Ledgers.Init(args[0], schema); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (%s, %d columns)\n",
				args[0], schema.Kind, len(schema.Columns))
			return nil
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge every inbox bulletin published since the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			res, err := a.CatchUp(ctx)
			if perr := printJSON(cmd, res); perr != nil && err == nil {
				err = perr
			}
			return err
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Merge inbox bulletins as they arrive until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			return a.Watch(ctx)
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger and spread API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx, serveWatch)
		})
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List initialized entities with their row counts and date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			summaries, err := a.LedgerService.Entities(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summaries)
		})
	},
}

func init() {
	initCmd.Flags().StringVar(&initKind, "kind", string(domain.TableInventory), "table layout: inventory or cycle")
	initCmd.Flags().StringSliceVar(&initColumns, "columns", nil, "explicit Name:format columns (number, monthday, date, text)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also watch the inbox and merge new bulletins")
}

// schemaFromFlags builds the schema for init. Explicit columns replace the
// default layout of the kind.
func schemaFromFlags(kind string, columns []string) (domain.Schema, error) {
	var schema domain.Schema
	switch domain.TableKind(strings.ToLower(kind)) {
	case domain.TableInventory:
		schema = domain.InventorySchema()
	case domain.TableCycle:
		schema = domain.CycleSchema()
	default:
		return domain.Schema{}, apperrors.NewValidationError(fmt.Sprintf("unknown table kind %q", kind), nil)
	}
	if len(columns) == 0 {
		return schema, nil
	}

	schema.Columns = schema.Columns[:0:0]
	for _, entry := range columns {
		name, format, ok := strings.Cut(entry, ":")
		if !ok {
			format = string(domain.FormatText)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Schema{}, apperrors.NewValidationError(fmt.Sprintf("empty column name in %q", entry), nil)
		}
		schema.Columns = append(schema.Columns, domain.Column{
			Name:   name,
			Format: domain.ValueFormat(strings.ToLower(strings.TrimSpace(format))),
		})
	}
	return schema, nil
}
