package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pipeledger/internal/app"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/exporter"
	"pipeledger/internal/ledger"
)

var (
	exportOutFile string
	exportFormat  string
)

var exportCmd = &cobra.Command{
	Use:   "export [entity...]",
	Short: "Write ledgers to an Excel workbook, one sheet per entity",
	Long: `Without arguments every initialized entity is exported. With --format csv
each entity is streamed to <entity>.csv; --out then names the directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(exportFormat)
		if format != "xlsx" && format != "csv" {
			return apperrors.NewValidationError(fmt.Sprintf("unknown export format %q", exportFormat), nil)
		}
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			entities := args
			if len(entities) == 0 {
				var err error
				if entities, err = a.Ledgers.Entities(); err != nil {
					return err
				}
			}
			tables := make([]*ledger.Ledger, 0, len(entities))
			for _, entity := range entities {
				l, err := a.Ledgers.Load(entity)
				if err != nil {
					return err
				}
				tables = append(tables, l)
			}
			if format == "csv" {
				dir := ""
				if cmd.Flags().Changed("out") {
					dir = exportOutFile
				}
				for _, l := range tables {
					path := filepath.Join(dir, exporter.LedgerFileName(l.Entity()))
					if err := a.CSV.WriteLedger(path, l); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", l.Entity(), path)
				}
				return nil
			}

			if err := a.Workbook.ExportLedgers(exportOutFile, tables); err != nil {
				return err
			}
			a.Logger.InfoContext(ctx, "ledgers exported",
				slog.String("file", exportOutFile),
				slog.Int("entities", len(tables)))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entities to %s\n", len(tables), exportOutFile)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutFile, "out", "o", "ledgers.xlsx",
		"workbook file, or directory with --format csv (relative paths land in the export directory)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx (one workbook) or csv (one file per entity)")
}
