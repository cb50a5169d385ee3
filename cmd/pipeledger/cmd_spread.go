package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pipeledger/internal/app"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/services"
	"pipeledger/internal/spread"
	"pipeledger/pkg/contracts/domain"
)

var (
	diffQuery     services.DifferenceQuery
	diffFrom      string
	diffTo        string
	avgEntity     string
	avgColumn     string
	avgYears      []int
	avgSkip       bool
	transitOn     string
	spreadOutFile string
)

var spreadCmd = &cobra.Command{
	Use:   "spread",
	Short: "Compute differences, seasonal averages and transit differentials",
}

var spreadDifferenceCmd = &cobra.Command{
	Use:     "difference",
	Short:   "Subtract one entity column from another, key by key",
	Example: `  pipeledger spread difference --a ulsd --b rbob --column Close --key monthday`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := diffQuery
		var err error
		if q.From, err = optionalDate("from", diffFrom); err != nil {
			return err
		}
		if q.To, err = optionalDate("to", diffTo); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			points, err := a.SpreadService.Difference(ctx, q)
			if err != nil {
				return err
			}
			return emitPoints(cmd, a, "Difference", points)
		})
	},
}

var spreadAverageCmd = &cobra.Command{
	Use:     "average",
	Short:   "Average a column per month/day across years",
	Example: `  pipeledger spread average --entity ulsd --column Close --years 2023,2024`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			points, err := a.SpreadService.Average(ctx, avgEntity, avgColumn, avgYears, avgSkip)
			if err != nil {
				return err
			}
			return emitPoints(cmd, a, "Average", points)
		})
	},
}

var spreadTransitCmd = &cobra.Command{
	Use:     "transit <origin> <destination>",
	Short:   "Days between two cycle schedules as of a date",
	Example: `  pipeledger spread transit route-1 route-2 --on 2025-01-15`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := requiredDate("on", transitOn)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			points, err := a.SpreadService.Transit(ctx, args[0], args[1], on)
			if err != nil {
				return err
			}
			if spreadOutFile != "" {
				return a.CSV.WriteTransit(spreadOutFile, points)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "Key\tDays")
			for _, p := range points {
				fmt.Fprintf(tw, "%s\t%d\n", p.Key, p.Days)
			}
			return tw.Flush()
		})
	},
}

func init() {
	f := spreadDifferenceCmd.Flags()
	f.StringVar(&diffQuery.A, "a", "", "minuend entity")
	f.StringVar(&diffQuery.B, "b", "", "subtrahend entity")
	f.StringVar(&diffQuery.Column, "column", "", "column of a (and of b unless --column-b)")
	f.StringVar(&diffQuery.ColumnB, "column-b", "", "column of b")
	f.StringVar(&diffQuery.Key, "key", services.KeyISO, "key layout: iso or monthday")
	f.StringVar(&diffFrom, "from", "", "first date (YYYY-MM-DD)")
	f.StringVar(&diffTo, "to", "", "last date (YYYY-MM-DD)")
	f.BoolVar(&diffQuery.SkipSynthetic, "skip-synthetic", false, "ignore carry-forward rows")

	f = spreadAverageCmd.Flags()
	f.StringVar(&avgEntity, "entity", "", "entity to average")
	f.StringVar(&avgColumn, "column", "", "column to average")
	f.IntSliceVar(&avgYears, "years", nil, "years to include")
	f.BoolVar(&avgSkip, "skip-synthetic", false, "ignore carry-forward rows")

	spreadTransitCmd.Flags().StringVar(&transitOn, "on", "", "schedule date (YYYY-MM-DD)")

	spreadCmd.PersistentFlags().StringVarP(&spreadOutFile, "out", "o", "",
		"write CSV to this file (relative paths land in the export directory)")
	spreadCmd.AddCommand(spreadDifferenceCmd, spreadAverageCmd, spreadTransitCmd)
}

func emitPoints(cmd *cobra.Command, a *app.Application, header string, points []spread.Point) error {
	if spreadOutFile != "" {
		return a.CSV.WriteSpread(spreadOutFile, header, points)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Key\t%s\n", header)
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\n", p.Key, p.Value.String())
	}
	return tw.Flush()
}

func optionalDate(name, value string) (domain.Date, error) {
	if value == "" {
		return domain.MinDate, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.MinDate, apperrors.NewValidationError("invalid --"+name, err)
	}
	return d, nil
}

func requiredDate(name, value string) (domain.Date, error) {
	if value == "" {
		return domain.MinDate, apperrors.NewValidationError("--"+name+" is required", nil)
	}
	return optionalDate(name, value)
}
