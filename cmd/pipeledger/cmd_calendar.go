package main

import (
	"context"

	"github.com/spf13/cobra"

	"pipeledger/internal/app"
)

var (
	windowYear   int
	deadlineLead int
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Contract-month windows and nomination deadlines",
}

var calendarWindowCmd = &cobra.Command{
	Use:     "window <code>",
	Short:   "Show the delivery window and expiration of a contract-month code",
	Example: `  pipeledger calendar window H --year 2025`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			info, err := a.ContractService.Contract(ctx, args[0], windowYear)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		})
	},
}

var calendarDeadlineCmd = &cobra.Command{
	Use:     "deadline <cycle-start>",
	Short:   "Step back business days from a cycle start date",
	Example: `  pipeledger calendar deadline 2025-01-21 --lead 3`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := requiredDate("cycle-start", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			d, err := a.ContractService.NominationDeadline(ctx, start, deadlineLead)
			if err != nil {
				return err
			}
			return printJSON(cmd, d)
		})
	},
}

func init() {
	calendarWindowCmd.Flags().IntVar(&windowYear, "year", 0, "settlement year (default: the year still active today)")
	calendarDeadlineCmd.Flags().IntVar(&deadlineLead, "lead", 1, "business days of lead time")
	calendarCmd.AddCommand(calendarWindowCmd, calendarDeadlineCmd)
}
