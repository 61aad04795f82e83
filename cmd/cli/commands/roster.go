package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpamb/escala/pkg/core/calendar"
)

// TeamCmd creates the team command
func TeamCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "team <unit> [date]",
		Short: "Show the team on duty for a unit (defaults to today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 1, time.Now())
			if err != nil {
				return err
			}

			a, err := app.Engine.ResolveTeam(app.Ctx, date, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n%s em %s: Equipe %s\n", a.Unit, calendar.FormatDate(date), a.Team)
			if a.Overridden {
				fmt.Printf("%sTroca manual", colorYellow)
				if a.Reason != "" {
					fmt.Printf(": %s", a.Reason)
				}
				fmt.Printf("%s\n", colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}

// StatusCmd creates the status command
func StatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <person_id> [date]",
		Short: "Show a member's availability on a date (defaults to today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 1, time.Now())
			if err != nil {
				return err
			}

			status, err := app.Engine.ResolveStatus(app.Ctx, args[0], date)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s em %s: %s%s%s\n\n", args[0], calendar.FormatDate(date),
				statusColor(status.Kind), describeStatus(status), colorReset)
			return nil
		},
	}
}

// RosterCmd creates the roster command
func RosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "roster [date]",
		Short: "Show every unit's roster for a day (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, time.Now())
			if err != nil {
				return err
			}

			day, err := app.Engine.AssembleDay(app.Ctx, date)
			if err != nil {
				return err
			}

			printDay(os.Stdout, day)
			return nil
		},
	}
}

// MonthCmd creates the month command
func MonthCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "month <YYYY-MM>",
		Short: "Show the teams on duty for every day of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args[0])
			if err != nil {
				return err
			}

			days, err := app.Engine.AssembleMonth(app.Ctx, year, month)
			if err != nil {
				return err
			}

			printMonthSummary(os.Stdout, days)
			return nil
		},
	}
}

// QuotaCmd creates the quota command
func QuotaCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quota <YYYY-MM>",
		Short: "Show the month's leave-day balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args[0])
			if err != nil {
				return err
			}

			q, err := app.Engine.QuotaFor(app.Ctx, year, month)
			if err != nil {
				return err
			}

			saldoColor := colorGreen
			if q.IsOverLimit {
				saldoColor = colorRed
			}

			fmt.Printf("\nCota de férias %s/%d\n\n", calendar.MonthLabel(month), year)
			fmt.Printf("  Limite:    %d\n", q.Limit)
			fmt.Printf("  Previsto:  %d\n", q.Previsto)
			fmt.Printf("  Marcados:  %d\n", q.Marked)
			fmt.Printf("  Saldo:     %s%d%s\n\n", saldoColor, q.Saldo, colorReset)
			return nil
		},
	}
}
