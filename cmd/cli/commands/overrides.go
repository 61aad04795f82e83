package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/services"
)

// OverrideCmd creates the override command
func OverrideCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "override <date> <unit> <team> [reason...]",
		Short: "Assign a team to a unit on a date, replacing the rotation",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := app.Engine.SaveTeamOverride(app.Ctx, services.TeamOverrideInput{
				Date:   args[0],
				Unit:   args[1],
				Team:   args[2],
				Reason: strings.Join(args[3:], " "),
			})
			if override == nil {
				return err
			}

			fmt.Printf("\n✓ %s em %s: Equipe %s\n", override.Unit, override.Date, override.TeamID)
			if err != nil {
				// Saved; the snapshot will catch up on the next refresh
				fmt.Printf("%s⚠️  %v%s\n", colorYellow, err, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}

// RotationStartCmd creates the rotationStart command
func RotationStartCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rotationStart <unit> <year> <team>",
		Short: "Set the team on duty on January 1 of a year",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("year must be a number: %w", err)
			}

			start, err := app.Engine.SaveRotationStart(app.Ctx, args[0], year, args[2])
			if start == nil {
				return err
			}

			fmt.Printf("\n✓ %s começa %d com a Equipe %s\n", start.Unit, start.Year, start.TeamID)
			if err != nil {
				fmt.Printf("%s⚠️  %v%s\n", colorYellow, err, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}

// AdminCmd creates the admin command
func AdminCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "admin [date]",
		Short: "Show the administrative team on a date (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, time.Now())
			if err != nil {
				return err
			}

			a, err := app.Engine.AdminDay(app.Ctx, date)
			if err != nil {
				return err
			}

			switch {
			case a.Team == "":
				fmt.Printf("\n%s: sem expediente\n\n", a.Date)
			case a.Overridden:
				fmt.Printf("\n%s: Equipe %s %s(troca manual)%s\n\n", a.Date, a.Team, colorYellow, colorReset)
			default:
				fmt.Printf("\n%s: Equipe %s\n\n", a.Date, a.Team)
			}
			return nil
		},
	}
}

// AdminOverrideCmd creates the adminOverride command
func AdminOverrideCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "adminOverride <date> [team]",
		Short: "Assign an administrative team to a date (omit team to clear)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			team := ""
			if len(args) > 1 {
				team = args[1]
			}

			if err := app.Engine.SetAdminOverride(app.Ctx, args[0], team); err != nil {
				return err
			}

			date, _ := calendar.ParseDate(args[0])
			a, err := app.Engine.AdminDay(app.Ctx, date)
			if err != nil {
				return err
			}

			if team == "" {
				fmt.Printf("\n✓ Troca removida. %s: Equipe %s\n\n", a.Date, a.Team)
			} else {
				fmt.Printf("\n✓ %s: Equipe %s\n\n", a.Date, a.Team)
			}
			return nil
		},
	}
}
