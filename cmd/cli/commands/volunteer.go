package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpamb/escala/pkg/core/services"
)

// VolunteerCmd creates the volunteer command and its add, remove and list subcommands
func VolunteerCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteer",
		Short: "Manage paid extra shift registrations",
	}

	add := &cobra.Command{
		Use:   "add <date> <person_id> <unit>",
		Short: "Register a volunteer for a date",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, _ := cmd.Flags().GetString("team")
			obs, _ := cmd.Flags().GetString("obs")

			entry, err := app.Engine.AddVolunteer(app.Ctx, services.VolunteerInput{
				Date:        args[0],
				PersonID:    args[1],
				Unit:        args[2],
				Team:        team,
				Observation: obs,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s registrado como voluntário em %s (%s)\n\n", entry.PersonID, entry.Date, entry.Unit)
			return nil
		},
	}
	add.Flags().String("team", "", "Team the volunteer joins")
	add.Flags().String("obs", "", "Observation shown on the roster")

	remove := &cobra.Command{
		Use:   "remove <date> <person_id>",
		Short: "Remove a volunteer registration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.RemoveVolunteer(app.Ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Registro de %s em %s removido\n\n", args[1], args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <date>",
		Short: "List the volunteers of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Engine.ListVolunteers(app.Ctx, args[0])
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Printf("\nNenhum voluntário em %s\n\n", args[0])
				return nil
			}

			fmt.Printf("\n%d voluntário(s) em %s:\n\n", len(entries), args[0])
			for _, e := range entries {
				team := ""
				if e.Team != "" {
					team = " / " + e.Team
				}
				obs := ""
				if e.Observation != "" {
					obs = " - " + e.Observation
				}
				fmt.Printf("  - %s (%s%s)%s\n", e.PersonID, e.Unit, team, obs)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
