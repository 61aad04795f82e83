package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/services"
	"github.com/bpamb/escala/pkg/export"
)

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <YYYY-MM>",
		Short: "Publish a month's roster to the configured spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args[0])
			if err != nil {
				return err
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := services.PublishRoster(app.Ctx, app.Engine, client, app.Logger, app.Cfg.Sheets.SpreadsheetID, year, month)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Escala publicada na aba %q (%d linhas)\n\n", published.TabTitle(), len(published.Rows))
			return nil
		},
	}
}

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <YYYY-MM>",
		Short: "Export a month's roster to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args[0])
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			path := filepath.Join(dir, export.FileName(year, month))

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}

			if err := services.ExportRoster(app.Ctx, app.Engine, app.Logger, f, year, month); err != nil {
				f.Close()
				os.Remove(path)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Printf("\n✓ Escala exportada para %s\n\n", path)
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "Directory the workbook is written to")
	return cmd
}

// ImportEfetivoCmd creates the importEfetivo command
func ImportEfetivoCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importEfetivo",
		Short: "Replace the personnel registry with the personnel sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			result, err := services.ImportRegistry(app.Ctx, client, app.Database, app.Engine, app.Logger,
				app.Cfg.Sheets.SpreadsheetID, app.Cfg.Sheets.PersonnelTab)
			if result == nil {
				return err
			}

			fmt.Printf("\n✓ Efetivo importado: %d pessoas, %d vínculos de equipe\n", result.People, result.Members)
			if err != nil {
				app.Logger.Warn("Import finished without refresh", zap.Error(err))
				fmt.Printf("%s⚠️  %v%s\n", colorYellow, err, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := app.Migrate(app.Ctx)
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Println("\nBanco de dados já está atualizado")
				return nil
			}

			fmt.Printf("\n✓ %d migração(ões) aplicada(s):\n", len(applied))
			for _, name := range applied {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println()
			return nil
		},
	}
}
