package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bpamb/escala/cmd/cli/commands"
	"github.com/bpamb/escala/internal/config"
	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/roster"
	"github.com/bpamb/escala/pkg/core/rotation"
	"github.com/bpamb/escala/pkg/core/services"
	"github.com/bpamb/escala/pkg/core/snapshot"
	"github.com/bpamb/escala/pkg/db"
	"github.com/bpamb/escala/pkg/postgres"
	"github.com/bpamb/escala/pkg/redisstore"
	"github.com/bpamb/escala/pkg/utils/logging"
)

// Holiday rules are expanded this many years around the current one
const holidayRuleSpan = 5

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	cleanup []func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "escala",
		Short:         "Escala BPAmb - duty rosters and member availability",
		Long:          `A CLI tool for the battalion's duty rotation: teams on duty, member availability, leave quotas, volunteers and roster publishing.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: dev, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.TeamCmd(app))
	rootCmd.AddCommand(commands.StatusCmd(app))
	rootCmd.AddCommand(commands.RosterCmd(app))
	rootCmd.AddCommand(commands.MonthCmd(app))
	rootCmd.AddCommand(commands.QuotaCmd(app))
	rootCmd.AddCommand(commands.AdminCmd(app))
	rootCmd.AddCommand(commands.AdminOverrideCmd(app))
	rootCmd.AddCommand(commands.OverrideCmd(app))
	rootCmd.AddCommand(commands.RotationStartCmd(app))
	rootCmd.AddCommand(commands.VolunteerCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.ImportEfetivoCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, stores and the roster engine
func initApp() error {
	app.Env = env
	app.Ctx = context.Background()

	cfg, err := config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Cfg = cfg

	logger, closeLogger, err := logging.InitLogger(env, logging.Options{Dir: cfg.LogDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	cleanup = append(cleanup, closeLogger)

	logger.Info("Starting application", zap.String("environment", env))

	holidays, optional, err := buildCalendars(cfg, time.Now().Year())
	if err != nil {
		return err
	}

	table, err := rotation.NewTable(rotation.DefaultUnits()...)
	if err != nil {
		return fmt.Errorf("failed to build rotation table: %w", err)
	}

	logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup = append(cleanup, database.Close)
	app.Database = database
	app.Migrate = database.RunMigrations

	var volunteers roster.VolunteerStore
	var adminOverrides services.AdminOverrideStore
	if cfg.RedisAddr != "" {
		rdb, err := redisstore.NewClient(redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { rdb.Close() })
		volunteers, adminOverrides = rdb, rdb
	} else {
		logger.Warn("No redisAddr configured, volunteers and admin overrides are kept in memory")
	}

	app.Cache = snapshot.NewCache(database, logger, cfg.RefreshTimeout)
	app.Engine = services.NewEngine(services.Deps{
		Table:          table,
		Cache:          app.Cache,
		Writer:         database,
		Volunteers:     volunteers,
		AdminOverrides: adminOverrides,
		Admin:          &rotation.AdminRotation{Teams: cfg.AdminTeams, Holidays: holidays, Optional: optional},
		Holidays:       holidays,
		QuotaLimit:     cfg.MonthlyLeaveQuota,
		FallbackStarts: fallbackStarts(cfg),
		Logger:         logger,
	})

	logger.Debug("Application initialized")
	return nil
}

func shutdown() {
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	cleanup = nil
}

// buildCalendars returns the holiday and ponto facultativo oracles: the
// built-in dates plus the configured dates and rules
func buildCalendars(cfg *config.Config, year int) (*calendar.HolidayOracle, *calendar.HolidayOracle, error) {
	holidays := calendar.DefaultHolidays()
	optional := calendar.DefaultOptionalDays()

	for _, date := range cfg.ExtraHolidays {
		if err := holidays.Add(date, "Feriado"); err != nil {
			return nil, nil, err
		}
	}
	for _, date := range cfg.PontosFacultativos {
		if err := optional.Add(date, "Ponto facultativo"); err != nil {
			return nil, nil, err
		}
	}

	for _, rule := range cfg.HolidayRules {
		target := holidays
		if rule.Optional {
			target = optional
		}
		if err := target.AddRule(rule.Name, rule.RRule, year-holidayRuleSpan, year+holidayRuleSpan); err != nil {
			return nil, nil, err
		}
	}

	return holidays, optional, nil
}

func fallbackStarts(cfg *config.Config) []db.RotationStart {
	starts := make([]db.RotationStart, 0, len(cfg.RotationStarts))
	for _, s := range cfg.RotationStarts {
		starts = append(starts, db.RotationStart{Unit: s.Unit, Year: s.Year, TeamID: s.Team})
	}
	return starts
}
