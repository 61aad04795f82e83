package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bpamb/escala/internal/config"
	"github.com/bpamb/escala/pkg/clients/sheetsclient"
	"github.com/bpamb/escala/pkg/core/services"
	"github.com/bpamb/escala/pkg/core/snapshot"
	"github.com/bpamb/escala/pkg/db"
	"github.com/bpamb/escala/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Engine   *services.Engine
	Cache    *snapshot.Cache
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	// Migrate applies pending schema migrations and returns their names
	Migrate func(ctx context.Context) ([]string, error)

	sheetsOnce   sync.Once
	sheetsClient *sheetsclient.Client
	sheetsErr    error
}

// SheetsClient authenticates on first use so commands that never touch the
// spreadsheet do not need Google credentials
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	a.sheetsOnce.Do(func() {
		oauthCfg, err := config.LoadOAuthClientWithEnv(a.Env)
		if err != nil {
			a.sheetsErr = fmt.Errorf("failed to load OAuth client config: %w", err)
			return
		}

		store, err := utils.DefaultTokenStore()
		if err != nil {
			a.sheetsErr = err
			return
		}

		a.Logger.Info("Initializing sheets client")
		a.sheetsClient, a.sheetsErr = sheetsclient.NewClient(a.Ctx, oauthCfg, a.Env, store, a.Logger)
		if a.sheetsErr != nil {
			a.sheetsErr = fmt.Errorf("failed to create sheets client: %w", a.sheetsErr)
		}
	})
	return a.sheetsClient, a.sheetsErr
}
