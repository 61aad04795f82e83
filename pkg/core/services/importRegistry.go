package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/clients/sheetsclient"
	"github.com/bpamb/escala/pkg/db"
)

// PersonnelSource reads the personnel sheet
type PersonnelSource interface {
	ListPeople(spreadsheetID, tab string) (*sheetsclient.Registry, error)
}

// ImportRegistryResult summarizes an import
type ImportRegistryResult struct {
	People  int
	Members int
}

// ImportRegistry replaces the personnel registry with the contents of the
// personnel sheet and refetches every loaded snapshot
func ImportRegistry(
	ctx context.Context,
	source PersonnelSource,
	writer db.RegistryWriter,
	engine *Engine,
	logger *zap.Logger,
	spreadsheetID, tab string,
) (*ImportRegistryResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured for the personnel registry")
	}

	logger.Debug("Starting importRegistry", zap.String("tab", tab))

	registry, err := source.ListPeople(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read personnel sheet: %w", err)
	}

	if len(registry.People) == 0 {
		return nil, fmt.Errorf("personnel sheet %q has no people", tab)
	}

	if err := writer.UpsertPeople(ctx, registry.People); err != nil {
		return nil, fmt.Errorf("failed to save people: %w", err)
	}

	if err := writer.ReplaceTeamMembers(ctx, registry.Members); err != nil {
		return nil, fmt.Errorf("failed to save team members: %w", err)
	}

	result := &ImportRegistryResult{People: len(registry.People), Members: len(registry.Members)}

	if err := engine.Refresh(ctx); err != nil {
		return result, fmt.Errorf("registry imported but snapshot refresh failed: %w", err)
	}

	logger.Info("Personnel registry imported",
		zap.Int("people", result.People),
		zap.Int("members", result.Members))
	return result, nil
}
