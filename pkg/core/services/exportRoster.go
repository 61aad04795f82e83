package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/export"
)

// ExportRoster assembles the month and writes it as an XLSX workbook to w
func ExportRoster(ctx context.Context, engine *Engine, logger *zap.Logger, w io.Writer, year int, month time.Month) error {
	logger.Debug("Starting exportRoster", zap.Int("year", year), zap.Int("month", int(month)))

	days, err := engine.AssembleMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to assemble month: %w", err)
	}

	if err := export.WriteMonth(w, year, month, days); err != nil {
		return fmt.Errorf("failed to export roster: %w", err)
	}

	logger.Info("Roster exported", zap.Int("year", year), zap.Int("month", int(month)), zap.Int("days", len(days)))
	return nil
}
