// Package pipeline orchestrates one ETL run: extract, transform, load,
// in strict sequence. A failure at any stage aborts the run before the
// sink is touched, so no partial output file is ever written.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/macropulse/internal/domain/models"
	"github.com/guttosm/macropulse/internal/logger"
)

// Adapter is the contract every source implements. R is the
// source-specific raw shape returned by Extract and consumed by
// Transform; the pipeline never inspects it.
type Adapter[R any] interface {
	Name() string
	Extract(ctx context.Context) (R, error)
	Transform(raw R) (*models.Table, error)
}

// Sink persists the final tidy table.
type Sink interface {
	Load(t *models.Table) error
}

// Run executes one pipeline run against the given adapter and sink.
// There are no retries and no partial-output recovery; the first stage
// error is returned to the caller.
func Run[R any](ctx context.Context, a Adapter[R], s Sink) error {
	runID := uuid.NewString()
	log := logger.Run(runID, a.Name())
	start := time.Now()
	log.Info().Msg("run start")

	raw, err := a.Extract(ctx)
	if err != nil {
		log.Error().Err(err).Msg("extract failed")
		return fmt.Errorf("extract: %w", err)
	}

	table, err := a.Transform(raw)
	if err != nil {
		log.Error().Err(err).Msg("transform failed")
		return fmt.Errorf("transform: %w", err)
	}

	if err := s.Load(table); err != nil {
		log.Error().Err(err).Msg("load failed")
		return fmt.Errorf("load: %w", err)
	}

	log.Info().
		Int("rows", len(table.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("run done")
	return nil
}
