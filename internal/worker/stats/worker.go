// Package stats runs the hourly snapshot worker that records platform
// safety counts and renders trend charts for operators.
package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trygglabs/trygg/internal/database"
	"github.com/trygglabs/trygg/internal/progress"
	"github.com/trygglabs/trygg/internal/setup"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/internal/worker/core"
	"github.com/trygglabs/trygg/pkg/utils"
	"go.uber.org/zap"
)

const (
	// defaultRetentionDays is how long hourly snapshots are kept when the
	// config does not say otherwise.
	defaultRetentionDays = 30

	// chartFileMode is the permission mode for rendered chart files.
	chartFileMode = 0o644
)

// Worker takes an hourly snapshot of the safety counts and maintains the
// snapshot history.
type Worker struct {
	db       database.Client
	reporter *core.StatusReporter
	bar      *progress.Bar
	chartDir string
	cfg      *config.Stats
	logger   *zap.Logger
}

// New creates a new statistics worker.
func New(app *setup.App, bar *progress.Bar, workerID string, logger *zap.Logger) *Worker {
	return &Worker{
		db:       app.DB,
		reporter: core.NewStatusReporter(app.StatusClient, core.StatsWorkerType, workerID, logger),
		bar:      bar,
		chartDir: app.LogManager.GetCurrentSessionDir(),
		cfg:      &app.Config.Worker.Stats,
		logger:   logger.Named("stats_worker"),
	}
}

// Start runs the snapshot loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Statistics worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	w.bar.SetTotal(100)

	for {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping statistics worker") {
			return
		}

		w.bar.Reset()
		w.reporter.SetHealthy(true)

		// Step 1: Wait until the start of the next hour (0%)
		w.bar.SetStepMessage("Waiting for next hour", 0)
		w.reporter.UpdateStatus("Waiting for next hour", 0)

		nextHour := time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
		if utils.ContextSleepUntilWithLog(ctx, nextHour, w.logger,
			"Context cancelled, stopping statistics worker") == utils.SleepCancelled {
			return
		}

		// Step 2: Snapshot current counts (25%)
		w.bar.SetStepMessage("Saving statistics", 25)
		w.reporter.UpdateStatus("Saving statistics", 25)

		if err := w.db.Service().Stats().SaveHourlyStats(ctx); err != nil {
			w.logger.Error("Failed to save hourly stats", zap.Error(err))
			w.reporter.SetHealthy(false)

			continue
		}

		// Step 3: Render trend charts (50%)
		w.bar.SetStepMessage("Rendering charts", 50)
		w.reporter.UpdateStatus("Rendering charts", 50)

		if w.cfg.ChartEnabled {
			// Chart rendering is best-effort; a failed render never loses
			// the snapshot that was just saved.
			if err := w.renderCharts(ctx); err != nil {
				w.logger.Warn("Failed to render statistics charts", zap.Error(err))
			}
		}

		// Step 4: Purge old snapshots (75%)
		w.bar.SetStepMessage("Purging old stats", 75)
		w.reporter.UpdateStatus("Purging old stats", 75)

		retention := w.cfg.RetentionDays
		if retention <= 0 {
			retention = defaultRetentionDays
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -retention)
		if err := w.db.Service().Stats().PurgeOldStats(ctx, cutoff); err != nil {
			w.logger.Error("Failed to purge old stats", zap.Error(err))
			w.reporter.SetHealthy(false)

			continue
		}

		// Step 5: Completed (100%)
		w.bar.SetStepMessage("Statistics updated", 100)
		w.reporter.UpdateStatus("Statistics updated", 100)

		w.logger.Info("Hourly statistics saved")
	}
}

// renderCharts draws the last day of snapshots as PNG files in the
// current session's log directory.
func (w *Worker) renderCharts(ctx context.Context) error {
	stats, err := w.db.Service().Stats().GetHourlyStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get hourly stats: %w", err)
	}

	incidentChart, caseloadChart, err := NewChartBuilder(stats).Build()
	if err != nil {
		return fmt.Errorf("failed to build charts: %w", err)
	}

	incidentPath := filepath.Join(w.chartDir, "incidents.png")
	if err := os.WriteFile(incidentPath, incidentChart.Bytes(), chartFileMode); err != nil {
		return fmt.Errorf("failed to write incident chart: %w", err)
	}

	caseloadPath := filepath.Join(w.chartDir, "caseload.png")
	if err := os.WriteFile(caseloadPath, caseloadChart.Bytes(), chartFileMode); err != nil {
		return fmt.Errorf("failed to write caseload chart: %w", err)
	}

	w.logger.Info("Rendered statistics charts",
		zap.String("incidents", incidentPath),
		zap.String("caseload", caseloadPath))

	return nil
}
