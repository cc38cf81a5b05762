package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/trygglabs/trygg/internal/progress"
	"github.com/trygglabs/trygg/internal/redis"
	"github.com/trygglabs/trygg/internal/setup"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/internal/setup/telemetry"
	"github.com/trygglabs/trygg/internal/worker/core"
	"github.com/trygglabs/trygg/internal/worker/escalation"
	"github.com/trygglabs/trygg/internal/worker/stats"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// WorkerLogDir specifies where worker log files are stored.
const WorkerLogDir = "logs/worker_logs"

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the trygg workers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of workers to start",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  core.EscalationWorkerType,
				Usage: "Start crisis escalation workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, core.EscalationWorkerType, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  core.StatsWorkerType,
				Usage: "Start the statistics snapshot worker",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, core.StatsWorkerType, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Show worker heartbeats",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return showStatus(ctx)
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers starts multiple instances of a worker type.
func runWorkers(ctx context.Context, workerType string, count int64) {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceWorker, WorkerLogDir, workerType, "")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	// Initialize progress bars
	bars := make([]*progress.Bar, count)
	for i := range count {
		bars[i] = progress.NewBar(100, 25, fmt.Sprintf("Worker %d", i))
	}

	// Create and start the renderer
	renderer := progress.NewRenderer(bars)
	go renderer.Render()

	// Start workers
	var wg sync.WaitGroup

	for i := range count {
		wg.Add(1)

		go func(n int64) {
			defer wg.Done()

			// The worker ID shows up in both the heartbeat key and the log
			// file name, so the two can be matched up during an incident.
			workerID := fmt.Sprintf("%s_%d", app.LogManager.GetInstanceID()[:8], n)
			workerLogger := app.LogManager.GetWorkerLogger(
				fmt.Sprintf("%s_worker_%s", workerType, workerID),
			)

			// Get progress bar for this worker
			bar := bars[n]

			var w interface{ Start(context.Context) }

			switch workerType {
			case core.EscalationWorkerType:
				ew, err := escalation.New(app, bar, workerID, workerLogger)
				if err != nil {
					log.Fatalf("Failed to create escalation worker: %v", err)
				}

				w = ew
			case core.StatsWorkerType:
				w = stats.New(app, bar, workerID, workerLogger)
			default:
				log.Fatalf("Invalid worker type: %s", workerType)
			}

			runWorker(ctx, w, workerLogger)
		}(i)
	}

	log.Printf("Started %d %s workers", count, workerType)
	wg.Wait()
	renderer.Stop()
	log.Println("All workers have finished. Exiting.")
}

// runWorker runs a single worker in a loop with error recovery.
func runWorker(ctx context.Context, w interface{ Start(context.Context) }, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping worker")
			return
		default:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Worker execution failed",
							zap.String("worker_type", fmt.Sprintf("%T", w)),
							zap.Any("panic", r),
						)
						logger.Info("Restarting worker in 5 seconds...")
						time.Sleep(5 * time.Second)
					}
				}()

				logger.Info("Starting worker")
				w.Start(ctx)
			}()

			if ctx.Err() != nil {
				continue
			}

			logger.Warn("Worker stopped unexpectedly",
				zap.String("worker_type", fmt.Sprintf("%T", w)),
			)
			time.Sleep(5 * time.Second)
		}
	}
}

// showStatus prints the heartbeat entries reported by running workers.
func showStatus(ctx context.Context) error {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	redisManager := redis.NewManager(&cfg.Common.Redis, zap.NewNop())
	defer redisManager.Close()

	client, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	statuses, err := core.NewMonitor(client, zap.NewNop()).GetAllStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to get worker statuses: %w", err)
	}

	if len(statuses) == 0 {
		fmt.Println("No workers are reporting.")
		return nil
	}

	now := time.Now().UTC()

	for _, status := range statuses {
		health := "healthy"

		switch {
		case status.Stale(now):
			health = "stale"
		case !status.IsHealthy:
			health = "unhealthy"
		}

		fmt.Printf("%-12s %-14s %-9s %3d%%  %s (last seen %s ago)\n",
			status.WorkerType, status.WorkerID, health, status.Progress,
			status.CurrentTask, now.Sub(status.LastSeen).Round(time.Second))
	}

	return nil
}
