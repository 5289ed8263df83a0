package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/puterbatch/internal/config"
	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/planner"
	"github.com/phrazzld/puterbatch/internal/platform/filestore"
	"github.com/phrazzld/puterbatch/internal/platform/logger"
	"github.com/phrazzld/puterbatch/internal/platform/metrics"
	"github.com/phrazzld/puterbatch/internal/platform/puter"
	"github.com/phrazzld/puterbatch/internal/prompt"
	"github.com/phrazzld/puterbatch/internal/redact"
	"github.com/phrazzld/puterbatch/internal/service"
	"github.com/phrazzld/puterbatch/internal/task"
	"golang.org/x/sync/errgroup"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "puterbatch"

// application holds the wired dependencies of one run.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	pool    *task.WorkerPool
	service *service.BatchService
}

// newApplication wires the run's components from configuration.
func newApplication(cfg *config.Config, log *slog.Logger, opts ...puter.Option) (*application, error) {
	collector := metrics.NewCollector(metricsNamespace)

	client, err := puter.NewClient(log, cfg.LLM, append([]puter.Option{puter.WithMetrics(collector)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create puter client: %w", err)
	}

	catalog, err := prompt.LoadCatalog(cfg.Prompt.CatalogPath)
	if err != nil {
		return nil, err
	}

	artifacts, err := filestore.New(cfg.Run.ResultDir, log)
	if err != nil {
		return nil, err
	}

	pl, err := planner.New(catalog, artifacts, planner.Config{
		ShotNumber: cfg.Prompt.ShotNumber,
		ShotType:   cfg.Prompt.ShotType,
	}, log)
	if err != nil {
		return nil, err
	}

	pool := task.NewWorkerPool(nil, task.WorkerPoolConfig{
		WorkerCount: cfg.Run.WorkerCount,
		Metrics:     collector,
	}, log)

	svc, err := service.NewBatchService(service.Dependencies{
		Authenticator: client,
		Completer:     client,
		Planner:       pl,
		Store:         artifacts,
		Dispatcher:    pool,
		Metrics:       collector,
	}, service.Options{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		QuestionPath: cfg.Run.QuestionPath,
		Params: domain.SamplingParams{
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		},
		Generations: cfg.Run.Generations,
	}, log)
	if err != nil {
		return nil, err
	}

	return &application{
		config:  cfg,
		logger:  log,
		metrics: collector,
		pool:    pool,
		service: svc,
	}, nil
}

// runBatch sets up logging, wires the application and runs it to the end.
func runBatch(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	log := logger.New(stdout, cfg.Log.Level)
	slog.SetDefault(log)

	log.Info("configuration loaded",
		"model", cfg.LLM.ModelName,
		"base_url", cfg.LLM.BaseURL,
		"workers", cfg.Run.WorkerCount,
		"question_path", cfg.Run.QuestionPath,
		"result_dir", cfg.Run.ResultDir,
		"auth", cfg.Auth)

	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	summary, err := app.run(ctx, stderr)
	elapsed := time.Since(start)
	if mErr := app.metrics.WriteTextfile(cfg.Run.MetricsFile); mErr != nil {
		log.Error("failed to write metrics", "path", cfg.Run.MetricsFile, "error", mErr)
	}
	if err != nil {
		log.Error("batch run failed", "error", redact.Error(err))
		printElapsed(stderr, elapsed)
		return errors.New(redact.Error(err))
	}

	printSummary(stderr, summary)
	printElapsed(stderr, elapsed)
	return nil
}

// run executes the batch with the configured progress display.
func (a *application) run(ctx context.Context, out io.Writer) (*service.Summary, error) {
	switch a.config.Run.Progress {
	case "bar":
		return a.runWithProgressBar(ctx, out)
	case "log":
		a.pool.SetProgressHandler(func(p task.Progress) {
			a.logger.Info("progress",
				"completed", p.Completed,
				"total", p.Total,
				"succeeded", p.Succeeded,
				"failed", p.Failed)
		})
	}
	return a.service.Run(ctx)
}

// runWithProgressBar drives the batch and the terminal UI side by side.
func (a *application) runWithProgressBar(ctx context.Context, out io.Writer) (*service.Summary, error) {
	program := newProgressProgram(ctx, out)
	a.pool.SetProgressHandler(func(p task.Progress) {
		program.Send(progressMsg(p))
	})

	var summary *service.Summary
	var runErr error

	// the display never cancels the run, so no shared group context
	var g errgroup.Group
	g.Go(func() error {
		summary, runErr = a.service.Run(ctx)
		program.Send(runDoneMsg{})
		return nil
	})
	g.Go(func() error {
		return runProgressProgram(program)
	})

	if err := g.Wait(); err != nil {
		a.logger.Warn("progress display stopped", "error", err)
	}
	return summary, runErr
}
