package planner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/prompt"
	"github.com/phrazzld/puterbatch/internal/store"
)

// ErrMalformedRecord is returned when an input line is not valid JSON.
var ErrMalformedRecord = errors.New("malformed record")

// PromptBuilder produces few-shot examples and the final prompt text.
// Errors that wrap *prompt.ConstructionError skip the record; any other
// error aborts planning.
type PromptBuilder interface {
	GenerateShot(api string, number int, shotType string) ([]domain.Shot, error)
	GeneratePrompt(api, question string, shots []domain.Shot, shotType string) (string, error)
}

// Config controls how prompts are built.
type Config struct {
	ShotNumber int
	ShotType   string
}

// PlanStats counts how every input line was classified.
type PlanStats struct {
	Lines       int
	AlreadyDone int
	Skipped     int
	Planned     int
}

// Planner builds tasks for records that have no artifact yet.
type Planner struct {
	builder   PromptBuilder
	artifacts store.ArtifactStore
	config    Config
	logger    *slog.Logger
}

// New creates a Planner.
func New(builder PromptBuilder, artifacts store.ArtifactStore, config Config, logger *slog.Logger) (*Planner, error) {
	if builder == nil {
		return nil, errors.New("prompt builder cannot be nil")
	}
	if artifacts == nil {
		return nil, errors.New("artifact store cannot be nil")
	}
	if config.ShotNumber < 0 {
		return nil, fmt.Errorf("shot number cannot be negative: %d", config.ShotNumber)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Planner{
		builder:   builder,
		artifacts: artifacts,
		config:    config,
		logger:    logger.With("component", "planner"),
	}, nil
}

// PlanFile opens path and plans its records.
func (p *Planner) PlanFile(ctx context.Context, path string) ([]domain.Task, PlanStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, PlanStats{}, fmt.Errorf("open question file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.Warn("failed to close question file", "path", path, "error", cerr)
		}
	}()

	return p.Plan(ctx, f)
}

// Plan reads one JSON record per line. The task id is the zero-based line
// index, so blank and skipped lines still consume an id. Tasks are returned
// in line order.
func (p *Planner) Plan(ctx context.Context, records io.Reader) ([]domain.Task, PlanStats, error) {
	var (
		tasks []domain.Task
		stats PlanStats
	)

	reader := bufio.NewReader(records)
	for id := 0; ; id++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, stats, fmt.Errorf("read question file at line %d: %w", id, readErr)
		}
		if errors.Is(readErr, io.EOF) && len(line) == 0 {
			break
		}
		stats.Lines++

		task, ok, err := p.planLine(id, line)
		switch {
		case err != nil:
			return nil, stats, err
		case task != nil:
			tasks = append(tasks, *task)
			stats.Planned++
		case ok:
			stats.AlreadyDone++
		default:
			stats.Skipped++
		}

		if readErr != nil {
			break
		}
	}

	p.logger.Info("planning complete",
		"lines", stats.Lines,
		"already_done", stats.AlreadyDone,
		"skipped", stats.Skipped,
		"planned", stats.Planned)

	return tasks, stats, nil
}

// planLine classifies one line. It returns the task to run, or done=true
// when the artifact already exists, or neither when the line is skipped.
func (p *Planner) planLine(id int, line []byte) (task *domain.Task, done bool, err error) {
	exists, err := p.artifacts.Exists(id)
	if err != nil {
		return nil, false, fmt.Errorf("check artifact for line %d: %w", id, err)
	}
	if exists {
		return nil, true, nil
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false, nil
	}

	q, err := domain.ParseQuestion(line)
	if err != nil {
		return nil, false, fmt.Errorf("%w at line %d: %w", ErrMalformedRecord, id, err)
	}

	logger := p.logger.With("task_id", id, "api", q.API)
	if err := q.Validate(); err != nil {
		logger.Warn("skipping invalid record", "error", err)
		return nil, false, nil
	}

	shots, err := p.builder.GenerateShot(q.API, p.config.ShotNumber, p.config.ShotType)
	if err != nil {
		return nil, false, p.buildError(logger, id, err)
	}

	text, err := p.builder.GeneratePrompt(q.API, q.Question, shots, p.config.ShotType)
	if err != nil {
		return nil, false, p.buildError(logger, id, err)
	}

	t, err := domain.NewTask(id, text, q.API)
	if err != nil {
		logger.Warn("skipping record with unusable prompt", "error", err)
		return nil, false, nil
	}

	return &t, false, nil
}

// buildError logs and swallows prompt construction failures, returning
// any other error annotated with the line.
func (p *Planner) buildError(logger *slog.Logger, id int, err error) error {
	if prompt.IsConstructionError(err) {
		logger.Warn("skipping record, no prompt could be built", "error", err)
		return nil
	}
	return fmt.Errorf("build prompt for line %d: %w", id, err)
}
