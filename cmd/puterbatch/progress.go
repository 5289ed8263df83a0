package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phrazzld/puterbatch/internal/redact"
	"github.com/phrazzld/puterbatch/internal/service"
	"github.com/phrazzld/puterbatch/internal/task"
)

const (
	maxBarWidth = 60
	barPadding  = 2
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type progressMsg task.Progress

type runDoneMsg struct{}

type progressModel struct {
	bar     progress.Model
	current task.Progress
	started time.Time
	done    bool
}

func newProgressModel() progressModel {
	return progressModel{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		started: time.Now(),
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-barPadding*2-20, maxBarWidth)
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil
	case progressMsg:
		m.current = task.Progress(msg)
		return m, nil
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	pad := strings.Repeat(" ", barPadding)
	if m.current.Total == 0 {
		return pad + labelStyle.Render("Preparing batch...") + "\n"
	}

	percent := float64(m.current.Completed) / float64(m.current.Total)
	status := fmt.Sprintf("%d/%d", m.current.Completed, m.current.Total)
	if m.current.Failed > 0 {
		status += " " + failStyle.Render(fmt.Sprintf("(%d failed)", m.current.Failed))
	}

	return pad + m.bar.ViewAs(percent) + " " + status + " " +
		mutedStyle.Render(time.Since(m.started).Round(time.Second).String()) + "\n"
}

func newProgressProgram(ctx context.Context, out io.Writer) *tea.Program {
	return tea.NewProgram(
		newProgressModel(),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)
}

// runProgressProgram runs the UI until the batch reports completion. An
// interrupted context is not an error of the display.
func runProgressProgram(p *tea.Program) error {
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printSummary reports the plan, every failed task and the elapsed time.
func printSummary(w io.Writer, s *service.Summary) {
	if s == nil {
		return
	}

	fmt.Fprintf(w, "%s %d lines, %d already done, %d skipped, %d planned\n",
		labelStyle.Render("Plan:"),
		s.Plan.Lines, s.Plan.AlreadyDone, s.Plan.Skipped, s.Plan.Planned)

	if s.Report == nil {
		return
	}

	for _, f := range s.Report.Failures {
		fmt.Fprintf(w, "%s task %d: %s\n", failStyle.Render("FAILED"), f.ID, redact.Error(f.Err))
	}

	result := successStyle.Render(fmt.Sprintf("%d succeeded", s.Report.Succeeded))
	if s.Report.Failed > 0 {
		result += ", " + failStyle.Render(fmt.Sprintf("%d failed", s.Report.Failed))
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Done:"), result)
}

func printElapsed(w io.Writer, d time.Duration) {
	fmt.Fprintf(w, "Elapsed time: %s\n", d.Round(time.Millisecond))
}
