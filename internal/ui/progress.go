// Package ui renders a running curation task as a terminal progress view.
//
// The model drives the task through [tasks.Controller]: it starts the task on
// init, relays progress updates from the controller's channel into bubbletea
// messages, and maps q/ctrl+c onto cooperative cancellation.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ericfjmnz/encore/internal/tasks"
)

// ProgressModel runs one curation task and renders its progress.
type ProgressModel struct {
	ctx          context.Context
	controller   *tasks.Controller
	kind         string
	task         tasks.TaskFunc
	progressChan chan tasks.ProgressUpdate
	bar          progress.Model
	latest       tasks.ProgressUpdate
	status       tasks.Status
	width        int
	finished     bool
}

type progressMsg tasks.ProgressUpdate

type taskDoneMsg struct{}

// NewProgressModel creates a model that will run the given task kind on init.
func NewProgressModel(ctx context.Context, controller *tasks.Controller, kind string, task tasks.TaskFunc) *ProgressModel {
	return &ProgressModel{
		ctx:          ctx,
		controller:   controller,
		kind:         kind,
		task:         task,
		progressChan: make(chan tasks.ProgressUpdate, 50),
		bar:          progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the task on the controller and begins relaying progress.
func (m *ProgressModel) Init() tea.Cmd {
	if err := m.controller.Start(m.ctx, m.kind, m.task, m.progressChan); err != nil {
		m.status = tasks.Status{State: tasks.Failed, Reason: err.Error()}
		m.finished = true
		return tea.Quit
	}
	return tea.Batch(m.waitForProgress(), m.waitForDone())
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.finished {
				return m, tea.Quit
			}
			m.controller.Cancel()
			return m, nil
		}
		return m, nil

	case progressMsg:
		m.latest = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case taskDoneMsg:
		m.status = m.controller.Status()
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd
	}

	return m, nil
}

func (m *ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Running %s task", m.kind)))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(float64(m.latest.Percent) / 100))
	b.WriteString(fmt.Sprintf("  %d%%\n", m.latest.Percent))

	if m.latest.Message != "" {
		b.WriteString(m.latest.Message)
		b.WriteString("\n")
	}

	if m.finished {
		b.WriteString("\n")
		b.WriteString(renderStatus(m.status))
	} else {
		b.WriteString("\n")
		b.WriteString(styles.help.Render("q to cancel"))
	}

	return b.String()
}

// Status returns the terminal status once the model has quit.
func (m *ProgressModel) Status() tasks.Status {
	return m.status
}

func (m *ProgressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

func (m *ProgressModel) waitForDone() tea.Cmd {
	return func() tea.Msg {
		m.controller.Wait()
		close(m.progressChan)
		return taskDoneMsg{}
	}
}

func renderStatus(status tasks.Status) string {
	switch status.State {
	case tasks.Succeeded:
		line := styles.ok.Render("✓ Done")
		if status.Result != nil {
			line += fmt.Sprintf("\nMatched %d/%d, created %d playlist(s)",
				status.Result.Matched, status.Result.Requested, len(status.Result.PlaylistIDs))
			for _, id := range status.Result.PlaylistIDs {
				line += fmt.Sprintf("\n  • %s", id)
			}
		}
		return line
	case tasks.Cancelled:
		return styles.warn.Render("Cancelled")
	case tasks.Failed:
		return styles.err.Render(fmt.Sprintf("Failed: %s", status.Reason))
	default:
		return ""
	}
}
