// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/cadbatch/internal/batch"
	"github.com/matt-FFFFFF/cadbatch/internal/progress"
)

// ItemStatus represents the current state of a drawing in the TUI.
type ItemStatus int

const (
	StatusPending ItemStatus = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

// String returns a string representation of the item status.
func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const durationRounding = 100 * time.Millisecond

// itemRow is one drawing's line in the display. Rows appear in the order
// their items start, which is the batch input order.
type itemRow struct {
	name     string
	status   ItemStatus
	detail   string
	started  time.Time
	finished time.Time
}

func (r *itemRow) elapsed() time.Duration {
	if r.started.IsZero() {
		return 0
	}

	if r.finished.IsZero() {
		return time.Since(r.started)
	}

	return r.finished.Sub(r.started)
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Detail  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Detail: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// Model represents the TUI application state.
type Model struct {
	rows      []*itemRow
	rowIndex  map[string]*itemRow
	total     int
	current   int
	completed bool
	summary   string
	result    *batch.Result
	width     int
	height    int
	quitting  bool
	mutex     sync.RWMutex

	styles *Styles
}

// NewModel creates a new TUI model.
func NewModel() *Model {
	return &Model{
		rowIndex: make(map[string]*itemRow),
		styles:   NewStyles(),
	}
}

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg carries the finalized result once the batch returns.
type RunCompletedMsg struct {
	Result *batch.Result
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mutex.Unlock()

		return m, nil

	case ProgressEventMsg:
		m.processEvent(msg.Event)
		return m, nil

	case RunCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.result = msg.Result
		m.mutex.Unlock()

		return m, nil

	case tea.QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// getOrCreateRow safely gets or creates the row for a drawing.
func (m *Model) getOrCreateRow(name string) *itemRow {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if row, exists := m.rowIndex[name]; exists {
		return row
	}

	row := &itemRow{name: name}
	m.rowIndex[name] = row
	m.rows = append(m.rows, row)

	return row
}

// processEvent handles incoming progress events.
func (m *Model) processEvent(event progress.Event) {
	switch event.Type {
	case progress.EventBatchStarted:
		m.mutex.Lock()
		m.total = event.Total
		m.mutex.Unlock()

	case progress.EventItemStarted:
		row := m.getOrCreateRow(event.Drawing)

		m.mutex.Lock()
		row.status = StatusRunning
		row.started = event.Timestamp
		m.current = event.Current
		m.mutex.Unlock()

	case progress.EventItemFinished:
		row := m.getOrCreateRow(event.Drawing)

		m.mutex.Lock()
		row.finished = event.Timestamp

		if event.Failed {
			row.status = StatusFailed
			row.detail = event.Message
		} else {
			row.status = StatusSucceeded
		}
		m.mutex.Unlock()

	case progress.EventBatchFinished:
		m.mutex.Lock()
		m.completed = true
		m.summary = event.Message
		m.mutex.Unlock()

	case progress.EventLog:
		// Log lines go to the redirected log writer, not the TUI.
	}
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("🗜  CAD Batch Orchestration"))
	view.WriteString("\n")

	for _, row := range m.rows {
		m.renderRow(&view, row)
	}

	if m.total > 0 {
		view.WriteString("\n")
		view.WriteString(m.styles.Detail.Render(
			fmt.Sprintf("%d of %d drawings", m.current, m.total)))
		view.WriteString("\n")
	}

	if m.completed {
		view.WriteString("\n")
		view.WriteString(m.renderSummary())
		view.WriteString("\n")
	}

	helpText := "'q' to quit"
	if m.completed {
		helpText = "'q' to quit and return to terminal"
	}

	view.WriteString(m.styles.Help.Render(helpText))

	return view.String()
}

// renderRow renders a single drawing's line.
func (m *Model) renderRow(b *strings.Builder, row *itemRow) {
	var (
		icon       string
		styledName string
	)

	switch row.status {
	case StatusPending:
		icon = "⏳"
		styledName = m.styles.Pending.Render(row.name)
	case StatusRunning:
		icon = "⚡"
		styledName = m.styles.Running.Render(row.name)
	case StatusSucceeded:
		icon = "✅"
		styledName = m.styles.Success.Render(row.name)
	case StatusFailed:
		icon = "❌"
		styledName = m.styles.Failed.Render(row.name)
	default:
		icon = "❓"
		styledName = m.styles.Pending.Render(row.name)
	}

	line := fmt.Sprintf("%s %s", icon, styledName)

	if elapsed := row.elapsed(); elapsed > 0 {
		line += m.styles.Detail.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding)))
	}

	if row.detail != "" && row.status == StatusFailed {
		line += " " + m.styles.Failed.Render(row.detail)
	}

	b.WriteString(line)
	b.WriteString("\n")
}

// renderSummary renders the completion line once the run has finished.
func (m *Model) renderSummary() string {
	switch {
	case m.result != nil && m.result.Cancelled:
		return m.styles.Failed.Render(fmt.Sprintf(
			"⚠️  Run cancelled: %d of %d attempted", m.result.Attempted, m.result.Total))
	case m.result != nil && m.result.HasFailures():
		return m.styles.Failed.Render(fmt.Sprintf(
			"⚠️  Run completed with %d failed drawings", len(m.result.Failed)))
	case m.result != nil:
		return m.styles.Success.Render("✅ All drawings succeeded")
	case m.summary != "":
		return m.styles.Detail.Render(m.summary)
	default:
		return m.styles.Detail.Render("Run complete")
	}
}
