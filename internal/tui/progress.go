// Package tui provides the terminal progress display for plan runs.
//
// The display is read-only: it consumes supervisor events, shows one line
// per provider and the current pipeline stage, and exits when the plan
// completes. Users can quit early with 'q' or Ctrl+C.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voyagent/voyagent/internal/supervisor"
	"github.com/voyagent/voyagent/pkg/models"
)

// PlanEventMsg wraps a supervisor event for the display.
type PlanEventMsg struct {
	Event supervisor.Event
}

// PlanDoneMsg signals that the plan call returned.
type PlanDoneMsg struct {
	Response *models.ConsolidatedResponse
	Err      error
}

// providerRow is the display state of one provider.
type providerRow struct {
	id      models.ProviderID
	status  string // pending, running, retrying, done, failed
	attempt int
	elapsed time.Duration
}

// Progress is the bubbletea model for a plan run.
type Progress struct {
	destination string
	spinner     spinner.Model
	rows        []*providerRow
	stage       string
	warnings    int
	done        bool
	err         error
	response    *models.ConsolidatedResponse
	quitting    bool

	headerStyle lipgloss.Style
	okStyle     lipgloss.Style
	failStyle   lipgloss.Style
	dimStyle    lipgloss.Style
}

// NewProgress creates the display model for a trip to the destination.
func NewProgress(destination string) *Progress {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Progress{
		destination: destination,
		spinner:     sp,
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		okStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		failStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		dimStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Init implements tea.Model.
func (p *Progress) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update implements tea.Model.
func (p *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			p.quitting = true
			return p, tea.Quit
		}

	case PlanEventMsg:
		p.apply(msg.Event)
		return p, nil

	case PlanDoneMsg:
		p.done = true
		p.err = msg.Err
		p.response = msg.Response
		return p, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *Progress) apply(ev supervisor.Event) {
	switch ev.Type {
	case supervisor.EventProviderStarted:
		p.row(ev.Provider).status = "running"
	case supervisor.EventProviderRetrying:
		row := p.row(ev.Provider)
		row.status = "retrying"
		row.attempt = ev.Attempt
	case supervisor.EventProviderCompleted:
		row := p.row(ev.Provider)
		row.status = "done"
		row.elapsed = ev.Elapsed
	case supervisor.EventProviderFailed:
		row := p.row(ev.Provider)
		row.status = "failed"
		row.attempt = ev.Attempt
		p.warnings++
	case supervisor.EventStageStarted:
		p.stage = ev.Stage
	}
}

func (p *Progress) row(id models.ProviderID) *providerRow {
	for _, r := range p.rows {
		if r.id == id {
			return r
		}
	}
	r := &providerRow{id: id, status: "pending"}
	p.rows = append(p.rows, r)
	return r
}

// View implements tea.Model.
func (p *Progress) View() string {
	if p.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(p.headerStyle.Render(fmt.Sprintf("Planning trip to %s", p.destination)))
	b.WriteString("\n\n")

	for _, row := range p.rows {
		var marker, detail string
		switch row.status {
		case "done":
			marker = p.okStyle.Render("✓")
			detail = p.dimStyle.Render(row.elapsed.Round(time.Millisecond).String())
		case "failed":
			marker = p.failStyle.Render("✗")
			detail = p.failStyle.Render(fmt.Sprintf("failed after %d attempt(s)", row.attempt))
		case "retrying":
			marker = p.spinner.View()
			detail = p.dimStyle.Render(fmt.Sprintf("retrying (attempt %d)", row.attempt))
		case "running":
			marker = p.spinner.View()
		default:
			marker = p.dimStyle.Render("·")
		}
		fmt.Fprintf(&b, " %s %-12s %s\n", marker, row.id, detail)
	}

	if p.stage != "" && !p.done {
		fmt.Fprintf(&b, "\n %s %s\n", p.spinner.View(), p.dimStyle.Render(p.stage))
	}
	if p.done {
		b.WriteString("\n")
		if p.err != nil {
			b.WriteString(p.failStyle.Render(fmt.Sprintf(" plan failed: %v", p.err)))
		} else if p.response != nil {
			line := fmt.Sprintf(" plan ready in %s", p.response.Elapsed.Round(time.Millisecond))
			if n := len(p.response.Warnings); n > 0 {
				line += fmt.Sprintf(", %d warning(s)", n)
			}
			b.WriteString(p.okStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Response returns the final response once the display has exited.
func (p *Progress) Response() *models.ConsolidatedResponse {
	return p.response
}

// Err returns the final plan error, if any.
func (p *Progress) Err() error {
	return p.err
}

// NewProgram wraps the model in a bubbletea program.
func NewProgram(destination string) (*tea.Program, *Progress) {
	app := NewProgress(destination)
	return tea.NewProgram(app), app
}

// Forward pumps supervisor events into the program until the channel
// closes. Run it in a goroutine alongside the plan call.
func Forward(p *tea.Program, events <-chan supervisor.Event) {
	for ev := range events {
		p.Send(PlanEventMsg{Event: ev})
	}
}
