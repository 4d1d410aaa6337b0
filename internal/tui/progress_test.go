package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voyagent/voyagent/internal/supervisor"
	"github.com/voyagent/voyagent/pkg/models"
)

func TestProgress_ProviderLifecycle(t *testing.T) {
	p := NewProgress("Madrid")

	p.apply(supervisor.Event{Type: supervisor.EventProviderStarted, Provider: models.ProviderFlights})
	p.apply(supervisor.Event{Type: supervisor.EventProviderRetrying, Provider: models.ProviderFlights, Attempt: 1})
	p.apply(supervisor.Event{Type: supervisor.EventProviderCompleted, Provider: models.ProviderFlights, Elapsed: 40 * time.Millisecond})
	p.apply(supervisor.Event{Type: supervisor.EventProviderStarted, Provider: models.ProviderWeather})
	p.apply(supervisor.Event{Type: supervisor.EventProviderFailed, Provider: models.ProviderWeather, Attempt: 3})

	if len(p.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(p.rows))
	}
	if p.rows[0].status != "done" {
		t.Errorf("flights status = %s, want done", p.rows[0].status)
	}
	if p.rows[1].status != "failed" || p.rows[1].attempt != 3 {
		t.Errorf("weather row = %+v, want failed after 3", p.rows[1])
	}
	if p.warnings != 1 {
		t.Errorf("warnings = %d, want 1", p.warnings)
	}

	view := p.View()
	if !strings.Contains(view, "Planning trip to Madrid") {
		t.Errorf("view missing header:\n%s", view)
	}
	if !strings.Contains(view, "failed after 3 attempt(s)") {
		t.Errorf("view missing failure detail:\n%s", view)
	}
}

func TestProgress_DoneQuits(t *testing.T) {
	p := NewProgress("Madrid")
	resp := &models.ConsolidatedResponse{Destination: "Madrid", Elapsed: 120 * time.Millisecond}

	model, cmd := p.Update(PlanDoneMsg{Response: resp})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	got := model.(*Progress)
	if !got.done || got.Response() != resp {
		t.Error("done state not recorded")
	}
	if !strings.Contains(got.View(), "plan ready") {
		t.Errorf("view missing completion line:\n%s", got.View())
	}
}

func TestProgress_ErrorShown(t *testing.T) {
	p := NewProgress("Madrid")
	model, _ := p.Update(PlanDoneMsg{Err: errors.New("all providers failed")})
	got := model.(*Progress)
	if got.Err() == nil {
		t.Fatal("error not recorded")
	}
	if !strings.Contains(got.View(), "plan failed") {
		t.Errorf("view missing failure line:\n%s", got.View())
	}
}

func TestProgress_QuitKey(t *testing.T) {
	p := NewProgress("Madrid")
	model, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit on q")
	}
	if view := model.(*Progress).View(); view != "" {
		t.Errorf("quitting view should be empty, got %q", view)
	}
}
