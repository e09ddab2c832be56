package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	services *service.ClientServices
	logger   *logger.Logger

	mu      sync.Mutex
	program *tea.Program
}

func New(services *service.ClientServices, log *logger.Logger) (*TUI, error) {
	if services == nil {
		return nil, errors.New("client services are required")
	}
	return &TUI{services: services, logger: log}, nil
}

// NotifyAutosaveError forwards a background autosave failure into the running
// editor so the degraded state shows up in the status line. Safe to call when
// no program is running.
func (t *TUI) NotifyAutosaveError(err error) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()

	if p == nil || err == nil {
		return
	}
	p.Send(autosaveErrMsg{err: err})
}

// Run drives the editor until the user quits. project pre-fills the resource
// id prompt with the configured project namespace.
func (t *TUI) Run(ctx context.Context, project string) error {
	model := newAppModel(ctx, t.services, project)
	p := tea.NewProgram(model, tea.WithAltScreen())

	t.mu.Lock()
	t.program = p
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.program = nil
		t.mu.Unlock()
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if _, ok := finalModel.(appModel); !ok {
		return tea.ErrProgramKilled
	}
	return nil
}
