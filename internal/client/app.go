package client

import (
	"context"
	"errors"

	"github.com/buildnote/draftkeeper/internal/config"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/internal/tui"
)

type App struct {
	services *service.ClientServices
	ui       *tui.TUI
	cfg      *config.ClientConfig
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, ui *tui.TUI, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	if services == nil || ui == nil || cfg == nil {
		return nil, errors.New("services, ui and config are required")
	}

	return &App{
		services: services,
		ui:       ui,
		cfg:      cfg,
		logger:   log,
	}, nil
}

// Run starts the autosave job, hands control to the terminal editor, and
// flushes pending drafts on the way out.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.services.AutosaveJob.Start(ctx, a.cfg.Autosave.Debounce)
	defer a.services.AutosaveJob.Stop()

	return a.ui.Run(ctx, a.cfg.Project)
}
