package main

import (
	"fmt"

	"github.com/buildnote/draftkeeper/internal/adapter"
	"github.com/buildnote/draftkeeper/internal/client"
	"github.com/buildnote/draftkeeper/internal/config"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("draftkeeper-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	localStorage, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	// ui is assigned before the autosave job starts
	var ui *tui.TUI
	services := service.NewClientServices(localStorage, serverAdapter, log, func(err error) {
		ui.NotifyAutosaveError(err)
	})

	ui, err = tui.New(services, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, ui, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
