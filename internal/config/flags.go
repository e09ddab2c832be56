package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-draft-db local draft store path
//	-adapter-address annotation API base address
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-autosave-debounce autosave quiet period (e.g., "2s")
//	-project project namespace for the client
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var draftDBPath string
	var adapterAddress string
	var requestTimeout time.Duration
	var autosaveDebounce time.Duration
	var project string
	var jsonConfigPath string

	flag.StringVar(&serverAddress, "a", "", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&draftDBPath, "draft-db", "", "Local draft store path")
	flag.StringVar(&adapterAddress, "adapter-address", "", "Annotation API base address")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&autosaveDebounce, "autosave-debounce", 0, "Autosave quiet period (e.g., 2s)")
	flag.StringVar(&project, "project", "", "Project namespace")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Project: project,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Local: Local{
				DSN: draftDBPath,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			RequestTimeout: requestTimeout,
		},
		Autosave: Autosave{
			Debounce: autosaveDebounce,
		},
		JSONFilePath: jsonConfigPath,
	}
}
