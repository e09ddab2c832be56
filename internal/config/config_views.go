package config

import (
	"fmt"
	"time"
)

// ServerConfig is the server-specific view assembled from [StructuredConfig].
type ServerConfig struct {
	// Server contains the HTTP listen settings.
	Server Server
	// Storage contains the PostgreSQL connection settings.
	Storage DB
	// Version is the application version exposed by the server.
	Version string
}

// ClientStorage contains the client's local draft store settings.
type ClientStorage struct {
	// DSN is the SQLite file path used for the draft store.
	DSN string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the annotation API base address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientAutosave contains the client's autosave settings.
type ClientAutosave struct {
	// Debounce is the quiet period before a draft write.
	Debounce time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Project is the project namespace the client operates in.
	Project string
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains the local draft store settings.
	Storage ClientStorage
	// Autosave contains draft autosave settings.
	Autosave ClientAutosave
}

// GetServerConfig builds and validates the server view from the merged
// structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		Server:  cfg.Server,
		Storage: cfg.Storage.DB,
		Version: cfg.App.Version,
	}
	if serverCfg.Server.RequestTimeout == 0 {
		serverCfg.Server.RequestTimeout = 30 * time.Second
	}

	return serverCfg, serverCfg.validate()
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Project: cfg.App.Project,
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN: cfg.Storage.Local.DSN,
		},
		Autosave: ClientAutosave{
			Debounce: cfg.Autosave.Debounce,
		},
	}
	if clientCfg.Adapter.RequestTimeout == 0 {
		clientCfg.Adapter.RequestTimeout = 15 * time.Second
	}
	if clientCfg.Autosave.Debounce == 0 {
		clientCfg.Autosave.Debounce = 2 * time.Second
	}

	return clientCfg, clientCfg.validate()
}
