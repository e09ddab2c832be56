// SPDX-License-Identifier: Apache-2.0

package config

// validate checks the merged [StructuredConfig]. The structured config is a
// superset view shared by both binaries, so only universally required
// invariants live here; role-specific checks belong to the server/client
// views.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Autosave.Debounce == 0 {
		return ErrInvalidAutosaveConfigs
	}

	return nil
}
