package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// configBuilder collects configuration layers in precedence order. Merging
// only fills fields still empty, so a layer added earlier wins over a later
// one.
type configBuilder struct {
	layers []*StructuredConfig
	err    error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{}
}

func (b *configBuilder) add(layer *StructuredConfig) {
	b.layers = append(b.layers, layer)
}

func (b *configBuilder) withEnv() *configBuilder {
	layer := &StructuredConfig{}
	if err := parseEnv(layer); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.add(layer)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	b.add(ParseFlags())
	return b
}

// withJSON loads the JSON file only when an already-collected layer names
// one; without a path the layer is skipped entirely.
func (b *configBuilder) withJSON() *configBuilder {
	path := b.jsonPath()
	if path == "" {
		return b
	}

	layer, err := parseJSON(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.add(layer)
	return b
}

func (b *configBuilder) jsonPath() string {
	path := ""
	for _, layer := range b.layers {
		if layer.JSONFilePath != "" {
			path = layer.JSONFilePath
		}
	}
	return path
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("collecting config layers: %w", b.err)
	}

	merged := new(StructuredConfig)
	for _, layer := range b.layers {
		if err := mergo.Merge(merged, layer); err != nil {
			return nil, fmt.Errorf("merging config layers: %w", err)
		}
	}

	return merged, merged.validate()
}
