package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/spotflux/infra/checkpoint"
	"github.com/kilianp07/spotflux/infra/entsoe"
	"github.com/kilianp07/spotflux/infra/influx"
	"github.com/kilianp07/spotflux/infra/metrics"
	"github.com/kilianp07/spotflux/infra/publish"
)

type Config struct {
	Entsoe     entsoe.Config     `json:"entsoe"`
	Influx     influx.Config     `json:"influx"`
	Checkpoint checkpoint.Config `json:"checkpoint"`
	Publish    publish.Config    `json:"publish"`
	Metrics    metrics.Config    `json:"metrics"`
	Export     ExportConfig      `json:"export"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Environment overrides, e.g. SPOTFLUX_ENTSOE__TOKEN -> entsoe.token
	if err := k.Load(env.Provider("SPOTFLUX_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "spotflux_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Entsoe.SetDefaults()
	cfg.Checkpoint.SetDefaults()
	cfg.Publish.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Export.SetDefaults()
	if err := cfg.Entsoe.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Influx.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Export.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
