package stress

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/benz9527/xtree/lib/infra"
)

// Config drives a batch of randomized tree workloads.
//
//	workers: 4
//	workloads: 16
//	keys: 1024
//	removeRatio: 0.5
//	seed: 42
//	verify: true
//	desc: false
type Config struct {
	// Workers is the ants pool capacity.
	Workers int `yaml:"workers"`
	// Workloads is the number of independent trees.
	Workloads int `yaml:"workloads"`
	// Keys is the upper bound of distinct keys per workload.
	Keys int `yaml:"keys"`
	// RemoveRatio is the share of the inserted keys removed again, in [0, 1].
	RemoveRatio float64 `yaml:"removeRatio"`
	// Seed makes the key sequences reproducible, 0 picks a random seed.
	Seed uint64 `yaml:"seed"`
	// Verify runs the tree validators after every operation,
	// otherwise only on the final state.
	Verify bool `yaml:"verify"`
	Desc   bool `yaml:"desc"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers:     4,
		Workloads:   16,
		Keys:        1024,
		RemoveRatio: 0.5,
		Verify:      true,
	}
}

func (cfg *Config) Validate() error {
	if cfg == nil {
		return infra.NewErrorStack("[stress] nil config")
	}
	if cfg.Workers <= 0 {
		return infra.NewErrorStackf("[stress] workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Workloads <= 0 {
		return infra.NewErrorStackf("[stress] workloads must be positive, got %d", cfg.Workloads)
	}
	if cfg.Keys <= 0 {
		return infra.NewErrorStackf("[stress] keys must be positive, got %d", cfg.Keys)
	}
	if cfg.RemoveRatio < 0 || cfg.RemoveRatio > 1 {
		return infra.NewErrorStackf("[stress] remove ratio out of [0, 1], got %v", cfg.RemoveRatio)
	}
	return nil
}

// LoadConfig overlays the YAML file onto DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[stress] read config")
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[stress] parse config")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
