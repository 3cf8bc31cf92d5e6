package main

import (
	"os"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

const configRelPath = "jsobj/config.yaml"

type Config struct {
	LogLevel     string `yaml:"log_level"`
	MaxCallDepth int    `yaml:"max_call_depth"`

	Run     RunConfig     `yaml:"run"`
	Test262 Test262Config `yaml:"test262"`

	// Source is where the config was read from, empty for the defaults.
	Source string `yaml:"-"`
}

type RunConfig struct {
	Format string `yaml:"format"`
	Depth  int    `yaml:"depth"`
	Strict bool   `yaml:"strict"`
}

type Test262Config struct {
	Root    string   `yaml:"root"`
	Workers int      `yaml:"workers"`
	Harness []string `yaml:"harness"`
	// CaseList names a file listing the cases to run, one JSON array
	CaseList string `yaml:"case_list"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:     "warn",
		MaxCallDepth: objmodel.DefaultMaxCallDepth,
		Run: RunConfig{
			Format: "yaml",
			Depth:  2,
		},
		Test262: Test262Config{
			Workers:  4,
			Harness:  []string{"harness/sta.js", "harness/assert.js"},
			CaseList: "testConfig.json",
		},
	}
}

// LoadConfig reads the config file at path, or the one found in the XDG
// config directories when path is empty. Settings the file leaves out keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(configRelPath)
		if err != nil {
			// no config file anywhere
			return defaultConfig(), nil
		}
		path = found
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	return parseConfig(path, raw)
}

func parseConfig(path string, raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return Config{}, errors.Wrap(err, "merging config defaults")
	}
	cfg.Source = path
	return cfg, nil
}
