package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the stanza configuration file (~/.config/stanza/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	// Tokenizer assets
	VocabJSON string `yaml:"vocab_json"`
	Merges    string `yaml:"merges"`

	// Decoding defaults
	Sampler       string   `yaml:"sampler"`
	MaxLength     *int64   `yaml:"max_length"`
	TopK          *int64   `yaml:"top_k"`
	BeamWidth     *int64   `yaml:"beam_width"`
	Alpha         *float64 `yaml:"alpha"`
	PenaltyWindow *int64   `yaml:"penalty_window"`
	Seed          *int64   `yaml:"seed"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stanza", "config.yaml")
}

// applyGenerateConfig applies config file defaults to generate command
// variables when the corresponding CLI flag was not explicitly set.
func applyGenerateConfig(c *cli.Command, cfg Config,
	sampler *string, maxLength, topK, beamWidth *int64, alpha *float64,
	penaltyWindow, seed *int64,
) {
	applyCommonConfig(c, cfg)
	if cfg.Sampler != "" && !c.IsSet("sampler") {
		*sampler = cfg.Sampler
	}
	if cfg.MaxLength != nil && !c.IsSet("max-length") && !c.IsSet("max_length") {
		*maxLength = *cfg.MaxLength
	}
	if cfg.TopK != nil && !c.IsSet("top-k") && !c.IsSet("top_k") && !c.IsSet("topk") {
		*topK = *cfg.TopK
	}
	if cfg.BeamWidth != nil && !c.IsSet("beam-width") && !c.IsSet("beam_width") {
		*beamWidth = *cfg.BeamWidth
	}
	if cfg.Alpha != nil && !c.IsSet("alpha") {
		*alpha = *cfg.Alpha
	}
	if cfg.PenaltyWindow != nil && !c.IsSet("penalty-window") && !c.IsSet("penalty_window") {
		*penaltyWindow = *cfg.PenaltyWindow
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyCommonConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.VocabJSON != "" && !c.IsSet("vocab-json") {
		vocabJSONPath = cfg.VocabJSON
	}
	if cfg.Merges != "" && !c.IsSet("merges") {
		mergesPath = cfg.Merges
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// loadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or fails to parse.
func loadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
