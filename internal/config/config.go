// Package config loads settings from an optional YAML file and the
// environment. Loading never fails: anything missing or malformed falls back
// to a default and is reported as a warning.
package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultContextLength     = 1024
	DefaultInjectionInterval = 5
	DefaultStoryChunkSize    = 3
	DefaultGenerationTimeout = 120 * time.Second
	DefaultConfigPath        = "config/game_config.yaml"
)

// Config holds the application configuration.
type Config struct {
	ContextLength     int           `yaml:"context_length" env:"STORY_CONTEXT_LENGTH"`
	InjectionInterval int           `yaml:"context_injection_interval" env:"STORY_INJECTION_INTERVAL"`
	StoryChunkSize    int           `yaml:"story_chunk_size" env:"STORY_CHUNK_SIZE"`
	Backend           string        `yaml:"backend" env:"STORY_BACKEND"`
	Model             string        `yaml:"model" env:"STORY_MODEL"`
	OllamaURL         string        `yaml:"ollama_url" env:"OLLAMA_URL"`
	GeminiAPIKey      string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey      string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	Temperature       float32       `yaml:"temperature" env:"STORY_TEMPERATURE"`
	MaxTokens         int           `yaml:"max_tokens" env:"STORY_MAX_TOKENS"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" env:"STORY_GENERATION_TIMEOUT"`
	SaveBackend       string        `yaml:"save_backend" env:"STORY_SAVE_BACKEND"`
	SaveDir           string        `yaml:"save_dir" env:"STORY_SAVE_DIR"`
	DBPath            string        `yaml:"db_path" env:"STORY_DB_PATH"`
	LogFile           string        `yaml:"log_file" env:"STORY_LOG_FILE"`
	LogLevel          string        `yaml:"log_level" env:"STORY_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ContextLength:     DefaultContextLength,
		InjectionInterval: DefaultInjectionInterval,
		StoryChunkSize:    DefaultStoryChunkSize,
		Backend:           "gemini",
		OllamaURL:         "http://localhost:11434/v1",
		Temperature:       0.8,
		MaxTokens:         100,
		GenerationTimeout: DefaultGenerationTimeout,
		SaveBackend:       "yaml",
		SaveDir:           ".saves",
		DBPath:            ".saves/storyteller.db",
		LogFile:           "storyteller.log",
		LogLevel:          "info",
	}
}

// DefaultModel returns the model used by backend when none is configured.
func DefaultModel(backend string) string {
	switch backend {
	case "ollama":
		return "llama2:7b-chat"
	case "openai":
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

// LoadConfig reads path (if it exists) and then the environment. A value
// that cannot be parsed keeps its previous setting and is reported; the
// other values are still applied. The returned warnings describe every value
// that was ignored.
func LoadConfig(path string) (*Config, []string) {
	cfg := Default()
	var warnings []string

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			warnings = append(warnings, fmt.Sprintf("config file %s not found, using defaults", path))
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("read config file %s: %v", path, err))
		default:
			warnings = append(warnings, applyYAML(&cfg, path, data)...)
		}
	}

	warnings = append(warnings, applyEnv(&cfg)...)
	warnings = append(warnings, cfg.sanitize()...)
	return &cfg, warnings
}

// applyYAML sets cfg one key at a time so a single bad value does not
// discard the rest of the file.
func applyYAML(cfg *Config, path string, data []byte) []string {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("parse config file %s: %v", path, err)}
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return []string{fmt.Sprintf("parse config file %s: expected a mapping of keys", path)}
	}

	var warnings []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		pair := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: root.Content[i : i+2]}
		next := *cfg
		if err := pair.Decode(&next); err != nil {
			warnings = append(warnings, fmt.Sprintf("config file %s: ignoring %s: %v", path, key.Value, err))
			continue
		}
		*cfg = next
	}
	return warnings
}

// applyEnv applies environment overrides. Fields whose variable fails to
// parse keep the value they had before.
func applyEnv(cfg *Config) []string {
	before := *cfg
	err := env.Parse(cfg)
	if err == nil {
		return nil
	}

	var agg env.AggregateError
	if !errors.As(err, &agg) {
		*cfg = before
		return []string{fmt.Sprintf("parse env: %v", err)}
	}

	var warnings []string
	cur := reflect.ValueOf(cfg).Elem()
	prev := reflect.ValueOf(&before).Elem()
	for _, e := range agg.Errors {
		var pe env.ParseError
		if errors.As(e, &pe) {
			if f := cur.FieldByName(pe.Name); f.IsValid() && f.CanSet() {
				f.Set(prev.FieldByName(pe.Name))
			}
			warnings = append(warnings, fmt.Sprintf("ignoring env override for %s: %v", pe.Name, pe.Err))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("parse env: %v", e))
	}
	return warnings
}

// sanitize replaces out-of-range values with defaults.
func (c *Config) sanitize() []string {
	def := Default()
	var warnings []string
	if c.ContextLength <= 0 {
		warnings = append(warnings, fmt.Sprintf("context_length %d is invalid, using %d", c.ContextLength, def.ContextLength))
		c.ContextLength = def.ContextLength
	}
	if c.InjectionInterval <= 0 {
		warnings = append(warnings, fmt.Sprintf("context_injection_interval %d is invalid, using %d", c.InjectionInterval, def.InjectionInterval))
		c.InjectionInterval = def.InjectionInterval
	}
	if c.StoryChunkSize <= 0 {
		warnings = append(warnings, fmt.Sprintf("story_chunk_size %d is invalid, using %d", c.StoryChunkSize, def.StoryChunkSize))
		c.StoryChunkSize = def.StoryChunkSize
	}
	if c.GenerationTimeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("generation_timeout %s is invalid, using %s", c.GenerationTimeout, def.GenerationTimeout))
		c.GenerationTimeout = def.GenerationTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	switch c.SaveBackend {
	case "yaml", "sqlite":
	default:
		warnings = append(warnings, fmt.Sprintf("save_backend %q is unknown, using %q", c.SaveBackend, def.SaveBackend))
		c.SaveBackend = def.SaveBackend
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Backend)
	}
	return warnings
}
