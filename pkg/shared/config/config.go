package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v2"
)

const (
	DecodeIgnore  = "ignore"
	DecodeReplace = "replace"
	DecodeStrict  = "strict"

	OnErrorSkip = "skip"
	OnErrorFail = "fail"

	FormatJSON  = "json"
	FormatSARIF = "sarif"

	DefaultFileName = "Dockerfile"
)

var (
	// DefaultTargets are the workspace subdirectories scanned when nothing else is configured.
	DefaultTargets = []string{"fks", "personal"}
	// DefaultIgnore holds the shared template that is copied verbatim into projects.
	DefaultIgnore = []string{"shared/shared_docker/Dockerfile"}
)

type Config struct {
	Logger Logger `yaml:"logger"`
	Audit  Audit  `yaml:"audit"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSONFormat      *bool  `yaml:"json_format"`
	DisableTime     *bool  `yaml:"disable_time"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type Audit struct {
	WorkspaceRoot string    `yaml:"workspace_root"`
	Targets       []string  `yaml:"targets"`
	Ignore        []string  `yaml:"ignore"`
	FileName      string    `yaml:"file_name"`
	Decode        string    `yaml:"decode"`
	OnError       string    `yaml:"on_error"`
	Format        string    `yaml:"format"`
	Patterns      []Pattern `yaml:"patterns"`
}

// Pattern is a user supplied classification rule. A non-empty list replaces the built-in table.
type Pattern struct {
	Name       string `yaml:"name"`
	Expr       string `yaml:"expr"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// NewConfig loads the YAML configuration at configPath.
// An empty configPath yields an empty configuration that ValidateConfig fills with defaults.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}
	if configPath == "" {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}
