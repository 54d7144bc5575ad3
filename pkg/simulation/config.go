package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"
)

//go:embed config.schema.json
var configSchema string

type Config struct {
	// World Dimensions
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`

	// Population
	AgentCount int `json:"agentCount" toml:"agentCount"`

	// Physics / Behavior
	MaxSpeed float64 `json:"maxSpeed" toml:"maxSpeed"`

	// Interaction Radii
	SeparationDistance float64 `json:"separationDistance" toml:"separationDistance"` // Personal space radius
	AlignmentDistance  float64 `json:"alignmentDistance" toml:"alignmentDistance"`
	CohesionDistance   float64 `json:"cohesionDistance" toml:"cohesionDistance"`

	SeparationStrength float64 `json:"separationStrength" toml:"separationStrength"`
	AlignmentStrength  float64 `json:"alignmentStrength" toml:"alignmentStrength"`
	CohesionStrength   float64 `json:"cohesionStrength" toml:"cohesionStrength"`
	TargetStrength     float64 `json:"targetStrength" toml:"targetStrength"`

	// Runtime
	Workers  int    `json:"workers" toml:"workers"`
	Seed     uint64 `json:"seed" toml:"seed"` // 0 picks a random seed
	TPS      int    `json:"tps" toml:"tps"`   // simulation steps per second
	ShowGrid bool   `json:"showGrid" toml:"showGrid"`
	LogLevel string `json:"logLevel" toml:"logLevel"`
}

func DefaultConfig() *Config {
	s := flock.DefaultSettings()
	return &Config{
		Width:              s.Width,
		Height:             s.Height,
		AgentCount:         s.AgentCount,
		MaxSpeed:           s.MaxSpeed,
		SeparationDistance: s.SeparationDistance,
		AlignmentDistance:  s.AlignmentDistance,
		CohesionDistance:   s.CohesionDistance,
		SeparationStrength: s.SeparationStrength,
		AlignmentStrength:  s.AlignmentStrength,
		CohesionStrength:   s.CohesionStrength,
		TargetStrength:     s.TargetStrength,
		Workers:            s.Workers,
		TPS:                60,
		ShowGrid:           true,
		LogLevel:           "info",
	}
}

// Settings extracts the physics part of the configuration.
func (c *Config) Settings() flock.Settings {
	return flock.Settings{
		Width:              c.Width,
		Height:             c.Height,
		AgentCount:         c.AgentCount,
		MaxSpeed:           c.MaxSpeed,
		SeparationDistance: c.SeparationDistance,
		AlignmentDistance:  c.AlignmentDistance,
		CohesionDistance:   c.CohesionDistance,
		SeparationStrength: c.SeparationStrength,
		AlignmentStrength:  c.AlignmentStrength,
		CohesionStrength:   c.CohesionStrength,
		TargetStrength:     c.TargetStrength,
		Workers:            c.Workers,
	}
}

// Level maps LogLevel to the goakt logger level, defaulting to info.
func (c *Config) Level() log.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// LoadConfig loads a JSON or TOML (by extension) configuration file on
// top of DefaultConfig and validates it against the embedded schema.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File into a generic document
	var doc interface{}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".toml":
		doc, err = readTOML(configFile)
	default:
		doc, err = readJSON(configFile)
	}
	if err != nil {
		return nil, err
	}

	// 3. Validate
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Settings().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readJSON(configFile string) (interface{}, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	return v, nil
}

// readTOML decodes the file into a plain map and round-trips it through
// encoding/json so the schema sees the same value types as for JSON files.
func readTOML(configFile string) (interface{}, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(configFile, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config toml: %w", err)
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	return v, nil
}
