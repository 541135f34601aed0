// SPDX-License-Identifier: EPL-2.0

// Package config describes a pcmchain run in YAML: logging, read size, the
// engine to load and the stages of the chain in order.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its slog level. Unset and unknown levels are Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// EngineName selects the engine loaded for the run.
type EngineName string

const (
	EngineNone      EngineName = "none"
	EngineLoudness  EngineName = "loudness"
	EngineBassBoost EngineName = "bassboost"
)

// IsValid reports whether e is a recognised engine.
func (e EngineName) IsValid() bool {
	switch e {
	case EngineNone, EngineLoudness, EngineBassBoost:
		return true
	}
	return false
}

// StageType names a stage variant.
type StageType string

const (
	StagePassThrough StageType = "passthrough"
	StageGain        StageType = "gain"
	StageConverter   StageType = "converter"
	StageSwap        StageType = "swap"
	StageEngine      StageType = "engine"
)

// Stage is one entry of the chain.
type Stage struct {
	Type StageType `yaml:"type"`

	// Enabled is the initial switch of a gain stage. Unset means enabled.
	Enabled *bool `yaml:"enabled"`

	// Gain is the software gain of a gain stage, or the engine gain (a
	// factor for loudness, dB for bassboost) of an engine-routed stage.
	Gain *float32 `yaml:"gain"`

	// Frequency and Q shape the bassboost shelf. Zero keeps the engine
	// default.
	Frequency float32 `yaml:"frequency"`
	Q         float32 `yaml:"q"`

	// Upgrade makes a gain stage output float for pcm16 input.
	Upgrade bool `yaml:"upgrade"`

	// Engine routes a gain stage through the loaded engine.
	Engine bool `yaml:"engine"`
}

// IsEnabled resolves the unset default.
func (s Stage) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// usesEngine reports whether the stage needs a loaded engine.
func (s Stage) usesEngine() bool {
	return s.Type == StageEngine || (s.Type == StageGain && s.Engine)
}

// Config is the root of a pcmchain configuration file.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// BufferSize is the read size in bytes; zero uses the source default.
	BufferSize int `yaml:"buffer_size"`

	Engine EngineName `yaml:"engine"`
	Stages []Stage    `yaml:"stages"`
}

// Default returns the configuration used without a file: an enabled
// software gain reducer at its default gain.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Engine:   EngineNone,
		Stages:   []Stage{{Type: StageGain}},
	}
}
