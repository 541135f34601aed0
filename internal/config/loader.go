// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Fields left out keep the values of Default, except stages: a file
// listing no stages runs an empty chain.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	cfg.Stages = nil

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("buffer_size %d must not be negative", cfg.BufferSize))
	}
	if cfg.Engine != "" && !cfg.Engine.IsValid() {
		errs = append(errs, fmt.Errorf("engine %q is invalid; valid values: loudness, bassboost, none", cfg.Engine))
	}
	noEngine := cfg.Engine == "" || cfg.Engine == EngineNone

	for i, s := range cfg.Stages {
		prefix := fmt.Sprintf("stages[%d]", i)

		switch s.Type {
		case StagePassThrough, StageGain, StageConverter, StageSwap, StageEngine:
		case "":
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		default:
			// custom factories may serve other types; BuildChain reports
			// the ones nobody registered
			slog.Warn("unknown stage type", "stage", prefix, "type", s.Type)
		}

		if s.usesEngine() && noEngine {
			errs = append(errs, fmt.Errorf("%s: type %q with engine routing requires engine to be loudness or bassboost", prefix, s.Type))
		}
		if s.Engine && s.Type != StageGain {
			errs = append(errs, fmt.Errorf("%s.engine only applies to gain stages", prefix))
		}
		if s.Upgrade && s.Type != StageGain {
			errs = append(errs, fmt.Errorf("%s.upgrade only applies to gain stages", prefix))
		}
		if s.Enabled != nil && s.Type != StageGain {
			errs = append(errs, fmt.Errorf("%s.enabled only applies to gain stages", prefix))
		}

		if s.Gain != nil {
			g := float64(*s.Gain)
			switch {
			case math.IsNaN(g) || math.IsInf(g, 0):
				errs = append(errs, fmt.Errorf("%s.gain must be finite", prefix))
			case g < 0 && !(s.usesEngine() && cfg.Engine == EngineBassBoost):
				// bassboost gains are dB and may cut
				errs = append(errs, fmt.Errorf("%s.gain %.2f must not be negative", prefix, g))
			}
		}
		if s.Frequency < 0 {
			errs = append(errs, fmt.Errorf("%s.frequency %.2f must not be negative", prefix, s.Frequency))
		}
		if s.Q < 0 {
			errs = append(errs, fmt.Errorf("%s.q %.3f must not be negative", prefix, s.Q))
		}
		if (s.Frequency != 0 || s.Q != 0) && !(s.usesEngine() && cfg.Engine == EngineBassBoost) {
			slog.Warn("frequency and q only shape the bassboost engine; ignored", "stage", prefix)
		}
	}

	return errors.Join(errs...)
}
