// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/internal/observe"
)

var (
	// ErrStageNotRegistered is returned when no factory has been registered
	// for a stage type.
	ErrStageNotRegistered = errors.New("config: stage type not registered")

	// ErrEngineRequired is returned for an engine-routed stage built
	// without an engine registry.
	ErrEngineRequired = errors.New("config: stage requires a loaded engine")
)

// Deps are the shared objects stage factories wire into what they build.
type Deps struct {
	// Engine is the registry of the loaded engine, nil without one.
	Engine *engine.Registry

	// EngineName tells factories how to read engine parameters.
	EngineName EngineName

	Logger *slog.Logger

	// Metrics defaults to instruments on the global MeterProvider.
	Metrics *observe.Metrics
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// StageFactory builds the stage for one config entry.
type StageFactory func(Stage, Deps) (audio.Stage, error)

// Registry maps stage types to their factories. It is safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	factories map[StageType]StageFactory
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[StageType]StageFactory)}
}

// DefaultRegistry returns a Registry with every built-in stage type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StagePassThrough, newPassThrough)
	r.Register(StageGain, newGainReducer)
	r.Register(StageConverter, newFormatConverter)
	r.Register(StageSwap, newChannelSwap)
	r.Register(StageEngine, newEngineBridge)
	return r
}

// Register registers factory under t. Subsequent calls with the same type
// overwrite the previous registration.
func (r *Registry) Register(t StageType, factory StageFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = factory
}

// Types lists the registered stage types in sorted order.
func (r *Registry) Types() []StageType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]StageType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Create builds the stage for s using the factory registered under s.Type.
func (r *Registry) Create(s Stage, d Deps) (audio.Stage, error) {
	r.mu.RLock()
	factory, ok := r.factories[s.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStageNotRegistered, s.Type)
	}
	return factory(s, d)
}

// BuildChain creates every stage of cfg in order and joins them into a
// chain carrying d's logger and metrics.
func (r *Registry) BuildChain(cfg *Config, d Deps) (*audio.Chain, error) {
	if d.EngineName == "" {
		d.EngineName = cfg.Engine
	}

	stages := make([]audio.Stage, 0, len(cfg.Stages))
	for i, s := range cfg.Stages {
		st, err := r.Create(s, d)
		if err != nil {
			return nil, fmt.Errorf("config: stages[%d]: %w", i, err)
		}
		stages = append(stages, st)
	}

	metrics := d.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return audio.NewChain(stages, audio.WithLogger(d.logger()), audio.WithMetrics(metrics)), nil
}

func newPassThrough(_ Stage, d Deps) (audio.Stage, error) {
	return audio.NewPassThrough(audio.WithLogger(d.logger())), nil
}

func newFormatConverter(_ Stage, d Deps) (audio.Stage, error) {
	return audio.NewFormatConverter(audio.WithLogger(d.logger())), nil
}

func newChannelSwap(_ Stage, d Deps) (audio.Stage, error) {
	return audio.NewChannelSwap(audio.WithLogger(d.logger())), nil
}

func newGainReducer(s Stage, d Deps) (audio.Stage, error) {
	opts := []audio.Option{
		audio.WithLogger(d.logger()),
		audio.WithEnabled(s.IsEnabled()),
	}
	if s.Upgrade {
		opts = append(opts, audio.WithUpgrade())
	}

	if !s.Engine {
		if s.Gain != nil {
			opts = append(opts, audio.WithGain(*s.Gain))
		}
		return audio.NewGainReducer(opts...), nil
	}

	if d.Engine == nil {
		return nil, fmt.Errorf("%w: gain", ErrEngineRequired)
	}
	opts = append(opts, audio.WithEngine(d.Engine))
	if p, ok := engineParameters(s, d.EngineName); ok {
		opts = append(opts, p)
	}
	return audio.NewGainReducer(opts...), nil
}

func newEngineBridge(s Stage, d Deps) (audio.Stage, error) {
	if d.Engine == nil {
		return nil, fmt.Errorf("%w: engine", ErrEngineRequired)
	}
	opts := []audio.Option{audio.WithLogger(d.logger())}
	if p, ok := engineParameters(s, d.EngineName); ok {
		opts = append(opts, p)
	}
	return audio.NewEngineBridge(d.Engine, opts...), nil
}

// engineParameters turns the tuning fields of s into a WithParameters
// option, filling the ones left out with the engine defaults. It reports
// false when s sets none of them.
func engineParameters(s Stage, name EngineName) (audio.Option, bool) {
	if s.Gain == nil && s.Frequency == 0 && s.Q == 0 {
		return nil, false
	}

	var gain, frequency, q float32
	switch name {
	case EngineBassBoost:
		gain, frequency, q = engine.DefaultBassGainDB, engine.DefaultBassFrequency, engine.DefaultBassQ
	default:
		gain = engine.DefaultLoudnessGain
	}

	if s.Gain != nil {
		gain = *s.Gain
	}
	if s.Frequency != 0 {
		frequency = s.Frequency
	}
	if s.Q != 0 {
		q = s.Q
	}
	return audio.WithParameters(gain, frequency, q), true
}

// NewEngine returns a fresh instance of the engine cfg selects, or nil for
// none.
func (cfg *Config) NewEngine() engine.Engine {
	switch cfg.Engine {
	case EngineLoudness:
		return engine.NewLoudness()
	case EngineBassBoost:
		return engine.NewBassBoost()
	}
	return nil
}
