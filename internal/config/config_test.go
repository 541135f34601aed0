package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wingyippp/pcmchain/internal/config"
)

const sampleYAML = `
log_level: debug
buffer_size: 8192
engine: bassboost

stages:
  - type: swap
  - type: gain
    enabled: false
    gain: 0.25
    upgrade: true
  - type: engine
    gain: 6
    frequency: 80
    q: 0.5
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.BufferSize != 8192 {
		t.Errorf("BufferSize = %d, want 8192", cfg.BufferSize)
	}
	if cfg.Engine != config.EngineBassBoost {
		t.Errorf("Engine = %q, want bassboost", cfg.Engine)
	}
	if len(cfg.Stages) != 3 {
		t.Fatalf("len(Stages) = %d, want 3", len(cfg.Stages))
	}

	gain := cfg.Stages[1]
	if gain.IsEnabled() {
		t.Error("stages[1] enabled, want disabled")
	}
	if gain.Gain == nil || *gain.Gain != 0.25 {
		t.Errorf("stages[1].gain = %v, want 0.25", gain.Gain)
	}
	if !gain.Upgrade {
		t.Error("stages[1].upgrade = false")
	}
	if !cfg.Stages[0].IsEnabled() {
		t.Error("stages[0] disabled, want the enabled default")
	}
	if s := cfg.Stages[2]; s.Frequency != 80 || s.Q != 0.5 {
		t.Errorf("stages[2] shelf = %v/%v, want 80/0.5", s.Frequency, s.Q)
	}
}

func TestLoadFromReader_EmptyIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader(\"\") error = %v", err)
	}
	if cfg.LogLevel != config.LogInfo || cfg.Engine != config.EngineNone {
		t.Errorf("defaults = %q/%q, want info/none", cfg.LogLevel, cfg.Engine)
	}
	if len(cfg.Stages) != 0 {
		t.Errorf("len(Stages) = %d, want 0", len(cfg.Stages))
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("volume: 11\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "volume") {
		t.Errorf("error should mention the field, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{
			name: "log level",
			yaml: "log_level: loud\n",
			want: []string{"log_level"},
		},
		{
			name: "negative buffer",
			yaml: "buffer_size: -1\n",
			want: []string{"buffer_size"},
		},
		{
			name: "engine name",
			yaml: "engine: reverb\n",
			want: []string{"engine \"reverb\""},
		},
		{
			name: "missing type",
			yaml: "stages:\n  - gain: 0.5\n",
			want: []string{"stages[0].type is required"},
		},
		{
			name: "engine stage without engine",
			yaml: "stages:\n  - type: engine\n",
			want: []string{"requires engine"},
		},
		{
			name: "engine routed gain without engine",
			yaml: "stages:\n  - type: gain\n    engine: true\n",
			want: []string{"requires engine"},
		},
		{
			name: "gain only fields",
			yaml: "stages:\n  - type: swap\n    upgrade: true\n    enabled: false\n",
			want: []string{"upgrade only applies", "enabled only applies"},
		},
		{
			name: "negative software gain",
			yaml: "stages:\n  - type: gain\n    gain: -0.5\n",
			want: []string{"must not be negative"},
		},
		{
			name: "negative shelf",
			yaml: "engine: bassboost\nstages:\n  - type: engine\n    frequency: -10\n    q: -1\n",
			want: []string{"frequency", "q"},
		},
		{
			name: "several at once",
			yaml: "log_level: loud\nbuffer_size: -4\n",
			want: []string{"log_level", "buffer_size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error should mention %q, got: %v", w, err)
				}
			}
		})
	}
}

func TestValidate_BassBoostCut(t *testing.T) {
	t.Parallel()

	yaml := `
engine: bassboost
stages:
  - type: engine
    gain: -6
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Errorf("negative dB gain on bassboost rejected: %v", err)
	}
}

func TestValidate_Default(t *testing.T) {
	t.Parallel()

	if err := config.Validate(config.Default()); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pcmchain.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Stages) != 3 {
		t.Errorf("len(Stages) = %d, want 3", len(cfg.Stages))
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}

func TestLogLevel_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level config.LogLevel
		want  slog.Level
	}{
		{level: config.LogDebug, want: slog.LevelDebug},
		{level: config.LogInfo, want: slog.LevelInfo},
		{level: config.LogWarn, want: slog.LevelWarn},
		{level: config.LogError, want: slog.LevelError},
		{level: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := tt.level.Level(); got != tt.want {
			t.Errorf("LogLevel(%q).Level() = %v, want %v", tt.level, got, tt.want)
		}
	}
}
