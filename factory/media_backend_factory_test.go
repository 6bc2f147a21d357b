package factory

import (
	"errors"
	"os"
	"testing"

	"github.com/opd-ai/clipforge/interfaces"
)

// TestNewMediaBackendFactory verifies default factory creation
func TestNewMediaBackendFactory(t *testing.T) {
	factory := NewMediaBackendFactory()
	if factory == nil {
		t.Fatal("NewMediaBackendFactory returned nil")
	}

	config := factory.GetCurrentConfig()
	if config.ProbeTimeout != 5000 && os.Getenv("CLIPFORGE_PROBE_TIMEOUT") == "" {
		t.Errorf("expected default ProbeTimeout 5000, got %d", config.ProbeTimeout)
	}
	if config.FFmpegPath != "ffmpeg" && os.Getenv("CLIPFORGE_FFMPEG_PATH") == "" {
		t.Errorf("expected default FFmpegPath ffmpeg, got %q", config.FFmpegPath)
	}
}

// TestEnvironmentVariableParsing verifies environment variable handling
func TestEnvironmentVariableParsing(t *testing.T) {
	tests := []struct {
		name        string
		envKey      string
		envValue    string
		checkFunc   func(*interfaces.MediaBackendConfig) bool
		description string
	}{
		{
			name:        "valid_simulation_true",
			envKey:      "CLIPFORGE_USE_SIMULATION",
			envValue:    "true",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.UseSimulation },
			description: "UseSimulation should be true",
		},
		{
			name:        "invalid_simulation_value",
			envKey:      "CLIPFORGE_USE_SIMULATION",
			envValue:    "maybe",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return !c.UseSimulation },
			description: "UseSimulation should fall back to default (false) on invalid value",
		},
		{
			name:        "ffmpeg_path",
			envKey:      "CLIPFORGE_FFMPEG_PATH",
			envValue:    "/opt/ffmpeg/bin/ffmpeg",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.FFmpegPath == "/opt/ffmpeg/bin/ffmpeg" },
			description: "FFmpegPath should follow the environment",
		},
		{
			name:        "valid_timeout",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "2500",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 2500 },
			description: "ProbeTimeout should be 2500",
		},
		{
			name:        "invalid_timeout_value",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "soon",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 5000 },
			description: "ProbeTimeout should fall back to default (5000) on invalid value",
		},
		{
			name:        "timeout_below_minimum",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "50",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 5000 },
			description: "ProbeTimeout should fall back to default (5000) when below minimum",
		},
		{
			name:        "timeout_above_maximum",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "120001",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 5000 },
			description: "ProbeTimeout should fall back to default (5000) when above maximum",
		},
		{
			name:        "timeout_at_minimum",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "100",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 100 },
			description: "ProbeTimeout should accept value at minimum boundary",
		},
		{
			name:        "timeout_at_maximum",
			envKey:      "CLIPFORGE_PROBE_TIMEOUT",
			envValue:    "120000",
			checkFunc:   func(c *interfaces.MediaBackendConfig) bool { return c.ProbeTimeout == 120000 },
			description: "ProbeTimeout should accept value at maximum boundary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			factory := NewMediaBackendFactory()
			if !tt.checkFunc(factory.GetCurrentConfig()) {
				t.Errorf("%s failed: %s", tt.name, tt.description)
			}
		})
	}
}

// TestCreateMediaBackendSimulation verifies simulation mode creation
func TestCreateMediaBackendSimulation(t *testing.T) {
	factory := NewMediaBackendFactory()
	factory.SwitchToSimulation()

	backend, err := factory.CreateMediaBackend()
	if err != nil {
		t.Fatalf("CreateMediaBackend failed: %v", err)
	}
	if !backend.IsSimulation() {
		t.Error("expected simulation implementation")
	}
}

// TestCreateMediaBackendReal verifies real mode creation
func TestCreateMediaBackendReal(t *testing.T) {
	factory := NewMediaBackendFactory()
	factory.SwitchToReal()

	backend, err := factory.CreateMediaBackendWithConfig(&interfaces.MediaBackendConfig{
		FFmpegPath:   "ffmpeg",
		ProbeTimeout: 1000,
	})
	if err != nil {
		t.Fatalf("CreateMediaBackendWithConfig failed: %v", err)
	}
	if backend.IsSimulation() {
		t.Error("expected real implementation")
	}
}

// TestCreateMediaBackendInvalidConfig verifies configuration validation
func TestCreateMediaBackendInvalidConfig(t *testing.T) {
	factory := NewMediaBackendFactory()

	_, err := factory.CreateMediaBackendWithConfig(&interfaces.MediaBackendConfig{ProbeTimeout: 0, UseSimulation: true})
	if !errors.Is(err, interfaces.ErrInvalidProbeTimeout) {
		t.Errorf("expected ErrInvalidProbeTimeout, got %v", err)
	}
}

// TestCreateSimulationForTesting verifies test-specific simulation creation
func TestCreateSimulationForTesting(t *testing.T) {
	factory := NewMediaBackendFactory()

	backend := factory.CreateSimulationForTesting(WithProbeTimeout(250))
	if backend == nil {
		t.Fatal("CreateSimulationForTesting returned nil")
	}
	if !backend.IsSimulation() {
		t.Error("expected simulation implementation")
	}
}

// TestModeSwitching verifies runtime mode switching
func TestModeSwitching(t *testing.T) {
	factory := NewMediaBackendFactory()

	factory.SwitchToSimulation()
	if !factory.IsUsingSimulation() {
		t.Error("expected simulation mode after SwitchToSimulation")
	}

	factory.SwitchToReal()
	if factory.IsUsingSimulation() {
		t.Error("expected real mode after SwitchToReal")
	}
}

// TestUpdateConfig verifies configuration replacement
func TestUpdateConfig(t *testing.T) {
	factory := NewMediaBackendFactory()

	if err := factory.UpdateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if err := factory.UpdateConfig(&interfaces.MediaBackendConfig{ProbeTimeout: -1}); err == nil {
		t.Error("expected error for invalid config")
	}

	update := &interfaces.MediaBackendConfig{UseSimulation: true, ProbeTimeout: 750}
	if err := factory.UpdateConfig(update); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}
	update.ProbeTimeout = 1

	config := factory.GetCurrentConfig()
	if !config.UseSimulation || config.ProbeTimeout != 750 {
		t.Errorf("unexpected config after update: %+v", config)
	}
}

// TestApplyEnvironmentOverrides verifies the environment wins over file settings
func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("CLIPFORGE_USE_SIMULATION", "true")
	t.Setenv("CLIPFORGE_PROBE_TIMEOUT", "not-a-number")

	config := &interfaces.MediaBackendConfig{
		UseSimulation: false,
		FFmpegPath:    "/opt/ffmpeg",
		ProbeTimeout:  750,
	}
	ApplyEnvironmentOverrides(config)

	if !config.UseSimulation {
		t.Error("expected CLIPFORGE_USE_SIMULATION to enable simulation")
	}
	if config.ProbeTimeout != 750 {
		t.Errorf("invalid timeout should be ignored, got %d", config.ProbeTimeout)
	}
	if config.FFmpegPath != "/opt/ffmpeg" && os.Getenv("CLIPFORGE_FFMPEG_PATH") == "" {
		t.Errorf("unset variable should keep file value, got %q", config.FFmpegPath)
	}
}
