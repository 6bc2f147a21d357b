package factory

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/real"
	"github.com/opd-ai/clipforge/testing"
	"github.com/sirupsen/logrus"
)

// Validation constants for configuration bounds checking.
const (
	// MinProbeTimeout is the minimum allowed encoder probe timeout in milliseconds.
	MinProbeTimeout = 100
	// MaxProbeTimeout is the maximum allowed encoder probe timeout in milliseconds (2 minutes).
	MaxProbeTimeout = 120000
)

// MediaBackendFactory creates media backend implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type MediaBackendFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.MediaBackendConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.MediaBackendConfig)

// NewMediaBackendFactory creates a new factory with default configuration
func NewMediaBackendFactory() *MediaBackendFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &MediaBackendFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default media backend configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - Production mode by default; simulation must be explicitly enabled
//   - FFmpegPath: "ffmpeg" - Resolved from PATH, the same lookup Vidio performs
//   - ProbeTimeout: 5000ms - Listing encoders is fast; this covers cold starts on slow disks
func createDefaultConfig() *interfaces.MediaBackendConfig {
	return &interfaces.MediaBackendConfig{
		UseSimulation: false,
		FFmpegPath:    "ffmpeg",
		ProbeTimeout:  5000,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// It checks for CLIPFORGE_* environment variables and overrides defaults if valid values are found.
func applyEnvironmentOverrides(config *interfaces.MediaBackendConfig) {
	parseSimulationSetting(config)
	parseFFmpegPathSetting(config)
	parseProbeTimeoutSetting(config)
}

// ApplyEnvironmentOverrides applies the CLIPFORGE_* variables to config.
// Commands call it on file-based configuration so the environment wins.
func ApplyEnvironmentOverrides(config *interfaces.MediaBackendConfig) {
	applyEnvironmentOverrides(config)
}

// parseSimulationSetting updates the UseSimulation config from CLIPFORGE_USE_SIMULATION.
// It safely parses the boolean value, logs a warning if parsing fails, and only updates config if parsing succeeds.
func parseSimulationSetting(config *interfaces.MediaBackendConfig) {
	if useSimStr := os.Getenv("CLIPFORGE_USE_SIMULATION"); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     "CLIPFORGE_USE_SIMULATION",
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": config.UseSimulation,
			}).Warn("Failed to parse CLIPFORGE_USE_SIMULATION environment variable, using default")
			return
		}
		config.UseSimulation = useSim
	}
}

// parseFFmpegPathSetting updates the FFmpegPath config from CLIPFORGE_FFMPEG_PATH.
func parseFFmpegPathSetting(config *interfaces.MediaBackendConfig) {
	if path := os.Getenv("CLIPFORGE_FFMPEG_PATH"); path != "" {
		config.FFmpegPath = path
	}
}

// parseProbeTimeoutSetting updates the ProbeTimeout config from CLIPFORGE_PROBE_TIMEOUT.
// It validates the value is within bounds [MinProbeTimeout, MaxProbeTimeout] and logs warnings for
// invalid values. Only updates config if parsing succeeds and value is within valid range.
func parseProbeTimeoutSetting(config *interfaces.MediaBackendConfig) {
	if timeoutStr := os.Getenv("CLIPFORGE_PROBE_TIMEOUT"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseProbeTimeoutSetting",
				"env_var":     "CLIPFORGE_PROBE_TIMEOUT",
				"value":       timeoutStr,
				"error":       err.Error(),
				"using_value": config.ProbeTimeout,
			}).Warn("Failed to parse CLIPFORGE_PROBE_TIMEOUT environment variable, using default")
			return
		}
		if timeout < MinProbeTimeout || timeout > MaxProbeTimeout {
			logrus.WithFields(logrus.Fields{
				"function":    "parseProbeTimeoutSetting",
				"env_var":     "CLIPFORGE_PROBE_TIMEOUT",
				"value":       timeout,
				"min":         MinProbeTimeout,
				"max":         MaxProbeTimeout,
				"using_value": config.ProbeTimeout,
			}).Warn("CLIPFORGE_PROBE_TIMEOUT value out of bounds, using default")
			return
		}
		config.ProbeTimeout = timeout
	}
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.MediaBackendConfig) {
	logrus.WithFields(logrus.Fields{
		"function":       "NewMediaBackendFactory",
		"use_simulation": config.UseSimulation,
		"ffmpeg_path":    config.FFmpegPath,
		"probe_timeout":  config.ProbeTimeout,
	}).Info("Created media backend factory with configuration")
}

// CreateMediaBackend creates a media backend based on the default configuration
func (f *MediaBackendFactory) CreateMediaBackend() (interfaces.IMediaBackend, error) {
	return f.CreateMediaBackendWithConfig(nil)
}

// CreateMediaBackendWithConfig creates a media backend with custom configuration
func (f *MediaBackendFactory) CreateMediaBackendWithConfig(config *interfaces.MediaBackendConfig) (interfaces.IMediaBackend, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid media backend configuration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "CreateMediaBackendWithConfig",
		"use_simulation": config.UseSimulation,
		"ffmpeg_path":    config.FFmpegPath,
		"probe_timeout":  config.ProbeTimeout,
	}).Info("Creating media backend implementation")

	if config.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateMediaBackendWithConfig",
			"type":     "simulation",
		}).Info("Creating simulation media backend implementation")

		return testing.NewSimulatedMediaBackend(config), nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateMediaBackendWithConfig",
		"type":     "real",
	}).Info("Creating real media backend implementation")

	return real.NewVidioBackend(config), nil
}

// WithProbeTimeout sets a custom probe timeout for the test configuration.
func WithProbeTimeout(timeout int) TestConfigOption {
	return func(c *interfaces.MediaBackendConfig) {
		c.ProbeTimeout = timeout
	}
}

// CreateSimulationForTesting creates a simulation implementation specifically for testing.
// It accepts optional TestConfigOption functions to override default test values.
// Default test configuration uses: ProbeTimeout=1000ms.
func (f *MediaBackendFactory) CreateSimulationForTesting(opts ...TestConfigOption) *testing.SimulatedMediaBackend {
	testConfig := &interfaces.MediaBackendConfig{
		UseSimulation: true,
		ProbeTimeout:  1000,
	}

	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "CreateSimulationForTesting",
		"probe_timeout": testConfig.ProbeTimeout,
	}).Info("Creating simulation implementation for testing")

	return testing.NewSimulatedMediaBackend(testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *MediaBackendFactory) SwitchToSimulation() {
	f.setSimulation(true)
}

// SwitchToReal switches the configuration to use the ffmpeg implementation
func (f *MediaBackendFactory) SwitchToReal() {
	f.setSimulation(false)
}

func (f *MediaBackendFactory) setSimulation(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "setSimulation",
		"previous": f.defaultConfig.UseSimulation,
		"current":  enabled,
	}).Info("Switching factory media backend mode")

	f.defaultConfig.UseSimulation = enabled
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *MediaBackendFactory) GetCurrentConfig() *interfaces.MediaBackendConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	copied := *f.defaultConfig
	return &copied
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *MediaBackendFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig updates the factory's default configuration
func (f *MediaBackendFactory) UpdateConfig(config *interfaces.MediaBackendConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_timeout":    f.defaultConfig.ProbeTimeout,
		"new_timeout":    config.ProbeTimeout,
	}).Info("Updating factory configuration")

	copied := *config
	f.defaultConfig = &copied
	return nil
}
