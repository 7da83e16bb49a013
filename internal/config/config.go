package config

import (
	"os"
	"strconv"

	"scfscan/domain/constraint"
	"scfscan/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Grid        GridConfig
	Bounds      BoundsConfig
	Calibration CalibrationConfig
	Paths       PathConfig
}

// GridConfig holds scan grid settings. The scan axes are the fundamental
// parameters: mediator mass and mixing angle, both log spaced.
type GridConfig struct {
	MassMin       float64
	MassMax       float64
	MassPoints    int
	AngleMin      float64
	AngleMax      float64
	AnglePoints   int
	Model         string
	MassUnit      string
	UseNormalized bool
}

// BoundsConfig holds the constraint bounds that override the built-in
// defaults
type BoundsConfig struct {
	AtlasMu       float64
	AtlasSigma    float64
	BrMax         float64
	AlphaMax      float64
	LabScreening  float64
	EpsilonMax    float64
	MuSignalScale float64
	TiltScale     float64
}

// CalibrationConfig holds tilt-calibration settings
type CalibrationConfig struct {
	Method     string
	NBootstrap int
	Seed       int64
	Window     int
	PoolMode   string
}

// PathConfig holds file system paths
type PathConfig struct {
	CurveFile   string
	CaptureFile string
	OutputDir   string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Grid:        loadGridConfig(),
		Bounds:      loadBoundsConfig(),
		Calibration: loadCalibrationConfig(),
		Paths:       loadPathConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadGridConfig() GridConfig {
	return GridConfig{
		MassMin:       getEnvFloatOrDefault("GRID_MASS_MIN", 1e-11),
		MassMax:       getEnvFloatOrDefault("GRID_MASS_MAX", 1e2),
		MassPoints:    getEnvIntOrDefault("GRID_MASS_POINTS", 200),
		AngleMin:      getEnvFloatOrDefault("GRID_ANGLE_MIN", 1e-12),
		AngleMax:      getEnvFloatOrDefault("GRID_ANGLE_MAX", 1e0),
		AnglePoints:   getEnvIntOrDefault("GRID_ANGLE_POINTS", 200),
		Model:         getEnvOrDefault("MODEL", "simple"),
		MassUnit:      getEnvOrDefault("MASS_UNIT", "gev"),
		UseNormalized: getEnvBoolOrDefault("USE_NORMALIZED_SLACK", true),
	}
}

func loadBoundsConfig() BoundsConfig {
	return BoundsConfig{
		AtlasMu:       getEnvFloatOrDefault("ATLAS_MU", constraint.DefaultAtlasMu),
		AtlasSigma:    getEnvFloatOrDefault("ATLAS_SIGMA", constraint.DefaultAtlasSigma),
		BrMax:         getEnvFloatOrDefault("HIGGS_BR_MAX", constraint.DefaultBrMax),
		AlphaMax:      getEnvFloatOrDefault("FF_ALPHA_MAX", 0),
		LabScreening:  getEnvFloatOrDefault("FF_LAB_SCREENING", constraint.DefaultLabScreening),
		EpsilonMax:    getEnvFloatOrDefault("QRNG_EPSILON_MAX", constraint.DefaultEpsilonMax),
		MuSignalScale: getEnvFloatOrDefault("MU_SIGNAL_SCALE", constraint.DefaultMuSignalScale),
		TiltScale:     getEnvFloatOrDefault("QRNG_TILT_SCALE", constraint.DefaultTiltScale),
	}
}

func loadCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		Method:     getEnvOrDefault("CALIBRATION_METHOD", "bootstrap_95"),
		NBootstrap: getEnvIntOrDefault("N_BOOTSTRAP", 1000),
		Seed:       getEnvInt64OrDefault("CALIBRATION_SEED", 42),
		Window:     getEnvIntOrDefault("DEVIATION_WINDOW", 1000),
		PoolMode:   getEnvOrDefault("POOL_MODE", "inverse_variance"),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		CurveFile:   getEnvOrDefault("CURVE_FILE", ""),
		CaptureFile: getEnvOrDefault("CAPTURE_FILE", ""),
		OutputDir:   getEnvOrDefault("OUTPUT_DIR", "."),
	}
}

func validateConfig(config *Config) error {
	if config.Grid.MassPoints < 2 || config.Grid.AnglePoints < 2 {
		return errors.ConfigInvalid("grid needs at least 2 points per axis")
	}
	if config.Grid.MassMin <= 0 || config.Grid.AngleMin <= 0 {
		return errors.ConfigInvalid("grid axes must be positive for log spacing")
	}
	if config.Grid.MassMin >= config.Grid.MassMax {
		return errors.ConfigInvalid("GRID_MASS_MIN must be below GRID_MASS_MAX")
	}
	if config.Grid.AngleMin >= config.Grid.AngleMax {
		return errors.ConfigInvalid("GRID_ANGLE_MIN must be below GRID_ANGLE_MAX")
	}
	if config.Bounds.EpsilonMax <= 0 {
		return errors.ConfigInvalid("QRNG_EPSILON_MAX must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
