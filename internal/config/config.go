// Package config handles lodtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshlod/pkg/lod"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all LOD pipeline settings.
type Config struct {
	LOD      LODConfig        `yaml:"lod"`
	Simplify SimplifyConfig   `yaml:"simplify"`
	Texture  TextureConfig    `yaml:"texture"`
	Shader   lod.ShaderLadder `yaml:"shader"`
	Bake     BakeConfig       `yaml:"bake"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// LODConfig holds level generation and selection settings.
type LODConfig struct {
	LevelCount      int     `yaml:"level_count"`
	ReductionFactor float32 `yaml:"reduction_factor"`
	BaseDistance    float32 `yaml:"base_distance"`
	BaseCoverage    float32 `yaml:"base_coverage"`
	Bias            float32 `yaml:"bias"`
	Mode            string  `yaml:"mode"` // "distance" or "coverage"
}

// SimplifyConfig holds edge collapse settings.
type SimplifyConfig struct {
	Placement   string  `yaml:"placement"`    // "optimal" or "midpoint"
	WeldEpsilon float32 `yaml:"weld_epsilon"` // 0 disables welding
}

// TextureConfig holds texture ladder settings.
type TextureConfig struct {
	BaseResolution int `yaml:"base_resolution"`
}

// BakeConfig holds asset preparation settings.
type BakeConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LOD: LODConfig{
			LevelCount:      4,
			ReductionFactor: lod.DefaultReductionFactor,
			BaseDistance:    lod.DefaultBaseDistance,
			BaseCoverage:    lod.DefaultBaseCoverage,
			Bias:            1,
			Mode:            "distance",
		},
		Simplify: SimplifyConfig{
			Placement:   "optimal",
			WeldEpsilon: 0,
		},
		Texture: TextureConfig{
			BaseResolution: 2048,
		},
		Shader: lod.DefaultShaderLadder(),
		Bake: BakeConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first out-of-range setting, wrapping ErrInvalid.
func (c *Config) Validate() error {
	switch {
	case c.LOD.LevelCount < 1:
		return fmt.Errorf("%w: lod.level_count must be at least 1, got %d", ErrInvalid, c.LOD.LevelCount)
	case !(c.LOD.ReductionFactor > 0 && c.LOD.ReductionFactor < 1):
		return fmt.Errorf("%w: lod.reduction_factor must be in (0, 1), got %v", ErrInvalid, c.LOD.ReductionFactor)
	case !(c.LOD.Bias > 0):
		return fmt.Errorf("%w: lod.bias must be positive, got %v", ErrInvalid, c.LOD.Bias)
	case c.LOD.Mode != "distance" && c.LOD.Mode != "coverage":
		return fmt.Errorf("%w: lod.mode must be distance or coverage, got %q", ErrInvalid, c.LOD.Mode)
	case c.Simplify.Placement != "optimal" && c.Simplify.Placement != "midpoint":
		return fmt.Errorf("%w: simplify.placement must be optimal or midpoint, got %q", ErrInvalid, c.Simplify.Placement)
	case c.Simplify.WeldEpsilon < 0:
		return fmt.Errorf("%w: simplify.weld_epsilon must not be negative, got %v", ErrInvalid, c.Simplify.WeldEpsilon)
	case c.Texture.BaseResolution < 1:
		return fmt.Errorf("%w: texture.base_resolution must be at least 1, got %d", ErrInvalid, c.Texture.BaseResolution)
	case c.Bake.Workers < 1:
		return fmt.Errorf("%w: bake.workers must be at least 1, got %d", ErrInvalid, c.Bake.Workers)
	case !validLogLevel(c.Logging.Level):
		return fmt.Errorf("%w: logging.level must be debug, info, warn or error, got %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// Thresholds returns the configured threshold ladder.
func (c *Config) Thresholds() lod.Thresholds {
	return lod.Thresholds{BaseDistance: c.LOD.BaseDistance, BaseCoverage: c.LOD.BaseCoverage}
}
