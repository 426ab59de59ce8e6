package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type CacheConfig struct {
	Backend    string `mapstructure:"backend"` // "memory" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ProvidersConfig struct {
	OSAPIKey         string `mapstructure:"os_api_key"`
	HereAPIKey       string `mapstructure:"here_api_key"`
	PostcodesURL     string `mapstructure:"postcodes_url"`
	OverpassURL      string `mapstructure:"overpass_url"`
	OpenMeteoURL     string `mapstructure:"open_meteo_url"`
	OpenElevationURL string `mapstructure:"open_elevation_url"`
	LidarTileDir     string `mapstructure:"lidar_tile_dir"`
}

type PipelineConfig struct {
	SearchRadiusM    float64 `mapstructure:"search_radius_m"`
	WidthSamples     int     `mapstructure:"width_samples"`
	TurningGridSize  int     `mapstructure:"turning_grid_size"`
	RestrictionLimit int     `mapstructure:"restriction_limit"`
	StageTimeout     int     `mapstructure:"stage_timeout"`
	VehicleFile      string  `mapstructure:"vehicle_file"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP gRPC collector
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("providers.postcodes_url", "https://api.postcodes.io")
	v.SetDefault("providers.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("providers.open_meteo_url", "https://api.open-meteo.com/v1/elevation")
	v.SetDefault("providers.open_elevation_url", "https://api.open-elevation.com/api/v1/lookup")
	v.SetDefault("providers.lidar_tile_dir", "")
	v.SetDefault("pipeline.search_radius_m", 200.0)
	v.SetDefault("pipeline.width_samples", 20)
	v.SetDefault("pipeline.turning_grid_size", 20)
	v.SetDefault("pipeline.restriction_limit", 4)
	v.SetDefault("pipeline.stage_timeout", 30)
	v.SetDefault("pipeline.vehicle_file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SURVEYOR_PROVIDERS_OS_API_KEY → providers.os_api_key
	v.SetEnvPrefix("SURVEYOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "valkey":
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be memory or valkey, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "valkey" && c.Cache.ValkeyAddr == "" {
		errs = append(errs, "cache.valkey_addr is required when cache.backend is valkey")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled is true")
	}
	if c.Providers.PostcodesURL == "" {
		errs = append(errs, "providers.postcodes_url is required")
	}
	if c.Pipeline.SearchRadiusM <= 0 {
		errs = append(errs, "pipeline.search_radius_m must be positive")
	}
	if c.Pipeline.WidthSamples < 2 {
		errs = append(errs, "pipeline.width_samples must be at least 2")
	}
	if c.Pipeline.TurningGridSize < 2 {
		errs = append(errs, "pipeline.turning_grid_size must be at least 2")
	}
	if c.Pipeline.RestrictionLimit <= 0 {
		errs = append(errs, "pipeline.restriction_limit must be positive")
	}
	if c.Pipeline.StageTimeout <= 0 {
		errs = append(errs, "pipeline.stage_timeout must be positive")
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, "telemetry.endpoint is required when telemetry.enabled is true")
		}
		if c.Telemetry.SampleRatio <= 0 || c.Telemetry.SampleRatio > 1 {
			errs = append(errs, fmt.Sprintf("telemetry.sample_ratio must be in (0, 1], got %v", c.Telemetry.SampleRatio))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
