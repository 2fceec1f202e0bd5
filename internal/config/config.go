package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Service *svcConfig
	Export  *exportConfig
	Chrome  *chromeConfig
}

type svcConfig struct {
	Address            string   `envconfig:"REPORT_EXPORTER_ADDRESS" default:":8080" validate:"required"`
	MetricsAddress     string   `envconfig:"REPORT_EXPORTER_METRICS_ADDRESS" default:":8081" validate:"required"`
	LogLevel           string   `envconfig:"REPORT_EXPORTER_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat          string   `envconfig:"REPORT_EXPORTER_LOG_FORMAT" default:"console" validate:"oneof=console json"`
	OutputDir          string   `envconfig:"REPORT_EXPORTER_OUTPUT_DIR" default:"." validate:"required"`
	CorsAllowedOrigins []string `envconfig:"REPORT_EXPORTER_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxBodyBytes       int64    `envconfig:"REPORT_EXPORTER_MAX_BODY_BYTES" default:"33554432" validate:"gt=0"`
}

// exportConfig sizes the off-screen container, in CSS pixels, and tunes slicing, in bitmap pixels.
type exportConfig struct {
	ContainerWidth  int     `envconfig:"REPORT_EXPORTER_CONTAINER_WIDTH" default:"1400" validate:"gt=0"`
	ContainerHeight int     `envconfig:"REPORT_EXPORTER_CONTAINER_HEIGHT" default:"900" validate:"gt=0"`
	MinBlockHeight  float64 `envconfig:"REPORT_EXPORTER_MIN_BLOCK_HEIGHT" default:"20" validate:"gte=0"`
	MinAdvance      float64 `envconfig:"REPORT_EXPORTER_MIN_ADVANCE" default:"100" validate:"gt=0"`
	BleedGuard      float64 `envconfig:"REPORT_EXPORTER_BLEED_GUARD" default:"2" validate:"gte=0"`
	Tolerance       float64 `envconfig:"REPORT_EXPORTER_SNAP_TOLERANCE" default:"150" validate:"gte=0"`
	SegmentGuard    float64 `envconfig:"REPORT_EXPORTER_SEGMENT_GUARD" default:"10" validate:"gte=0"`
	MaxSlices       int     `envconfig:"REPORT_EXPORTER_MAX_SLICES" default:"200" validate:"gt=0"`
}

type chromeConfig struct {
	ExecPath          string        `envconfig:"CHROME_PATH" default:""`
	Headless          bool          `envconfig:"REPORT_EXPORTER_CHROME_HEADLESS" default:"true"`
	NoSandbox         bool          `envconfig:"REPORT_EXPORTER_CHROME_NO_SANDBOX" default:"true"`
	StartupAttempts   uint          `envconfig:"REPORT_EXPORTER_CHROME_STARTUP_ATTEMPTS" default:"3" validate:"gte=1"`
	StartupDelay      time.Duration `envconfig:"REPORT_EXPORTER_CHROME_STARTUP_DELAY" default:"1s"`
	WSURLReadTimeout  time.Duration `envconfig:"REPORT_EXPORTER_CHROME_WS_TIMEOUT" default:"60s"`
	DeviceScaleFactor float64       `envconfig:"REPORT_EXPORTER_CHROME_SCALE" default:"2" validate:"gt=0"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// Load reads and validates the configuration from the environment, bypassing the cached one.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
