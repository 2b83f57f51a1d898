package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

// DatabaseConfig points at MongoDB. A "memory://" URI selects the in-process
// repositories instead.
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// InMemory reports whether the in-process store was requested.
func (d DatabaseConfig) InMemory() bool {
	return strings.HasPrefix(d.URI, "memory://")
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	SnapshotPrefix  string `mapstructure:"snapshot_prefix"`
}

// JWTConfig holds the verification secret. Tokens are issued elsewhere.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console or json
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// EngineConfig tunes plan generation and adaptation.
type EngineConfig struct {
	DeloadCadence      int           `mapstructure:"deload_cadence"`
	TestingCadence     int           `mapstructure:"testing_cadence"`
	MesocycleLength    int           `mapstructure:"mesocycle_length"`
	AnalysisWindow     int           `mapstructure:"analysis_window"`
	MinSessions        int           `mapstructure:"min_sessions"`
	MaxHistory         int           `mapstructure:"max_history"`
	ReanalysisInterval time.Duration `mapstructure:"reanalysis_interval"`
	ReanalysisSessions int           `mapstructure:"reanalysis_sessions"`
	Policy             PolicyConfig  `mapstructure:"policy"`
}

// PolicyConfig controls when merged analyzer results change the plan.
type PolicyConfig struct {
	MinAgreeing       int     `mapstructure:"min_agreeing"`
	ExtraVolumeFactor float64 `mapstructure:"extra_volume_factor"`
	SensitivityStep   float64 `mapstructure:"sensitivity_step"`
	MaxSensitivity    float64 `mapstructure:"max_sensitivity"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServiceName       string `mapstructure:"service_name"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SweepSpec string `mapstructure:"sweep_spec"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// Validate rejects engine settings the planner cannot work with.
func (e EngineConfig) Validate() error {
	var errs []error
	for _, f := range []struct {
		key   string
		value int
	}{
		{"deload_cadence", e.DeloadCadence},
		{"testing_cadence", e.TestingCadence},
		{"mesocycle_length", e.MesocycleLength},
		{"analysis_window", e.AnalysisWindow},
		{"min_sessions", e.MinSessions},
		{"max_history", e.MaxHistory},
		{"reanalysis_sessions", e.ReanalysisSessions},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("engine.%s must be positive, got %d", f.key, f.value))
		}
	}
	if e.MinSessions > e.AnalysisWindow {
		errs = append(errs, fmt.Errorf("engine.min_sessions (%d) exceeds engine.analysis_window (%d)", e.MinSessions, e.AnalysisWindow))
	}
	if e.ReanalysisInterval <= 0 {
		errs = append(errs, errors.New("engine.reanalysis_interval must be positive"))
	}
	if err := e.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p PolicyConfig) Validate() error {
	var errs []error
	if p.MinAgreeing < 1 {
		errs = append(errs, fmt.Errorf("engine.policy.min_agreeing must be at least 1, got %d", p.MinAgreeing))
	}
	if p.ExtraVolumeFactor <= 0 || p.ExtraVolumeFactor > 1 {
		errs = append(errs, fmt.Errorf("engine.policy.extra_volume_factor must be in (0,1], got %.2f", p.ExtraVolumeFactor))
	}
	if p.SensitivityStep < 0 {
		errs = append(errs, errors.New("engine.policy.sensitivity_step must not be negative"))
	}
	if p.MaxSensitivity < 1 {
		errs = append(errs, fmt.Errorf("engine.policy.max_sensitivity must be at least 1, got %.2f", p.MaxSensitivity))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "training_engine")
	v.SetDefault("s3.use_ssl", true) // Default to true for cloud providers
	v.SetDefault("s3.snapshot_prefix", "snapshots")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("engine.deload_cadence", 4)
	v.SetDefault("engine.testing_cadence", 6)
	v.SetDefault("engine.mesocycle_length", 4)
	v.SetDefault("engine.analysis_window", 6)
	v.SetDefault("engine.min_sessions", 3)
	v.SetDefault("engine.max_history", 50)
	v.SetDefault("engine.reanalysis_interval", "24h")
	v.SetDefault("engine.reanalysis_sessions", 3)
	v.SetDefault("engine.policy.min_agreeing", 2)
	v.SetDefault("engine.policy.extra_volume_factor", 0.9)
	v.SetDefault("engine.policy.sensitivity_step", 0.1)
	v.SetDefault("engine.policy.max_sensitivity", 1.5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.service_name", "training-engine")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.sweep_spec", "0 0 3 * * *")
	v.SetDefault("rate_limit.max_requests", 120)
	v.SetDefault("rate_limit.window", "1m")
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (Config, error) {
	return Load(viper.GetViper(), path)
}

// Load reads configuration into v. It is LoadConfig on an explicit viper
// instance, which is what WatchEngine needs.
func Load(v *viper.Viper, path string) (config Config, err error) {
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// nested keys map to env vars, e.g. engine.deload_cadence -> ENGINE_DELOAD_CADENCE
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	// A missing file is fine; env vars and defaults still apply.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	if err = config.Engine.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// WatchEngine calls onChange with the re-read engine section whenever the
// config file changes. Invalid edits are reported through onError and
// otherwise ignored.
func WatchEngine(v *viper.Viper, onChange func(EngineConfig), onError func(error)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var e EngineConfig
		if err := v.UnmarshalKey("engine", &e); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload engine config: %w", err))
			}
			return
		}
		if err := e.Validate(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(e)
	})
	v.WatchConfig()
}
