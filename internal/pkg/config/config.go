package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/network"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/routing"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Engine    EngineConfig    `mapstructure:"engine"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// TemporalConfig configures the network rebuild worker. RebuildDebounce is
// in seconds.
type TemporalConfig struct {
	HostPort        string `mapstructure:"host_port"`
	Namespace       string `mapstructure:"namespace"`
	TaskQueue       string `mapstructure:"task_queue"`
	RebuildDebounce int    `mapstructure:"rebuild_debounce"`
	RebuildCron     string `mapstructure:"rebuild_cron"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig tunes routing and network scoring.
type EngineConfig struct {
	AverageSpeedKmh     float64       `mapstructure:"average_speed_kmh"`
	MinIdleDays         int           `mapstructure:"min_idle_days"`
	DailyTravelBudgetKm float64       `mapstructure:"daily_travel_budget_km"`
	SuggestionLimit     int           `mapstructure:"suggestion_limit"`
	CandidatePoolLimit  int           `mapstructure:"candidate_pool_limit"`
	Weights             WeightsConfig `mapstructure:"weights"`
	RegionBonus         int           `mapstructure:"region_bonus"`
	ProximityRadiusKm   float64       `mapstructure:"proximity_radius_km"`
	ProximityBonus      int           `mapstructure:"proximity_bonus"`
}

type WeightsConfig struct {
	Distance float64 `mapstructure:"distance"`
	Slack    float64 `mapstructure:"slack"`
	Affinity float64 `mapstructure:"affinity"`
}

// Routing converts the engine section into a routing.Config.
func (e EngineConfig) Routing() routing.Config {
	return routing.Config{
		AverageSpeedKmh:     e.AverageSpeedKmh,
		MinIdleDays:         e.MinIdleDays,
		DailyTravelBudgetKm: e.DailyTravelBudgetKm,
		SuggestionLimit:     e.SuggestionLimit,
		Weights: routing.Weights{
			Distance: e.Weights.Distance,
			Slack:    e.Weights.Slack,
			Affinity: e.Weights.Affinity,
		},
	}
}

// Network converts the engine section into a network.Config.
func (e EngineConfig) Network() network.Config {
	return network.Config{
		RegionBonus:       e.RegionBonus,
		ProximityRadiusKm: e.ProximityRadiusKm,
		ProximityBonus:    e.ProximityBonus,
	}
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: VENUECONNECT_DATABASE_HOST → database.host
	v.SetEnvPrefix("VENUECONNECT")
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

func setDefaults(v *viper.Viper, service string) {
	route := routing.DefaultConfig()
	net := network.DefaultConfig()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "venueconnect")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "venueconnect")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "vc:")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "venue-network")
	v.SetDefault("temporal.rebuild_debounce", 60)
	v.SetDefault("temporal.rebuild_cron", "0 4 * * *")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.average_speed_kmh", route.AverageSpeedKmh)
	v.SetDefault("engine.min_idle_days", route.MinIdleDays)
	v.SetDefault("engine.daily_travel_budget_km", route.DailyTravelBudgetKm)
	v.SetDefault("engine.suggestion_limit", route.SuggestionLimit)
	v.SetDefault("engine.candidate_pool_limit", 500)
	v.SetDefault("engine.weights.distance", route.Weights.Distance)
	v.SetDefault("engine.weights.slack", route.Weights.Slack)
	v.SetDefault("engine.weights.affinity", route.Weights.Affinity)
	v.SetDefault("engine.region_bonus", net.RegionBonus)
	v.SetDefault("engine.proximity_radius_km", net.ProximityRadiusKm)
	v.SetDefault("engine.proximity_bonus", net.ProximityBonus)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "database.max_conns must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.HostPort == "" {
		errs = append(errs, "temporal.host_port is required")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if c.Temporal.RebuildDebounce < 0 {
		errs = append(errs, "temporal.rebuild_debounce must not be negative")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if err := c.Engine.Routing().Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errs = append(errs, "engine: "+line)
		}
	}
	if c.Engine.CandidatePoolLimit <= 0 {
		errs = append(errs, "engine.candidate_pool_limit must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
