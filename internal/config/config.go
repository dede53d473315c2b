package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Port int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	EnableTLS   bool `mapstructure:"enable_tls"`
	MaxOpen     int  `mapstructure:"max_open"`
	MaxIdle     int  `mapstructure:"max_idle"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type RedisCfg struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int  `mapstructure:"pool_size"`
	EnableTLS bool `mapstructure:"enable_tls"`
}

type MQCfg struct {
	URL        string
	EnableTLS  bool `mapstructure:"enable_tls"`
	Exchange   string
	RoutingKey string `mapstructure:"routing_key"`
}

type AuthCfg struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Pepper    string
}

type RelayCfg struct {
	Path             string
	ValidateSessions bool  `mapstructure:"validate_sessions"`
	MaxMessageBytes  int64 `mapstructure:"max_message_bytes"`
	SendBuffer       int   `mapstructure:"send_buffer"`
}

type JudgeCfg struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type CORSCfg struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type RateLimitCfg struct {
	AuthRPS   float64 `mapstructure:"auth_rps"`
	AuthBurst int     `mapstructure:"auth_burst"`
}

type StatsCfg struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	Auth      AuthCfg
	Relay     RelayCfg
	Judge     JudgeCfg
	Telemetry TelemetryCfg
	CORS      CORSCfg
	RateLimit RateLimitCfg
	Stats     StatsCfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "collabhub")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.port", 4000)

	v.SetDefault("log.level", "info")

	v.SetDefault("database.dsn", "host=localhost user=collabhub password=collabhub dbname=collabhub port=5432 sslmode=disable")
	v.SetDefault("database.enable_tls", false)
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.enable_tls", false)

	// empty url disables deployment event publishing
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.enable_tls", false)
	v.SetDefault("rabbitmq.exchange", "collabhub.deployment")
	v.SetDefault("rabbitmq.routing_key", "deployment.triggered")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.pepper", "")

	v.SetDefault("relay.path", "/ws")
	v.SetDefault("relay.validate_sessions", false)
	v.SetDefault("relay.max_message_bytes", 1<<20)
	v.SetDefault("relay.send_buffer", 256)

	v.SetDefault("judge.base_url", "")
	v.SetDefault("judge.timeout", 30*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("ratelimit.auth_rps", 5)
	v.SetDefault("ratelimit.auth_burst", 10)

	v.SetDefault("stats.cache_ttl", 10*time.Second)
}

// Load reads config.yaml (optional) and COLLABHUB_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("COLLABHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.App.Env == "production" {
			return nil, errors.New("auth.jwt_secret must be set in production")
		}
		cfg.Auth.JWTSecret = "collabhub-dev-secret"
	}
	return cfg, nil
}
