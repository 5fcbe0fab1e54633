package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Redis      Redis      `mapstructure:"redis"`
	Neo4j      Neo4j      `mapstructure:"neo4j"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Auth       Auth       `mapstructure:"auth"`
	Logging    Logging    `mapstructure:"logging"`
	Engine     Engine     `mapstructure:"engine"`
	Monitoring Monitoring `mapstructure:"monitoring"`
	Security   Security   `mapstructure:"security"`
}

type Server struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type Database struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type Redis struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4j struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		UserActions string `mapstructure:"user_actions"`
	} `mapstructure:"topics"`
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	RateLimit RateLimit     `mapstructure:"rate_limit"`
}

type RateLimit struct {
	Default int           `mapstructure:"default"`
	Premium int           `mapstructure:"premium"`
	Window  time.Duration `mapstructure:"window"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Engine holds the request-level defaults and operational limits of the
// recommendation engine. Strategy weight tiers are policy constants in the
// services package, not configuration.
type Engine struct {
	DefaultCount      int           `mapstructure:"default_count"`
	MinScore          float64       `mapstructure:"min_score"`
	DiversityFactor   float64       `mapstructure:"diversity_factor"`
	ExcludeRated      bool          `mapstructure:"exclude_rated"`
	ExcludeWatchlist  bool          `mapstructure:"exclude_watchlist"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CandidatePoolSize int           `mapstructure:"candidate_pool_size"`
	SimilarUserLimit  int           `mapstructure:"similar_user_limit"`
}

type Monitoring struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type Security struct {
	CORS CORS `mapstructure:"cors"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	viper.SetDefault("neo4j.url", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.user_actions", "user-actions")

	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.default", 100)
	viper.SetDefault("auth.rate_limit.premium", 1000)
	viper.SetDefault("auth.rate_limit.window", "1m")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("engine.default_count", 25)
	viper.SetDefault("engine.min_score", 0.5)
	viper.SetDefault("engine.diversity_factor", 0.25)
	viper.SetDefault("engine.exclude_rated", true)
	viper.SetDefault("engine.exclude_watchlist", true)
	viper.SetDefault("engine.cache_ttl", "300s")
	viper.SetDefault("engine.timeout", "2s")
	viper.SetDefault("engine.candidate_pool_size", 500)
	viper.SetDefault("engine.similar_user_limit", 50)

	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
