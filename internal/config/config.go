package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Digest    DigestConfig
	Tagpack   TagpackConfig
	Logging   LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxRetries      int
}

// RedisConfig holds digest cache configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Brokers      string
	ClientID     string
	TagpackTopic string
}

// BrokerList splits the comma separated broker string
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	CuratorRole string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
}

// DigestConfig tunes the tag digest computation
type DigestConfig struct {
	StrictTokenMatch bool
	KnownConcepts    []string
}

// TagpackConfig controls TagPack and ActorPack ingestion
type TagpackConfig struct {
	MaxBodyBytes     int64
	ConfidenceLevels map[string]int
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables.
// An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rateLimit.requestsPerMinute must be positive")
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive when caching is enabled")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "tagstore")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tagstore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.maxRetries", 3)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("redis.prefix", "tag-digest")

	// Kafka defaults
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.clientID", "tagpack-service")
	v.SetDefault("kafka.tagpackTopic", "tagpack-events")

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.curatorRole", "curator")

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requestsPerMinute", 600)
	v.SetDefault("rateLimit.burstSize", 50)

	// Digest defaults
	v.SetDefault("digest.strictTokenMatch", false)
	v.SetDefault("digest.knownConcepts", []string{})

	// Tagpack defaults
	v.SetDefault("tagpack.maxBodyBytes", 8<<20)
	v.SetDefault("tagpack.confidenceLevels", map[string]int{
		"ownership":      100,
		"authority_data": 100,
		"service_data":   80,
		"forensic":       60,
		"web_crawl":      30,
		"unknown":        5,
	})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
