package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr            string
	DatabaseDriver  string
	DatabaseURL     string
	SessionLifetime time.Duration

	CacheBackend   string
	CacheRedisAddr string
	CacheTTL       time.Duration

	MediaBackend string
	MediaRoot    string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3UseSSL     bool

	KafkaBrokers string
	KafkaTopic   string

	OTelEndpoint string

	LogLevel  string
	LogFormat string
}

// NewViper returns a viper instance with every default set and YATUBE_*
// environment variables bound, e.g. YATUBE_DATABASE_URL for database.url.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "./yatube.db")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", "20s")
	v.SetDefault("media.backend", "local")
	v.SetDefault("media.root", "./media")
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "yatube-media")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "posts.created")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	return v
}

// LoadConfig reads the config file named by path (if any) into v and
// builds a Config from it.
func LoadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Addr:            v.GetString("addr"),
		DatabaseDriver:  v.GetString("database.driver"),
		DatabaseURL:     v.GetString("database.url"),
		SessionLifetime: v.GetDuration("session.lifetime"),
		CacheBackend:    v.GetString("cache.backend"),
		CacheRedisAddr:  v.GetString("cache.redis_addr"),
		CacheTTL:        v.GetDuration("cache.ttl"),
		MediaBackend:    v.GetString("media.backend"),
		MediaRoot:       v.GetString("media.root"),
		S3Endpoint:      v.GetString("s3.endpoint"),
		S3AccessKey:     v.GetString("s3.access_key"),
		S3SecretKey:     v.GetString("s3.secret_key"),
		S3Bucket:        v.GetString("s3.bucket"),
		S3UseSSL:        v.GetBool("s3.use_ssl"),
		KafkaBrokers:    v.GetString("kafka.brokers"),
		KafkaTopic:      v.GetString("kafka.topic"),
		OTelEndpoint:    v.GetString("otel.endpoint"),
		LogLevel:        v.GetString("log.level"),
		LogFormat:       v.GetString("log.format"),
	}
	if cfg.SessionLifetime <= 0 {
		cfg.SessionLifetime = 24 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 20 * time.Second
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.DatabaseDriver {
	case "pgx", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be pgx or sqlite3, got %q", c.DatabaseDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.CacheBackend)
	}
	switch c.MediaBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("media.backend must be local or s3, got %q", c.MediaBackend)
	}
	return nil
}

// NewLogger builds the process logger. format is "text" or "json".
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Must stops the process on a startup error.
func Must(err error) {
	if err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
