package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	Storage   StorageConfig
	Search    SearchConfig
	TryOn     TryOnConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Name        string `default:"styleswipe" env:"APP_NAME"`
	Version     string `default:"1.0.0" env:"APP_VERSION"`
	Environment string `default:"development" env:"APP_ENV"`
	LogLevel    string `default:"info" env:"LOG_LEVEL"`
}

func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

type HTTPConfig struct {
	Port                   int `default:"8000" env:"HTTP_PORT"`
	ShutdownTimeoutSeconds int `default:"10" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

func (c HTTPConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

type DBConfig struct {
	Host                   string `default:"localhost" env:"DB_HOST"`
	Port                   string `default:"5432" env:"DB_PORT"`
	User                   string `default:"postgres" env:"DB_USER"`
	Password               string `default:"postgres" env:"DB_PASSWORD"`
	Name                   string `default:"styleswipe" env:"DB_NAME"`
	SSLMode                string `default:"disable" env:"DB_SSLMODE"`
	MaxOpenConns           int    `default:"25" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `default:"5" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `default:"5" env:"DB_CONN_MAX_LIFETIME"`
	MigrateOnStart         bool   `default:"true" env:"DB_MIGRATE_ON_START"`
}

type StorageConfig struct {
	ImagesDir string `default:"data/user_images" env:"IMAGES_DIR"`
}

type SearchConfig struct {
	APIKey                 string `env:"SERPI_API"`
	Endpoint               string `default:"https://serpapi.com/search" env:"SERPAPI_ENDPOINT"`
	NumResults             int    `default:"5" env:"SEARCH_NUM_RESULTS"`
	TimeoutSeconds         int    `default:"30" env:"SEARCH_TIMEOUT"`
	DownloadTimeoutSeconds int    `default:"30" env:"SEARCH_DOWNLOAD_TIMEOUT"`
}

func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c SearchConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

type TryOnConfig struct {
	APIKey string `env:"IMAGE_API_KEY"`
	Model  string `default:"gemini-2.5-flash-image" env:"IMAGE_MODEL"`
}

// RedisConfig enables the search cache when Addr is set
type RedisConfig struct {
	Addr       string `env:"REDIS_ADDR"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `default:"0" env:"REDIS_DB"`
	TTLSeconds int    `default:"3600" env:"SEARCH_CACHE_TTL"`
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RateLimitConfig limits upload and preference calls per client IP. It needs Redis.
type RateLimitConfig struct {
	MaxRequests   int `default:"10" env:"RATE_LIMIT_REQUESTS"`
	WindowSeconds int `default:"60" env:"RATE_LIMIT_WINDOW"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// BreakerConfig guards the SerpApi and Gemini calls. MaxFailures 0 disables it.
type BreakerConfig struct {
	MaxFailures int `default:"5" env:"BREAKER_MAX_FAILURES"`
	OpenSeconds int `default:"30" env:"BREAKER_OPEN_SECONDS"`
}

func (c BreakerConfig) OpenFor() time.Duration {
	return time.Duration(c.OpenSeconds) * time.Second
}

type KafkaConfig struct {
	Enabled       bool   `default:"false" env:"KAFKA_ENABLED"`
	BrokersString string `default:"localhost:9092" env:"KAFKA_BROKERS"`
	GroupID       string `default:"styleswipe-events" env:"KAFKA_GROUP_ID"`
}

func (c KafkaConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.BrokersString, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type TracingConfig struct {
	Enabled        bool   `default:"false" env:"TRACING_ENABLED"`
	JaegerEndpoint string `default:"http://localhost:14268/api/traces" env:"JAEGER_ENDPOINT"`
}

// Load reads .env if present, then the optional config file, then the
// environment. Environment variables win.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var paths []string
	for _, f := range files {
		if f != "" {
			paths = append(paths, f)
		}
	}
	if err := configor.Load(&cfg, paths...); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
