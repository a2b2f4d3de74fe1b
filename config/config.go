package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type DBConfig struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME"`
}

// DSN is empty when no database is configured.
func (c DBConfig) DSN() string {
	if c.Name == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.Username, c.Password, c.Host, c.Port, c.Name)
}

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	BucketName      string `env:"BUCKET_NAME"`
}

func (c R2Config) Enabled() bool {
	return c.BucketName != "" && c.AccountID != ""
}

type GeminiConfig struct {
	APIKey       string        `env:"API_KEY"`
	RankingModel string        `env:"RANKING_MODEL" envDefault:"gemini-2.5-flash"`
	CatalogModel string        `env:"CATALOG_MODEL" envDefault:"gemini-2.0-flash-lite"`
	RankTopK     int           `env:"RANK_TOP_K" envDefault:"3"`
	RankTimeout  time.Duration `env:"RANK_TIMEOUT" envDefault:"30s"`
}

type WeatherConfig struct {
	GeocodingURL     string        `env:"GEOCODING_URL" envDefault:"https://geocoding-api.open-meteo.com/v1/search"`
	ForecastURL      string        `env:"FORECAST_URL" envDefault:"https://api.open-meteo.com/v1/forecast"`
	DefaultLatitude  float64       `env:"DEFAULT_LATITUDE" envDefault:"36.73225"`
	DefaultLongitude float64       `env:"DEFAULT_LONGITUDE" envDefault:"3.08746"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type CatalogConfig struct {
	// "remote" reads the published JSON catalog, "database" reads clothing_items.
	Source          string        `env:"SOURCE" envDefault:"remote"`
	BaseURL         string        `env:"BASE_URL" envDefault:"https://raw.githubusercontent.com/LaissezMoiDancer/MyOOTD/main/processed_json/"`
	ItemCount       int           `env:"ITEM_COUNT" envDefault:"13"`
	AssetsBaseURL   string        `env:"ASSETS_BASE_URL" envDefault:"https://raw.githubusercontent.com/LaissezMoiDancer/MyOOTD/main/assets/"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30m"`
	SyncCron        string        `env:"SYNC_CRON" envDefault:"0 */6 * * *"`
}

type Config struct {
	Address string `env:"ADDRESS" envDefault:":8083"`
	Env     string `env:"ENV" envDefault:"local"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN string `env:"SENTRY_DSN"`

	JWTSecret          string  `env:"JWT_SECRET"`
	AsyncBrokerAddress string  `env:"ASYNC_BROKER_ADDRESS" envDefault:"localhost:6379"`
	RateLimit          float64 `env:"RATE_LIMIT" envDefault:"3"`

	DefaultCity      string `env:"DEFAULT_CITY" envDefault:"Algiers"`
	DefaultFormality string `env:"DEFAULT_FORMALITY" envDefault:"Casual"`

	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"6h"`
	FallbackCacheTTL time.Duration `env:"FALLBACK_CACHE_TTL" envDefault:"5m"`

	TelegramBot   bool   `env:"TELEGRAM_BOT" envDefault:"false"`
	TelegramToken string `env:"TG_TOKEN"`

	DB      DBConfig      `envPrefix:"DB_"`
	R2      R2Config      `envPrefix:"R2_"`
	Gemini  GeminiConfig  `envPrefix:"GEMINI_"`
	Weather WeatherConfig `envPrefix:"WEATHER_"`
	Catalog CatalogConfig `envPrefix:"CATALOG_"`
}

// Load reads .env when present and parses the environment into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Gemini.RankTopK <= 0 {
		return Config{}, fmt.Errorf("GEMINI_RANK_TOP_K must be positive, got %d", cfg.Gemini.RankTopK)
	}
	return cfg, nil
}
