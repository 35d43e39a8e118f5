package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Weather    ProviderConfig
	Popularity ProviderConfig
	Social     ProviderConfig
	Scheduler  SchedulerConfig
	MQTT       MQTTConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
	Mode string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

// ProviderConfig covers one outbound HTTP data source (weather, popularity,
// social trends).
type ProviderConfig struct {
	BaseURL    string
	APIKey     string
	TimeoutSec int
}

type SchedulerConfig struct {
	Enabled            bool
	RefreshIntervalMin int
	// ForecastHour is the local hour (0-23) at which next-day forecasts are
	// regenerated.
	ForecastHour int
}

type MQTTConfig struct {
	// URL empty disables the sensor ingest worker.
	URL   string
	Topic string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	refreshMin, err := getIntEnv("REFRESH_INTERVAL_MIN", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL_MIN: %w", err)
	}
	forecastHour, err := getIntEnv("FORECAST_HOUR", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_HOUR: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
			Mode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "crowdsense"),
			Password: getEnv("DB_PASSWORD", "crowdsense_dev_password"),
			Name:     getEnv("DB_NAME", "crowdsense"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Weather: ProviderConfig{
			BaseURL:    getEnv("WEATHER_API_URL", "https://api.weatherapi.example.com/v1"),
			APIKey:     getEnv("WEATHER_API_KEY", ""),
			TimeoutSec: getIntEnvOr("WEATHER_TIMEOUT_SEC", 5),
		},
		Popularity: ProviderConfig{
			BaseURL:    getEnv("POPULARITY_API_URL", "https://api.placepulse.example.com/v1"),
			APIKey:     getEnv("POPULARITY_API_KEY", ""),
			TimeoutSec: getIntEnvOr("POPULARITY_TIMEOUT_SEC", 5),
		},
		Social: ProviderConfig{
			BaseURL:    getEnv("SOCIAL_API_URL", "https://api.trendwatch.example.com/v1"),
			APIKey:     getEnv("SOCIAL_API_KEY", ""),
			TimeoutSec: getIntEnvOr("SOCIAL_TIMEOUT_SEC", 5),
		},
		Scheduler: SchedulerConfig{
			Enabled:            getEnv("SCHEDULER_ENABLED", "true") == "true",
			RefreshIntervalMin: refreshMin,
			ForecastHour:       forecastHour,
		},
		MQTT: MQTTConfig{
			URL:   getEnv("MQTT_URL", ""),
			Topic: getEnv("MQTT_TOPIC", "crowdsense/sensors/+"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// getIntEnvOr silently falls back on parse failure; used for tunables where a
// bad value should not abort startup.
func getIntEnvOr(key string, fallback int) int {
	v, err := getIntEnv(key, fallback)
	if err != nil {
		return fallback
	}
	return v
}
