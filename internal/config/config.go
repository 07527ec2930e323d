package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Output  OutputConfig
	Mock    MockConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	Store          string // "file", "redis" or "memory"
	TokenFile      string
	RedisURL       string
	RedisKeyPrefix string
}

type OutputConfig struct {
	DownloadDir string
	ChartDir    string
}

type MockConfig struct {
	Port         string
	DemoUser     string
	DemoPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/chemviz.log"),
		},
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:8000/api"),
			TimeoutSeconds: getEnvAsInt("HTTP_TIMEOUT_SECONDS", 60),
		},
		Session: SessionConfig{
			Store:          getEnv("TOKEN_STORE", TokenStoreFile),
			TokenFile:      getEnv("TOKEN_FILE", defaultTokenFile()),
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "chemviz:"),
		},
		Output: OutputConfig{
			DownloadDir: getEnv("DOWNLOAD_DIR", "downloads"),
			ChartDir:    getEnv("CHART_DIR", "charts"),
		},
		Mock: MockConfig{
			Port:         getEnv("MOCK_API_PORT", "8000"),
			DemoUser:     getEnv("MOCK_DEMO_USER", "demo"),
			DemoPassword: getEnv("MOCK_DEMO_PASSWORD", "demo123"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) HTTPTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "chemviz", "session.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
