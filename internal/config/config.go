package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT string
	// "postgres" or "fixture"; fixture serves FIXTURE_PATH from memory
	DATA_SOURCE  string
	FIXTURE_PATH string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH   string
	LOG_LEVEL       string
	LOG_MAX_SIZE_MB int
	LOG_MAX_BACKUPS int
	// search and document stores, disabled when empty
	ELASTIC_URL          string
	ELASTIC_INDEX        string
	DATASTORE_PROJECT_ID string
	// finance data source
	FINANCE_API_URL     string
	FINANCE_API_TIMEOUT time.Duration
	// analytics
	FINANCE_ANCHOR_DATE  time.Time
	RISK_MEDIAN_SCOPE    string
	REPORT_TEMPLATE_PATH string
}

// LoadEnvConfig reads .env when present and fills DefaultEnvConfig. A missing
// .env file is not an error; values then come from the process environment.
func LoadEnvConfig(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		DATA_SOURCE:          getEnvString("DATA_SOURCE", "postgres"),
		FIXTURE_PATH:         getEnvString("FIXTURE_PATH", "testdata/fixture.yaml"),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
		LOG_MAX_SIZE_MB:      getEnvInt("LOG_MAX_SIZE_MB", 100),
		LOG_MAX_BACKUPS:      getEnvInt("LOG_MAX_BACKUPS", 5),
		ELASTIC_URL:          getEnvString("ELASTIC_URL", ""),
		ELASTIC_INDEX:        getEnvString("ELASTIC_INDEX", "employees"),
		DATASTORE_PROJECT_ID: getEnvString("DATASTORE_PROJECT_ID", ""),
		FINANCE_API_URL:      getEnvString("FINANCE_API_URL", "http://localhost:8000"),
		FINANCE_API_TIMEOUT:  getEnvDuration("FINANCE_API_TIMEOUT", 10*time.Second),
		FINANCE_ANCHOR_DATE:  getEnvDate("FINANCE_ANCHOR_DATE", time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC)),
		RISK_MEDIAN_SCOPE:    getEnvString("RISK_MEDIAN_SCOPE", "global"),
		REPORT_TEMPLATE_PATH: getEnvString("REPORT_TEMPLATE_PATH", ""),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

// getEnvDate accepts "2006-01-02" or "2006-01".
func getEnvDate(key string, fallback time.Time) time.Time {
	if val := os.Getenv(key); val != "" {
		for _, layout := range []string{"2006-01-02", "2006-01"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t
			}
		}
	}
	return fallback
}
