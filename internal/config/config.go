package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the facility locator.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the public JSON API.
// - HealthPort: The port for the monitoring server (healthz, metrics).
// - ProviderType: The type of geocoding provider to use (google, nominatim).
// - APIKey: The Google API key, passed explicitly to geocoding and places clients.
// - Language: Preferred language for places and geocoding responses.
// - Workers: Number of concurrent geocode requests; 1 means strictly sequential.
// - RequestTimeout: Upper bound for a single geocode request.
// - FailurePolicy: What a geocoding pass does on a provider error (skip, abort).
// - Dataset: Where the static facility dataset is read from.
// - Database: Configuration settings for the PostgreSQL dataset source.
type Config struct {
	Env            string         `mapstructure:"env"`             // Env is the current environment: local, development, production.
	Port           int            `mapstructure:"port"`            // Port is the API server port.
	HealthPort     int            `mapstructure:"health_port"`     // HealthPort is the monitoring server port.
	ProviderType   string         `mapstructure:"provider_type"`   // ProviderType specifies which geocoding provider to use.
	APIKey         string         `mapstructure:"google_api_key"`  // APIKey for Google geocoding and places.
	Language       string         `mapstructure:"language"`        // Language for provider responses.
	Workers        int            `mapstructure:"workers"`         // Workers is the geocoding concurrency.
	RequestTimeout time.Duration  `mapstructure:"request_timeout"` // RequestTimeout bounds one geocode request.
	FailurePolicy  string         `mapstructure:"failure_policy"`  // FailurePolicy is skip or abort.
	Dataset        DatasetConfig  `mapstructure:"dataset"`         // Dataset describes the facility dataset source.
	Database       PostgresConfig `mapstructure:"postgres"`        // Database holds the postgres database configuration.
}

// DatasetConfig tells the loader where the facility records live.
type DatasetConfig struct {
	Source string `mapstructure:"source"` // Source is one of json, csv, xlsx, postgres.
	Path   string `mapstructure:"path"`   // Path to the dataset file (file sources only).
	Sheet  string `mapstructure:"sheet"`  // Sheet name for xlsx; empty picks the first sheet.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// MustLoad reads .env (if present), an optional YAML file named by DIALYSPHERE_CONFIG
// and the environment, and returns the resulting Config. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := newViper()

	if path := os.Getenv("DIALYSPHERE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file: " + err.Error())
		}
	}

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		panic("failed to parse port for api server from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	timeout, err := time.ParseDuration(v.GetString("request_timeout"))
	if err != nil {
		panic("failed to parse request timeout from configuration")
	}

	return &Config{
		Env:            v.GetString("env"),
		Port:           port,
		HealthPort:     healthPort,
		ProviderType:   v.GetString("provider_type"),
		APIKey:         v.GetString("google_api_key"),
		Language:       v.GetString("language"),
		Workers:        workers,
		RequestTimeout: timeout,
		FailurePolicy:  strings.ToLower(v.GetString("failure_policy")),
		Dataset: DatasetConfig{
			Source: strings.ToLower(v.GetString("dataset.source")),
			Path:   v.GetString("dataset.path"),
			Sheet:  v.GetString("dataset.sheet"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DIALYSPHERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8000")
	v.SetDefault("health_port", "8080")
	v.SetDefault("provider_type", "google")
	v.SetDefault("google_api_key", "")
	v.SetDefault("language", "en")
	v.SetDefault("workers", "1")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("failure_policy", "skip")
	v.SetDefault("dataset.source", "json")
	v.SetDefault("dataset.path", "DFC_Facility.json")
	v.SetDefault("dataset.sheet", "")

	// Database settings keep the unprefixed names shared with other services.
	_ = v.BindEnv("postgres.host", "DB_HOST")
	_ = v.BindEnv("postgres.port", "DB_PORT")
	_ = v.BindEnv("postgres.user", "DB_USERNAME")
	_ = v.BindEnv("postgres.password", "DB_PASSWORD")
	_ = v.BindEnv("postgres.db_name", "DB_NAME")
	v.SetDefault("postgres.port", "5432")

	return v
}
