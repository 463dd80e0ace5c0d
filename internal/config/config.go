package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name      string `yaml:"name"`
	Port      string `yaml:"port"`
	PublicURL string `yaml:"public_url"`
	TimeZone  string `yaml:"time_zone"`
	LogLevel  string `yaml:"log_level"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

type StorageConfig struct {
	Driver    string   `yaml:"driver"`
	LocalRoot string   `yaml:"local_root"`
	S3        S3Config `yaml:"s3"`
}

// AdminConfig is the optional bootstrap administrator credential. Login only
// accepts it when both fields are set.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	Storage  StorageConfig  `yaml:"storage"`
	Admin    AdminConfig    `yaml:"admin"`
}

// NewConfig reads .env (if present), the YAML file named by CONFIG_PATH (if
// set) and finally the process environment, in that order of precedence.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "marketplace"
	cfg.App.Port = "5000"
	cfg.App.PublicURL = "http://localhost:5000"
	cfg.App.TimeZone = "Asia/Ho_Chi_Minh"
	cfg.App.LogLevel = "info"

	cfg.Postgres.Host = "localhost"
	cfg.Postgres.Port = "5432"
	cfg.Postgres.User = "postgres"
	cfg.Postgres.DBName = "marketplace"
	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute
	cfg.Postgres.MigrationsPath = "migrations"

	cfg.Storage.Driver = "local"
	cfg.Storage.LocalRoot = "uploads"
	cfg.Storage.S3.Region = "us-east-1"
	return cfg
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.App.Name, "APP_NAME")
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.PublicURL, "APP_PUBLIC_URL")
	setString(&cfg.App.TimeZone, "APP_TIME_ZONE")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")
	setInt32(&cfg.Postgres.MaxConns, "DB_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "DB_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "DB_MAX_CONN_LIFETIME")
	setString(&cfg.Postgres.MigrationsPath, "DB_MIGRATIONS_PATH")

	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.LocalRoot, "STORAGE_LOCAL_ROOT")
	setString(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.S3.Region, "S3_REGION")
	setString(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.S3.AccessKey, "S3_KEY")
	setString(&cfg.Storage.S3.SecretKey, "S3_SECRET")
	setString(&cfg.Storage.S3.PublicURL, "S3_URL")

	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
}

func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("config: app port is required")
	}
	if c.Postgres.Host == "" || c.Postgres.DBName == "" || c.Postgres.User == "" {
		return errors.New("config: postgres host, user and dbname are required")
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("config: S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
		return fmt.Errorf("config: invalid time zone %q: %w", c.App.TimeZone, err)
	}
	return nil
}

// Location returns the zone used for date filters and date formatting.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
