package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/models"
	"github.com/Skotchmaster/role_gate/internal/service"
	envcfg "github.com/Skotchmaster/role_gate/pkg/config"
	"github.com/Skotchmaster/role_gate/pkg/db"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("notice: .env file not found, using system environment variables", "error", err)
	}

	cfg := &Config{
		HTTPAddr:     envcfg.EnvDefault("HTTP_ADDR", ":8080"),
		LogLevel:     envcfg.EnvDefault("LOG_LEVEL", "info"),
		DBDriver:     strings.ToLower(envcfg.EnvDefault("DB_DRIVER", db.DriverPostgres)),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:     envcfg.EnvDurationDefault("TOKEN_TTL", service.DefaultTokenTTL),
		BcryptCost:   envcfg.EnvIntDefault("BCRYPT_COST", bcrypt.DefaultCost),
		KafkaBrokers: envcfg.CSV(os.Getenv("KAFKA_BROKERS")),
		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESIndex:      envcfg.EnvDefault("ES_INDEX", "users"),
	}

	dsn, err := databaseDSN(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	cfg.DBDSN = dsn

	if err := envcfg.NonEmpty(string(cfg.JWTSecret), "JWT_SECRET"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func databaseDSN(driver string) (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}

	switch driver {
	case db.DriverSQLite:
		return envcfg.EnvDefault("DB_NAME", "role_gate.db"), nil
	case db.DriverPostgres:
		host := os.Getenv("DB_HOST")
		port := envcfg.EnvDefault("DB_PORT", "5432")
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		name := os.Getenv("DB_NAME")
		if err := envcfg.NonEmpty(host, "DB_HOST", user, "DB_USER", name, "DB_NAME"); err != nil {
			return "", fmt.Errorf("%w (or set DATABASE_URL)", err)
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(user, password),
			Host:     host + ":" + port,
			Path:     "/" + name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}
