package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"todo-service/internal/utils"
)

const (
	SchemeMongo    = "mongodb"
	SchemePostgres = "postgres"
	SchemeMemory   = "memory"
)

type Config struct {
	Port            int
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	BcryptCost      int
	HashWorkers     int
	RedisAddr       string
	CORSOrigin      string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load собирает конфигурацию: флаги командной строки, затем окружение
// (включая .env), затем значения по умолчанию.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("todo-api", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "путь к .env файлу")
	flags.Int("port", 4000, "порт HTTP сервера")
	flags.String("database-url", "", "строка подключения: mongodb://, postgres:// или memory://")
	flags.String("log-level", "", "уровень логирования: debug, info, warn, error")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil {
		utils.LogInfo("Config", "Нет файла %s, используются переменные окружения", *envFile)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 4000)
	v.SetDefault("database_url", "mongodb://localhost:27017/todo-app")
	v.SetDefault("jwt_secret", "your-secret-key")
	v.SetDefault("jwt_ttl", 24*time.Hour)
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("hash_workers", runtime.NumCPU())
	v.SetDefault("redis_addr", "")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	// MONGODB_URI - прежнее имя переменной
	if err := v.BindEnv("database_url", "DATABASE_URL", "MONGODB_URI"); err != nil {
		return nil, err
	}

	for key, flag := range map[string]string{
		"port":         "port",
		"database_url": "database-url",
		"log_level":    "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Port:            v.GetInt("port"),
		DatabaseURL:     v.GetString("database_url"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTTTL:          v.GetDuration("jwt_ttl"),
		BcryptCost:      v.GetInt("bcrypt_cost"),
		HashWorkers:     v.GetInt("hash_workers"),
		RedisAddr:       v.GetString("redis_addr"),
		CORSOrigin:      v.GetString("cors_origin"),
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("некорректный порт: %d", c.Port))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET не может быть пустым"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("некорректный JWT_TTL: %v", c.JWTTTL))
	}
	if c.HashWorkers <= 0 {
		errs = append(errs, fmt.Errorf("некорректный HASH_WORKERS: %d", c.HashWorkers))
	}
	if _, err := c.DatabaseScheme(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DatabaseScheme определяет бэкенд хранилища по схеме DATABASE_URL
func (c *Config) DatabaseScheme() (string, error) {
	scheme, _, found := strings.Cut(c.DatabaseURL, "://")
	if !found {
		return "", fmt.Errorf("некорректный DATABASE_URL: %q", c.DatabaseURL)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return SchemeMongo, nil
	case "postgres", "postgresql":
		return SchemePostgres, nil
	case "memory":
		return SchemeMemory, nil
	default:
		return "", fmt.Errorf("неподдерживаемая схема DATABASE_URL: %q", scheme)
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
