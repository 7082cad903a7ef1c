package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type PaymentsConfig struct {
	DepositLimitRatio float64
}

type ReportsConfig struct {
	DefaultFrom  time.Time
	DefaultLimit int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Payments    PaymentsConfig
	Reports     ReportsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Payments: PaymentsConfig{
			DepositLimitRatio: v.GetFloat64("DEPOSIT_LIMIT_RATIO"),
		},
		Reports: ReportsConfig{
			DefaultLimit: v.GetInt("REPORTS_DEFAULT_LIMIT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7092
	}
	if cfg.Payments.DepositLimitRatio == 0 {
		cfg.Payments.DepositLimitRatio = 0.25
	}
	if cfg.Reports.DefaultLimit == 0 {
		cfg.Reports.DefaultLimit = 2
	}

	defaultFrom := v.GetString("REPORTS_DEFAULT_FROM")
	if defaultFrom == "" {
		defaultFrom = "1999-11-29"
	}
	from, err := time.Parse("2006-01-02", defaultFrom)
	if err != nil {
		return nil, fmt.Errorf("REPORTS_DEFAULT_FROM must be YYYY-MM-DD: %w", err)
	}
	cfg.Reports.DefaultFrom = from

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Payments.DepositLimitRatio < 0 || cfg.Payments.DepositLimitRatio > 1 {
		return fmt.Errorf("DEPOSIT_LIMIT_RATIO must be between 0 and 1")
	}
	return nil
}
