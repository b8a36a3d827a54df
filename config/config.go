package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		// Driver selects the persistence backing: "postgres" or "sqlite".
		Driver   string `mapstructure:"driver"`
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
		SQLite struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
	} `mapstructure:"repositories"`
	Auth     AuthConfig `mapstructure:"auth"`
	Items    ItemConfig `mapstructure:"items"`
	Analysis struct {
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"analysis"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// AuthConfig holds identity token settings. SecretKey is never present in the
// config file; it is bound to APP_AUTH_SECRETKEY only.
type AuthConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	TokenTTL   time.Duration `mapstructure:"tokenTTL"`
	Issuer     string        `mapstructure:"issuer"`
	CookieName string        `mapstructure:"cookieName"`
	Secure     bool          `mapstructure:"secureCookie"`
}

// ItemConfig selects how item attribution is interpreted.
type ItemConfig struct {
	// CreatorMode is "name" (free-text creator) or "user" (must reference a
	// registered user). One mode per deployment.
	CreatorMode string `mapstructure:"creatorMode"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Explicit binds so env values apply even when the key is absent from the file.
	_ = v.BindEnv("auth.secretKey", "APP_AUTH_SECRETKEY")
	_ = v.BindEnv("repositories.driver", "APP_REPOSITORIES_DRIVER")
	_ = v.BindEnv("repositories.postgres.password", "APP_REPOSITORIES_POSTGRES_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	if config.Auth.SecretKey == "" {
		if config.Mode == "development" || config.Mode == "" {
			// Dev-only fallback so a fresh checkout runs; production must set the env var.
			config.Auth.SecretKey = "dev-only-insecure-secret"
		} else {
			return Config{}, fmt.Errorf("auth secret key is not configured (set APP_AUTH_SECRETKEY)")
		}
	}

	return config, nil
}
