package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the BARTER_ prefix with underscores
// for nesting (BARTER_DATABASE_URL, BARTER_AUTH_JWT_SECRET, ...).
// Returns a populated Config or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_min", 60)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; the environment can carry everything.
	}

	v.SetEnvPrefix("BARTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind the ones we rely on explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_min",
		"auth.bcrypt_cost",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
