package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks the loaded configuration. Development and test
// accept the built-in defaults; production must not run on them.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errs = append(errs, "database host, port and name are required")
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if IsProduction() {
		if cfg.JWTSecret == "dev-secret" {
			errs = append(errs, "JWT_SECRET must be set explicitly in production")
		}
		if cfg.DBPassword == "postgres" {
			errs = append(errs, "DB_PASSWORD must be set explicitly in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
