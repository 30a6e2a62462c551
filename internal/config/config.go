// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. Environment always wins so
// deployments can keep one file per environment and still patch single
// values.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr        string `yaml:"http_addr"`
	LogLevel        string `yaml:"log_level"`
	DatabaseURL     string `yaml:"database_url"`
	AuthzModelPath  string `yaml:"authz_model_path"`
	AuthzPolicyPath string `yaml:"authz_policy_path"`
	ConjussTable    string `yaml:"conjuss_table"`
}

// Load reads path (when non-empty and present) and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		AuthzModelPath:  "configs/authz/model.conf",
		AuthzPolicyPath: "configs/authz/policy.csv",
		ConjussTable:    "configs/conjuss.yaml",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromEnvParts()
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("AUTHZ_MODEL_PATH"); v != "" {
		cfg.AuthzModelPath = v
	}
	if v := os.Getenv("AUTHZ_POLICY_PATH"); v != "" {
		cfg.AuthzPolicyPath = v
	}
	if v := os.Getenv("CONJUSS_TABLE"); v != "" {
		cfg.ConjussTable = v
	}
}

func dsnFromEnvParts() string {
	host := getenvDefault("DB_HOST", "127.0.0.1")
	port := getenvDefault("DB_PORT", "5432")
	user := getenvDefault("DB_USER", "app")
	pass := getenvDefault("DB_PASSWORD", "app")
	name := getenvDefault("DB_NAME", "staffcore")
	sslmode := getenvDefault("DB_SSLMODE", "disable")

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pass),
		Host:   host + ":" + port,
		Path:   "/" + name,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
