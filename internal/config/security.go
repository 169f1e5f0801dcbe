package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityConfig represents the security YAML. Only the multi-user provider
// (admin + optional viewer from env) is implemented.
type SecurityConfig struct {
	Security struct {
		Auth struct {
			Provider          string   `yaml:"provider"`
			MinPasswordLength int      `yaml:"min_password_length"`
			WeakPasswords     []string `yaml:"weak_passwords"`
		} `yaml:"auth"`
		JWT struct {
			SecretEnv   string `yaml:"secret_env"`
			ExpiryHours int    `yaml:"expiry_hours"`
		} `yaml:"jwt"`
	} `yaml:"security"`
}

// DefaultSecurityConfig is used when SECURITY_CONFIG_PATH is unset.
func DefaultSecurityConfig() *SecurityConfig {
	var c SecurityConfig
	c.Security.Auth.Provider = "multi-user"
	c.Security.Auth.MinPasswordLength = 12
	c.Security.Auth.WeakPasswords = []string{
		"admin", "admin123", "password", "123456", "secret", "qwerty", "letmein", "farmer", "agri",
	}
	c.Security.JWT.SecretEnv = "JWT_SECRET"
	c.Security.JWT.ExpiryHours = 1
	return &c
}

// LoadSecurityConfigFromEnv loads the YAML at SECURITY_CONFIG_PATH, or
// returns the defaults when the variable is unset.
func LoadSecurityConfigFromEnv() (*SecurityConfig, error) {
	path := os.Getenv("SECURITY_CONFIG_PATH")
	if path == "" {
		return DefaultSecurityConfig(), nil
	}
	return LoadSecurityConfig(path)
}

// LoadSecurityConfig loads security configuration from YAML file.
// The path parameter is expected to come from a trusted source (env or CLI flag).
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by trusted source, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSecurityConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateSecurityConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func validateSecurityConfig(config *SecurityConfig) error {
	if config.Security.Auth.Provider != "multi-user" {
		return fmt.Errorf("unsupported auth provider %q", config.Security.Auth.Provider)
	}

	if config.Security.Auth.MinPasswordLength < 8 {
		return fmt.Errorf("min_password_length must be at least 8")
	}

	if config.Security.JWT.SecretEnv == "" {
		return fmt.Errorf("jwt secret_env is required")
	}

	if config.Security.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt expiry_hours must be positive")
	}

	return nil
}

// MinPasswordLength returns the minimum password length requirement.
func (c *SecurityConfig) MinPasswordLength() int {
	return c.Security.Auth.MinPasswordLength
}

// WeakPasswords returns the list of rejected passwords.
func (c *SecurityConfig) WeakPasswords() []string {
	return c.Security.Auth.WeakPasswords
}

// JWTSecretEnv returns the environment variable holding the JWT secret.
func (c *SecurityConfig) JWTSecretEnv() string {
	return c.Security.JWT.SecretEnv
}

// JWTExpiryHours returns the token lifetime in hours.
func (c *SecurityConfig) JWTExpiryHours() int {
	return c.Security.JWT.ExpiryHours
}
