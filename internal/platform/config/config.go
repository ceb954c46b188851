// Package config provides helmstack configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the settings shared by every helmstack command. Command-line
// flags override the values loaded here.
type Config struct {
	LogLevel string
	Debug    bool

	StackFile   string // HELMSTACK_FILE
	Environment string // empty means no overlays
	KubeContext string // empty means discover via kubectl
	HelmBinary  string
	KubectlBin  string
	DryRun      bool

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

// Load reads configuration from environment variables and applies defaults
// for LogLevel ("info"), StackFile ("helmstack.yaml"), HelmBinary ("helm")
// and KubectlBin ("kubectl").
func Load() (Config, error) {
	cfg := Config{
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		StackFile:   getEnvOrDefault("HELMSTACK_FILE", "helmstack.yaml"),
		Environment: os.Getenv("HELMSTACK_ENVIRONMENT"),
		KubeContext: os.Getenv("HELM_KUBECONTEXT"),
		HelmBinary:  getEnvOrDefault("HELM_BIN", "helm"),
		KubectlBin:  getEnvOrDefault("KUBECTL_BIN", "kubectl"),
	}

	var err error
	if cfg.DryRun, err = parseBoolOrDefault("HELMSTACK_DRY_RUN", false); err != nil {
		return Config{}, err
	}
	if cfg.Debug, err = parseBoolOrDefault("HELMSTACK_DEBUG", false); err != nil {
		return Config{}, err
	}

	loadOTelConfig(&cfg)

	return cfg, nil
}

// EffectiveLogLevel is "debug" when Debug is set, LogLevel otherwise.
func (c Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

func getEnvOrDefault(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func parseBoolOrDefault(envKey string, defaultValue bool) (bool, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return b, nil
}

func loadOTelConfig(cfg *Config) {
	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"
}
