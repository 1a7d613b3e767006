package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "APP_"
	defaultDir = "configs"
)

// LoadOption adjusts where Load looks for configuration.
type LoadOption func(*loader)

type loader struct {
	dir string
}

// WithDir reads base.yaml and the profile file from dir instead of configs/.
func WithDir(dir string) LoadOption {
	return func(l *loader) { l.dir = dir }
}

// Load layers the configuration sources, later ones winning:
//
//	built-in defaults
//	configs/base.yaml
//	configs/<profile>.yaml
//	APP_ environment variables
//
// Missing files are skipped. The result is not validated; call Validate.
func Load(profile string, opts ...LoadOption) (*Config, error) {
	l := loader{dir: defaultDir}
	for _, opt := range opts {
		opt(&l)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"base"}
	if profile != "" {
		files = append(files, profile)
	}

	for _, name := range files {
		if err := loadOptionalYAML(k, filepath.Join(l.dir, name+".yaml")); err != nil {
			return nil, fmt.Errorf("loading %s config: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

func loadOptionalYAML(k *koanf.Koanf, path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// envKey maps APP_SERVER_PORT to server.port. A double underscore keeps a
// literal underscore: APP_PAYMENTS_PUBLIC__BASE__URL is payments.public_base_url.
func envKey(name string) string {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "_", ".")
	}

	return strings.Join(parts, "_")
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "pay-public-api",
		"app.version":     "dev",
		"app.environment": "local",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": 1 << 20,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/pay-public-api.log",
		"log.file.max_size":    100,
		"log.file.max_backups": 3,
		"log.file.max_age":     28,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.service_name":  "pay-public-api",
		"telemetry.sampling_rate": 1.0,

		"auth.account_header": DefaultAccountHeader,

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                3,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  2.0,
		"client.retry.jitter_factor":               0.25,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       DefaultTransportIdleConnTimeout.String(),

		"services.connector.name":                  "connector",
		"services.connector.base_url":              "http://localhost:9300",
		"services.direct_debit_connector.name":     "direct-debit-connector",
		"services.direct_debit_connector.base_url": "http://localhost:10100",

		"payments.public_base_url":     "http://localhost:8080",
		"payments.validation_strategy": ValidationStrategyFailFast,

		"rate_limit.enabled":             true,
		"rate_limit.requests_per_second": 25.0,
		"rate_limit.burst":               50,
	}
}
