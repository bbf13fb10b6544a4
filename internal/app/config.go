package app

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voyagekit/tripcraft-backend/internal/platform/envutil"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type Config struct {
	Port           string   `yaml:"port"`
	Environment    string   `yaml:"environment"`
	Version        string   `yaml:"version"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// SwapRequirePreferredSlot makes the exchange flow refuse slots outside an
	// activity's preferred time of day.
	SwapRequirePreferredSlot bool `yaml:"swap_require_preferred_slot"`
}

// LoadConfig reads the environment, then lets the optional YAML file named by
// TRIPCRAFT_CONFIG_FILE override it.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:                     envutil.GetEnv("PORT", "8080", log),
		Environment:              envutil.GetEnv("ENVIRONMENT", "development", log),
		Version:                  envutil.GetEnv("VERSION", "dev", log),
		SwapRequirePreferredSlot: envutil.GetEnvAsBool("SWAP_REQUIRE_PREFERRED_SLOT", false, log),
	}
	if origins := envutil.GetEnv("ALLOWED_ORIGINS", "", log); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	path := envutil.GetEnv("TRIPCRAFT_CONFIG_FILE", "", log)
	if path == "" {
		return cfg
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("config file unreadable, using env only", "path", path, "error", err)
		return cfg
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Warn("config file invalid, using env only", "path", path, "error", err)
	}
	return cfg
}
