package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// GetEnv returns the trimmed value of key, falling back to def when unset.
func GetEnv(key, def string, log *logger.Logger) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		if log != nil {
			log.Debug("env var unset, using default", "key", key)
		}
		return def
	}
	return val
}

func GetEnvAsInt(key string, def int, log *logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("env var not an int, using default", "key", key, "value", raw)
		}
		return def
	}
	return n
}

func GetEnvAsBool(key string, def bool, log *logger.Logger) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch raw {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Warn("env var not a bool, using default", "key", key, "value", raw)
		}
		return def
	}
}
