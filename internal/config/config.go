package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultFile is the configuration file looked up when none is given on the command line.
const DefaultFile = "phonebook.yml"

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// defaults are applied before the configuration file is read, so a missing file or a missing key
// still yields a usable configuration.
var defaults = map[string]any{
	"logger.level":                     "info",
	"logger.format":                    "text",
	"storage.driver":                   "text",
	"storage.path":                     "phonebook.txt",
	"storage.dsn":                      "",
	"app.language":                     "en",
	"app.page_size":                    5,
	"server.port":                      "${PORT:-8080}",
	"server.gin_logging":               "${GIN_LOGGING:-true}",
	"server.autosave":                  true,
	"server.rate_limit_rps":            100,
	"server.rate_limit_burst":          10,
	"server.cors_allowed_origins":      "*",
	"server.graceful_shutdown_timeout": 5,
}

// expandEnvWithDefaults replaces ${VAR:-default} with the value of the environment variable VAR,
// or with default when VAR is unset or empty.
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}
		if value := os.Getenv(matches[1]); value != "" {
			return value
		}
		if len(matches) > 2 {
			return matches[2]
		}
		return ""
	})
}

// InitConfig reads configFile from fsys into a new C. Default values are registered first; a
// configuration file that does not exist is not an error. String values may reference
// environment variables as ${VAR:-default}.
func InitConfig[C any](fsys afero.Fs, configFile string, defaultValues map[string]any) (*C, error) {
	v := viper.New()
	v.SetFs(fsys)
	for k, value := range defaultValues {
		v.SetDefault(k, value)
	}

	ext := strings.TrimLeft(filepath.Ext(configFile), ".")
	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if value == "" {
			continue
		}
		expanded := expandEnvWithDefaults(value)
		if expanded == value {
			continue
		}
		switch lower := strings.ToLower(expanded); lower {
		case "true", "on":
			v.Set(k, true)
		case "false", "off":
			v.Set(k, false)
		default:
			if intValue, err := strconv.Atoi(expanded); err == nil {
				v.Set(k, intValue)
			} else {
				v.Set(k, expanded)
			}
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	return cfg, nil
}

// Load reads the phonebook configuration from configFile on fsys.
func Load(fsys afero.Fs, configFile string) (*Config, error) {
	return InitConfig[Config](fsys, configFile, defaults)
}
