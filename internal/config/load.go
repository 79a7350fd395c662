package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leengari/localtable/internal/infrastructure/logging"
)

// Load reads configuration from a file with ENV interpolation.
// An empty path yields the defaults.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		cfg.Shell.HistoryFile = resolvePath(".", cfg.Shell.HistoryFile, getenv)
		return cfg, validate(cfg)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = filepath.Dir(absPath)

	if cfg.Table.Structure != "" {
		cfg.Table.Structure = resolvePath(cfg.BaseDir, cfg.Table.Structure, getenv)
	}
	if cfg.Shell.HistoryFile != "" {
		cfg.Shell.HistoryFile = resolvePath(cfg.BaseDir, cfg.Shell.HistoryFile, getenv)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath expands a leading ~ and anchors relative paths at baseDir
func resolvePath(baseDir, p string, getenv func(string) string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		return p
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

func validate(cfg *Config) error {
	var errs []string

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.TrimSpace(cfg.Table.Name) == "" {
		errs = append(errs, "table.name is required")
	}
	for i, keys := range cfg.Table.Indexes {
		if strings.TrimSpace(keys) == "" {
			errs = append(errs, fmt.Sprintf("table.indexes[%d]: key list is empty", i))
		}
	}
	if cfg.Table.Order != "" && len(cfg.Table.Indexes) == 0 {
		errs = append(errs, "table.order needs at least one index")
	}
	if cfg.Shell.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid shell.page_size: %d (must be positive)", cfg.Shell.PageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
