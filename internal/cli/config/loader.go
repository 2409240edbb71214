package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/lingvo-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".lingvo", "cli.yaml")
}

// Source describes where the effective configuration came from.
type Source struct {
	// Path is the configuration file consulted.
	Path string
	// FileLoaded is false when the default file does not exist.
	FileLoaded bool
	// Values holds the merged values by dotted key, before home expansion.
	Values map[string]any
}

// Keys returns the merged keys in sorted order.
func (s *Source) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load merges defaults, the config file, LINGVO_* variables and flags.
//
// An empty path means DefaultConfigPath and tolerates a missing file; an
// explicit path must exist. Flag keys are dotted koanf keys.
func Load(path string, flags map[string]any) (*Config, error) {
	cfg, _, err := Inspect(path, flags)
	return cfg, err
}

// Inspect loads like Load and also reports the merged sources.
func Inspect(path string, flags map[string]any) (*Config, *Source, error) {
	opts := []confloader.Option{confloader.WithDefaults(defaultMap())}
	if path == "" {
		path = DefaultConfigPath()
		opts = append(opts, confloader.WithConfigFile(path), confloader.WithOptionalFile())
	} else {
		path = ExpandHome(path)
		opts = append(opts, confloader.WithConfigFile(path))
	}

	l := confloader.NewLoader(opts...)
	cfg := &Config{}
	if err := l.Load(cfg); err != nil {
		return nil, nil, err
	}
	if len(flags) > 0 {
		if err := l.LoadMap(flags); err != nil {
			return nil, nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	cfg.API.CAFile = ExpandHome(cfg.API.CAFile)
	cfg.Session.StoreDir = ExpandHome(cfg.Session.StoreDir)
	cfg.Metrics.Textfile = ExpandHome(cfg.Metrics.Textfile)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	src := &Source{Path: path, FileLoaded: l.FileLoaded(), Values: make(map[string]any)}
	all := l.All()
	for _, key := range l.Keys() {
		if v, ok := all[key]; ok {
			src.Values[key] = v
		}
	}
	return cfg, src, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Marshal renders cfg as YAML with durations in their string form.
func Marshal(cfg *Config) ([]byte, error) {
	doc := map[string]any{
		"api": map[string]any{
			"base_url":   cfg.API.BaseURL,
			"timeout":    cfg.API.Timeout.String(),
			"rate_limit": cfg.API.RateLimit,
			"burst":      cfg.API.Burst,
			"ca_file":    cfg.API.CAFile,
		},
		"session": map[string]any{
			"store_dir":     cfg.Session.StoreDir,
			"ttl":           cfg.Session.TTL.String(),
			"logout_policy": cfg.Session.LogoutPolicy,
			"passphrase":    cfg.Session.Passphrase,
		},
		"list":    map[string]any{"clear_on_error": cfg.List.ClearOnError},
		"output":  map[string]any{"format": cfg.Output.Format},
		"log":     map[string]any{"level": cfg.Log.Level, "format": cfg.Log.Format},
		"metrics": map[string]any{"textfile": cfg.Metrics.Textfile},
	}
	return yaml.Marshal(doc)
}

// Save writes cfg to path with owner-only permissions. It refuses to
// overwrite an existing file unless force is set.
func Save(cfg *Config, path string, force bool) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandHome(path)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
