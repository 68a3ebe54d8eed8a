package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"remote-sync/internal/rsync"
	"remote-sync/internal/sshconfig"
)

const ConfigFileName = "remote-sync.yaml"

// EnvConfigPath overrides the config search when set.
const EnvConfigPath = "REMOTE_SYNC_CONFIG"

type Config struct {
	SSHConfig      string   `yaml:"ssh_config"`
	SSHBin         string   `yaml:"ssh_bin"`
	RsyncBin       string   `yaml:"rsync_bin"`
	ControlPersist string   `yaml:"control_persist"`
	ControlPath    string   `yaml:"control_path"`
	NoPerms        bool     `yaml:"no_perms"`
	ExtraExcludes  []string `yaml:"extra_excludes,omitempty"`
	DefaultHost    string   `yaml:"default_host,omitempty"`

	// path the config was loaded from; empty when running on defaults
	source string `yaml:"-"`
}

// Default returns the settings used when no config file exists.
func Default(home string) *Config {
	return &Config{
		SSHConfig:      sshconfig.DefaultPath(home),
		SSHBin:         rsync.DefaultSSHBin,
		RsyncBin:       rsync.DefaultRsyncBin,
		ControlPersist: rsync.DefaultControlPersist,
		ControlPath:    rsync.DefaultControlPath,
	}
}

// Source reports which file the config came from, or "" for defaults.
func (c *Config) Source() string { return c.source }

// RsyncOptions converts the settings into invocation options. noPerms from
// the command line can only switch the flag on.
func (c *Config) RsyncOptions(noPerms bool) rsync.Options {
	return rsync.Options{
		SSHBin:         c.SSHBin,
		ControlPersist: c.ControlPersist,
		ControlPath:    c.ControlPath,
		ExtraExcludes:  c.ExtraExcludes,
		NoPerms:        c.NoPerms || noPerms,
	}
}

// ValidateConfig validates the configuration for required fields
func ValidateConfig(cfg *Config) error {
	var validationErrors []string

	if strings.TrimSpace(cfg.SSHBin) == "" {
		validationErrors = append(validationErrors, "ssh_bin cannot be empty")
	}

	if strings.TrimSpace(cfg.RsyncBin) == "" {
		validationErrors = append(validationErrors, "rsync_bin cannot be empty")
	}

	// ssh also accepts yes/no and bare seconds for ControlPersist
	persist := strings.TrimSpace(cfg.ControlPersist)
	switch {
	case persist == "":
		validationErrors = append(validationErrors, "control_persist cannot be empty")
	case persist == "yes" || persist == "no":
	case isDigits(persist):
	default:
		if _, err := time.ParseDuration(persist); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("control_persist is not a valid duration: %s", persist))
		}
	}

	if strings.TrimSpace(cfg.ControlPath) == "" {
		validationErrors = append(validationErrors, "control_path cannot be empty")
	}

	for i, ex := range cfg.ExtraExcludes {
		if strings.ContainsAny(ex, "\n\r") {
			validationErrors = append(validationErrors, fmt.Sprintf("extra_excludes %d: pattern must be a single line", i+1))
		}
	}

	if strings.ContainsAny(cfg.DefaultHost, " \t") {
		validationErrors = append(validationErrors, "default_host must be a single host alias")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// GlobalConfigPath is the per-user settings file.
func GlobalConfigPath(home string) string {
	return filepath.Join(home, ".config", "remote-sync", "config.yaml")
}

// SearchPaths lists candidate config files in priority order.
func SearchPaths(home string) []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, ConfigFileName)
	if home != "" {
		paths = append(paths, GlobalConfigPath(home))
	}
	return paths
}

// LoadAndValidateConfig loads the first config file found, falling back to
// defaults, and validates the result.
func LoadAndValidateConfig(home string) (*Config, error) {
	// a missing .env is normal; variables already in the environment win
	_ = godotenv.Load()

	for _, p := range SearchPaths(home) {
		cfg, err := LoadFile(p, home)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default(home)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses one config file on top of the defaults. ${VAR} references
// are expanded from the environment before parsing and a leading "~/" in
// ssh_config is expanded to home.
func LoadFile(path, home string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default(home)
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	if rest, ok := strings.CutPrefix(cfg.SSHConfig, "~/"); ok && home != "" {
		cfg.SSHConfig = filepath.Join(home, rest)
	}
	cfg.source = path

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
