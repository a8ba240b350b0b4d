// Package config holds the process-wide lksearch settings namespace: cache
// and config directory locations plus the three cloud-behavior flags.
//
// Resolution order for every setting is: explicit in-memory override >
// persisted config file value > built-in default. The persisted file is
// plain INI at <config_dir>/lksearch.cfg, one section per logical group;
// its absence is not an error.
//
// Settings is an explicit object rather than package-level state — callers
// construct one at startup and hand snapshots to the download layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/lightkurve/lksearch/internal/filex"
)

const (
	// EnvConfigDir overrides where the config file is looked up, ahead of
	// the built-in <home>/.lksearch/config default.
	EnvConfigDir = "LKSEARCH_CONFIG_DIR"

	// ConfigFileName is the persisted settings file under the config dir.
	ConfigFileName = "lksearch.cfg"
)

// Kind is the declared type of a setting's value.
type Kind int

const (
	KindString Kind = iota
	KindBool
)

// Setting describes one named entry of the configuration namespace.
type Setting struct {
	Name        string
	Section     string
	Kind        Kind
	Description string
}

// The fixed settings registry. Path defaults are filled in at Load time
// because they depend on the user's home directory.
var registry = []Setting{
	{Name: "cache_dir", Section: "paths", Kind: KindString,
		Description: "Directory where downloaded data products are cached."},
	{Name: "config_dir", Section: "paths", Kind: KindString,
		Description: "Directory holding the persisted configuration file."},
	{Name: "CLOUD_ONLY", Section: "cloud", Kind: KindBool,
		Description: "Only return cloud-hosted products; archive-only products error."},
	{Name: "PREFER_CLOUD", Section: "cloud", Kind: KindBool,
		Description: "Prefer the cloud-hosted variant when a product has both sources."},
	{Name: "DOWNLOAD_CLOUD", Section: "cloud", Kind: KindBool,
		Description: "Download cloud-hosted products locally; when false, return the cloud URI instead."},
}

func lookup(name string) (Setting, bool) {
	for _, s := range registry {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Setting{}, false
}

func (s Setting) key() string {
	return strings.ToLower(s.Section + "." + s.Name)
}

// Settings is one view of the configuration namespace. Safe for concurrent
// reads; Set calls are serialized internally.
type Settings struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// Load builds a Settings from built-in defaults overlaid with the persisted
// config file, if one exists. The config dir is taken from LKSEARCH_CONFIG_DIR
// or defaults to <home>/.lksearch/config.
func Load() (*Settings, error) {
	return LoadFrom(os.Getenv(EnvConfigDir))
}

// LoadFrom is Load with an explicit config directory; an empty configDir
// falls back to the built-in default location.
func LoadFrom(configDir string) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	if configDir == "" {
		configDir = filepath.Join(home, ".lksearch", "config")
	}
	configDir, err = filepath.Abs(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("ini")

	defaults := map[string]any{
		"cache_dir":      filepath.Join(home, ".lksearch", "cache"),
		"config_dir":     configDir,
		"CLOUD_ONLY":     false,
		"PREFER_CLOUD":   true,
		"DOWNLOAD_CLOUD": true,
	}
	for _, s := range registry {
		v.SetDefault(s.key(), defaults[s.Name])
	}

	file := filepath.Join(configDir, ConfigFileName)
	if filex.Exists(file) {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return &Settings{v: v}, nil
}

// Get returns the current effective value of a named setting.
func (c *Settings) Get(name string) (any, error) {
	s, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	switch s.Kind {
	case KindBool:
		return c.v.GetBool(s.key()), nil
	default:
		return c.v.GetString(s.key()), nil
	}
}

// GetString returns a string-typed setting.
func (c *Settings) GetString(name string) (string, error) {
	val, err := c.Get(name)
	if err != nil {
		return "", err
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string setting", ErrValidation, name)
	}
	return str, nil
}

// GetBool returns a boolean-typed setting.
func (c *Settings) GetBool(name string) (bool, error) {
	val, err := c.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a boolean setting", ErrValidation, name)
	}
	return b, nil
}

// Set overrides a setting for the current process only. The value's type
// must match the setting's declared type.
func (c *Settings) Set(name string, value any) error {
	s, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}

	switch s.Kind {
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s expects a bool, got %T", ErrValidation, s.Name, value)
		}
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrValidation, s.Name, value)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Set(s.key(), value)
	return nil
}

// WithOverrides returns an independent copy of the settings with the given
// overrides applied — a scoped variant for tests and one-off calls. The
// receiver is not modified.
func (c *Settings) WithOverrides(overrides map[string]any) (*Settings, error) {
	c.mu.RLock()
	nv := viper.New()
	nv.SetConfigType("ini")
	for _, s := range registry {
		nv.SetDefault(s.key(), c.v.Get(s.key()))
	}
	c.mu.RUnlock()

	clone := &Settings{v: nv}
	for name, value := range overrides {
		if err := clone.Set(name, value); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

// CacheDir returns the absolute cache root, creating it if absent.
func (c *Settings) CacheDir() (string, error) {
	dir, err := c.GetString("cache_dir")
	if err != nil {
		return "", err
	}
	return filex.EnsureDir(dir)
}

// ConfigDir returns the absolute config directory, creating it if absent.
func (c *Settings) ConfigDir() (string, error) {
	dir, err := c.GetString("config_dir")
	if err != nil {
		return "", err
	}
	return filex.EnsureDir(dir)
}

// ConfigFile returns the path of the persisted settings file (which may not
// exist yet). Intermediate directories are created.
func (c *Settings) ConfigFile() (string, error) {
	dir, err := c.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// CreateConfigFile persists the current effective values to the config file
// and returns its path. Fails with ErrAlreadyExists when the file is present
// and overwrite is false.
func (c *Settings) CreateConfigFile(overwrite bool) (string, error) {
	path, err := c.ConfigFile()
	if err != nil {
		return "", err
	}
	if filex.Exists(path) && !overwrite {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	f := ini.Empty()
	for _, s := range registry {
		val, err := c.Get(s.Name)
		if err != nil {
			return "", err
		}
		key, err := f.Section(s.Section).NewKey(s.Name, fmt.Sprint(val))
		if err != nil {
			return "", fmt.Errorf("compose config file: %w", err)
		}
		key.Comment = s.Description
	}

	if err := f.SaveTo(path); err != nil {
		return "", fmt.Errorf("write config file %s: %w", path, err)
	}
	return path, nil
}
