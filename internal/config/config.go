package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"dirdirector/internal/icoconv"
	"dirdirector/internal/settings"
)

// Config holds the application configuration
type Config struct {
	AppDir       string `mapstructure:"-"`             // Directory of the executable
	CacheDir     string `mapstructure:"cache_dir"`     // Root of the icon cache
	SettingsPath string `mapstructure:"settings_path"` // Path to appsettings.json
	IconSize     int    `mapstructure:"icon_size"`     // Edge length for converted icons
	KeepAspect   bool   `mapstructure:"keep_aspect"`   // Aspect fit when converting
	Backend      string `mapstructure:"backend"`       // auto, shell or ini
	ConfigFile   string `mapstructure:"-"`             // File the values were read from, if any
}

// configName is the base name of the optional config file
const configName = "dirdirector"

// envPrefix scopes environment overrides, e.g. DIRDIRECTOR_CACHE_DIR
const envPrefix = "DIRDIRECTOR"

// CacheDirName is the icon cache folder created beside the executable
const CacheDirName = "CachedIcons"

// AppDir returns the directory containing the running executable
func AppDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ConfigDir returns the per-user directory searched for dirdirector.yaml
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "dirdirector")
}

// Default returns the default configuration rooted at appDir
func Default(appDir string) *Config {
	return &Config{
		AppDir:       appDir,
		CacheDir:     filepath.Join(appDir, CacheDirName),
		SettingsPath: filepath.Join(appDir, settings.FileName),
		IconSize:     icoconv.DefaultSize,
		KeepAspect:   false,
		Backend:      "auto",
	}
}

// Load resolves the configuration for the executable's directory
func Load(configFile string) (*Config, error) {
	appDir, err := AppDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(appDir, configFile)
}

// LoadFrom builds the configuration from defaults, an optional YAML file
// and DIRDIRECTOR_* environment variables. An explicit configFile must
// exist; otherwise appDir and ConfigDir are searched.
func LoadFrom(appDir, configFile string) (*Config, error) {
	def := Default(appDir)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("cache_dir", def.CacheDir)
	v.SetDefault("settings_path", def.SettingsPath)
	v.SetDefault("icon_size", def.IconSize)
	v.SetDefault("keep_aspect", def.KeepAspect)
	v.SetDefault("backend", def.Backend)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(appDir)
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.AppDir = appDir
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.CacheDir = cfg.resolve(cfg.CacheDir)
	cfg.SettingsPath = cfg.resolve(cfg.SettingsPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values a config file or environment could break
func (c *Config) Validate() error {
	if c.IconSize < 1 || c.IconSize > icoconv.MaxSize {
		return fmt.Errorf("icon_size must be between 1 and %d, got %d", icoconv.MaxSize, c.IconSize)
	}
	switch c.Backend {
	case "auto", "shell", "ini":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// resolve makes relative paths relative to the application directory
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.AppDir, p)
}

// EnsureDirectories creates the icon cache directory
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.CacheDir, 0755)
}

// CacheExists checks if the icon cache directory exists
func (c *Config) CacheExists() bool {
	info, err := os.Stat(c.CacheDir)
	return err == nil && info.IsDir()
}
