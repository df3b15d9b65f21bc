package directory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"
)

// UserConfigFileName is the TOML config file for user preferences.
const UserConfigFileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// DebounceMS overrides the search debounce interval in milliseconds
	DebounceMS int `toml:"debounce_ms"`

	// HighlightMS overrides the recently-added highlight window in milliseconds
	HighlightMS int `toml:"highlight_ms"`

	// Web defines the local web bridge settings
	Web WebSettings `toml:"web"`

	// Import defines the drop-folder import settings
	Import ImportSettings `toml:"import"`

	// Logs defines debug log settings
	Logs LogSettings `toml:"logs"`
}

// WebSettings configures the local web bridge.
type WebSettings struct {
	ListenAddr  string `toml:"listen_addr"`
	Token       string `toml:"token"`
	PushEnabled bool   `toml:"push_enabled"`
	PushSubject string `toml:"push_subject"`
}

// ImportSettings configures the inbox drop folder watcher.
type ImportSettings struct {
	// InboxDir is watched for dropped .json contact files; empty disables
	InboxDir string `toml:"inbox_dir"`
}

// LogSettings configures debug logging.
type LogSettings struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Debug      bool   `toml:"debug"`
}

var defaultUserConfig = UserConfig{
	Theme: "system",
	Web: WebSettings{
		ListenAddr: "127.0.0.1:8590",
	},
	Logs: LogSettings{
		Level:  "info",
		Format: "json",
	},
}

var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// DebounceInterval returns the configured debounce delay.
func (c *UserConfig) DebounceInterval() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounceInterval
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HighlightWindow returns the configured highlight window.
func (c *UserConfig) HighlightWindow() time.Duration {
	if c.HighlightMS <= 0 {
		return DefaultHighlightWindow
	}
	return time.Duration(c.HighlightMS) * time.Millisecond
}

// GetTheme returns the configured theme name, defaulting to "system".
func GetTheme() string {
	config, err := LoadUserConfig()
	if err != nil || config == nil {
		return "system"
	}
	switch config.Theme {
	case "dark", "light", "system":
		return config.Theme
	default:
		return "system"
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// If theme is "system", detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// GetUserConfigPath returns the path to config.toml.
func GetUserConfigPath() (string, error) {
	dir, err := GetDeskrosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// LoadUserConfig loads and caches the user config. Missing file yields the
// defaults; a parse error yields the defaults plus the error so the caller
// can surface it.
func LoadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()

	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := GetUserConfigPath()
	if err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	config := defaultUserConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		// Cache the defaults anyway to prevent repeated parse attempts
		userConfigCache = &defaultUserConfig
		return userConfigCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	userConfigCache = &config
	return userConfigCache, nil
}

// ReloadUserConfig forces a reload of the user config.
func ReloadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
	return LoadUserConfig()
}

// SaveUserConfig writes the config atomically and clears the cache so the
// next LoadUserConfig reads fresh values.
func SaveUserConfig(config *UserConfig) error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}

	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
	return nil
}
