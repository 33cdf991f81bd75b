package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "dalimon"
	configFile = "config.yaml"

	// CurrentVersion is the settings schema version this build reads
	// and writes.
	CurrentVersion = 1
)

var (
	globalSettings     *Settings
	globalSettingsOnce sync.Once
	globalSettingsErr  error

	fileMutex sync.Mutex
)

// Settings is the persisted user configuration.
type Settings struct {
	Version   int       `yaml:"version"`
	Transport Transport `yaml:"transport"`
	Display   Display   `yaml:"display"`
}

// Transport selects and parameterizes the bridge driver.
type Transport struct {
	// Kind is "usb" or "serial".
	Kind string `yaml:"kind"`
	// VendorID/ProductID override the USB bridge identifiers. Zero
	// keeps the Lunatone defaults.
	VendorID  uint16 `yaml:"vendor_id,omitempty"`
	ProductID uint16 `yaml:"product_id,omitempty"`
	// Port and Baud apply to the serial transport.
	Port string `yaml:"port,omitempty"`
	Baud int    `yaml:"baud,omitempty"`
}

// Display holds trace rendering preferences.
type Display struct {
	// Color: "auto", "always" or "never".
	Color string `yaml:"color"`
	// AbsoluteTime adds the wall-clock column to every line.
	AbsoluteTime bool `yaml:"absolute_time"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Transport: Transport{
			Kind: "usb",
		},
		Display: Display{
			Color: "auto",
		},
	}
}

// Dir returns the platform-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/dalimon or $HOME/.config/dalimon
//   - macOS: $HOME/.config/dalimon
//   - Windows: %LOCALAPPDATA%\dalimon
func Dir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// Path returns the full path of the settings file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the settings from disk, returning defaults when no file
// exists. Thread-safe; repeated calls return the same instance.
func Load() (*Settings, error) {
	globalSettingsOnce.Do(func() {
		globalSettings, globalSettingsErr = loadFromDisk()
	})
	return globalSettings, globalSettingsErr
}

func loadFromDisk() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if settings.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", settings.Version, CurrentVersion)
	}
	if settings.Transport.Kind == "" {
		settings.Transport.Kind = "usb"
	}
	if settings.Display.Color == "" {
		settings.Display.Color = "auto"
	}

	return &settings, nil
}

// Save writes the settings to disk atomically.
func (s *Settings) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# dalimon configuration
# Transport and display defaults for the DALI bus analyzer.
# Command-line flags override anything set here.

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
