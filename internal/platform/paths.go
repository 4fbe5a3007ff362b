// Package platform resolves where lanecal keeps its config and data on disk.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories when no override is given.
const DefaultAppName = "lanecal"

const (
	devSuffix      = "-dev"
	configFileName = "config.toml"
	logDirName     = "log"
)

var (
	errEmptyBaseDir = errors.New("empty base dirs")
	errEmptyAppName = errors.New("empty app name")
)

// Paths locates one calendar installation on disk.
//
// ConfigPath is the TOML file read by config.Load. DBPath is the sqlite file holding
// resources, events, and the title counter. LogDir receives dev-mode log files.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options selects the directory name. DevMode appends "-dev" so a development build
// never opens the installed calendar.
type Options struct {
	AppName string
	DevMode bool
}

// baseOverrides lists the environment variables that replace the config and data roots per OS.
// darwin and unknown systems keep the directories the os package reports.
var baseOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the installed lanecal calendar.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the running user and OS.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir, err := userDataDir(runtime.GOOS, configDir)
	if err != nil {
		return Paths{}, err
	}

	env := map[string]string{}
	for _, keys := range baseOverrides {
		env[keys.config] = os.Getenv(keys.config)
		env[keys.data] = os.Getenv(keys.data)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, dirName(opts))
}

// PathsFor is the pure form of DefaultPathsWithOptions. Non-empty env overrides for goos win
// over the supplied base directories.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errEmptyBaseDir
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errEmptyAppName
	}

	configBase, dataBase := userConfigDir, userDataDir
	if keys, ok := baseOverrides[goos]; ok {
		if v := env[keys.config]; v != "" {
			configBase = v
		}
		if v := env[keys.data]; v != "" {
			dataBase = v
		}
	}

	data := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, configFileName),
		DataDir:    data,
		DBPath:     filepath.Join(data, appName+".db"),
		LogDir:     filepath.Join(data, logDirName),
	}, nil
}

// dirName is the per-installation directory and database stem.
func dirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += devSuffix
	}
	return name
}

// userDataDir picks the data root before env overrides apply.
func userDataDir(goos, configDir string) (string, error) {
	switch goos {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("user home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			return v, nil
		}
	}
	return configDir, nil
}
