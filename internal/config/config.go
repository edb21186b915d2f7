// Package config holds relayctl's runtime settings: where the settings store
// lives and how commands leave the machine. Device settings themselves are
// not here; they live in the settings store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	DispatcherURI    = "uri"
	DispatcherModem  = "modem"
	DispatcherStdout = "stdout"
)

type Config struct {
	StorePath      string
	StoreBackend   string
	Dispatcher     string
	Opener         []string
	ModemPort      string
	ModemBaud      int
	StatusPassword string
	LogPath        string
	LogLevel       string
}

func Default() Config {
	opener := []string{"xdg-open"}
	if runtime.GOOS == "darwin" {
		opener = []string{"open"}
	}
	return Config{
		StoreBackend:   BackendJSON,
		Dispatcher:     DispatcherURI,
		Opener:         opener,
		ModemPort:      "/dev/ttyUSB0",
		ModemBaud:      115200,
		StatusPassword: "factory",
		LogLevel:       "info",
	}
}

// FromEnv overlays RELAYCTL_* variables on Default. lookup is os.LookupEnv
// outside tests.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("RELAYCTL_STORE", &cfg.StorePath)
	str("RELAYCTL_STORE_BACKEND", &cfg.StoreBackend)
	str("RELAYCTL_DISPATCHER", &cfg.Dispatcher)
	str("RELAYCTL_MODEM_PORT", &cfg.ModemPort)
	str("RELAYCTL_STATUS_PASSWORD", &cfg.StatusPassword)
	str("RELAYCTL_LOG", &cfg.LogPath)
	str("RELAYCTL_LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("RELAYCTL_OPENER"); ok && strings.TrimSpace(v) != "" {
		cfg.Opener = strings.Fields(v)
	}
	if v, ok := lookup("RELAYCTL_MODEM_BAUD"); ok && strings.TrimSpace(v) != "" {
		baud, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("RELAYCTL_MODEM_BAUD: %q is not a number", v)
		}
		cfg.ModemBaud = baud
	}
	return cfg, nil
}

// ResolveStorePath applies explicit/XDG/home fallback rules for the
// settings store file.
func ResolveStorePath(explicit, backend string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	name := "settings.json"
	if backend == BackendSQLite {
		name = "settings.db"
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "relayctl", name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for settings store fallback")
	}

	return filepath.Join(home, ".config", "relayctl", name), nil
}

// Validate rejects settings relayctl cannot run with.
func Validate(cfg Config) error {
	switch cfg.StoreBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("store backend must be one of: json, sqlite (got %q)", cfg.StoreBackend)
	}

	switch cfg.Dispatcher {
	case DispatcherURI:
		if len(cfg.Opener) == 0 {
			return fmt.Errorf("opener must not be empty when dispatcher=uri")
		}
	case DispatcherModem:
		if strings.TrimSpace(cfg.ModemPort) == "" {
			return fmt.Errorf("modem port must not be empty when dispatcher=modem")
		}
		if cfg.ModemBaud <= 0 {
			return fmt.Errorf("modem baud must be > 0")
		}
	case DispatcherStdout:
	default:
		return fmt.Errorf("dispatcher must be one of: uri, modem, stdout (got %q)", cfg.Dispatcher)
	}

	if cfg.StatusPassword != "factory" && cfg.StatusPassword != "configured" {
		return fmt.Errorf("status password must be one of: factory, configured (got %q)", cfg.StatusPassword)
	}
	return nil
}
