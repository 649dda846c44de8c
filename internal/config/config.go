package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"sigs.k8s.io/yaml"

	"assetdash/internal/domain"
	"assetdash/internal/etl"
	"assetdash/internal/logging"
	"assetdash/internal/secret"
)

// Config is the on-disk configuration, usually ~/.config/assetdash/config.yaml.
type Config struct {
	DataDir        string       `json:"dataDir"`
	StateDir       string       `json:"stateDir"`
	PreviewRows    int          `json:"previewRows"`
	Watch          bool         `json:"watch"`
	RescanSchedule string       `json:"rescanSchedule,omitempty"`
	Log            LogConfig    `json:"log"`
	Export         ExportConfig `json:"export"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "text" | "json"
}

// ExportConfig describes where ExportAsset writes. An empty Driver disables
// exports.
type ExportConfig struct {
	Driver      domain.DatabaseDriver `json:"driver,omitempty"`
	Host        string                `json:"host,omitempty"`
	Port        int                   `json:"port,omitempty"`
	Database    string                `json:"database,omitempty"`
	Username    string                `json:"username,omitempty"`
	PasswordEnv string                `json:"passwordEnv,omitempty"` // name of the env var holding the password
	PasswordKey string                `json:"passwordKey,omitempty"` // secret store key, used when PasswordEnv is unset or empty
	SSLMode     string                `json:"sslMode,omitempty"`
	Mode        etl.SyncMode          `json:"mode"`
	Schedule    string                `json:"schedule,omitempty"` // cron expression, exports every asset
}

// DefaultStateDir is where the app database lives unless configured.
func DefaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "assetdash")
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:     ".",
		StateDir:    DefaultStateDir(),
		PreviewRows: 10,
		Watch:       true,
		Log:         LogConfig{Level: "info", Format: "text"},
		Export:      ExportConfig{Mode: etl.SyncReplace},
	}
}

// Load reads path over the defaults. A missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values Load cannot check by shape alone.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("dataDir is required"))
	}
	if c.PreviewRows <= 0 {
		errs = append(errs, fmt.Errorf("previewRows must be positive, got %d", c.PreviewRows))
	}
	if c.RescanSchedule != "" {
		if _, err := cron.ParseStandard(c.RescanSchedule); err != nil {
			errs = append(errs, fmt.Errorf("rescanSchedule: %w", err))
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", f))
	}
	if err := c.Export.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e ExportConfig) validate() error {
	switch e.Driver {
	case "", domain.DatabaseDriverSQLite, domain.DatabaseDriverMySQL,
		domain.DatabaseDriverPostgres, domain.DatabaseDriverMongoDB:
	default:
		return fmt.Errorf("export.driver: unsupported driver %q", e.Driver)
	}
	if !e.Mode.Valid() {
		return fmt.Errorf("export.mode: must be replace or append, got %q", e.Mode)
	}
	if e.Schedule != "" {
		if _, err := cron.ParseStandard(e.Schedule); err != nil {
			return fmt.Errorf("export.schedule: %w", err)
		}
		if e.Driver == "" {
			return errors.New("export.schedule needs export.driver")
		}
	}
	return nil
}

// Enabled reports whether an export destination is configured.
func (e ExportConfig) Enabled() bool { return e.Driver != "" }

// Target resolves the export destination, reading the password from the
// configured environment variable.
func (e ExportConfig) Target() domain.ExportTarget {
	t := domain.ExportTarget{
		Driver:   e.Driver,
		Host:     e.Host,
		Port:     e.Port,
		Database: e.Database,
		Username: e.Username,
		SSLMode:  e.SSLMode,
	}
	if e.PasswordEnv != "" {
		t.Password = os.Getenv(e.PasswordEnv)
	}
	return t
}

// ResolveTarget is Target with the password looked up in secrets when the
// environment does not provide one.
func (e ExportConfig) ResolveTarget(secrets secret.SecretStore) (domain.ExportTarget, error) {
	t := e.Target()
	if t.Password != "" || e.PasswordKey == "" || secrets == nil {
		return t, nil
	}
	pw, err := secrets.Get(e.PasswordKey)
	if err != nil {
		return t, fmt.Errorf("export password %q: %w", e.PasswordKey, err)
	}
	t.Password = string(pw)
	return t, nil
}

// DBPath is the location of the app's own SQLite database.
func (c Config) DBPath() string {
	return filepath.Join(c.StateDir, "assetdash.db")
}
