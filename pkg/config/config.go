package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/sdejongh/aisync/internal/platform"
	"github.com/sdejongh/aisync/pkg/models"
)

// Environment variables consulted when a flag is not given
const (
	EnvRemoteUser  = "SYNC_USER"
	EnvRemoteHost  = "SYNC_HOST"
	EnvRemoteDir   = "SYNC_DIR"
	EnvWindowsUser = "WIN_USER"
)

// Defaults
const (
	DefaultRemoteDir       = "~/sync-files/ai-agents-related"
	DefaultTransferProgram = "rsync"
	DefaultTransferOptions = "-avz --update --delete --human-readable --mkpath"
	DefaultTaskTimeout     = 60 * time.Second
	DefaultSSHPort         = 22
)

// Config represents the application configuration
type Config struct {
	Remote   RemoteConfig   `yaml:"remote"`
	Windows  WindowsConfig  `yaml:"windows"`
	Transfer TransferConfig `yaml:"transfer"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Catalog is an optional YAML mapping file replacing the built-in catalog
	Catalog string `yaml:"catalog,omitempty"`

	// HomeDir overrides the local home directory (default: the current user's)
	HomeDir string `yaml:"home,omitempty"`

	// DryRun is a per-run switch and never persisted
	DryRun bool `yaml:"-"`
}

// RemoteConfig holds the remote server settings
type RemoteConfig struct {
	User string `yaml:"user"`
	Host string `yaml:"host"`
	Dir  string `yaml:"dir"`
	// Port and IdentityFile are only used by the connectivity check;
	// rsync relies on the user's ssh configuration
	Port         int    `yaml:"port,omitempty"`
	IdentityFile string `yaml:"identity_file,omitempty"`
}

// WindowsConfig holds the Windows-side settings. An empty User disables
// every Windows task.
type WindowsConfig struct {
	User     string `yaml:"user,omitempty"`
	UsersDir string `yaml:"users_dir,omitempty"`
}

// TransferConfig holds the external transfer tool settings
type TransferConfig struct {
	Program string        `yaml:"program"`
	Options string        `yaml:"options"`
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = console only)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Dir:  DefaultRemoteDir,
			Port: DefaultSSHPort,
		},
		Windows: WindowsConfig{
			UsersDir: platform.DefaultWindowsUsersDir,
		},
		Transfer: TransferConfig{
			Program: DefaultTransferProgram,
			Options: DefaultTransferOptions,
			Timeout: DefaultTaskTimeout,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: false,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
			File:   "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Transfer.Program == "" {
		return &models.ValidationError{
			Field:   "transfer.program",
			Message: "must not be empty",
		}
	}

	if _, err := c.TransferOptions(); err != nil {
		return &models.ValidationError{
			Field:   "transfer.options",
			Message: err.Error(),
		}
	}

	if c.Transfer.Timeout <= 0 {
		return &models.ValidationError{
			Field:   "transfer.timeout",
			Message: "must be positive",
		}
	}

	if c.Remote.Port < 0 || c.Remote.Port > 65535 {
		return &models.ValidationError{
			Field:   "remote.port",
			Message: "must be between 0 and 65535",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warning' or 'error' (any case)",
		}
	}

	return nil
}

// ValidateForTransfer additionally requires everything a push or pull needs
func (c *Config) ValidateForTransfer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Remote.User == "" {
		return &models.ValidationError{
			Field:   "remote.user",
			Message: "remote user must be configured (--remote-user or " + EnvRemoteUser + ")",
		}
	}
	if c.Remote.Host == "" {
		return &models.ValidationError{
			Field:   "remote.host",
			Message: "remote host must be configured (--remote-host or " + EnvRemoteHost + ")",
		}
	}
	if err := platform.ValidatePath(c.Remote.Dir); err != nil {
		return &models.ValidationError{Field: "remote.dir", Message: err.Error()}
	}
	return nil
}

// RemoteURL returns the "user@host" connection locator
func (c *Config) RemoteURL() (string, error) {
	if c.Remote.User == "" || c.Remote.Host == "" {
		return "", &models.ValidationError{Field: "remote", Message: "remote user and host must be configured"}
	}
	return c.Remote.User + "@" + c.Remote.Host, nil
}

// WindowsRoot returns the Windows user home as seen from Linux, and false
// when no Windows user is configured
func (c *Config) WindowsRoot() (string, bool) {
	if c.Windows.User == "" {
		return "", false
	}
	return platform.WindowsUserRoot(c.Windows.UsersDir, c.Windows.User), true
}

// LocalHome returns the Linux home directory
func (c *Config) LocalHome() (string, error) {
	if c.HomeDir != "" {
		return c.HomeDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}

// TransferOptions splits the option string the way a shell would
func (c *Config) TransferOptions() ([]string, error) {
	opts, err := shlex.Split(c.Transfer.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer options %q: %w", c.Transfer.Options, err)
	}
	return opts, nil
}
