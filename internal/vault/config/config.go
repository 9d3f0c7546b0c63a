package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/genpass/internal/cryptox"
	"github.com/dmitrijs2005/genpass/internal/logging"
)

// SMTPConfig describes the outgoing mail account used to deliver codes.
// An empty Server selects console delivery instead.
type SMTPConfig struct {
	Server         string
	Port           int
	SenderEmail    string
	SenderPassword string
}

// Config holds runtime settings for the genpass CLI.
//
// Paths: DatabaseFile, KeyFile and PepperFile are relative to DataDir.
// Durations are time.Duration values (e.g. 5*time.Minute).
type Config struct {
	DataDir      string
	DatabaseFile string
	KeyFile      string
	PepperFile   string

	Argon2            cryptox.HashParams
	AllowLegacyHashes bool

	TOTPInterval    time.Duration
	OTPMinGap       time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
	ChallengeTTL    time.Duration

	SMTP SMTPConfig

	LogLevel   string
	LogBackend string
}

// LoadDefaults populates c with the stock settings.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.DatabaseFile = "vault.db"
	c.KeyFile = "secret.key"
	c.PepperFile = "pepper.key"

	c.Argon2 = cryptox.DefaultHashParams
	c.AllowLegacyHashes = true

	c.TOTPInterval = 5 * time.Minute
	c.OTPMinGap = time.Minute
	c.MaxAttempts = 3
	c.LockoutDuration = 15 * time.Minute
	c.ChallengeTTL = 5 * time.Minute

	c.SMTP = SMTPConfig{Port: 587}

	c.LogLevel = "warn"
	c.LogBackend = logging.BackendSlog
}

func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, c.DatabaseFile) }
func (c *Config) KeyPath() string      { return filepath.Join(c.DataDir, c.KeyFile) }
func (c *Config) PepperPath() string   { return filepath.Join(c.DataDir, c.PepperFile) }

// Validate reports settings that would make the vault misbehave.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("config: data dir is empty"))
	}
	if c.DatabaseFile == "" || c.KeyFile == "" || c.PepperFile == "" {
		errs = append(errs, errors.New("config: database, key and pepper file names are required"))
	}
	if c.KeyFile == c.PepperFile {
		errs = append(errs, errors.New("config: key and pepper must be stored in different files"))
	}
	if c.Argon2.Time == 0 || c.Argon2.MemoryKiB == 0 || c.Argon2.Threads == 0 {
		errs = append(errs, errors.New("config: argon2 parameters must be positive"))
	}
	if c.TOTPInterval < time.Second {
		errs = append(errs, fmt.Errorf("config: totp interval %s is too short", c.TOTPInterval))
	}
	if c.OTPMinGap < 0 || c.LockoutDuration <= 0 || c.ChallengeTTL <= 0 {
		errs = append(errs, errors.New("config: otp gap, lockout duration and challenge ttl must be positive"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("config: max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.SMTP.Server != "" && (c.SMTP.Port <= 0 || c.SMTP.SenderEmail == "") {
		errs = append(errs, errors.New("config: smtp port and sender email are required when smtp server is set"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if c.LogBackend != logging.BackendSlog && c.LogBackend != logging.BackendZap {
		errs = append(errs, fmt.Errorf("config: unknown log backend %q", c.LogBackend))
	}

	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
