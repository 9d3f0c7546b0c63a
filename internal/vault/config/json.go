package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/genpass/internal/flagx"
	"github.com/dmitrijs2005/genpass/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent or zero
// fields leave the current value untouched.
type JsonConfig struct {
	DataDir      string `json:"data_dir"`
	DatabaseFile string `json:"database_file"`
	KeyFile      string `json:"key_file"`
	PepperFile   string `json:"pepper_file"`

	Argon2 struct {
		Time      uint32 `json:"time"`
		MemoryKiB uint32 `json:"memory_kib"`
		Threads   uint8  `json:"threads"`
	} `json:"argon2"`
	AllowLegacyHashes *bool `json:"allow_legacy_hashes"`

	TOTPInterval    timex.Duration `json:"totp_interval"`
	OTPMinGap       timex.Duration `json:"otp_min_gap"`
	MaxAttempts     int            `json:"max_attempts"`
	LockoutDuration timex.Duration `json:"lockout_duration"`
	ChallengeTTL    timex.Duration `json:"challenge_ttl"`

	SMTP struct {
		Server         string `json:"smtp_server"`
		Port           int    `json:"smtp_port"`
		SenderEmail    string `json:"sender_email"`
		SenderPassword string `json:"sender_password"`
	} `json:"email"`

	LogLevel   string `json:"log_level"`
	LogBackend string `json:"log_backend"`
}

// parseJson overlays cfg with the JSON file selected by -c/-config in args
// (or $GENPASS_CONFIG). It panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.PepperFile, jc.PepperFile)

	if jc.Argon2.Time > 0 {
		cfg.Argon2.Time = jc.Argon2.Time
	}
	if jc.Argon2.MemoryKiB > 0 {
		cfg.Argon2.MemoryKiB = jc.Argon2.MemoryKiB
	}
	if jc.Argon2.Threads > 0 {
		cfg.Argon2.Threads = jc.Argon2.Threads
	}
	if jc.AllowLegacyHashes != nil {
		cfg.AllowLegacyHashes = *jc.AllowLegacyHashes
	}

	setDuration(&cfg.TOTPInterval, jc.TOTPInterval)
	setDuration(&cfg.OTPMinGap, jc.OTPMinGap)
	setDuration(&cfg.LockoutDuration, jc.LockoutDuration)
	setDuration(&cfg.ChallengeTTL, jc.ChallengeTTL)
	if jc.MaxAttempts > 0 {
		cfg.MaxAttempts = jc.MaxAttempts
	}

	setString(&cfg.SMTP.Server, jc.SMTP.Server)
	setString(&cfg.SMTP.SenderEmail, jc.SMTP.SenderEmail)
	setString(&cfg.SMTP.SenderPassword, jc.SMTP.SenderPassword)
	if jc.SMTP.Port > 0 {
		cfg.SMTP.Port = jc.SMTP.Port
	}

	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
