// Package config loads client settings from defaults, an optional .env
// file, an optional TOML file and YOUTHOPIA_* environment variables, in
// that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/controller"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/passcode"
	"github.com/mpower/youthopia/internal/spin"
)

const envPrefix = "YOUTHOPIA_"

// Poll intervals outside this range are rejected.
const (
	MinPollInterval = 2 * time.Second
	MaxPollInterval = 5 * time.Second
)

// Duration decodes TOML strings such as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type PollConfig struct {
	Interval Duration `toml:"interval"`
}

type SpinConfig struct {
	Threshold      int      `toml:"threshold"`
	AnimationDelay Duration `toml:"animation_delay"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type PasscodeConfig struct {
	Mode string `toml:"mode"`
	Key  string `toml:"key"`
}

// StaffConfig is a local admin or executive login. Password is hashed at
// load; PasswordHash takes precedence when both are set.
type StaffConfig struct {
	Email         string `toml:"email"`
	Name          string `toml:"name"`
	Role          string `toml:"role"`
	EventAssigned string `toml:"event_assigned"`
	Password      string `toml:"password"`
	PasswordHash  string `toml:"password_hash"`
}

type Config struct {
	DBPath   string         `toml:"db_path"`
	API      APIConfig      `toml:"api"`
	Poll     PollConfig     `toml:"poll"`
	Spin     SpinConfig     `toml:"spin"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Passcode PasscodeConfig `toml:"passcode"`
	Staff    []StaffConfig  `toml:"staff"`
}

func Default() *Config {
	return &Config{
		DBPath: "youthopia.db",
		API: APIConfig{
			BaseURL: api.DefaultBaseURL,
			Timeout: Duration{15 * time.Second},
		},
		Poll: PollConfig{Interval: Duration{3 * time.Second}},
		Spin: SpinConfig{
			Threshold:      spin.DefaultThreshold,
			AnimationDelay: Duration{spin.DefaultAnimationDelay},
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Passcode: PasscodeConfig{
			Mode: passcode.ModeLegacy,
		},
		Staff: []StaffConfig{
			{Email: "admin@youthopia.com", Name: "System Admin", Role: model.RoleAdmin, EventAssigned: "all", Password: "123456"},
			{Email: "executive@youthopia.com", Name: "Executive Director", Role: model.RoleExecutive, Password: "789"},
		},
	}
}

// Load builds the configuration. path names an optional TOML file; an
// empty path skips it. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("parse %s%s: %w", envPrefix, name, err)
		}
		return nil
	}

	str("API_URL", &c.API.BaseURL)
	str("DB_PATH", &c.DBPath)
	str("ADDR", &c.Server.Addr)
	if port, ok := lookup(envPrefix + "PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("PASSCODE_MODE", &c.Passcode.Mode)
	str("PASSCODE_KEY", &c.Passcode.Key)

	if err := dur("API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}
	if err := dur("POLL_INTERVAL", &c.Poll.Interval); err != nil {
		return err
	}
	if err := dur("SPIN_DELAY", &c.Spin.AnimationDelay); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "SPIN_THRESHOLD"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sSPIN_THRESHOLD: %w", envPrefix, err)
		}
		c.Spin.Threshold = n
	}
	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.API.Timeout.Duration < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	if iv := c.Poll.Interval.Duration; iv < MinPollInterval || iv > MaxPollInterval {
		return fmt.Errorf("poll interval %s outside %s-%s", iv, MinPollInterval, MaxPollInterval)
	}
	if c.Spin.Threshold <= 0 {
		return fmt.Errorf("spin threshold must be positive")
	}
	if c.Spin.AnimationDelay.Duration < 0 {
		return fmt.Errorf("spin animation delay must not be negative")
	}
	switch c.Passcode.Mode {
	case passcode.ModeLegacy:
	case passcode.ModeKeyed:
		if c.Passcode.Key == "" {
			return fmt.Errorf("passcode mode %q requires a key", c.Passcode.Mode)
		}
	default:
		return fmt.Errorf("unknown passcode mode %q", c.Passcode.Mode)
	}
	for _, s := range c.Staff {
		if s.Role != model.RoleAdmin && s.Role != model.RoleExecutive {
			return fmt.Errorf("staff %s: unknown role %q", s.Email, s.Role)
		}
	}
	return nil
}

// StaffAccounts hashes configured passwords for the auth controller.
func (c *Config) StaffAccounts() ([]controller.StaffAccount, error) {
	accounts := make([]controller.StaffAccount, 0, len(c.Staff))
	for _, s := range c.Staff {
		hash := s.PasswordHash
		if hash == "" {
			b, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", s.Email, err)
			}
			hash = string(b)
		}
		accounts = append(accounts, controller.StaffAccount{
			Email:         s.Email,
			Name:          s.Name,
			Role:          s.Role,
			EventAssigned: s.EventAssigned,
			PasswordHash:  hash,
		})
	}
	return accounts, nil
}

func (c *Config) APIConfig() api.Config {
	return api.Config{BaseURL: c.API.BaseURL, Timeout: c.API.Timeout.Duration}
}

func (c *Config) PasscodeGenerator() *passcode.Generator {
	return passcode.NewGenerator(c.Passcode.Mode, []byte(c.Passcode.Key))
}
