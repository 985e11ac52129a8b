package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. HARNESS_BASE_URL.
const EnvPrefix = "HARNESS"

// PlaceholderToken is the bearer credential sent when no token is configured.
const PlaceholderToken = "your-jwt-token-here"

// Config holds the harness configuration loaded from defaults, .env, environment and flags.
type Config struct {
	AppName        string        `mapstructure:"app_name"`
	Env            string        `mapstructure:"app_env"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	BaseURL        string        `mapstructure:"base_url"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`

	Token           string `mapstructure:"token" json:"-"`
	ProfileImageURL string `mapstructure:"profile_image_url"`
	ProfileRole     string `mapstructure:"profile_role"`
	FixturesFile    string `mapstructure:"fixtures_file"`
	OTP             string `mapstructure:"otp" json:"-"`
	UniqueEmail     bool   `mapstructure:"unique_email"`
}

var defaults = map[string]any{
	"app_name":          "api-smoke-harness",
	"app_env":           "development",
	"log_level":         "info",
	"log_format":        "console",
	"base_url":          "http://localhost:8080/api",
	"timeout_seconds":   30,
	"token":             PlaceholderToken,
	"profile_image_url": "https://example.com/test-avatar.jpg",
	"profile_role":      "shelter",
	"fixtures_file":     "",
	"otp":               "",
	"unique_email":      false,
}

// flagBindings maps command-line flag names onto config keys.
var flagBindings = []struct {
	flag  string
	key   string
	usage string
}{
	{"base-url", "base_url", "API base URL including the /api prefix"},
	{"token", "token", "bearer token for the avatar call"},
	{"image-url", "profile_image_url", "profileImageUrl sent by the avatar call"},
	{"role", "profile_role", "role segment for GET /profile/{role}"},
	{"fixtures", "fixtures_file", "YAML or JSON file overriding request payloads"},
	{"otp", "otp", "OTP code; skips the interactive prompt when set"},
	{"log-level", "log_level", "debug, info, warn or error"},
	{"log-format", "log_format", "console or json"},
}

// Load reads configuration for the named command. args are the command-line
// arguments without the program name. pflag.ErrHelp is returned when -h is given.
func Load(name string, args []string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, b := range flagBindings {
		fs.String(b.flag, fmt.Sprint(defaults[b.key]), b.usage)
	}
	fs.Int64("timeout", 30, "per-request timeout in seconds")
	fs.Bool("unique-email", false, "append a random suffix to the registration email")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for _, b := range flagBindings {
		if err := v.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", b.flag, err)
		}
	}
	if err := v.BindPFlag("timeout_seconds", fs.Lookup("timeout")); err != nil {
		return nil, fmt.Errorf("bind flag timeout: %w", err)
	}
	if err := v.BindPFlag("unique_email", fs.Lookup("unique-email")); err != nil {
		return nil, fmt.Errorf("bind flag unique-email: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid base_url %q (expected http(s)://host[:port]/path)", c.BaseURL)
	}

	if c.TimeoutSeconds <= 0 {
		return errors.New("invalid timeout_seconds (must be positive seconds)")
	}
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q (expected console or json)", c.LogFormat)
	}

	c.ProfileRole = strings.ToLower(strings.TrimSpace(c.ProfileRole))
	if c.ProfileRole == "" {
		return errors.New("profile_role must not be empty")
	}

	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		c.Token = PlaceholderToken
	}
	c.OTP = strings.TrimSpace(c.OTP)
	c.FixturesFile = strings.TrimSpace(c.FixturesFile)
	return nil
}
