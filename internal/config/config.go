package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Tiliavir/klg/internal/klog"
)

// Config is the root configuration for klg, stored in ~/.klog/config.json.
// The file supports single-line // comments for documentation purposes.
// Every key can be overridden by a KLOG_ environment variable, e.g.
// KLOG_RENDER_INDENTATION=tab.
type Config struct {
	// File is the Klog file commands work on. Empty means ~/.klog/time.klg.
	File    string        `mapstructure:"file"`
	Render  RenderConfig  `mapstructure:"render"`
	Outlook OutlookConfig `mapstructure:"outlook"`
}

// RenderConfig controls how records are written back.
type RenderConfig struct {
	// Indentation is "2", "3", "4" (spaces) or "tab". Empty keeps each record's own.
	Indentation string `mapstructure:"indentation"`
	// TimeFormat is "24h" or "12h" and applies to times written by start/stop.
	TimeFormat          string `mapstructure:"time_format"`
	ShowZeroShouldTotal bool   `mapstructure:"show_zero_should_total"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `mapstructure:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `mapstructure:"client_id"`
	// Tag is added to the summary of imported Outlook events.
	Tag string `mapstructure:"tag"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `mapstructure:"timezone"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultTag is the tag added to imported meetings.
	DefaultTag = "meeting"
)

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// klg configuration – ~/.klog/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Any key can also be set through the environment, e.g.
// KLOG_FILE=~/work.klg or KLOG_OUTLOOK_TAG=call.
{
  // Klog file used by all commands. Empty means ~/.klog/time.klg.
  // Can be overridden per call with: klg --file <path>
  "file": "",

  // ── Rendering ─────────────────────────────────────────────────────────────
  "render": {
    // Entry indentation when writing records: "2", "3", "4" or "tab".
    // Leave empty to keep the indentation each record already uses.
    "indentation": "",

    // Clock notation for times written by start/stop: "24h" or "12h".
    "time_format": "24h",

    // Write a should-total of zero as "(0m!)" instead of dropping it.
    "show_zero_should_total": false
  },

  // ── Microsoft Graph / Outlook calendar sync ──────────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID, e.g. "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Tag appended to the summary of imported events.
    // Can be overridden per-sync with: klg outlook sync --tag <name>
    "tag": "meeting",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC. Can be overridden with: klg outlook sync --timezone <tz>
    "timezone": ""
  }
}
`

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("KLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("file", "")
	v.SetDefault("render.indentation", "")
	v.SetDefault("render.time_format", string(klog.TwentyFourHour))
	v.SetDefault("render.show_zero_should_total", false)
	v.SetDefault("outlook.tenant_id", DefaultTenantID)
	v.SetDefault("outlook.client_id", DefaultClientID)
	v.SetDefault("outlook.tag", DefaultTag)
	v.SetDefault("outlook.timezone", "")
	return v
}

// configFilePath returns the path to ~/.klog/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".klog", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.klog/config.json, creating it with annotated defaults on first
// run, and applies KLOG_ environment overrides.
func Load() (Config, error) {
	v := newViper()
	path, err := configFilePath()
	if err != nil {
		return decode(v)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return decode(v)
	}
	if err != nil {
		cfg, _ := decode(v)
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := v.ReadConfig(bytes.NewReader(stripLineComments(data))); err != nil {
		cfg, _ := decode(newViper())
		return cfg, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	// Explicitly empty values in the file fall back to the built-in defaults.
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	if cfg.Outlook.Tag == "" {
		cfg.Outlook.Tag = DefaultTag
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// RenderOptions converts the render section into klog options.
func (c Config) RenderOptions() (klog.RenderOptions, error) {
	opts := klog.RenderOptions{}
	switch c.Render.Indentation {
	case "":
	case "2":
		opts.Indentation = klog.TwoSpaces
	case "3":
		opts.Indentation = klog.ThreeSpaces
	case "4":
		opts.Indentation = klog.FourSpaces
	case "tab":
		opts.Indentation = klog.Tab
	default:
		return opts, fmt.Errorf("render.indentation must be 2, 3, 4 or tab, got %q", c.Render.Indentation)
	}
	if c.Render.ShowZeroShouldTotal {
		opts.ZeroShouldTotal = klog.ShowZeroShouldTotal
	}
	return opts, nil
}

// TimeFormat returns the clock notation for newly written times.
func (c Config) TimeFormat() (klog.TimeFormat, error) {
	switch f := klog.TimeFormat(c.Render.TimeFormat); f {
	case "":
		return klog.TwentyFourHour, nil
	case klog.TwentyFourHour, klog.TwelveHour:
		return f, nil
	}
	return "", fmt.Errorf("render.time_format must be 24h or 12h, got %q", c.Render.TimeFormat)
}
