package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SVCCTL"

type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	CodePage       int    `mapstructure:"code_page"`
	Concurrency    int    `mapstructure:"concurrency"`
	ScPath         string `mapstructure:"sc_path"`
	NetPath        string `mapstructure:"net_path"`
	PrivilegeProbe string `mapstructure:"privilege_probe"`
	NoColor        bool   `mapstructure:"no_color"`
	Wide           bool   `mapstructure:"wide"`
}

// Default returns the built-in configuration. A zero CodePage means the
// host console code page.
func Default() *Config {
	return &Config{
		LogLevel:       "warn",
		LogFormat:      "text",
		ScPath:         "sc",
		NetPath:        "net",
		PrivilegeProbe: "net-session",
	}
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", d.LogFormat, "log format: text or json")
	flags.Int("code-page", d.CodePage, "code page of utility output (0 = console code page)")
	flags.Int("concurrency", d.Concurrency, "maximum concurrent children for start/stop/restart (0 = unlimited)")
	flags.String("sc-path", d.ScPath, "service control utility")
	flags.String("net-path", d.NetPath, "start/stop utility")
	flags.String("privilege-probe", d.PrivilegeProbe, "privilege check: net-session or token")
	flags.Bool("no-color", d.NoColor, "disable coloured states")
	flags.Bool("wide", d.Wide, "add the process name column to list")
}

// Load builds the configuration from defaults, SVCCTL_* environment variables
// and flags, in increasing precedence. There is no configuration file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	v := viper.New()

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("code_page", cfg.CodePage)
	v.SetDefault("concurrency", cfg.Concurrency)
	v.SetDefault("sc_path", cfg.ScPath)
	v.SetDefault("net_path", cfg.NetPath)
	v.SetDefault("privilege_probe", cfg.PrivilegeProbe)
	v.SetDefault("no_color", cfg.NoColor)
	v.SetDefault("wide", cfg.Wide)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !v.IsSet(key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
