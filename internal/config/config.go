// Package config loads runtime settings for the option-surface tool.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional config file (YAML, JSON or TOML, chosen by extension) and
// OPTSURF_* environment variables, e.g. OPTSURF_CONTRACT_SPOT=105 or
// OPTSURF_SERVER_ADDR=:9090. Command-line flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/contactkeval/option-surface/internal/pricing"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OPTSURF"

// Config struct
type Config struct {
	Contract   ContractConfig `mapstructure:"contract"`
	Greeks     []string       `mapstructure:"greeks"`     // price, delta, ... or "all"
	Expression string         `mapstructure:"expression"` // optional custom surface, e.g. "delta*spot"
	Report     ReportConfig   `mapstructure:"report"`
	Server     ServerConfig   `mapstructure:"server"`
	Log        LogConfig      `mapstructure:"log"`
}

// ContractConfig holds raw contract parameters. They are validated by
// pricing.NewContract, not here.
type ContractConfig struct {
	Spot       float64 `mapstructure:"spot"`
	Strike     float64 `mapstructure:"strike"`
	Rate       float64 `mapstructure:"rate"`
	Expiry     float64 `mapstructure:"expiry"` // years
	Volatility float64 `mapstructure:"volatility"`
	Kind       string  `mapstructure:"kind"`
}

// Params converts the section into pricing parameters.
func (c ContractConfig) Params() pricing.Params {
	return pricing.Params{
		Spot:       c.Spot,
		Strike:     c.Strike,
		Rate:       c.Rate,
		Expiry:     c.Expiry,
		Volatility: c.Volatility,
		Kind:       c.Kind,
	}
}

// ReportConfig selects where and how surfaces are rendered.
type ReportConfig struct {
	Dir     string   `mapstructure:"dir" validate:"required"`
	Formats []string `mapstructure:"formats" validate:"min=1,dive,oneof=json csv png"`
}

// ServerConfig configures REST mode.
type ServerConfig struct {
	Addr       string        `mapstructure:"addr" validate:"required"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	CacheMaxMB int           `mapstructure:"cache_max_mb" validate:"gte=0"`
}

// LogConfig configures verbosity and the rotated log file.
type LogConfig struct {
	Verbosity  int    `mapstructure:"verbosity" validate:"gte=0,lte=3"` // 0=errors,1=info,2=debug,3=trace
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("contract.spot", 100.0)
	v.SetDefault("contract.strike", 130.0)
	v.SetDefault("contract.rate", 0.05)
	v.SetDefault("contract.expiry", 1.0)
	v.SetDefault("contract.volatility", 0.2)
	v.SetDefault("contract.kind", "call")
	v.SetDefault("greeks", []string{"all"})
	v.SetDefault("expression", "")
	v.SetDefault("report.dir", "out")
	v.SetDefault("report.formats", []string{"json"})
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cache_ttl", 5*time.Minute)
	v.SetDefault("server.cache_max_mb", 64)
	v.SetDefault("log.verbosity", 1)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
}

// Load reads defaults, the file at path (skipped when path is empty) and
// environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural settings. Contract values are checked when the
// contract is built.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, g := range c.Greeks {
		if strings.EqualFold(strings.TrimSpace(g), "all") {
			continue
		}
		if _, err := pricing.ParseGreek(g); err != nil {
			return fmt.Errorf("invalid config: greeks: %w", err)
		}
	}
	return nil
}

// SelectedGreeks expands the greeks list, honouring "all" and dropping
// duplicates. Call Validate first.
func (c *Config) SelectedGreeks() []pricing.Greek {
	seen := make(map[pricing.Greek]bool)
	var out []pricing.Greek
	add := func(g pricing.Greek) {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	for _, name := range c.Greeks {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			for _, g := range pricing.Greeks {
				add(g)
			}
			continue
		}
		if g, err := pricing.ParseGreek(name); err == nil {
			add(g)
		}
	}
	return out
}
