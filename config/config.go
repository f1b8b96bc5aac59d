// Package config loads contactd settings: defaults, then YAML layers,
// then a .env file, then CONTACTD_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/validator"
)

const (
	TransportSimulated = "simulated"
	TransportSMTP      = "smtp"

	GuardMemory = "memory"
	GuardRedis  = "redis"
)

type Config struct {
	Env         string         `yaml:"env" validate:"required"`
	ServiceName string         `yaml:"service_name" validate:"required"`
	Limits      contact.Limits `yaml:"limits"`
	Submit      Submit         `yaml:"submit"`
	SMTP        SMTP           `yaml:"smtp"`
	Redis       Redis          `yaml:"redis"`
	HTTP        HTTP           `yaml:"http"`
	Metrics     Metrics        `yaml:"metrics"`
}

type Submit struct {
	Transport   string        `yaml:"transport" validate:"oneof=simulated smtp"`
	Delay       time.Duration `yaml:"delay" validate:"gte=0"`
	SuccessRate float64       `yaml:"success_rate" validate:"gte=0,lte=1"`
	// Timeout bounds one delivery; 0 disables it.
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	Guard    string        `yaml:"guard" validate:"oneof=memory redis"`
	GuardTTL time.Duration `yaml:"guard_ttl" validate:"gt=0"`
}

type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0,lte=65535"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from" validate:"omitempty,email"`
	To   string `yaml:"to" validate:"omitempty,email"`
}

type Redis struct {
	Addr        string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db" validate:"gte=0"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	RatePerSecond   float64       `yaml:"rate_per_second" validate:"gt=0"`
	Burst           int           `yaml:"burst" validate:"gte=1"`
	// TrustedProxies may set X-Forwarded-For; empty means the client IP is
	// always the peer address.
	TrustedProxies []string `yaml:"trusted_proxies" validate:"omitempty,dive,cidr|ip"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

func DefaultConfig() Config {
	return Config{
		Env:         "production",
		ServiceName: "contactd",
		Limits:      contact.DefaultLimits(),
		Submit: Submit{
			Transport:   TransportSimulated,
			Delay:       2 * time.Second,
			SuccessRate: 0.9,
			Timeout:     10 * time.Second,
			Guard:       GuardMemory,
			GuardTTL:    30 * time.Second,
		},
		SMTP: SMTP{Port: 587},
		Redis: Redis{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
		},
		HTTP: HTTP{
			Addr:            ":8080",
			RatePerSecond:   1,
			Burst:           5,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: Metrics{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// LoadLayered applies YAML files over the defaults in order; later files
// win. Missing and empty files are skipped, unknown keys are an error.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range paths {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// applyFile decodes path over cfg, so keys absent from the file keep
// their current value.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// Comment-only files decode to EOF.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Load is the full pipeline used by contactd: YAML layers, the dotenv
// file (variables already set in the environment win), CONTACTD_*
// overrides, timeout sanitising and validation.
func Load(dotenv string, paths ...string) (*Config, error) {
	cfg, err := LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", dotenv, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) sanitize() {
	c.HTTP.ShutdownTimeout = clampTimeout(c.HTTP.ShutdownTimeout, 100*time.Millisecond, 10*time.Second)
	c.Redis.DialTimeout = clampTimeout(c.Redis.DialTimeout, 100*time.Millisecond, 5*time.Second)
	c.Submit.Timeout = clampTimeout(c.Submit.Timeout, time.Second, 10*time.Second)
}

// clampTimeout replaces a negative d with fallback and raises a positive d
// below floor to floor. Zero means "no timeout" and is kept.
func clampTimeout(d, floor, fallback time.Duration) time.Duration {
	switch {
	case d < 0:
		return fallback
	case d > 0 && d < floor:
		return floor
	}
	return d
}

// ValidationError lists invalid settings as yaml path -> reason code.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" ("+e.Fields[k]+")")
	}
	return "config: invalid " + strings.Join(parts, ", ")
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	fields := validator.Validate(c)
	add := func(k, v string) {
		if fields == nil {
			fields = map[string]string{}
		}
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}

	if c.Submit.Transport == TransportSMTP {
		if c.SMTP.Host == "" {
			add("smtp.host", "required")
		}
		if c.SMTP.From == "" {
			add("smtp.from", "required")
		}
		if c.SMTP.To == "" {
			add("smtp.to", "required")
		}
	}
	if c.Submit.Guard == GuardRedis {
		if c.Redis.Addr == "" {
			add("redis.addr", "required")
		}
		// The key expires after guard_ttl; an unbounded delivery could outlive it.
		if c.Submit.Timeout == 0 {
			add("submit.timeout", "required")
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		add("metrics.addr", "required")
	}
	// A guard that expires mid-delivery would let a second submission in.
	if c.Submit.Timeout > 0 && c.Submit.GuardTTL <= c.Submit.Delay+c.Submit.Timeout {
		add("submit.guard_ttl", "too_small")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ApplyEnv applies CONTACTD_* overrides.
func (c *Config) ApplyEnv() error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
			}
			*dst = d
		}
		return nil
	}
	num := func(name string, dst *int) error {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
			}
			*dst = n
		}
		return nil
	}

	str("CONTACTD_ENV", &c.Env)
	str("CONTACTD_SERVICE_NAME", &c.ServiceName)
	str("CONTACTD_HTTP_ADDR", &c.HTTP.Addr)
	str("CONTACTD_METRICS_ADDR", &c.Metrics.Addr)
	str("CONTACTD_SUBMIT_TRANSPORT", &c.Submit.Transport)
	str("CONTACTD_SUBMIT_GUARD", &c.Submit.Guard)
	str("CONTACTD_REDIS_ADDR", &c.Redis.Addr)
	str("CONTACTD_REDIS_PASSWORD", &c.Redis.Password)
	str("CONTACTD_SMTP_HOST", &c.SMTP.Host)
	str("CONTACTD_SMTP_USER", &c.SMTP.User)
	str("CONTACTD_SMTP_PASS", &c.SMTP.Pass)
	str("CONTACTD_SMTP_FROM", &c.SMTP.From)
	str("CONTACTD_SMTP_TO", &c.SMTP.To)
	if v := os.Getenv("CONTACTD_HTTP_TRUSTED_PROXIES"); v != "" {
		c.HTTP.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.HTTP.TrustedProxies = append(c.HTTP.TrustedProxies, p)
			}
		}
	}
	if v := os.Getenv("CONTACTD_NAME_CHARSET"); v != "" {
		c.Limits.NameCharset = contact.NameCharset(v)
	}
	if v := os.Getenv("CONTACTD_SUBMIT_SUCCESS_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTD_SUBMIT_SUCCESS_RATE %q: %w", v, err)
		}
		c.Submit.SuccessRate = f
	}

	for _, err := range []error{
		dur("CONTACTD_SUBMIT_DELAY", &c.Submit.Delay),
		dur("CONTACTD_SUBMIT_TIMEOUT", &c.Submit.Timeout),
		num("CONTACTD_SMTP_PORT", &c.SMTP.Port),
		num("CONTACTD_REDIS_DB", &c.Redis.DB),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
