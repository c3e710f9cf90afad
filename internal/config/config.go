// Package config handles configuration loading for the netvisor command.
//
// Configuration is loaded from an optional YAML file with support for
// environment variable expansion (${VAR} or $VAR syntax), so keys can be
// injected at runtime instead of being written to disk. A .env file may be
// loaded first with [LoadEnvFile], and NETVISOR_* variables override file
// values.
//
// # Configuration Sections
//
//   - netvisor: service endpoint, credentials, language and timeout
//   - dnsCache: optional resolver cache for the HTTP transport
//   - logging: log level and format
//
// # Example Configuration
//
//	netvisor:
//	  baseUri: https://isvapi.netvisor.fi
//	  integrationName: my-integration
//	  customerId: XX_12345_6789
//	  customerKey: ${NETVISOR_CUSTOMER_KEY}
//	  partnerId: Xxx_yyy
//	  partnerKey: ${NETVISOR_PARTNER_KEY}
//	  organizationId: 1234567-8
//	  language: FI
//	  timeout: 60s
//
//	dnsCache:
//	  enabled: true
//	  maxTTL: 10m
//
//	logging:
//	  level: debug
//	  format: json
//
// See [Load] for loading configuration from a file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-netvisor/pkg/dnscache"
	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Config is the root configuration structure
type Config struct {
	Netvisor NetvisorConfig `yaml:"netvisor"`
	DNSCache DNSCacheConfig `yaml:"dnsCache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NetvisorConfig holds the service endpoint and credentials
type NetvisorConfig struct {
	BaseURI         string        `yaml:"baseUri"`
	IntegrationName string        `yaml:"integrationName"`
	CustomerID      string        `yaml:"customerId"`
	CustomerKey     string        `yaml:"customerKey"`
	PartnerID       string        `yaml:"partnerId"`
	PartnerKey      string        `yaml:"partnerKey"`
	OrganizationID  string        `yaml:"organizationId"`
	Language        string        `yaml:"language"`
	Timeout         time.Duration `yaml:"timeout"`

	// Charset of request bodies built by resource commands
	Charset string `yaml:"charset"`
}

// DNSCacheConfig holds resolver cache settings
type DNSCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// host:port of the DNS server, /etc/resolv.conf when empty
	Server string        `yaml:"server"`
	MinTTL time.Duration `yaml:"minTTL"`
	MaxTTL time.Duration `yaml:"maxTTL"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Environment variables overriding file values
var envOverrides = []struct {
	name string
	set  func(*NetvisorConfig, string)
}{
	{"NETVISOR_BASE_URI", func(c *NetvisorConfig, v string) { c.BaseURI = v }},
	{"NETVISOR_INTEGRATION_NAME", func(c *NetvisorConfig, v string) { c.IntegrationName = v }},
	{"NETVISOR_CUSTOMER_ID", func(c *NetvisorConfig, v string) { c.CustomerID = v }},
	{"NETVISOR_CUSTOMER_KEY", func(c *NetvisorConfig, v string) { c.CustomerKey = v }},
	{"NETVISOR_PARTNER_ID", func(c *NetvisorConfig, v string) { c.PartnerID = v }},
	{"NETVISOR_PARTNER_KEY", func(c *NetvisorConfig, v string) { c.PartnerKey = v }},
	{"NETVISOR_ORGANIZATION_ID", func(c *NetvisorConfig, v string) { c.OrganizationID = v }},
	{"NETVISOR_LANGUAGE", func(c *NetvisorConfig, v string) { c.Language = v }},
}

// LoadEnvFile loads variables from a .env file without overriding the
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file. With an empty path the
// configuration comes from the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			o.set(&c.Netvisor, v)
		}
	}
	if v := os.Getenv("NETVISOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NETVISOR_TIMEOUT: %w", err)
		}
		c.Netvisor.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Netvisor.BaseURI == "" {
		c.Netvisor.BaseURI = netvisor.DefaultBaseURI
	}
	if c.Netvisor.Language == "" {
		c.Netvisor.Language = netvisor.DefaultLanguage
	}
	c.Netvisor.Language = strings.ToUpper(c.Netvisor.Language)
	if c.Netvisor.Timeout == 0 {
		c.Netvisor.Timeout = netvisor.DefaultTimeout
	}
	if c.Netvisor.Charset == "" {
		c.Netvisor.Charset = xmlcodec.CharsetUTF8
	}
	if c.DNSCache.MinTTL == 0 {
		c.DNSCache.MinTTL = 5 * time.Second
	}
	if c.DNSCache.MaxTTL == 0 {
		c.DNSCache.MaxTTL = 5 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	required := []struct {
		path  string
		value string
	}{
		{"netvisor.integrationName", c.Netvisor.IntegrationName},
		{"netvisor.customerId", c.Netvisor.CustomerID},
		{"netvisor.customerKey", c.Netvisor.CustomerKey},
		{"netvisor.partnerId", c.Netvisor.PartnerID},
		{"netvisor.partnerKey", c.Netvisor.PartnerKey},
		{"netvisor.organizationId", c.Netvisor.OrganizationID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.path)
		}
	}

	switch c.Netvisor.Language {
	case "FI", "EN", "SE":
	default:
		return fmt.Errorf("netvisor.language must be 'FI', 'EN', or 'SE', got '%s'", c.Netvisor.Language)
	}

	switch strings.ToUpper(c.Netvisor.Charset) {
	case xmlcodec.CharsetUTF8, xmlcodec.CharsetLatin1:
	default:
		return fmt.Errorf("netvisor.charset must be '%s' or '%s', got '%s'", xmlcodec.CharsetUTF8, xmlcodec.CharsetLatin1, c.Netvisor.Charset)
	}

	if c.DNSCache.MaxTTL < c.DNSCache.MinTTL {
		return fmt.Errorf("dnsCache.maxTTL must not be below dnsCache.minTTL")
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got '%s'", c.Logging.Format)
	}

	return nil
}

// SlogLevel returns the configured level as a slog.Level
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// ClientConfig returns the client configuration. cache may be nil.
func (c *Config) ClientConfig(cache *dnscache.Cache) *netvisor.Config {
	return &netvisor.Config{
		IntegrationName: c.Netvisor.IntegrationName,
		CustomerID:      c.Netvisor.CustomerID,
		CustomerKey:     c.Netvisor.CustomerKey,
		PartnerID:       c.Netvisor.PartnerID,
		PartnerKey:      c.Netvisor.PartnerKey,
		OrganizationID:  c.Netvisor.OrganizationID,
		BaseURI:         c.Netvisor.BaseURI,
		Language:        c.Netvisor.Language,
		Timeout:         c.Netvisor.Timeout,
		DNSCache:        cache,
	}
}

// ResolverConfig returns the DNS cache settings
func (c *Config) ResolverConfig() dnscache.Config {
	return dnscache.Config{
		Server: c.DNSCache.Server,
		MinTTL: c.DNSCache.MinTTL,
		MaxTTL: c.DNSCache.MaxTTL,
	}
}
