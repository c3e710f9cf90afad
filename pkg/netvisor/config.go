package netvisor

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirosfoundation/go-netvisor/pkg/dnscache"
)

// Defaults applied by NewClient
const (
	DefaultBaseURI  = "https://integration.netvisor.fi"
	DefaultLanguage = "FI"
	DefaultTimeout  = 120 * time.Second
)

// Config is the client configuration. It is copied by NewClient and never
// modified afterwards.
type Config struct {
	IntegrationName string
	CustomerID      string
	CustomerKey     string
	PartnerID       string
	PartnerKey      string
	OrganizationID  string

	// BaseURI of the integration interface, without trailing resource
	BaseURI string

	// Language of the interface: FI, EN or SE
	Language string

	// Timeout per call, from call start to response completion
	Timeout time.Duration

	// DNSCache, if set, is used by the default transport to resolve hosts
	DNSCache *dnscache.Cache
}

func (c *Config) applyDefaults() {
	if c.BaseURI == "" {
		c.BaseURI = DefaultBaseURI
	}
	c.BaseURI = strings.TrimRight(c.BaseURI, "/")
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"IntegrationName", c.IntegrationName},
		{"CustomerID", c.CustomerID},
		{"CustomerKey", c.CustomerKey},
		{"PartnerID", c.PartnerID},
		{"PartnerKey", c.PartnerKey},
		{"OrganizationID", c.OrganizationID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigError{Field: r.field, Err: ErrMissingCredential}
		}
	}

	u, err := url.Parse(c.BaseURI)
	if err != nil {
		return &ConfigError{Field: "BaseURI", Err: err}
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return &ConfigError{Field: "BaseURI", Err: fmt.Errorf("not an absolute http(s) URI: %q", c.BaseURI)}
	}
	if u.RawQuery != "" {
		return &ConfigError{Field: "BaseURI", Err: fmt.Errorf("must not contain a query string")}
	}

	switch strings.ToUpper(c.Language) {
	case "FI", "EN", "SE":
	default:
		return &ConfigError{Field: "Language", Err: fmt.Errorf("unsupported language %q", c.Language)}
	}

	if c.Timeout < 0 {
		return &ConfigError{Field: "Timeout", Err: fmt.Errorf("negative timeout %v", c.Timeout)}
	}
	return nil
}
