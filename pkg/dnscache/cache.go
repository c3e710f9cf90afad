package dnscache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/singleflight"
)

// ErrNoAddresses is returned when a name resolves to no A or AAAA records
var ErrNoAddresses = errors.New("no addresses found for host")

// Config contains configuration for a Cache
type Config struct {
	// Server is the DNS server to query, "ip:port".
	// If empty, the first server in /etc/resolv.conf is used.
	Server string

	// MinTTL and MaxTTL clamp record TTLs. Defaults 5s and 5m.
	MinTTL time.Duration
	MaxTTL time.Duration

	// Timeout bounds a single DNS exchange. Default 5s.
	Timeout time.Duration
}

type cacheEntry struct {
	addrs   []string
	expires time.Time
}

// Cache is a TTL-bounded host to address cache
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	client *dns.Client
	dialer *net.Dialer
	server string
	minTTL time.Duration
	maxTTL time.Duration
	now    func() time.Time

	// fallback answers names the DNS server could not, such as
	// /etc/hosts entries.
	fallback func(ctx context.Context, host string) ([]string, error)
}

// New creates a cache. The system resolver configuration is read here, so
// a broken /etc/resolv.conf is reported at construction.
func New(cfg Config) (*Cache, error) {
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = 5 * time.Second
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = 5 * time.Minute
	}
	if cfg.MaxTTL < cfg.MinTTL {
		return nil, fmt.Errorf("max TTL %v is below min TTL %v", cfg.MaxTTL, cfg.MinTTL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	server := cfg.Server
	if server == "" {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("failed to read DNS config: %w", err)
		}
		if len(conf.Servers) == 0 {
			return nil, errors.New("no DNS servers configured")
		}
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	}

	return &Cache{
		entries: make(map[string]cacheEntry),
		client:  &dns.Client{Timeout: cfg.Timeout},
		dialer:  &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second},
		server:  server,
		minTTL:  cfg.MinTTL,
		maxTTL:  cfg.MaxTTL,
		now:     time.Now,

		fallback: net.DefaultResolver.LookupHost,
	}, nil
}

// LookupHost returns the addresses of host, IPv4 first.
// IP literals are returned as is.
func (c *Cache) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" {
		return net.DefaultResolver.LookupHost(ctx, host)
	}

	if addrs, ok := c.cached(host); ok {
		return addrs, nil
	}

	// The shared lookup must outlive any single caller, so it runs
	// detached from ctx and each caller waits on its own ctx.
	ch := c.group.DoChan(host, func() (interface{}, error) {
		if addrs, ok := c.cached(host); ok {
			return addrs, nil
		}
		addrs, ttl, err := c.resolve(context.WithoutCancel(ctx), host)
		if err != nil {
			return nil, err
		}
		c.store(host, addrs, ttl)
		return addrs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// DialContext resolves the host of addr through the cache and dials the
// addresses in order until one connects. Its signature matches
// net.Dialer.DialContext so it can be used by http.Transport.
func (c *Cache) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	addrs, err := c.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, a := range addrs {
		conn, err := c.dialer.DialContext(ctx, network, net.JoinHostPort(a, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("dial %s: %w", addr, lastErr)
}

// Flush drops all cached entries
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached hosts, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cached(host string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[host]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.addrs, true
}

func (c *Cache) store(host string, addrs []string, ttl time.Duration) {
	if ttl < c.minTTL {
		ttl = c.minTTL
	}
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[host] = cacheEntry{addrs: addrs, expires: c.now().Add(ttl)}
}

// resolve asks the DNS server first and the system resolver when the
// server fails or has no addresses. System answers are cached for the
// minimum TTL.
func (c *Cache) resolve(ctx context.Context, host string) ([]string, time.Duration, error) {
	addrs, ttl, err := c.query(ctx, host)
	if err == nil {
		return addrs, ttl, nil
	}

	if sys, serr := c.fallback(ctx, host); serr == nil && len(sys) > 0 {
		return sys, c.minTTL, nil
	}
	return nil, 0, err
}

// query asks for A then AAAA and returns the addresses with the lowest
// TTL seen among them. A failed AAAA query is ignored once A answered.
func (c *Cache) query(ctx context.Context, host string) ([]string, time.Duration, error) {
	var addrs []string
	minTTL := uint32(0)
	first := true

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)
		msg.RecursionDesired = true

		resp, _, err := c.client.ExchangeContext(ctx, msg, c.server)
		if err == nil && resp.Rcode != dns.RcodeSuccess {
			if resp.Rcode == dns.RcodeNameError {
				err = fmt.Errorf("%w: %s", ErrNoAddresses, host)
			} else {
				err = fmt.Errorf("rcode=%d", resp.Rcode)
			}
		}
		if err != nil {
			if len(addrs) > 0 {
				break
			}
			if errors.Is(err, ErrNoAddresses) {
				return nil, 0, err
			}
			return nil, 0, fmt.Errorf("DNS lookup failed for %s: %w", host, err)
		}

		for _, rr := range resp.Answer {
			var ip net.IP
			switch r := rr.(type) {
			case *dns.A:
				ip = r.A
			case *dns.AAAA:
				ip = r.AAAA
			default:
				continue
			}
			addrs = append(addrs, ip.String())
			if first || rr.Header().Ttl < minTTL {
				minTTL = rr.Header().Ttl
				first = false
			}
		}
	}

	if len(addrs) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrNoAddresses, host)
	}
	return addrs, time.Duration(minTTL) * time.Second, nil
}
