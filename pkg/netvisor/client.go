package netvisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-netvisor/pkg/signature"
	"github.com/sirosfoundation/go-netvisor/pkg/transport"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// ErrInvalidResource is returned for resource names that cannot be resolved
var ErrInvalidResource = errors.New("invalid resource name")

const resourceSuffix = ".nv"

// Client dispatches signed calls to the Netvisor integration interface.
// A Client is safe for concurrent use.
type Client struct {
	config    Config
	signer    *signature.Signer
	transport transport.Transport
	logger    *slog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	transport  transport.Transport
	logger     *slog.Logger
	signerOpts []signature.Option
}

// WithTransport replaces the default HTTPS transport
func WithTransport(t transport.Transport) Option {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithSignerOptions passes options to the request signer
func WithSignerOptions(opts ...signature.Option) Option {
	return func(o *clientOptions) {
		o.signerOpts = append(o.signerOpts, opts...)
	}
}

// NewClient validates cfg and creates a client. A missing credential is
// reported as *ConfigError before any network activity.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, &ConfigError{Field: "config", Err: errors.New("nil configuration")}
	}

	c := *cfg
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.Language = strings.ToUpper(c.Language)

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.transport == nil {
		httpsConfig := transport.DefaultHTTPSConfig()
		// the per-call context carries the deadline
		httpsConfig.Timeout = 0
		if c.DNSCache != nil {
			httpsConfig.Dialer = c.DNSCache
		}
		o.transport = transport.NewHTTPSClient(httpsConfig)
	}

	creds := signature.Credentials{
		Sender:         c.IntegrationName,
		CustomerID:     c.CustomerID,
		CustomerKey:    c.CustomerKey,
		PartnerID:      c.PartnerID,
		PartnerKey:     c.PartnerKey,
		OrganizationID: c.OrganizationID,
		Language:       c.Language,
	}

	return &Client{
		config:    c,
		signer:    signature.NewSigner(creds, o.signerOpts...),
		transport: o.transport,
		logger:    o.logger,
	}, nil
}

// BaseURI returns the configured base URI without trailing slash
func (c *Client) BaseURI() string {
	return c.config.BaseURI
}

// ResolveURL returns the full URL that is signed and requested for
// resource and params: {BaseURI}/{resource}.nv[?query]. The suffix is
// added when missing.
func (c *Client) ResolveURL(resource string, params Params) (string, error) {
	name := strings.TrimLeft(strings.TrimSpace(resource), "/")
	if name == "" || strings.ContainsAny(name, "?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidResource, resource)
	}
	if !strings.HasSuffix(strings.ToLower(name), resourceSuffix) {
		name += resourceSuffix
	}

	u := c.config.BaseURI + "/" + name
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}

// Get performs a GET and returns the raw response XML. The response status
// is checked; a rejected call returns *RemoteError and no body.
func (c *Client) Get(ctx context.Context, resource string, params Params) ([]byte, error) {
	return c.raw(ctx, http.MethodGet, resource, params, nil)
}

// Post performs a POST with an XML body and returns the raw response XML
func (c *Client) Post(ctx context.Context, resource string, params Params, body []byte) ([]byte, error) {
	return c.raw(ctx, http.MethodPost, resource, params, body)
}

// GetNode performs a GET and returns the parsed payload
func (c *Client) GetNode(ctx context.Context, resource string, params Params) (*xmlcodec.Node, error) {
	return c.Call(ctx, http.MethodGet, resource, params, nil)
}

// PostNode performs a POST and returns the parsed payload
func (c *Client) PostNode(ctx context.Context, resource string, params Params, body []byte) (*xmlcodec.Node, error) {
	return c.Call(ctx, http.MethodPost, resource, params, body)
}

// Call performs a GET or POST and returns the response payload with the
// status block removed
func (c *Client) Call(ctx context.Context, method, resource string, params Params, body []byte) (*xmlcodec.Node, error) {
	data, err := c.dispatch(ctx, method, resource, params, body)
	if err != nil {
		return nil, err
	}
	return c.decode(resource, data)
}

// Close releases idle connections held by the default transport
func (c *Client) Close() {
	if t, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

func (c *Client) raw(ctx context.Context, method, resource string, params Params, body []byte) ([]byte, error) {
	data, err := c.dispatch(ctx, method, resource, params, body)
	if err != nil {
		return nil, err
	}
	if _, err := c.decode(resource, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) dispatch(ctx context.Context, method, resource string, params Params, body []byte) ([]byte, error) {
	switch method {
	case http.MethodGet:
		if len(body) > 0 {
			return nil, fmt.Errorf("netvisor: GET %s: request body not allowed", resource)
		}
	case http.MethodPost:
	default:
		return nil, fmt.Errorf("netvisor: unsupported method %q", method)
	}

	fullURL, err := c.ResolveURL(resource, params)
	if err != nil {
		return nil, err
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	auth := c.signer.Sign(fullURL)
	header := make(http.Header)
	auth.Apply(header)

	log := c.logger.With(
		"request_id", uuid.NewString(),
		"method", method,
		"resource", resource,
		"transaction_id", auth.TransactionID,
	)

	start := time.Now()
	data, err := c.transport.Do(ctx, &transport.Request{
		Method: method,
		URL:    fullURL,
		Header: header,
		Body:   body,
	})
	elapsed := time.Since(start)

	if err != nil {
		terr := &TransportError{Method: method, URL: fullURL, Err: err}
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			terr.StatusCode = statusErr.StatusCode
		}
		log.Warn("netvisor call failed",
			"duration", elapsed,
			"status_code", terr.StatusCode,
			"error", err)
		return nil, terr
	}

	log.Debug("netvisor call completed", "duration", elapsed, "bytes", len(data))
	return data, nil
}

func (c *Client) decode(resource string, data []byte) (*xmlcodec.Node, error) {
	payload, err := xmlcodec.Decode(data)
	if err == nil {
		return payload, nil
	}

	var statusErr *xmlcodec.StatusError
	if errors.As(err, &statusErr) {
		rerr := &RemoteError{
			Resource:  resource,
			Status:    statusErr.Status,
			Code:      statusErr.Code,
			Message:   statusErr.Message,
			Detail:    statusErr.Detail,
			Timestamp: statusErr.Timestamp,
		}
		c.logger.Warn("netvisor rejected request",
			"resource", resource,
			"status", rerr.Status,
			"code", rerr.Code,
			"message", rerr.Message)
		return nil, rerr
	}

	return nil, &ProtocolError{Resource: resource, Err: err}
}
