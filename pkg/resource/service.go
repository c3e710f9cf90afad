package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

// Caller is the part of *netvisor.Client used by Service
type Caller interface {
	GetNode(ctx context.Context, resource string, params netvisor.Params) (*xmlcodec.Node, error)
	PostNode(ctx context.Context, resource string, params netvisor.Params, body []byte) (*xmlcodec.Node, error)
}

// Service exposes typed resource methods on top of a Caller
type Service struct {
	caller  Caller
	charset string
	logger  *slog.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithCharset selects the request body encoding, see xmlcodec.WithCharset
func WithCharset(name string) ServiceOption {
	return func(s *Service) {
		s.charset = name
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a Service
func NewService(caller Caller, opts ...ServiceOption) *Service {
	s := &Service{
		caller:  caller,
		charset: xmlcodec.CharsetUTF8,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// insert posts a request body wrapped in <root> and returns the Netvisor
// key from the <Replies> block
func (s *Service) insert(ctx context.Context, resource string, params netvisor.Params, body *xmlcodec.Node) (int64, error) {
	data, err := xmlcodec.Encode("root", body, xmlcodec.WithCharset(s.charset))
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s body: %w", resource, err)
	}

	payload, err := s.caller.PostNode(ctx, resource, params, data)
	if err != nil {
		return 0, err
	}

	key, err := insertedKey(payload)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", resource, err)
	}
	s.logger.Debug("netvisor record inserted", "resource", resource, "netvisor_key", key)
	return key, nil
}

func insertedKey(payload *xmlcodec.Node) (int64, error) {
	replies, ok := payload.Child("replies")
	if !ok {
		return 0, &xmlcodec.FieldError{Field: "replies", Err: xmlcodec.ErrMissingField}
	}
	key, err := replies.Int("inserteddataidentifier")
	if err != nil {
		return 0, fieldPath("replies", err)
	}
	return key, nil
}

// fieldPath prefixes the field of a FieldError with its parent element
func fieldPath(parent string, err error) error {
	var fe *xmlcodec.FieldError
	if errors.As(err, &fe) {
		return &xmlcodec.FieldError{Field: parent + "/" + fe.Field, Value: fe.Value, Err: fe.Err}
	}
	return err
}

// list maps every <item> under <container> in the payload
func list[T any](payload *xmlcodec.Node, container, item string, from func(*xmlcodec.Node) (T, error)) ([]T, error) {
	c, ok := payload.Child(container)
	if !ok {
		// an empty list decodes as a text-only element or not at all
		if _, present := payload.Get(container); present {
			return nil, nil
		}
		return nil, &xmlcodec.FieldError{Field: container, Err: xmlcodec.ErrMissingField}
	}

	seq := c.Sequence(item)
	out := make([]T, 0, len(seq))
	for i, v := range seq {
		n, ok := xmlcodec.NodeOf(v)
		if !ok {
			return nil, &xmlcodec.FieldError{Field: fmt.Sprintf("%s/%s[%d]", container, item, i), Err: fmt.Errorf("not an element")}
		}
		t, err := from(n)
		if err != nil {
			return nil, fieldPath(fmt.Sprintf("%s/%s[%d]", container, item, i), err)
		}
		out = append(out, t)
	}
	return out, nil
}

func text(n *xmlcodec.Node, key string) string {
	s, _ := n.Text(key)
	return s
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatRate writes a percentage without trailing zeros, e.g. 25,5
func formatRate(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}

// Bool returns a pointer to b, for optional flags such as Customer.IsActive
func Bool(b bool) *bool {
	return &b
}

// formatBool writes 1 or 0; an unset flag is left empty so it is omitted
func formatBool(b *bool) xmlcodec.Text {
	switch {
	case b == nil:
		return ""
	case *b:
		return "1"
	}
	return "0"
}

// parseBool returns nil when key is absent or empty
func parseBool(n *xmlcodec.Node, key string) *bool {
	switch text(n, key) {
	case "":
		return nil
	case "1", "true", "True", "TRUE":
		return Bool(true)
	}
	return Bool(false)
}

func netvisorRef(key int64) *xmlcodec.Tagged {
	return xmlcodec.NewTagged(xmlcodec.Text(formatInt(key)), xmlcodec.Attr{Name: "type", Value: "netvisor"})
}

func ansiDate(s string) *xmlcodec.Tagged {
	return xmlcodec.NewTagged(xmlcodec.Text(s), xmlcodec.Attr{Name: "format", Value: "ansi"})
}
