package netvisor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-netvisor/pkg/signature"
	"github.com/sirosfoundation/go-netvisor/pkg/transport"
)

const (
	testCustomerKey = "customer-secret"
	testPartnerKey  = "partner-secret"
)

func testConfig(baseURI string) *Config {
	return &Config{
		IntegrationName: "TestClient",
		CustomerID:      "X_1234_5678",
		CustomerKey:     testCustomerKey,
		PartnerID:       "Tes_001",
		PartnerKey:      testPartnerKey,
		OrganizationID:  "1234567-8",
		BaseURI:         baseURI,
	}
}

func okResponse(payload string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Root><ResponseStatus><Status>OK</Status><TimeStamp>2024-03-15 10:30:45</TimeStamp></ResponseStatus>` +
		payload + `</Root>`
}

func failedResponse(detail string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Root><ResponseStatus><Status>FAILED</Status><Status>` + detail + `</Status>` +
		`<TimeStamp>2024-03-15 10:30:45</TimeStamp></ResponseStatus></Root>`
}

// verifyMAC recomputes the MAC the way the service does, from the URL the
// request actually arrived on
func verifyMAC(t *testing.T, r *http.Request) {
	t.Helper()
	fullURL := "http://" + r.Host + r.URL.RequestURI()
	h := signature.AuthHeaders{
		Sender:         r.Header.Get(signature.HeaderSender),
		CustomerID:     r.Header.Get(signature.HeaderCustomerID),
		Timestamp:      r.Header.Get(signature.HeaderTimestamp),
		Language:       r.Header.Get(signature.HeaderLanguage),
		OrganizationID: r.Header.Get(signature.HeaderOrganizationID),
		TransactionID:  r.Header.Get(signature.HeaderTransactionID),
	}
	want := signature.ComputeMAC(fullURL, h, testCustomerKey, testPartnerKey)
	assert.Equal(t, want, r.Header.Get(signature.HeaderMAC), "MAC mismatch for %s", fullURL)
	assert.Equal(t, signature.AlgorithmSHA256, r.Header.Get(signature.HeaderMACAlgorithm))
	assert.Equal(t, "Tes_001", r.Header.Get(signature.HeaderPartnerID))
	assert.Equal(t, signature.ContentTypeXML, r.Header.Get(signature.HeaderContentType))
}

type fakeTransport struct {
	mu       sync.Mutex
	requests []*transport.Request
	respond  func(*transport.Request) ([]byte, error)
}

func (f *fakeTransport) Do(_ context.Context, req *transport.Request) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.respond == nil {
		return []byte(okResponse("")), nil
	}
	return f.respond(req)
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestNewClientDefaults(t *testing.T) {
	cfg := testConfig("")
	client, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURI, client.BaseURI())
	assert.Equal(t, DefaultLanguage, client.config.Language)
	assert.Equal(t, DefaultTimeout, client.config.Timeout)
	// caller's struct is not modified
	assert.Empty(t, cfg.BaseURI)
}

func TestNewClientMissingCredential(t *testing.T) {
	fields := map[string]func(*Config){
		"IntegrationName": func(c *Config) { c.IntegrationName = "" },
		"CustomerID":      func(c *Config) { c.CustomerID = "" },
		"CustomerKey":     func(c *Config) { c.CustomerKey = "" },
		"PartnerID":       func(c *Config) { c.PartnerID = "  " },
		"PartnerKey":      func(c *Config) { c.PartnerKey = "" },
		"OrganizationID":  func(c *Config) { c.OrganizationID = "" },
	}

	for field, unset := range fields {
		t.Run(field, func(t *testing.T) {
			ft := &fakeTransport{}
			cfg := testConfig("https://integration.netvisor.fi")
			unset(cfg)

			client, err := NewClient(cfg, WithTransport(ft))
			require.Error(t, err)
			assert.Nil(t, client)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, field, cerr.Field)
			assert.ErrorIs(t, err, ErrMissingCredential)
			assert.Zero(t, ft.count())
		})
	}
}

func TestNewClientInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"nil", nil, "config"},
		{"relative base", func(c *Config) { c.BaseURI = "integration.netvisor.fi" }, "BaseURI"},
		{"base with query", func(c *Config) { c.BaseURI = "https://integration.netvisor.fi?x=1" }, "BaseURI"},
		{"language", func(c *Config) { c.Language = "DE" }, "Language"},
		{"timeout", func(c *Config) { c.Timeout = -time.Second }, "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *Config
			if tt.mutate != nil {
				cfg = testConfig("")
				tt.mutate(cfg)
			}
			_, err := NewClient(cfg)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestResolveURL(t *testing.T) {
	client, err := NewClient(testConfig("https://integration.netvisor.fi/"))
	require.NoError(t, err)

	u, err := client.ResolveURL("customerlist.nv", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://integration.netvisor.fi/customerlist.nv", u)

	u, err = client.ResolveURL("/customerlist", Params{}.Add("keyword", "acme corp").Add("changedsince", "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "https://integration.netvisor.fi/customerlist.nv?keyword=acme+corp&changedsince=2024-01-01", u)

	_, err = client.ResolveURL("customerlist.nv?keyword=x", nil)
	assert.ErrorIs(t, err, ErrInvalidResource)
	_, err = client.ResolveURL("", nil)
	assert.ErrorIs(t, err, ErrInvalidResource)
}

func TestGetNodeSignsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/customerlist.nv", r.URL.Path)
		assert.Equal(t, "acme corp", r.URL.Query().Get("keyword"))
		verifyMAC(t, r)
		fmt.Fprint(w, okResponse(`<Customerlist><Customer><Netvisorkey>1</Netvisorkey><Name>Acme</Name></Customer></Customerlist>`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	defer client.Close()

	payload, err := client.GetNode(context.Background(), "customerlist.nv", Params{}.Add("keyword", "acme corp"))
	require.NoError(t, err)

	assert.Equal(t, []string{"customerlist"}, payload.Keys())
	list, ok := payload.Child("customerlist")
	require.True(t, ok)
	customer, ok := list.Child("customer")
	require.True(t, ok)
	name, _ := customer.Text("name")
	assert.Equal(t, "Acme", name)
}

func TestPostSendsBody(t *testing.T) {
	body := `<root><customer><customerbaseinformation><name>Acme</name></customerbaseinformation></customer></root>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "add", r.URL.Query().Get("method"))
		verifyMAC(t, r)
		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, body, string(got))
		fmt.Fprint(w, okResponse(`<Replies><InsertedDataIdentifier>42</InsertedDataIdentifier></Replies>`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	raw, err := client.Post(context.Background(), "customer.nv", Params{}.Add("method", "add"), []byte(body))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<InsertedDataIdentifier>42</InsertedDataIdentifier>")
	assert.Contains(t, string(raw), "<ResponseStatus>")
}

func TestRawModeStillChecksStatus(t *testing.T) {
	ft := &fakeTransport{respond: func(*transport.Request) ([]byte, error) {
		return []byte(failedResponse("AUTHENTICATION_FAILED :: Unknown customer")), nil
	}}
	client, err := NewClient(testConfig(""), WithTransport(ft))
	require.NoError(t, err)

	raw, err := client.Get(context.Background(), "customerlist.nv", nil)
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestRemoteError(t *testing.T) {
	ft := &fakeTransport{respond: func(*transport.Request) ([]byte, error) {
		return []byte(failedResponse("AUTHENTICATION_FAILED :: Unknown customer")), nil
	}}
	client, err := NewClient(testConfig(""), WithTransport(ft))
	require.NoError(t, err)

	payload, err := client.GetNode(context.Background(), "customerlist.nv", nil)
	assert.Nil(t, payload)

	var rerr *RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "FAILED", rerr.Status)
	assert.Equal(t, "AUTHENTICATION_FAILED", rerr.Code)
	assert.Equal(t, "Unknown customer", rerr.Message)
	assert.Equal(t, "AUTHENTICATION_FAILED :: Unknown customer", rerr.Detail)
	assert.Equal(t, "2024-03-15 10:30:45", rerr.Timestamp)
	assert.Equal(t, "customerlist.nv", rerr.Resource)
	assert.False(t, errors.Is(err, ErrProtocol))
}

func TestProtocolError(t *testing.T) {
	tests := map[string]string{
		"malformed":   `<Root><ResponseStatus>`,
		"not xml":     `Service Unavailable`,
		"no envelope": `<Root><Something>1</Something></Root>`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			ft := &fakeTransport{respond: func(*transport.Request) ([]byte, error) {
				return []byte(body), nil
			}}
			client, err := NewClient(testConfig(""), WithTransport(ft))
			require.NoError(t, err)

			payload, err := client.GetNode(context.Background(), "customerlist.nv", nil)
			assert.Nil(t, payload)
			var perr *ProtocolError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.ErrorIs(t, err, ErrProtocol)
		})
	}
}

func TestTransportErrorStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.GetNode(context.Background(), "customerlist.nv", nil)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, terr.Timeout())
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client, err := NewClient(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Get(context.Background(), "customerlist.nv", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Timeout())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCancellationIsolated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slow") == "1" {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
		fmt.Fprint(w, okResponse(`<Value>done</Value>`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = client.Get(ctx, "customerlist.nv", Params{}.Add("slow", "1"))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	payload, err := client.GetNode(context.Background(), "customerlist.nv", nil)
	require.NoError(t, err)
	value, _ := payload.Text("value")
	assert.Equal(t, "done", value)

	wg.Wait()
	assert.ErrorIs(t, slowErr, context.Canceled)
	assert.ErrorIs(t, slowErr, ErrTransport)
}

func TestConcurrentCallsDistinctTransactionIDs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifyMAC(t, r)
		mu.Lock()
		seen[r.Header.Get(signature.HeaderTransactionID)] = true
		mu.Unlock()
		fmt.Fprint(w, okResponse(""))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := client.Get(context.Background(), "getcustomer.nv", Params{}.Add("id", fmt.Sprint(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, calls)
}

func TestSignerOptions(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 10, 30, 45, 123_000_000, time.Local)
	ft := &fakeTransport{}
	client, err := NewClient(testConfig(""),
		WithTransport(ft),
		WithSignerOptions(
			signature.WithClock(func() time.Time { return fixed }),
			signature.WithTransactionIDs(func() string { return "0123456789abcdef" }),
		))
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "customerlist.nv", Params{}.Add("keyword", "acme"))
	require.NoError(t, err)

	require.Equal(t, 1, ft.count())
	req := ft.requests[0]
	assert.Equal(t, "https://integration.netvisor.fi/customerlist.nv?keyword=acme", req.URL)
	assert.Equal(t, "2024-03-15 10:30:45.123", req.Header.Get(signature.HeaderTimestamp))
	assert.Equal(t, "0123456789abcdef", req.Header.Get(signature.HeaderTransactionID))
	assert.Nil(t, req.Body)
}

func TestMethodValidation(t *testing.T) {
	ft := &fakeTransport{}
	client, err := NewClient(testConfig(""), WithTransport(ft))
	require.NoError(t, err)

	_, err = client.Call(context.Background(), http.MethodDelete, "customer.nv", nil, nil)
	assert.Error(t, err)
	_, err = client.Call(context.Background(), http.MethodGet, "customer.nv", nil, []byte("<x/>"))
	assert.Error(t, err)
	assert.Zero(t, ft.count())
}

func TestParamsEncode(t *testing.T) {
	p := Params{}.Add("b", "2").Add("a", "x&y=z").AddIf("empty", "").AddIf("c", "ä")
	assert.Equal(t, "b=2&a=x%26y%3Dz&c=%C3%A4", p.Encode())
	assert.Equal(t, "", Params(nil).Encode())
	assert.True(t, strings.HasPrefix(p.Encode(), "b="))
}

func TestLoggingOmitsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ft := &fakeTransport{}
	client, err := NewClient(testConfig(""), WithTransport(ft), WithLogger(logger))
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "customerlist.nv", nil)
	require.NoError(t, err)

	out := buf.String()
	txID := ft.requests[0].Header.Get(signature.HeaderTransactionID)
	mac := ft.requests[0].Header.Get(signature.HeaderMAC)

	assert.Contains(t, out, "netvisor call completed")
	assert.Contains(t, out, "transaction_id="+txID)
	assert.Contains(t, out, "request_id=")
	assert.NotContains(t, out, testCustomerKey)
	assert.NotContains(t, out, testPartnerKey)
	assert.NotContains(t, out, mac)
}
