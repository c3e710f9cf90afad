package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/signature"
	"github.com/sirosfoundation/go-netvisor/pkg/xmlcodec"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"keyword=acme corp", "id=1", "empty="})
	require.NoError(t, err)
	assert.Equal(t, netvisor.Params{
		{Key: "keyword", Value: "acme corp"},
		{Key: "id", Value: "1"},
		{Key: "empty", Value: ""},
	}, params)

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestWriteYAMLKeepsOrder(t *testing.T) {
	n := xmlcodec.NewNode().
		Set("zeta", xmlcodec.Text("00100")).
		Set("alpha", xmlcodec.NewNode().Set("name", xmlcodec.Text("Acme"))).
		Set("country", xmlcodec.NewTagged(xmlcodec.Text("FI"), xmlcodec.Attr{Name: "type", Value: "ISO-3166"})).
		Set("lines", xmlcodec.Sequence{xmlcodec.Text("one"), xmlcodec.Text("two")})

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, n))
	out := buf.String()

	assert.Contains(t, out, `zeta: "00100"`)
	assert.Contains(t, out, "name: Acme")
	assert.Contains(t, out, "ISO-3166")
	assert.Contains(t, out, "- one\n")
	assert.Less(t, strings.Index(out, "zeta"), strings.Index(out, "alpha"))
	assert.Less(t, strings.Index(out, "one"), strings.Index(out, "two"))
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(signature.HeaderMAC))
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Root><ResponseStatus><Status>OK</Status>`+
			`<TimeStamp>2024-03-15 10:30:45</TimeStamp></ResponseStatus>`+
			`<Customerlist><Customer><Netvisorkey>165</Netvisorkey><Name>Acme Oy</Name><Code>C1</Code></Customer></Customerlist></Root>`)
	}))
	t.Cleanup(server.Close)

	t.Setenv("NETVISOR_CONFIG", "")
	t.Setenv("NETVISOR_BASE_URI", server.URL)
	t.Setenv("NETVISOR_INTEGRATION_NAME", "TestClient")
	t.Setenv("NETVISOR_CUSTOMER_ID", "X_1234_5678")
	t.Setenv("NETVISOR_CUSTOMER_KEY", "ckey")
	t.Setenv("NETVISOR_PARTNER_ID", "Tes_001")
	t.Setenv("NETVISOR_PARTNER_KEY", "pkey")
	t.Setenv("NETVISOR_ORGANIZATION_ID", "1234567-8")
	return server
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		raw = false
		configFile = ""
		keyword = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--env-file", ""))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestGetCommandParsed(t *testing.T) {
	testServer(t)

	out := execute(t, "get", "customerlist.nv", "keyword=acme")
	assert.Contains(t, out, "customerlist:")
	assert.Contains(t, out, `netvisorkey: "165"`)
	assert.Contains(t, out, "name: Acme Oy")
	assert.NotContains(t, out, "responsestatus")
}

func TestGetCommandRaw(t *testing.T) {
	testServer(t)

	out := execute(t, "get", "customerlist", "--raw")
	assert.Contains(t, out, "<ResponseStatus>")
	assert.Contains(t, out, "<Name>Acme Oy</Name>")
}

func TestCustomersCommand(t *testing.T) {
	testServer(t)

	out := execute(t, "customers", "--keyword", "acme")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.Contains(t, lines[1], "165")
	assert.Contains(t, lines[1], "Acme Oy")
}
