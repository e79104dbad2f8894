package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/wiki-mcp/internal/instructions"
	"github.com/stretchr/testify/require"
)

// bearerTransport adds a bearer token to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response,
	error) {

	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)

	return b.base.RoundTrip(req)
}

// newHTTPTestServer serves a fresh server's HTTP handler.
func newHTTPTestServer(t *testing.T, cfg HTTPConfig) *httptest.Server {
	t.Helper()

	provider, err := instructions.NewProvider()
	require.NoError(t, err)

	server := NewServer(Config{
		Fetcher:      newFakeFetcher(),
		Instructions: provider,
	})

	srv := httptest.NewServer(server.HTTPHandler(cfg))
	t.Cleanup(srv.Close)

	return srv
}

// TestHTTPHealth verifies the liveness endpoint.
func TestHTTPHealth(t *testing.T) {
	srv := newHTTPTestServer(t, HTTPConfig{})

	resp, err := http.Get(srv.URL + HealthPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Without an issuer there is no metadata document.
	meta, err := http.Get(srv.URL + ResourceMetadataPath)
	require.NoError(t, err)
	defer meta.Body.Close()
	require.Equal(t, http.StatusNotFound, meta.StatusCode)
}

// TestHTTPMetadataNeedsToken verifies that an issuer alone does not
// advertise authentication that is not enforced.
func TestHTTPMetadataNeedsToken(t *testing.T) {
	srv := newHTTPTestServer(t, HTTPConfig{
		IssuerURL:   "https://issuer.example/",
		ResourceURL: "https://wiki.example/",
	})

	meta, err := http.Get(srv.URL + ResourceMetadataPath)
	require.NoError(t, err)
	defer meta.Body.Close()
	require.Equal(t, http.StatusNotFound, meta.StatusCode)
}

// TestHTTPStreamableSession runs a tool call over the streamable HTTP
// transport without authentication.
func TestHTTPStreamableSession(t *testing.T) {
	srv := newHTTPTestServer(t, HTTPConfig{})

	client := mcp.NewClient(&mcp.Implementation{
		Name: "http-client", Version: "0.0.1",
	}, nil)
	session, err := client.Connect(context.Background(),
		&mcp.StreamableClientTransport{Endpoint: srv.URL + EndpointPath},
		nil,
	)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fetch_wikipedia_summary",
		Arguments: map[string]any{"topic": "Mercury (planet)"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, res.Content[0].(*mcp.TextContent).Text,
		"Summary for 'Mercury (planet)'")
}

// TestHTTPBearerAuth verifies that the MCP endpoint rejects requests
// without the configured token and serves those carrying it.
func TestHTTPBearerAuth(t *testing.T) {
	cfg := HTTPConfig{
		AuthToken:   "s3cret",
		IssuerURL:   "https://issuer.example/",
		ResourceURL: "https://wiki.example/",
		Scopes:      []string{"openid", "profile"},
	}
	srv := newHTTPTestServer(t, cfg)

	// No token, then a wrong one.
	for _, header := range []string{"", "Bearer nope"} {
		req, err := http.NewRequest(
			http.MethodPost, srv.URL+EndpointPath,
			strings.NewReader(
				`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
			),
		)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Right token, through a full client session.
	client := mcp.NewClient(&mcp.Implementation{
		Name: "http-client", Version: "0.0.1",
	}, nil)
	session, err := client.Connect(context.Background(),
		&mcp.StreamableClientTransport{
			Endpoint: srv.URL + EndpointPath,
			HTTPClient: &http.Client{Transport: &bearerTransport{
				token: "s3cret",
				base:  http.DefaultTransport,
			}},
		}, nil,
	)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fetch_instructions",
		Arguments: map[string]any{"prompt_name": "fetch_wikipedia_summary"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	// The metadata document is public.
	meta, err := http.Get(srv.URL + ResourceMetadataPath)
	require.NoError(t, err)
	defer meta.Body.Close()
	require.Equal(t, http.StatusOK, meta.StatusCode)

	var doc protectedResourceMetadata
	require.NoError(t, json.NewDecoder(meta.Body).Decode(&doc))
	require.Equal(t, cfg.ResourceURL, doc.Resource)
	require.Equal(t, []string{cfg.IssuerURL}, doc.AuthorizationServers)
	require.Equal(t, cfg.Scopes, doc.ScopesSupported)
}
