package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// EndpointPath is where the streamable HTTP transport is served.
	EndpointPath = "/mcp"

	// ResourceMetadataPath is the OAuth protected resource metadata
	// location (RFC 9728).
	ResourceMetadataPath = "/.well-known/oauth-protected-resource"

	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	// tokenLifetime is the expiry reported for a verified static token.
	tokenLifetime = time.Hour
)

// HTTPConfig configures the HTTP front of the server.
type HTTPConfig struct {
	// AuthToken, if set, must be presented as a bearer token on every
	// MCP request.
	AuthToken string

	// IssuerURL, if set together with AuthToken, is advertised as the
	// authorization server in the protected resource metadata.
	IssuerURL string

	// ResourceURL is the public base URL of this server.
	ResourceURL string

	// Scopes are the scopes a token must carry and the scopes advertised
	// in the metadata.
	Scopes []string
}

// protectedResourceMetadata is the RFC 9728 metadata document.
type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// HTTPHandler returns an http.Handler serving the MCP endpoint over
// streamable HTTP, plus the metadata and health endpoints.
func (s *Server) HTTPHandler(cfg HTTPConfig) http.Handler {
	mux := http.NewServeMux()

	var endpoint http.Handler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server {
			return s.server
		}, nil,
	)

	if cfg.AuthToken != "" {
		var metadataURL string
		if cfg.IssuerURL != "" {
			metadataURL = strings.TrimSuffix(cfg.ResourceURL, "/") +
				ResourceMetadataPath
		}

		requireToken := auth.RequireBearerToken(
			staticTokenVerifier(cfg.AuthToken, cfg.Scopes),
			&auth.RequireBearerTokenOptions{
				ResourceMetadataURL: metadataURL,
				Scopes:              cfg.Scopes,
			},
		)
		endpoint = requireToken(endpoint)

		s.log.Info("Bearer token authentication enabled",
			"endpoint", EndpointPath)
	}
	mux.Handle(EndpointPath, endpoint)

	// Metadata advertises the token requirement, so it is only served
	// when a token is enforced.
	if cfg.AuthToken != "" && cfg.IssuerURL != "" {
		mux.HandleFunc("GET "+ResourceMetadataPath,
			s.handleResourceMetadata(cfg))
	}

	mux.HandleFunc("GET "+HealthPath, func(w http.ResponseWriter,
		_ *http.Request) {

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

// handleResourceMetadata serves the protected resource metadata.
func (s *Server) handleResourceMetadata(cfg HTTPConfig) http.HandlerFunc {
	meta := protectedResourceMetadata{
		Resource:               cfg.ResourceURL,
		AuthorizationServers:   []string{cfg.IssuerURL},
		ScopesSupported:        cfg.Scopes,
		BearerMethodsSupported: []string{"header"},
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, meta)
	}
}

// staticTokenVerifier accepts exactly one bearer token, compared in
// constant time, and grants it the configured scopes.
func staticTokenVerifier(expected string, scopes []string) auth.TokenVerifier {
	return func(_ context.Context, token string,
		_ *http.Request) (*auth.TokenInfo, error) {

		if subtle.ConstantTimeCompare(
			[]byte(token), []byte(expected),
		) != 1 {

			return nil, auth.ErrInvalidToken
		}

		return &auth.TokenInfo{
			Scopes:     scopes,
			Expiration: time.Now().Add(tokenLifetime),
		}, nil
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
