// Package config loads the wiki-mcp server configuration from defaults, an
// optional YAML file, an optional .env file and WIKI_MCP_* environment
// variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/roasbeef/wiki-mcp/internal/build"
	"github.com/roasbeef/wiki-mcp/internal/wiki"
	"gopkg.in/yaml.v3"
)

const (
	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"

	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP = "http"

	// DefaultListenAddr is the HTTP listen address.
	DefaultListenAddr = "0.0.0.0:8000"

	// DefaultEnvFile is the dotenv file read when present.
	DefaultEnvFile = ".env"

	// envPrefix prefixes every environment variable read.
	envPrefix = "WIKI_MCP_"
)

// WikiConfig configures the encyclopedia client and the fetcher.
type WikiConfig struct {
	// APIURL is the MediaWiki api.php endpoint.
	APIURL string `yaml:"api_url"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds every outbound request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxSentences is the number of summary sentences, 1 to 5.
	MaxSentences int `yaml:"max_sentences"`

	// MaxLinks is the number of related links, 1 to 10.
	MaxLinks int `yaml:"max_links"`

	// AutoSuggest falls back to search when the topic is not a title.
	AutoSuggest bool `yaml:"auto_suggest"`
}

// AuthConfig configures bearer-token protection of the HTTP transport.
type AuthConfig struct {
	// Token is the static bearer token clients must present. Empty
	// disables authentication.
	Token string `yaml:"token"`

	// IssuerURL is the authorization server advertised in the protected
	// resource metadata. Empty disables the metadata endpoint.
	IssuerURL string `yaml:"issuer_url"`

	// ResourceURL is the public URL of this server.
	ResourceURL string `yaml:"resource_url"`

	// Scopes are the scopes a token must carry.
	Scopes []string `yaml:"scopes"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the log level (trace, debug, info, warn, error, off).
	Level string `yaml:"level"`

	// Dir enables file logging into this directory.
	Dir string `yaml:"dir"`

	// MaxFiles is the number of rotated log files kept.
	MaxFiles int `yaml:"max_files"`

	// MaxFileSizeMB is the size at which the log file is rotated.
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// Config is the complete server configuration.
type Config struct {
	// Transport is either TransportStdio or TransportHTTP.
	Transport string `yaml:"transport"`

	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen"`

	// InstructionKeys selects the instruction entries served. Empty
	// serves all recognized entries.
	InstructionKeys []string `yaml:"instruction_keys"`

	Wiki WikiConfig `yaml:"wiki"`
	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport:  TransportStdio,
		ListenAddr: DefaultListenAddr,
		Wiki: WikiConfig{
			APIURL:       wiki.DefaultAPIURL,
			UserAgent:    wiki.DefaultUserAgent,
			Timeout:      wiki.DefaultTimeout,
			MaxSentences: wiki.MaxSentences,
			MaxLinks:     wiki.MaxLinks,
			AutoSuggest:  true,
		},
		Auth: AuthConfig{
			Scopes: []string{"openid", "profile", "email"},
		},
		Log: LogConfig{
			Level:         build.DefaultLogLevel,
			MaxFiles:      build.DefaultMaxLogFiles,
			MaxFileSizeMB: build.DefaultMaxLogFileSize,
		},
	}
}

// Load builds the configuration. cfgFile and envFile are optional; a
// missing envFile is not an error, a missing cfgFile is.
func Load(cfgFile, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if cfgFile != "" {
		raw, err := os.ReadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read config file: %w",
				err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file "+
				"%s: %w", cfgFile, err)
		}
	}

	// godotenv never overrides variables that are already set, so the
	// real environment wins over the file.
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load %s: %w", envFile,
				err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from WIKI_MCP_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return "", false
		}

		return strings.TrimSpace(v), true
	}

	strVars := map[string]*string{
		"TRANSPORT":    &c.Transport,
		"LISTEN":       &c.ListenAddr,
		"API_URL":      &c.Wiki.APIURL,
		"USER_AGENT":   &c.Wiki.UserAgent,
		"AUTH_TOKEN":   &c.Auth.Token,
		"ISSUER_URL":   &c.Auth.IssuerURL,
		"RESOURCE_URL": &c.Auth.ResourceURL,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_DIR":      &c.Log.Dir,
	}
	for name, field := range strVars {
		if v, ok := get(name); ok {
			*field = v
		}
	}

	intVars := map[string]*int{
		"MAX_SENTENCES": &c.Wiki.MaxSentences,
		"MAX_LINKS":     &c.Wiki.MaxLinks,
	}
	for name, field := range intVars {
		v, ok := get(name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, name,
				err)
		}
		*field = n
	}

	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		c.Wiki.Timeout = d
	}

	if v, ok := get("AUTO_SUGGEST"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sAUTO_SUGGEST: %w",
				envPrefix, err)
		}
		c.Wiki.AutoSuggest = b
	}

	if v, ok := get("INSTRUCTION_KEYS"); ok {
		c.InstructionKeys = splitList(v)
	}
	if v, ok := get("AUTH_SCOPES"); ok {
		c.Auth.Scopes = splitList(v)
	}

	return nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q, want %q or %q",
			c.Transport, TransportStdio, TransportHTTP)
	}

	if c.Transport == TransportHTTP && c.ListenAddr == "" {
		return errors.New("http transport needs a listen address")
	}

	if c.Wiki.APIURL == "" {
		return errors.New("wiki api url must be set")
	}
	if c.Wiki.Timeout <= 0 {
		return fmt.Errorf("wiki timeout must be positive, got %v",
			c.Wiki.Timeout)
	}
	if c.Wiki.MaxSentences < 1 || c.Wiki.MaxSentences > wiki.MaxSentences {
		return fmt.Errorf("max sentences must be between 1 and %d, "+
			"got %d", wiki.MaxSentences, c.Wiki.MaxSentences)
	}
	if c.Wiki.MaxLinks < 1 || c.Wiki.MaxLinks > wiki.MaxLinks {
		return fmt.Errorf("max links must be between 1 and %d, got %d",
			wiki.MaxLinks, c.Wiki.MaxLinks)
	}

	if c.Auth.IssuerURL != "" && c.Auth.Token == "" {
		return errors.New("auth token is required when an issuer url " +
			"is set")
	}
	if c.Auth.IssuerURL != "" && c.Auth.ResourceURL == "" {
		return errors.New("resource url is required when an issuer " +
			"url is set")
	}

	return nil
}

// FetcherConfig returns the fetcher configuration.
func (c *Config) FetcherConfig() wiki.Config {
	return wiki.Config{
		MaxSentences: c.Wiki.MaxSentences,
		MaxLinks:     c.Wiki.MaxLinks,
		AutoSuggest:  c.Wiki.AutoSuggest,
	}
}

// ClientConfig returns the MediaWiki client configuration.
func (c *Config) ClientConfig() wiki.ClientConfig {
	return wiki.ClientConfig{
		APIURL:    c.Wiki.APIURL,
		UserAgent: c.Wiki.UserAgent,
		Timeout:   c.Wiki.Timeout,
	}
}

// LogRotatorConfig returns the log file configuration.
func (c *Config) LogRotatorConfig() *build.LogRotatorConfig {
	cfg := build.DefaultLogRotatorConfig()
	cfg.LogDir = c.Log.Dir
	cfg.MaxLogFiles = c.Log.MaxFiles
	cfg.MaxLogFileSize = c.Log.MaxFileSizeMB

	return cfg
}
