// Package client provides the Cirrus library client: session handling,
// authorized request dispatch and paginated library search.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/logging"
	"github.com/Sternrassler/cloudplaya/pkg/session"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Cirrus client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudplaya_requests_total",
		Help: "Total Cirrus requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cloudplaya_request_duration_seconds",
		Help:    "Cirrus request duration in seconds by operation",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudplaya_errors_total",
		Help: "Total Cirrus errors by kind",
	}, []string{"kind"})
)

// Error kinds used as metric labels.
const (
	kindRemote    = "remote"
	kindTransport = "transport"
	kindPayload   = "payload"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "CLOUDPLAYA"

// Config holds the client configuration.
type Config struct {
	// API endpoint all operations are POSTed to
	APIURL string `envconfig:"API_URL"`

	// Web player page used for login
	PlayerURL string `envconfig:"PLAYER_URL"`

	// Browser identity sent on every call
	Host      string `envconfig:"HOST"`
	Origin    string `envconfig:"ORIGIN"`
	Referer   string `envconfig:"REFERER"`
	UserAgent string `envconfig:"USER_AGENT"`

	// Search
	PageSize     int    `envconfig:"PAGE_SIZE"`      // Items per searchLibrary page
	AlbumArtSize string `envconfig:"ALBUM_ART_SIZE"` // SMALL, MEDIUM, LARGE

	// Timeout bounds each call; expiry surfaces as a TransportError.
	Timeout time.Duration `envconfig:"TIMEOUT"`

	// Store persists the session. Defaults to a FileStore at
	// session.DefaultPath().
	Store session.Store `ignored:"true"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		APIURL:       "https://www.amazon.com/cirrus/",
		PlayerURL:    "https://www.amazon.com/gp/dmusic/mp3/player",
		Host:         "www.amazon.com",
		Origin:       "https://www.amazon.com",
		Referer:      "https://www.amazon.com/gp/dmusic/mp3/player?ie=UTF8&ref_=gno_yam_cldplyr&",
		UserAgent:    session.DefaultBootstrapConfig().UserAgent,
		PageSize:     50,
		AlbumArtSize: "MEDIUM",
		Timeout:      30 * time.Second,
	}
}

// LoadConfig returns DefaultConfig overlaid with CLOUDPLAYA_* environment
// variables, e.g. CLOUDPLAYA_PAGE_SIZE=100 or CLOUDPLAYA_TIMEOUT=10s.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Client is the Cirrus client. One client holds one session and is not
// safe for concurrent use; use one client per worker.
type Client struct {
	httpClient   *http.Client
	bootstrapper *session.Bootstrapper
	store        session.Store
	creds        *session.Credentials
	config       Config
	logger       zerolog.Logger
}

// New creates a client. It performs no I/O; call LoadSession or
// Authenticate before making API calls.
func New(cfg Config) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api url is required")
	}
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page_size must be > 0 (got %d)", cfg.PageSize)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.Store == nil {
		cfg.Store = session.NewFileStore(session.DefaultPath())
	}

	logger := logging.NewLogger("cirrus-client")

	bootCfg := session.DefaultBootstrapConfig()
	bootCfg.UserAgent = cfg.UserAgent
	bootCfg.Timeout = cfg.Timeout
	bootCfg.Logger = logging.NewLogger("session-bootstrap")
	if cfg.PlayerURL != "" {
		bootCfg.PlayerURL = cfg.PlayerURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		bootstrapper: session.NewBootstrapper(bootCfg),
		store:        cfg.Store,
		config:       cfg,
		logger:       logger,
	}, nil
}

// Open creates a client and loads any stored session.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.LoadSession(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadSession loads credentials from the store. An empty store leaves the
// client unauthenticated and is not an error.
func (c *Client) LoadSession(ctx context.Context) error {
	creds, err := c.store.Load(ctx)
	if errors.Is(err, session.ErrNoCredentials) {
		c.logger.Debug().Msg("No stored session")
		c.creds = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	c.creds = &creds
	c.logger.Debug().Str("customer_id", creds.CustomerID).Msg("Loaded stored session")
	return nil
}

// Authenticate signs in, persists the new session and replaces the current
// one. Login failures wrap session.ErrAuthenticationFailed and leave the
// current session and the store untouched.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	creds, err := c.bootstrapper.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := c.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	c.creds = &creds
	return nil
}

// Logout forgets the current session and deletes it from the store.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	c.creds = nil
	return nil
}

// Authenticated reports whether the client holds a session.
func (c *Client) Authenticated() bool {
	return c.creds != nil
}

// Credentials returns a copy of the current session.
func (c *Client) Credentials() (session.Credentials, bool) {
	if c.creds == nil {
		return session.Credentials{}, false
	}
	return *c.creds, true
}

// UseCredentials installs a session without touching the store.
func (c *Client) UseCredentials(creds session.Credentials) error {
	if !creds.Complete() {
		return session.ErrIncompleteCredentials
	}
	c.creds = &creds
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
