package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cloudplaya_logins_total",
	Help: "Total login attempts by result",
}, []string{"result"})

// Sign-in form and field names on the login page.
const (
	SignInFormName = "signIn"
	EmailField     = "email"
	PasswordField  = "password"
	CreateField    = "create"
)

// maxPageBytes bounds how much of a login page is read.
const maxPageBytes = 8 << 20

// BootstrapConfig configures the emulated browser.
type BootstrapConfig struct {
	// PlayerURL is the web player page; unauthenticated visits redirect to
	// the sign-in page.
	PlayerURL string

	UserAgent string

	// Timeout bounds each page load.
	Timeout time.Duration

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper

	Logger zerolog.Logger
}

// DefaultBootstrapConfig returns the production login settings.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		PlayerURL: "https://www.amazon.com/gp/dmusic/mp3/player",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/535.19 " +
			"(KHTML, like Gecko) Chrome/18.0.1025.142 Safari/535.19",
		Timeout: 30 * time.Second,
		Logger:  logging.NewLogger("session-bootstrap"),
	}
}

// Bootstrapper signs in through the web login form and captures the
// session. It keeps no state between logins.
type Bootstrapper struct {
	config BootstrapConfig
	logger zerolog.Logger
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(cfg BootstrapConfig) *Bootstrapper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Bootstrapper{config: cfg, logger: cfg.Logger}
}

// browser is one login's HTTP client and cookie state.
type browser struct {
	http      *http.Client
	jar       *recordingJar
	userAgent string
}

// Login signs in and returns fresh credentials. Every failure, including
// network errors, wraps ErrAuthenticationFailed so callers can retry with
// other credentials.
func (b *Bootstrapper) Login(ctx context.Context, username, password string) (Credentials, error) {
	creds, err := b.login(ctx, username, password)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		b.logger.Warn().Err(err).Msg("Login failed")
		return Credentials{}, err
	}
	loginsTotal.WithLabelValues("success").Inc()
	b.logger.Info().
		Str("customer_id", creds.CustomerID).
		Str("adp_token", logging.Redact(creds.ADPToken)).
		Msg("Login succeeded")
	return creds, nil
}

func (b *Bootstrapper) login(ctx context.Context, username, password string) (Credentials, error) {
	jar, err := newRecordingJar()
	if err != nil {
		return Credentials{}, authFailed("cookie jar: %v", err)
	}
	br := &browser{
		http: &http.Client{
			Jar:       jar,
			Timeout:   b.config.Timeout,
			Transport: b.config.Transport,
		},
		jar:       jar,
		userAgent: b.config.UserAgent,
	}

	// Step 1: the player page redirects to the sign-in page.
	b.logger.Debug().Str("url", b.config.PlayerURL).Msg("Opening player page")
	loginPage, pageURL, err := br.get(ctx, b.config.PlayerURL)
	if err != nil {
		return Credentials{}, authFailed("open player page: %v", err)
	}

	// Step 2: fill in and submit the sign-in form.
	form, err := findForm(strings.NewReader(loginPage), SignInFormName)
	if err != nil {
		return Credentials{}, authFailed("%v", err)
	}
	form.Fields.Set(EmailField, username)
	form.Fields.Set(PasswordField, password)
	form.Fields.Set(CreateField, "0")

	action, err := pageURL.Parse(form.Action)
	if err != nil {
		return Credentials{}, authFailed("form action %q: %v", form.Action, err)
	}

	b.logger.Debug().Str("url", action.Redacted()).Str("method", form.Method).Msg("Submitting sign-in form")
	page, pageURL, err := br.submit(ctx, form.Method, action, form.Fields)
	if err != nil {
		return Credentials{}, authFailed("submit sign-in form: %v", err)
	}

	// Step 3: pull the tokens from the player page.
	creds, err := Extract(page)
	if err != nil {
		target, ok := metaRefreshURL(page)
		if !ok {
			return Credentials{}, err
		}
		refreshURL, perr := pageURL.Parse(target)
		if perr != nil {
			return Credentials{}, err
		}
		b.logger.Debug().Str("url", refreshURL.Redacted()).Msg("Following meta refresh")
		if page, _, perr = br.get(ctx, refreshURL.String()); perr != nil {
			return Credentials{}, authFailed("follow refresh: %v", perr)
		}
		if creds, err = Extract(page); err != nil {
			return Credentials{}, err
		}
	}

	// Step 4: every cookie collected along the way.
	return creds.WithCookies(br.jar.Header()), nil
}

func (br *browser) get(ctx context.Context, rawURL string) (string, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	return br.do(req)
}

func (br *browser) submit(ctx context.Context, method string, action *url.URL, fields url.Values) (string, *url.URL, error) {
	var req *http.Request
	var err error

	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, action.String(), strings.NewReader(fields.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		target := *action
		target.RawQuery = fields.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	}
	if err != nil {
		return "", nil, err
	}
	return br.do(req)
}

// do sends req and returns the body and the final URL after redirects.
func (br *browser) do(req *http.Request) (string, *url.URL, error) {
	req.Header.Set("User-Agent", br.userAgent)

	resp, err := br.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", nil, fmt.Errorf("%s returned %s", resp.Request.URL.Redacted(), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	return string(body), resp.Request.URL, nil
}
