package folio

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jpalmerr/folio/internal/poller"
	"github.com/jpalmerr/folio/internal/transport"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Client is the entry point to the Folio API.
//
// A Client is constructed once with [New] and shared; it is safe for
// concurrent use. Every domain service goes through the same Request
// Executor ([Client.Do]) and therefore shares its timeout, retry and auth
// behavior.
//
//	client, err := folio.New(
//	    folio.WithBaseURL("https://api.example.com"),
//	    folio.WithTokenSource(folio.StaticToken(token)),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	chats, err := client.Chats.List(ctx)
type Client struct {
	baseURL     string
	timeout     time.Duration
	retries     int
	headers     http.Header
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	transport   *transport.Client
	schedule    PollSchedule
	sleep       poller.Sleeper

	Chats      *ChatService
	Messages   *MessageService
	Holdings   *HoldingService
	Watchlist  *WatchlistService
	Securities *SecurityService
	Plaid      *PlaidService
	News       *NewsService
}

// New creates a [Client] with the given options.
//
// Defaults:
//   - Base URL: http://127.0.0.1:8000
//   - Timeout: 30 seconds per attempt
//   - Retries: 3
//   - Task polling: 110s initial delay, 10s interval, 4 attempts
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:  defaultBaseURL,
		timeout:  defaultTimeout,
		retries:  defaultRetries,
		headers:  make(http.Header),
		schedule: DefaultPollSchedule(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	sleep := cfg.sleep
	if sleep == nil {
		sleep = poller.Sleep
	}

	c := &Client{
		baseURL:     cfg.baseURL,
		timeout:     cfg.timeout,
		retries:     cfg.retries,
		headers:     cfg.headers,
		tokenSource: cfg.tokenSource,
		logger:      logger,
		transport:   transport.NewClientWith(cfg.httpClient),
		schedule:    cfg.schedule,
		sleep:       sleep,
	}

	c.Chats = &ChatService{c: c}
	c.Messages = &MessageService{c: c}
	c.Holdings = &HoldingService{c: c}
	c.Watchlist = &WatchlistService{c: c}
	c.Securities = &SecurityService{c: c}
	c.Plaid = &PlaidService{c: c}
	c.News = &NewsService{c: c}

	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the default per-attempt timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Retries returns the default retry budget.
func (c *Client) Retries() int {
	return c.retries
}

// Authenticated reports whether a token source is configured.
func (c *Client) Authenticated() bool {
	return c.tokenSource != nil
}

// Close releases idle connections. The client stays usable.
func (c *Client) Close() {
	c.transport.Close()
}
