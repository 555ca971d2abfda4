package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jpalmerr/folio/internal/store"
)

const (
	// DefaultTaskDuration is how long a simulated news task stays in
	// progress before reaching a terminal state.
	DefaultTaskDuration = 2 * time.Minute

	shutdownTimeout = 5 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Config configures a mock backend.
type Config struct {
	// Token is the bearer token clients must present. Empty accepts any
	// non-empty token.
	Token string

	// TaskDuration is the simulated running time of a news-summary task.
	TaskDuration time.Duration

	// FailSymbols lists symbols whose news tasks end in the failed state.
	FailSymbols []string

	// Logger receives access and error logs. Nil disables logging.
	Logger *zap.Logger

	// Now is the clock used for timestamps and task progress.
	Now func() time.Time
}

// Server is an in-memory implementation of the Folio REST API, intended
// for local development and integration tests.
type Server struct {
	app     *fiber.App
	cfg     Config
	log     *zap.SugaredLogger
	now     func() time.Time
	failing map[string]bool

	securities store.Store[string, security]
	threads    store.Store[string, thread]
	holdings   store.Store[string, holding]
	watchlist  store.Store[int, watchItem]
	tasks      store.Store[string, task]
	summaries  store.Store[string, newsSummary]

	nextWatchID atomic.Int64
	started     atomic.Bool
	stopped     chan struct{}
}

// New builds a Server with the securities catalog preloaded.
func New(cfg Config) *Server {
	if cfg.TaskDuration <= 0 {
		cfg.TaskDuration = DefaultTaskDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		log:        logger.Sugar(),
		now:        cfg.Now,
		failing:    make(map[string]bool, len(cfg.FailSymbols)),
		securities: store.NewMemoryStore[string, security](),
		threads:    store.NewMemoryStore[string, thread](),
		holdings:   store.NewMemoryStore[string, holding](),
		watchlist:  store.NewMemoryStore[int, watchItem](),
		tasks:      store.NewMemoryStore[string, task](),
		summaries:  store.NewMemoryStore[string, newsSummary](),
		stopped:    make(chan struct{}),
	}
	for _, sym := range cfg.FailSymbols {
		s.failing[strings.ToUpper(sym)] = true
	}
	for _, sec := range catalog() {
		s.securities.Put(sec.Symbol, sec)
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
		Immutable:             true,
	})
	s.app.Use(s.requestID, s.accessLog, recover.New(recover.Config{EnableStackTrace: true}))
	s.routes()

	return s
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")

	api.Post("/chats", s.optionalAuth, s.createChat)
	api.Get("/chats", s.optionalAuth, s.listChats)
	api.Get("/chats/:id", s.optionalAuth, s.getChat)
	api.Put("/chats/:id", s.optionalAuth, s.updateChat)
	api.Delete("/chats/:id", s.optionalAuth, s.deleteChat)
	api.Post("/chats/:id/messages", s.optionalAuth, s.sendMessage)
	api.Get("/chats/:id/messages", s.optionalAuth, s.listMessages)
	api.Delete("/chats/:id/messages", s.optionalAuth, s.clearMessages)

	api.Get("/holdings", s.requireAuth, s.listHoldings)
	api.Post("/holdings", s.requireAuth, s.createHolding)
	api.Delete("/holdings/:id", s.requireAuth, s.deleteHolding)

	api.Get("/watchlist", s.requireAuth, s.listWatchlist)
	api.Post("/watchlist", s.requireAuth, s.addWatchlist)
	api.Delete("/watchlist/:id", s.requireAuth, s.removeWatchlist)

	api.Get("/securities", s.optionalAuth, s.searchSecurities)
	api.Get("/securities/:symbol", s.optionalAuth, s.getSecurity)
	api.Post("/securities/:symbol/fetch-news-summary", s.requireAuth, s.queueNewsSummary)
	api.Get("/securities/:symbol/news-summary-status/:task", s.requireAuth, s.newsSummaryStatus)

	plaid := s.app.Group("/plaid", s.requireAuth)
	plaid.Post("/link-token", s.createLinkToken)
	plaid.Post("/exchange-token", s.exchangePublicToken)
}

// Start begins serving on addr in a background goroutine and returns the
// bound address. The server shuts down gracefully when ctx is cancelled;
// [Server.Stopped] is closed once shutdown completes.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, errors.New("server already started")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind to %s: %w", addr, err)
	}

	go func() {
		if err := s.app.Listener(ln); err != nil {
			s.log.Errorw("http server error", "error", err)
		}
	}()

	go func() {
		defer close(s.stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.log.Errorw("http server shutdown error", "error", err)
		}
	}()

	s.log.Infow("mock backend listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Stopped is closed after a started server has shut down.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	c.Locals("request_id", id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

// accessLog renders chain errors itself so the logged status is final.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	routePath := ""
	if c.Route() != nil {
		routePath = c.Route().Path
	}
	s.log.Infow("http_access",
		"method", c.Method(),
		"path", c.Path(),
		"route", routePath,
		"query", string(c.Request().URI().QueryString()),
		"status", c.Response().StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", c.Locals("request_id"),
		"req_bytes", len(c.Request().Body()),
		"resp_bytes", len(c.Response().Body()),
	)
	return nil
}

func (s *Server) requireAuth(c *fiber.Ctx) error {
	if err := s.checkToken(c.Get(fiber.HeaderAuthorization)); err != nil {
		return err
	}
	return c.Next()
}

// optionalAuth admits anonymous requests but rejects a bad token.
func (s *Server) optionalAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Next()
	}
	if err := s.checkToken(header); err != nil {
		return err
	}
	return c.Next()
}

func (s *Server) checkToken(header string) error {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return unauthorized("missing bearer token")
	}
	if s.cfg.Token != "" && token != s.cfg.Token {
		return unauthorized("invalid bearer token")
	}
	return nil
}

// apiError is rendered as {"error": code, "message": message}.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	return e.code + ": " + e.message
}

func unauthorized(msg string) error {
	return &apiError{status: fiber.StatusUnauthorized, code: "unauthorized", message: msg}
}

func badRequest(code, msg string) error {
	return &apiError{status: fiber.StatusBadRequest, code: code, message: msg}
}

func notFound(format string, args ...any) error {
	return &apiError{status: fiber.StatusNotFound, code: "not_found", message: fmt.Sprintf(format, args...)}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"
	msg := err.Error()

	var ae *apiError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		status, code, msg = ae.status, ae.code, ae.message
	case errors.As(err, &fe):
		status, msg = fe.Code, fe.Message
		code = strings.ReplaceAll(strings.ToLower(http.StatusText(fe.Code)), " ", "_")
	}

	fields := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"error", err.Error(),
		"request_id", c.Locals("request_id"),
	}
	if status >= fiber.StatusInternalServerError {
		s.log.Errorw("request error", fields...)
	} else {
		s.log.Warnw("request failed", fields...)
	}

	return c.Status(status).JSON(fiber.Map{"error": code, "message": msg})
}
