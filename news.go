package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/folio/internal/poller"
)

// TaskHandle identifies a server-side news summary job.
type TaskHandle struct {
	TaskID string
	Symbol string
}

// Hint is a free-form progress or ETA value. The server sends either a
// number of seconds or a preformatted string; both decode to text.
type Hint string

// UnmarshalJSON accepts a JSON string, number or null.
func (h *Hint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*h = Hint(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("hint must be a string or number: %w", err)
	}
	*h = Hint(n.String())
	return nil
}

// NewsSummaryTask is the server's answer to an enqueue.
type NewsSummaryTask struct {
	TaskID                  string     `json:"task_id"`
	Status                  TaskStatus `json:"status"`
	Symbol                  string     `json:"symbol"`
	Message                 string     `json:"message"`
	EstimatedCompletionTime Hint       `json:"estimated_completion_time,omitempty"`
	PollingURL              string     `json:"polling_url,omitempty"`
	ForceUpdate             bool       `json:"force_update"`
}

// Handle returns the handle to poll this task with.
func (t NewsSummaryTask) Handle() TaskHandle {
	return TaskHandle{TaskID: t.TaskID, Symbol: t.Symbol}
}

// NewsSummaryStatus is one observation of a news summary job.
type NewsSummaryStatus struct {
	TaskID             string          `json:"task_id"`
	Status             TaskStatus      `json:"status"`
	Symbol             string          `json:"symbol"`
	Message            string          `json:"message"`
	Result             json.RawMessage `json:"result,omitempty"`
	EstimatedRemaining Hint            `json:"estimated_remaining,omitempty"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	StoppedAt          *time.Time      `json:"stopped_at,omitempty"`
}

// Summary decodes the result of a completed job. It returns nil without error
// when the status carries no result.
func (s NewsSummaryStatus) Summary() (*NewsSummary, error) {
	if len(s.Result) == 0 || bytes.Equal(bytes.TrimSpace(s.Result), []byte("null")) {
		return nil, nil
	}
	var out NewsSummary
	if err := json.Unmarshal(s.Result, &out); err != nil {
		return nil, fmt.Errorf("failed to decode news summary: %w", err)
	}
	return &out, nil
}

// NewsSummary is the AI-generated research note for a security.
type NewsSummary struct {
	Summary           string         `json:"summary,omitempty"`
	ExecutiveSummary  string         `json:"executive_summary,omitempty"`
	PositiveCatalysts string         `json:"positive_catalysts,omitempty"`
	RiskFactors       string         `json:"risk_factors,omitempty"`
	OverallSentiment  *Sentiment     `json:"overall_sentiment,omitempty"`
	KeyHighlights     []KeyHighlight `json:"key_highlights,omitempty"`
	LatestNews        []NewsItem     `json:"latest_news,omitempty"`
}

// Sentiment is the overall market read with its justification.
type Sentiment struct {
	Sentiment string `json:"sentiment"`
	Rationale string `json:"rationale,omitempty"`
}

// NewsItem is one article behind a summary.
type NewsItem struct {
	Headline    string `json:"headline"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	Summary     string `json:"summary,omitempty"`
	URL         string `json:"url,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	ImpactLevel string `json:"impact_level,omitempty"`
}

// KeyHighlight is an ordered bullet of the summary.
type KeyHighlight struct {
	Highlight string `json:"highlight"`
	Order     int    `json:"order"`
}

// UpcomingEvent is a scheduled corporate event.
type UpcomingEvent struct {
	Category string `json:"category"`
	Date     string `json:"date"`
	Event    string `json:"event"`
}

const maxBullets = 5

var bulletSplit = regexp.MustCompile(`[•\r\n]+`)

// Bullets splits a prose field (catalysts, risk factors) into at most five
// trimmed, non-empty points.
func Bullets(text string) []string {
	var out []string
	for _, part := range bulletSplit.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == maxBullets {
			break
		}
	}
	return out
}

// NewsService runs background news summary jobs. Authentication is required.
type NewsService struct {
	c *Client
}

// Queue enqueues a summary job for symbol. With force, the server refreshes
// even when a recent summary exists.
func (s *NewsService) Queue(ctx context.Context, symbol string, force bool, opts ...RequestOption) (*NewsSummaryTask, error) {
	body := map[string]bool{}
	if force {
		body["force_update"] = true
	}
	task, err := doJSON[NewsSummaryTask](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   securityPath(symbol) + "/fetch-news-summary/",
		Body:   body,
	}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	if task.Symbol == "" {
		task.Symbol = strings.ToUpper(symbol)
	}
	return &task, nil
}

// Status performs a single status check.
func (s *NewsService) Status(ctx context.Context, symbol, taskID string, opts ...RequestOption) (*NewsSummaryStatus, error) {
	st, err := doJSON[NewsSummaryStatus](ctx, s.c, Request{
		Path: securityPath(symbol) + "/news-summary-status/" + url.PathEscape(taskID) + "/",
	}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// PollUntilComplete observes a job with the client's schedule until it
// completes, fails or runs out of attempts. See [NewsService.Poll].
func (s *NewsService) PollUntilComplete(ctx context.Context, h TaskHandle, onUpdate func(NewsSummaryStatus)) (*NewsSummaryStatus, error) {
	return s.Poll(ctx, h, s.c.schedule, onUpdate)
}

// Poll observes a job with an explicit schedule.
//
// It waits schedule.InitialDelay, then checks the status up to
// schedule.MaxAttempts times, schedule.Interval apart. Every observation is
// passed to onUpdate (if non-nil) before it is evaluated. Outcomes:
//   - completed: the terminal status is returned
//   - failed: [*TaskFailedError] with the server's message
//   - budget spent: [*TaskTimeoutError]
//   - a failed status check or ctx ending: [*Error]
func (s *NewsService) Poll(ctx context.Context, h TaskHandle, schedule PollSchedule, onUpdate func(NewsSummaryStatus)) (*NewsSummaryStatus, error) {
	if err := s.checkPollable(schedule); err != nil {
		return nil, err
	}
	st, err := poller.Run(ctx, s.pollerConfig(schedule), s.check(h), classifyTask, onUpdate)
	if err != nil {
		return nil, mapPollError(h, err)
	}
	return &st, nil
}

// StartPolling runs [NewsService.PollUntilComplete] in the background.
//
// onUpdate is called from the polling goroutine. Cancel the returned watch
// to stop deterministically; its pending timer is released at once.
func (s *NewsService) StartPolling(ctx context.Context, h TaskHandle, onUpdate func(NewsSummaryStatus)) *TaskWatch {
	w := &TaskWatch{handle: h}
	if err := s.checkPollable(s.c.schedule); err != nil {
		w.err = err
		return w
	}
	w.run = poller.Start(ctx, s.pollerConfig(s.c.schedule), s.check(h), classifyTask, onUpdate)
	return w
}

// Refresh enqueues a job for symbol and polls it to completion.
func (s *NewsService) Refresh(ctx context.Context, symbol string, force bool, onUpdate func(NewsSummaryStatus)) (*NewsSummaryStatus, error) {
	task, err := s.Queue(ctx, symbol, force)
	if err != nil {
		return nil, err
	}
	return s.PollUntilComplete(ctx, task.Handle(), onUpdate)
}

// RefreshResult is the outcome for one symbol of [NewsService.RefreshAll].
type RefreshResult struct {
	Symbol string
	Status *NewsSummaryStatus
	Err    error
}

// RefreshAll refreshes several symbols with at most concurrency jobs in
// flight. A failing symbol does not stop the others. Results keep the input
// order; the returned error is the first failure encountered, if any.
//
// onUpdate may be called concurrently from different symbols' polls.
func (s *NewsService) RefreshAll(ctx context.Context, symbols []string, concurrency int, force bool, onUpdate func(NewsSummaryStatus)) ([]RefreshResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]RefreshResult, len(symbols))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, sym := range symbols {
		g.Go(func() error {
			st, err := s.Refresh(ctx, sym, force, onUpdate)
			results[i] = RefreshResult{Symbol: strings.ToUpper(sym), Status: st, Err: err}
			if err != nil {
				return fmt.Errorf("%s: %w", strings.ToUpper(sym), err)
			}
			return nil
		})
	}

	return results, g.Wait()
}

func (s *NewsService) checkPollable(schedule PollSchedule) error {
	if err := schedule.validate(); err != nil {
		return fmt.Errorf("invalid poll schedule: %w", err)
	}
	if s.c.tokenSource == nil {
		return authError(ErrNotAuthenticated)
	}
	return nil
}

func (s *NewsService) pollerConfig(schedule PollSchedule) poller.Config {
	return poller.Config{
		InitialDelay: schedule.InitialDelay,
		Interval:     schedule.Interval,
		MaxAttempts:  schedule.MaxAttempts,
		Sleep:        s.c.sleep,
		Logger:       s.c.logger,
	}
}

func (s *NewsService) check(h TaskHandle) func(context.Context) (NewsSummaryStatus, error) {
	return func(ctx context.Context) (NewsSummaryStatus, error) {
		st, err := s.Status(ctx, h.Symbol, h.TaskID)
		if err != nil {
			return NewsSummaryStatus{}, err
		}
		s.c.logger.Debug("task status", "symbol", h.Symbol, "task_id", h.TaskID, "status", st.Status)
		return *st, nil
	}
}

func classifyTask(st NewsSummaryStatus) poller.Phase {
	switch st.Status {
	case TaskCompleted:
		return poller.Succeeded
	case TaskFailed:
		return poller.Failed
	default:
		return poller.Pending
	}
}

func mapPollError(h TaskHandle, err error) error {
	var failed *poller.FailedError[NewsSummaryStatus]
	if errors.As(err, &failed) {
		return &TaskFailedError{
			TaskID:  h.TaskID,
			Symbol:  h.Symbol,
			Message: failed.Last.Message,
			Status:  failed.Last,
		}
	}

	var exhausted *poller.ExhaustedError
	if errors.As(err, &exhausted) {
		return &TaskTimeoutError{TaskID: h.TaskID, Symbol: h.Symbol, Attempts: exhausted.Attempts}
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return err
	}

	// ctx ended during a wait
	return networkError(fmt.Errorf("polling %s stopped: %w", h.Symbol, err), 0)
}

// PollSchedule is the wait-then-poll timing of a background job.
type PollSchedule struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

// DefaultPollSchedule returns 110s / 10s / 4 attempts. The initial delay
// sits just above the observed P99 completion time of a summary job.
func DefaultPollSchedule() PollSchedule {
	return PollSchedule{
		InitialDelay: poller.DefaultInitialDelay,
		Interval:     poller.DefaultInterval,
		MaxAttempts:  poller.DefaultMaxAttempts,
	}
}

func (p PollSchedule) validate() error {
	if p.InitialDelay <= 0 {
		return errors.New("initial delay must be positive")
	}
	if p.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if p.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	return nil
}

// TaskWatch is a background poll started by [NewsService.StartPolling].
type TaskWatch struct {
	handle TaskHandle
	run    *poller.Handle[NewsSummaryStatus]
	err    error

	closedOnce sync.Once
	closed     chan struct{}
}

// Handle returns the job being watched.
func (w *TaskWatch) Handle() TaskHandle {
	return w.handle
}

// Cancel stops polling. No further status checks are made. Safe to call
// repeatedly and after completion.
func (w *TaskWatch) Cancel() {
	if w.run != nil {
		w.run.Cancel()
	}
}

// Done is closed when polling has finished.
func (w *TaskWatch) Done() <-chan struct{} {
	if w.run != nil {
		return w.run.Done()
	}
	w.closedOnce.Do(func() {
		w.closed = make(chan struct{})
		close(w.closed)
	})
	return w.closed
}

// Wait blocks until polling finishes and returns the outcome, with the same
// error types as [NewsService.Poll]. After Cancel it returns a network
// [*Error] wrapping [context.Canceled].
func (w *TaskWatch) Wait() (*NewsSummaryStatus, error) {
	if w.run == nil {
		return nil, w.err
	}
	st, err := w.run.Wait()
	if err != nil {
		return nil, mapPollError(w.handle, err)
	}
	return &st, nil
}
