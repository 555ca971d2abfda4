package server

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) searchSecurities(c *fiber.Ctx) error {
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	typ := strings.ToUpper(c.Query("type"))
	exchange := strings.ToUpper(c.Query("exchange"))

	matches := make([]security, 0)
	for _, sec := range s.securities.List() {
		if search != "" &&
			!strings.Contains(strings.ToLower(sec.Symbol), search) &&
			!strings.Contains(strings.ToLower(sec.Name), search) {
			continue
		}
		if typ != "" && sec.SecurityType != typ {
			continue
		}
		if exchange != "" && sec.Exchange != exchange {
			continue
		}
		matches = append(matches, sec)
	}

	ordering := c.Query("ordering")
	field, desc := strings.CutPrefix(ordering, "-")
	switch field {
	case "symbol":
		slices.SortStableFunc(matches, func(a, b security) int { return strings.Compare(a.Symbol, b.Symbol) })
	case "name":
		slices.SortStableFunc(matches, func(a, b security) int { return strings.Compare(a.Name, b.Name) })
	case "market_cap":
		slices.SortStableFunc(matches, func(a, b security) int {
			switch {
			case a.MarketCap < b.MarketCap:
				return -1
			case a.MarketCap > b.MarketCap:
				return 1
			}
			return 0
		})
	}
	if desc {
		slices.Reverse(matches)
	}

	count := len(matches)
	offset := min(max(c.QueryInt("offset"), 0), count)
	page := matches[offset:]
	if limit := c.QueryInt("limit"); limit > 0 && limit < len(page) {
		page = page[:limit]
	}

	return c.JSON(fiber.Map{"count": count, "results": page})
}

func (s *Server) security(c *fiber.Ctx) (security, error) {
	symbol := strings.ToUpper(c.Params("symbol"))
	sec, ok := s.securities.Get(symbol)
	if !ok {
		return security{}, notFound("security %s not found", symbol)
	}
	return sec, nil
}

func (s *Server) getSecurity(c *fiber.Ctx) error {
	sec, err := s.security(c)
	if err != nil {
		return err
	}
	return c.JSON(sec)
}

func (s *Server) queueNewsSummary(c *fiber.Ctx) error {
	sec, err := s.security(c)
	if err != nil {
		return err
	}
	var in struct {
		ForceUpdate bool `json:"force_update"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}

	t := task{
		ID:        uuid.NewString(),
		Symbol:    sec.Symbol,
		Force:     in.ForceUpdate,
		CreatedAt: s.now(),
	}
	s.tasks.Put(t.ID, t)
	s.log.Debugw("news task queued", "task_id", t.ID, "symbol", t.Symbol, "force", t.Force)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id":                   t.ID,
		"status":                    "queued",
		"symbol":                    t.Symbol,
		"message":                   "News summary generation queued",
		"estimated_completion_time": humanDuration(s.cfg.TaskDuration),
		"polling_url":               fmt.Sprintf("/api/securities/%s/news-summary-status/%s/", t.Symbol, t.ID),
		"force_update":              t.Force,
	})
}

func (s *Server) newsSummaryStatus(c *fiber.Ctx) error {
	symbol := strings.ToUpper(c.Params("symbol"))
	id := c.Params("task")
	t, ok := s.tasks.Get(id)
	if !ok || t.Symbol != symbol {
		return notFound("task %s not found for %s", id, symbol)
	}

	status, err := s.progress(t)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// progress derives a task's state from the time elapsed since it was queued.
func (s *Server) progress(t task) (taskStatus, error) {
	now := s.now()
	elapsed := now.Sub(t.CreatedAt)
	started := t.CreatedAt

	out := taskStatus{TaskID: t.ID, Symbol: t.Symbol}
	switch {
	case elapsed <= 0:
		out.Status = "queued"
		out.Message = "Waiting for a worker"
		out.EstimatedRemaining = int(s.cfg.TaskDuration.Seconds())
		return out, nil

	case elapsed < s.cfg.TaskDuration:
		out.Status = "processing"
		out.Message = "Gathering recent news"
		out.EstimatedRemaining = int((s.cfg.TaskDuration - elapsed).Seconds())
		out.StartedAt = &started
		return out, nil
	}

	stopped := t.CreatedAt.Add(s.cfg.TaskDuration)
	out.StartedAt = &started
	out.StoppedAt = &stopped

	if s.failing[t.Symbol] {
		out.Status = "failed"
		out.Message = "News provider rate limited the request"
		return out, nil
	}

	sum := mockSummary(t.Symbol, stopped)
	raw, err := json.Marshal(sum)
	if err != nil {
		return taskStatus{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	s.summaries.Put(t.Symbol, sum)

	out.Status = "completed"
	out.Message = "News summary generated"
	out.Result = raw
	return out, nil
}

func mockSummary(symbol string, at time.Time) newsSummary {
	date := at.Format("2006-01-02")
	return newsSummary{
		Summary:           fmt.Sprintf("%s traded in line with the broader market this week.", symbol),
		ExecutiveSummary:  fmt.Sprintf("%s shows steady momentum with no material surprises.", symbol),
		PositiveCatalysts: "• Strong quarterly guidance\n• Expanding margins",
		RiskFactors:       "• Regulatory scrutiny\n• Supply chain pressure",
		OverallSentiment:  sentiment{Sentiment: "neutral", Rationale: "Mixed coverage across sources"},
		KeyHighlights: []keyHighlight{
			{Highlight: "Earnings beat consensus estimates", Order: 1},
			{Highlight: "Analysts reiterated price targets", Order: 2},
		},
		LatestNews: []newsItem{
			{Headline: symbol + " beats earnings expectations", Source: "Mock Wire", Date: date, Summary: "Revenue rose year over year.", ImpactLevel: "high"},
			{Headline: symbol + " announces investor day", Source: "Mock Daily", Date: date, ImpactLevel: "medium"},
		},
	}
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
