package server

import (
	"encoding/json"
	"time"
)

type chat struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	IsArchived         bool            `json:"is_archived"`
	MessageCount       int             `json:"message_count"`
	LastMessagePreview *messagePreview `json:"last_message_preview,omitempty"`
}

type messagePreview struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type chatDetail struct {
	chat
	Messages []message `json:"messages"`
}

type message struct {
	ID        string         `json:"id"`
	Chat      string         `json:"chat"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
}

// thread is the stored form of a chat: the chat row plus its messages.
type thread struct {
	chat     chat
	messages []message
}

type security struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	SecurityType     string  `json:"security_type"`
	Exchange         string  `json:"exchange"`
	CurrentPrice     float64 `json:"current_price"`
	DayChange        float64 `json:"day_change"`
	DayChangePercent float64 `json:"day_change_percent"`
	Volume           int64   `json:"volume"`
	MarketCap        float64 `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio,omitempty"`
	YearHigh         float64 `json:"year_high"`
	YearLow          float64 `json:"year_low"`
}

type holding struct {
	ID                        string   `json:"id"`
	Security                  security `json:"security"`
	Quantity                  float64  `json:"quantity"`
	AverageCost               float64  `json:"average_cost"`
	TotalCost                 float64  `json:"total_cost"`
	CurrentValue              float64  `json:"current_value"`
	UnrealizedGainLoss        float64  `json:"unrealized_gain_loss"`
	UnrealizedGainLossPercent float64  `json:"unrealized_gain_loss_percent"`
	PortfolioWeightPercent    float64  `json:"portfolio_weight_percent"`
	FirstPurchaseDate         string   `json:"first_purchase_date"`
	Broker                    string   `json:"broker,omitempty"`
	Notes                     string   `json:"notes,omitempty"`
	Source                    string   `json:"source"`
}

type createHolding struct {
	SecuritySymbol    string  `json:"security_symbol"`
	Quantity          float64 `json:"quantity"`
	AverageCost       float64 `json:"average_cost"`
	FirstPurchaseDate string  `json:"first_purchase_date"`
	Broker            string  `json:"broker"`
	Notes             string  `json:"notes"`
}

type watchItem struct {
	ID                  int          `json:"id"`
	Security            security     `json:"security"`
	AddedAt             time.Time    `json:"added_at"`
	SecurityNewsSummary *newsSummary `json:"security_news_summary,omitempty"`
}

type newsSummary struct {
	Summary           string         `json:"summary"`
	ExecutiveSummary  string         `json:"executive_summary"`
	PositiveCatalysts string         `json:"positive_catalysts"`
	RiskFactors       string         `json:"risk_factors"`
	OverallSentiment  sentiment      `json:"overall_sentiment"`
	KeyHighlights     []keyHighlight `json:"key_highlights"`
	LatestNews        []newsItem     `json:"latest_news"`
}

type sentiment struct {
	Sentiment string `json:"sentiment"`
	Rationale string `json:"rationale"`
}

type keyHighlight struct {
	Highlight string `json:"highlight"`
	Order     int    `json:"order"`
}

type newsItem struct {
	Headline    string `json:"headline"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	Summary     string `json:"summary"`
	ImpactLevel string `json:"impact_level"`
}

// task is a simulated news-summary job. Its status is derived from the
// clock on every read.
type task struct {
	ID        string
	Symbol    string
	Force     bool
	CreatedAt time.Time
}

type taskStatus struct {
	TaskID             string          `json:"task_id"`
	Status             string          `json:"status"`
	Symbol             string          `json:"symbol"`
	Message            string          `json:"message"`
	Result             json.RawMessage `json:"result,omitempty"`
	EstimatedRemaining any             `json:"estimated_remaining,omitempty"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	StoppedAt          *time.Time      `json:"stopped_at,omitempty"`
}
