package folio

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// WatchlistItem is a security the user follows, with its latest research.
type WatchlistItem struct {
	ID                  int             `json:"id"`
	Security            Security        `json:"security"`
	AddedAt             time.Time       `json:"added_at"`
	SecurityNewsSummary *NewsSummary    `json:"security_news_summary,omitempty"`
	LatestNews          []NewsItem      `json:"latest_news,omitempty"`
	KeyHighlights       []KeyHighlight  `json:"key_highlights,omitempty"`
	UpcomingEvents      []UpcomingEvent `json:"upcoming_events,omitempty"`
}

// WatchlistList is the user's watchlist.
type WatchlistList struct {
	Count   int             `json:"count"`
	Results []WatchlistItem `json:"results"`
}

// IDForSymbol finds the item tracking symbol, case-insensitively.
func (l WatchlistList) IDForSymbol(symbol string) (int, bool) {
	for _, item := range l.Results {
		if strings.EqualFold(item.Security.Symbol, symbol) {
			return item.ID, true
		}
	}
	return 0, false
}

// WatchlistService manages the watchlist. Authentication is required.
type WatchlistService struct {
	c *Client
}

// List returns the watchlist.
func (s *WatchlistService) List(ctx context.Context, opts ...RequestOption) (*WatchlistList, error) {
	list, err := doJSON[WatchlistList](ctx, s.c, Request{Path: "/api/watchlist/"}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// Add starts watching symbol.
func (s *WatchlistService) Add(ctx context.Context, symbol string, opts ...RequestOption) (*WatchlistItem, error) {
	item, err := doJSON[WatchlistItem](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/watchlist/",
		Body:   map[string]string{"security_symbol": symbol},
	}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove stops watching the item with the given id.
func (s *WatchlistService) Remove(ctx context.Context, id int, opts ...RequestOption) error {
	_, err := s.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/watchlist/" + strconv.Itoa(id) + "/",
	}, authed(opts)...)
	return err
}
