package folio

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// SecurityType is the instrument class.
type SecurityType string

const (
	SecurityCommonStock SecurityType = "CS"
	SecurityETF         SecurityType = "ETF"
	SecurityADR         SecurityType = "ADRC"
)

// Security is a tradable instrument with its latest market data.
type Security struct {
	Symbol           string       `json:"symbol"`
	Name             string       `json:"name"`
	SecurityType     SecurityType `json:"security_type"`
	Exchange         string       `json:"exchange,omitempty"`
	CurrentPrice     float64      `json:"current_price,omitempty"`
	DayChange        float64      `json:"day_change,omitempty"`
	DayChangePercent float64      `json:"day_change_percent,omitempty"`
	Volume           int64        `json:"volume,omitempty"`
	MarketCap        float64      `json:"market_cap,omitempty"`
	PERatio          float64      `json:"pe_ratio,omitempty"`
	YearHigh         float64      `json:"year_high,omitempty"`
	YearLow          float64      `json:"year_low,omitempty"`
}

// SecurityList is one page of search results.
type SecurityList struct {
	Count   int        `json:"count"`
	Results []Security `json:"results"`
}

// SecuritySearchParams filters a securities search. Zero fields are omitted.
type SecuritySearchParams struct {
	Search   string
	Type     SecurityType
	Exchange string
	Limit    int
	Offset   int
	Ordering string
}

func (p SecuritySearchParams) values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Type != "" {
		v.Set("type", string(p.Type))
	}
	if p.Exchange != "" {
		v.Set("exchange", p.Exchange)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	return v
}

const minQuickSearchLen = 2

// SecurityService searches the securities catalog. Authentication is optional.
type SecurityService struct {
	c *Client
}

// Search lists securities matching params.
func (s *SecurityService) Search(ctx context.Context, params SecuritySearchParams, opts ...RequestOption) (*SecurityList, error) {
	list, err := doJSON[SecurityList](ctx, s.c, Request{Path: "/api/securities/", Query: params.values()}, opts...)
	if err != nil {
		return nil, err
	}
	if list.Results == nil {
		list.Results = []Security{}
	}
	return &list, nil
}

// Get returns one security. The symbol is upper-cased.
func (s *SecurityService) Get(ctx context.Context, symbol string, opts ...RequestOption) (*Security, error) {
	sec, err := doJSON[Security](ctx, s.c, Request{Path: securityPath(symbol) + "/"}, opts...)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// QuickSearch serves typeahead lookups. Queries shorter than two characters
// return an empty list without contacting the server.
func (s *SecurityService) QuickSearch(ctx context.Context, query string, limit int, opts ...RequestOption) (*SecurityList, error) {
	if len([]rune(query)) < minQuickSearchLen {
		return &SecurityList{Count: 0, Results: []Security{}}, nil
	}
	return s.Search(ctx, SecuritySearchParams{Search: query, Limit: limit, Ordering: "symbol"}, opts...)
}

// ByType lists securities of one class, ordered by symbol.
func (s *SecurityService) ByType(ctx context.Context, t SecurityType, limit int, opts ...RequestOption) (*SecurityList, error) {
	return s.Search(ctx, SecuritySearchParams{Type: t, Limit: limit, Ordering: "symbol"}, opts...)
}

// ByExchange lists securities listed on exchange, ordered by symbol.
func (s *SecurityService) ByExchange(ctx context.Context, exchange string, limit int, opts ...RequestOption) (*SecurityList, error) {
	return s.Search(ctx, SecuritySearchParams{Exchange: exchange, Limit: limit, Ordering: "symbol"}, opts...)
}

func securityPath(symbol string) string {
	return "/api/securities/" + url.PathEscape(strings.ToUpper(symbol))
}
