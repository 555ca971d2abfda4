package folio

import (
	"context"
	"net/http"
	"net/url"
)

// Holding is a position in the user's portfolio.
type Holding struct {
	ID                        string   `json:"id"`
	Security                  Security `json:"security"`
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
	Source                    string   `json:"source,omitempty"`
}

// HoldingList is the portfolio with its computed total.
type HoldingList struct {
	Count               int       `json:"count"`
	TotalPortfolioValue float64   `json:"total_portfolio_value"`
	Results             []Holding `json:"results"`
}

// CreateHoldingRequest describes a manually entered position.
type CreateHoldingRequest struct {
	SecuritySymbol    string  `json:"security_symbol"`
	Quantity          float64 `json:"quantity"`
	AverageCost       float64 `json:"average_cost"`
	FirstPurchaseDate string  `json:"first_purchase_date"`
	Broker            string  `json:"broker"`
	Notes             string  `json:"notes"`
}

// SourceManual marks holdings entered by hand rather than synced via Plaid.
const SourceManual = "user_manual"

// HoldingService manages portfolio holdings. Authentication is required.
type HoldingService struct {
	c *Client
}

// List returns all holdings with portfolio composition.
func (s *HoldingService) List(ctx context.Context, opts ...RequestOption) (*HoldingList, error) {
	return s.list(ctx, nil, opts)
}

// Manual returns only manually entered holdings.
func (s *HoldingService) Manual(ctx context.Context, opts ...RequestOption) (*HoldingList, error) {
	return s.list(ctx, url.Values{"source": {SourceManual}}, opts)
}

func (s *HoldingService) list(ctx context.Context, query url.Values, opts []RequestOption) (*HoldingList, error) {
	list, err := doJSON[HoldingList](ctx, s.c, Request{Path: "/api/holdings/", Query: query}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// Create adds a manual holding.
func (s *HoldingService) Create(ctx context.Context, req CreateHoldingRequest, opts ...RequestOption) (*Holding, error) {
	h, err := doJSON[Holding](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/holdings/",
		Body:   req,
	}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Delete removes a manual holding.
func (s *HoldingService) Delete(ctx context.Context, id string, opts ...RequestOption) error {
	_, err := s.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/holdings/" + url.PathEscape(id) + "/",
	}, authed(opts)...)
	return err
}
