package folio

import (
	"context"
	"net/http"
)

// LinkToken initializes the Plaid Link flow.
type LinkToken struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResult confirms a public token exchange.
type ExchangeResult struct {
	Message string `json:"message"`
}

// PlaidService drives the brokerage link flow. Authentication is required.
type PlaidService struct {
	c *Client
}

// CreateLinkToken asks the server for a Link token. The server configures
// products itself, so the request body is null.
func (s *PlaidService) CreateLinkToken(ctx context.Context, opts ...RequestOption) (*LinkToken, error) {
	tok, err := doJSON[LinkToken](ctx, s.c, Request{Method: http.MethodPost, Path: "/plaid/link-token/"}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// ExchangePublicToken trades the public token from a finished Link session
// for server-side access.
func (s *PlaidService) ExchangePublicToken(ctx context.Context, publicToken string, opts ...RequestOption) (*ExchangeResult, error) {
	res, err := doJSON[ExchangeResult](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/plaid/exchange-token/",
		Body:   map[string]string{"public_token": publicToken},
	}, authed(opts)...)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
