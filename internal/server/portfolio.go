package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sourceManual = "user_manual"

func (s *Server) listHoldings(c *fiber.Ctx) error {
	source := c.Query("source")

	var results []holding
	total := 0.0
	for _, h := range s.holdings.List() {
		if source != "" && h.Source != source {
			continue
		}
		results = append(results, h)
		total += h.CurrentValue
	}
	for i := range results {
		if total > 0 {
			results[i].PortfolioWeightPercent = round2(results[i].CurrentValue / total * 100)
		}
	}

	return c.JSON(fiber.Map{
		"count":                 len(results),
		"total_portfolio_value": round2(total),
		"results":               nonNil(results),
	})
}

func (s *Server) createHolding(c *fiber.Ctx) error {
	var in createHolding
	if err := decode(c, &in); err != nil {
		return err
	}

	symbol := strings.ToUpper(strings.TrimSpace(in.SecuritySymbol))
	switch {
	case symbol == "":
		return badRequest("validation_error", "security_symbol is required")
	case in.Quantity <= 0:
		return badRequest("validation_error", "quantity must be positive")
	case in.AverageCost <= 0:
		return badRequest("validation_error", "average_cost must be positive")
	}
	sec, ok := s.securities.Get(symbol)
	if !ok {
		return badRequest("invalid_symbol", "unknown security "+symbol)
	}

	purchased := in.FirstPurchaseDate
	if purchased == "" {
		purchased = s.now().Format("2006-01-02")
	}

	totalCost := in.Quantity * in.AverageCost
	value := in.Quantity * sec.CurrentPrice
	h := holding{
		ID:                        uuid.NewString(),
		Security:                  sec,
		Quantity:                  in.Quantity,
		AverageCost:               in.AverageCost,
		TotalCost:                 round2(totalCost),
		CurrentValue:              round2(value),
		UnrealizedGainLoss:        round2(value - totalCost),
		UnrealizedGainLossPercent: round2((value - totalCost) / totalCost * 100),
		FirstPurchaseDate:         purchased,
		Broker:                    in.Broker,
		Notes:                     in.Notes,
		Source:                    sourceManual,
	}
	s.holdings.Put(h.ID, h)
	return c.Status(fiber.StatusCreated).JSON(h)
}

func (s *Server) deleteHolding(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.holdings.Delete(id) {
		return notFound("holding %s not found", id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listWatchlist(c *fiber.Ctx) error {
	items := s.watchlist.List()
	for i, it := range items {
		if sum, ok := s.summaries.Get(it.Security.Symbol); ok {
			items[i].SecurityNewsSummary = &sum
		}
	}
	return c.JSON(fiber.Map{
		"count":   len(items),
		"results": nonNil(items),
	})
}

func (s *Server) addWatchlist(c *fiber.Ctx) error {
	var in struct {
		SecuritySymbol string `json:"security_symbol"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}
	symbol := strings.ToUpper(strings.TrimSpace(in.SecuritySymbol))
	if symbol == "" {
		return badRequest("validation_error", "security_symbol is required")
	}
	sec, ok := s.securities.Get(symbol)
	if !ok {
		return notFound("security %s not found", symbol)
	}
	if _, dup := s.watchlist.Find(func(it watchItem) bool { return it.Security.Symbol == symbol }); dup {
		return badRequest("already_exists", symbol+" is already on the watchlist")
	}

	item := watchItem{
		ID:       int(s.nextWatchID.Add(1)),
		Security: sec,
		AddedAt:  s.now(),
	}
	s.watchlist.Put(item.ID, item)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) removeWatchlist(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest("validation_error", "watchlist id must be an integer")
	}
	if !s.watchlist.Delete(id) {
		return notFound("watchlist item %d not found", id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
