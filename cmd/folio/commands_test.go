package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jpalmerr/folio"
)

func TestChatsAndMessages(t *testing.T) {
	base := startBackend(t)

	out, _, err := execute(t, "--base-url", base, "--json", "chats", "create")
	if err != nil {
		t.Fatalf("chats create error = %v", err)
	}
	var chat folio.Chat
	if err := json.Unmarshal([]byte(out), &chat); err != nil {
		t.Fatalf("failed to decode chat: %v\n%s", err, out)
	}

	out, _, err = execute(t, "--base-url", base, "messages", "send", chat.ID, "How", "is", "AAPL?", "--raw")
	if err != nil {
		t.Fatalf("messages send error = %v", err)
	}
	if !strings.Contains(out, "### Portfolio assistant") || !strings.Contains(out, "How is AAPL?") {
		t.Errorf("raw reply missing markdown source\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "messages", "send", chat.ID, "Thanks")
	if err != nil {
		t.Fatalf("messages send error = %v", err)
	}
	if !strings.Contains(out, "Portfolio assistant") || !strings.Contains(out, "Thanks") {
		t.Errorf("rendered reply output\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "chats", "list")
	if err != nil {
		t.Fatalf("chats list error = %v", err)
	}
	if !strings.Contains(out, chat.ID) || !strings.Contains(out, "How is AAPL?") || !strings.Contains(out, "1 chats") {
		t.Errorf("chats list output\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "messages", "list", chat.ID, "--page", "2", "--limit", "3", "--raw")
	if err != nil {
		t.Fatalf("messages list error = %v", err)
	}
	if strings.Count(out, "] ") != 1 {
		t.Errorf("page 2 of 4 messages with limit 3 should hold 1 message\nGot:\n%s", out)
	}

	if _, _, err := execute(t, "--base-url", base, "chats", "rename", chat.ID, "Apple"); err != nil {
		t.Fatalf("chats rename error = %v", err)
	}
	if _, _, err := execute(t, "--base-url", base, "messages", "clear", chat.ID); err != nil {
		t.Fatalf("messages clear error = %v", err)
	}

	out, _, err = execute(t, "--base-url", base, "chats", "show", chat.ID)
	if err != nil {
		t.Fatalf("chats show error = %v", err)
	}
	if !strings.Contains(out, "Apple") {
		t.Errorf("chats show output\nGot:\n%s", out)
	}

	if _, _, err := execute(t, "--base-url", base, "chats", "delete", chat.ID); err != nil {
		t.Fatalf("chats delete error = %v", err)
	}
	_, _, err = execute(t, "--base-url", base, "chats", "show", chat.ID)
	if !folio.IsApplication(err) || folio.StatusCode(err) != 404 {
		t.Errorf("chats show after delete error = %v, want 404", err)
	}
}

func TestHoldingsAndWatchlist(t *testing.T) {
	base := startBackend(t)
	auth := []string{"--base-url", base, "--token", "tok"}

	out, _, err := execute(t, append(auth, "holdings", "add", "aapl", "--quantity", "2", "--cost", "100", "--date", "2024-01-02")...)
	if err != nil {
		t.Fatalf("holdings add error = %v", err)
	}
	if !strings.Contains(out, "Added 2 AAPL") {
		t.Errorf("holdings add output\nGot:\n%s", out)
	}

	out, _, err = execute(t, append(auth, "holdings", "list", "--manual")...)
	if err != nil {
		t.Fatalf("holdings list error = %v", err)
	}
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "1 holdings") {
		t.Errorf("holdings list output\nGot:\n%s", out)
	}

	_, _, err = execute(t, append(auth, "holdings", "add", "AAPL", "--quantity", "2", "--cost", "100", "--date", "02/01/2024")...)
	if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("holdings add with bad date error = %v", err)
	}

	if _, _, err := execute(t, append(auth, "watchlist", "add", "msft")...); err != nil {
		t.Fatalf("watchlist add error = %v", err)
	}
	out, _, err = execute(t, append(auth, "watchlist", "list")...)
	if err != nil {
		t.Fatalf("watchlist list error = %v", err)
	}
	if !strings.Contains(out, "Microsoft Corporation") {
		t.Errorf("watchlist list output\nGot:\n%s", out)
	}

	out, _, err = execute(t, append(auth, "watchlist", "remove", "msft")...)
	if err != nil {
		t.Fatalf("watchlist remove error = %v", err)
	}
	if !strings.Contains(out, "Removed watchlist item 1") {
		t.Errorf("watchlist remove output\nGot:\n%s", out)
	}

	_, _, err = execute(t, append(auth, "watchlist", "remove", "msft")...)
	if err == nil || !strings.Contains(err.Error(), "not on the watchlist") {
		t.Errorf("second remove error = %v", err)
	}
}

func TestAuthRequired(t *testing.T) {
	base := startBackend(t)

	_, _, err := execute(t, "--base-url", base, "holdings", "list")
	if !folio.IsAuthentication(err) {
		t.Errorf("holdings list without token error = %v, want authentication error", err)
	}
}

func TestSecurities(t *testing.T) {
	base := startBackend(t)

	out, _, err := execute(t, "--base-url", base, "securities", "search", "apple")
	if err != nil {
		t.Fatalf("securities search error = %v", err)
	}
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "showing 1 of 1") {
		t.Errorf("securities search output\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "securities", "search", "--type", "etf")
	if err != nil {
		t.Fatalf("securities search error = %v", err)
	}
	if !strings.Contains(out, "SPY") || strings.Contains(out, "AAPL") {
		t.Errorf("ETF search output\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "securities", "show", "nvda")
	if err != nil {
		t.Fatalf("securities show error = %v", err)
	}
	if !strings.Contains(out, "NVIDIA Corporation") || !strings.Contains(out, "P/E") {
		t.Errorf("securities show output\nGot:\n%s", out)
	}
}

func TestNewsRefresh(t *testing.T) {
	base := startBackend(t, "TSM")
	configPath := writeConfig(t, "folio.yaml", `
base_url: `+base+`
auth:
  token: tok
news:
  initial_delay: 80ms
  interval: 40ms
  max_attempts: 5
`)

	out, _, err := execute(t, "-c", configPath, "news", "refresh", "aapl", "msft", "--force")
	if err != nil {
		t.Fatalf("news refresh error = %v", err)
	}
	for _, phrase := range []string{"completed", "AAPL summary refreshed", "MSFT summary refreshed", "Strong quarterly guidance"} {
		if !strings.Contains(out, phrase) {
			t.Errorf("output missing %q\nGot:\n%s", phrase, out)
		}
	}

	_, stderr, err := execute(t, "-c", configPath, "news", "refresh", "AAPL", "TSM")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 refreshes failed") {
		t.Errorf("news refresh error = %v, want one failure", err)
	}
	if !strings.Contains(stderr, "TSM") {
		t.Errorf("stderr missing failed symbol\nGot:\n%s", stderr)
	}
}

func TestPlaid(t *testing.T) {
	base := startBackend(t)

	out, _, err := execute(t, "--base-url", base, "--token", "tok", "plaid", "link-token")
	if err != nil {
		t.Fatalf("plaid link-token error = %v", err)
	}
	if !strings.Contains(out, "link-sandbox-") {
		t.Errorf("plaid link-token output\nGot:\n%s", out)
	}

	out, _, err = execute(t, "--base-url", base, "--token", "tok", "plaid", "exchange", "public-sandbox-1")
	if err != nil {
		t.Fatalf("plaid exchange error = %v", err)
	}
	if !strings.Contains(out, "exchanged successfully") {
		t.Errorf("plaid exchange output\nGot:\n%s", out)
	}
}
