package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/folio"
)

const demoToken = "demo-token"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start mock backend (see mock_server.go); news jobs take 3s, TSM always fails
	baseURL, err := StartMockBackend(ctx, demoToken, 3*time.Second, "TSM")
	if err != nil {
		slog.Error("failed to start mock backend", "error", err)
		os.Exit(1)
	}

	client, err := folio.New(
		folio.WithBaseURL(baseURL),
		folio.WithTokenSource(folio.StaticToken(demoToken)),
		folio.WithTimeout(5*time.Second),
		// the mock finishes quickly, so poll much sooner than the 110s default
		folio.WithTaskPolling(2*time.Second, time.Second, 5),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(ctx, client); err != nil {
		slog.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *folio.Client) error {
	chat, err := client.Chats.Create(ctx, "")
	if err != nil {
		return err
	}
	reply, err := client.Messages.Send(ctx, chat.ID, "What moved my portfolio today?")
	if err != nil {
		return err
	}
	fmt.Printf("assistant:\n%s\n", reply.AIMessage.Content)

	if _, err := client.Watchlist.Add(ctx, "AAPL"); err != nil {
		return err
	}

	task, err := client.News.Queue(ctx, "AAPL", true)
	if err != nil {
		return err
	}
	fmt.Printf("queued news summary %s for %s\n", task.TaskID, task.Symbol)

	// poll in the background; Cancel would stop it at once
	watch := client.News.StartPolling(ctx, task.Handle(), func(st folio.NewsSummaryStatus) {
		fmt.Printf("  %s: %s\n", st.Status, st.Message)
	})
	st, err := watch.Wait()
	if err != nil {
		return err
	}

	summary, err := st.Summary()
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", summary.ExecutiveSummary)
	for _, point := range folio.Bullets(summary.PositiveCatalysts) {
		fmt.Printf("  + %s\n", point)
	}

	// a failing symbol surfaces as *folio.TaskFailedError
	if _, err := client.News.Refresh(ctx, "TSM", false, nil); err != nil {
		fmt.Printf("\nexpected failure: %v\n", err)
	}
	return nil
}
