package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio"
)

var securitiesCmd = &cobra.Command{
	Use:   "securities",
	Short: "Search the securities catalog",
}

var securitiesSearchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search securities by symbol or name",
	Args:  cobra.MaximumNArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		flags := cmd.Flags()
		typ, _ := flags.GetString("type")
		exchange, _ := flags.GetString("exchange")
		limit, _ := flags.GetInt("limit")
		offset, _ := flags.GetInt("offset")
		ordering, _ := flags.GetString("ordering")

		params := folio.SecuritySearchParams{
			Type:     folio.SecurityType(strings.ToUpper(typ)),
			Exchange: strings.ToUpper(exchange),
			Limit:    limit,
			Offset:   offset,
			Ordering: ordering,
		}
		if len(args) == 1 {
			params.Search = args[0]
		}

		list, err := c.Securities.Search(cmd.Context(), params)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "SYMBOL\tNAME\tTYPE\tEXCHANGE\tPRICE\tCHANGE %")
		for _, s := range list.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%+.2f\n",
				s.Symbol, s.Name, s.SecurityType, s.Exchange, s.CurrentPrice, s.DayChangePercent)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(
			fmt.Sprintf("showing %d of %d", len(list.Results), list.Count)))
		return nil
	}),
}

var securitiesShowCmd = &cobra.Command{
	Use:   "show SYMBOL",
	Short: "Show one security",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		s, err := c.Securities.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), s)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render(s.Symbol+"  "+s.Name))
		tw := newTable(out)
		fmt.Fprintf(tw, "Type\t%s\n", s.SecurityType)
		fmt.Fprintf(tw, "Exchange\t%s\n", s.Exchange)
		fmt.Fprintf(tw, "Price\t%.2f (%+.2f, %+.2f%%)\n", s.CurrentPrice, s.DayChange, s.DayChangePercent)
		fmt.Fprintf(tw, "52w range\t%.2f - %.2f\n", s.YearLow, s.YearHigh)
		if s.PERatio > 0 {
			fmt.Fprintf(tw, "P/E\t%.1f\n", s.PERatio)
		}
		fmt.Fprintf(tw, "Volume\t%d\n", s.Volume)
		return tw.Flush()
	}),
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Generate and read AI news summaries",
}

var newsRefreshCmd = &cobra.Command{
	Use:   "refresh SYMBOL...",
	Short: "Regenerate news summaries and wait for them",
	Long: `Queue a news summary job per symbol and poll each until it finishes.

Every status update is printed as it arrives. Jobs run concurrently, up to
--concurrency at a time. The command fails if any job fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		out := cmd.OutOrStdout()

		var mu sync.Mutex
		onUpdate := func(st folio.NewsSummaryStatus) {
			mu.Lock()
			defer mu.Unlock()
			printStatus(out, st)
		}

		results, err := c.News.RefreshAll(cmd.Context(), args, concurrency, force, onUpdate)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", r.Symbol, r.Err))
				continue
			}
			if r.Status != nil && !jsonOutput(cmd) {
				if perr := printSummary(out, r.Symbol, *r.Status); perr != nil {
					return perr
				}
			}
		}
		if jsonOutput(cmd) {
			if perr := printJSON(out, refreshView(results)); perr != nil {
				return perr
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d refreshes failed", failed, len(args))
		}
		return err
	}),
}

var newsStatusCmd = &cobra.Command{
	Use:   "status SYMBOL TASK_ID",
	Short: "Check a news summary job once",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		st, err := c.News.Status(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), st)
		}
		printStatus(cmd.OutOrStdout(), *st)
		return nil
	}),
}

type refreshOutcome struct {
	Symbol string                   `json:"symbol"`
	Status *folio.NewsSummaryStatus `json:"status,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func refreshView(results []folio.RefreshResult) []refreshOutcome {
	out := make([]refreshOutcome, 0, len(results))
	for _, r := range results {
		o := refreshOutcome{Symbol: r.Symbol, Status: r.Status}
		if r.Err != nil {
			o.Error = r.Err.Error()
		}
		out = append(out, o)
	}
	return out
}

func printStatus(w io.Writer, st folio.NewsSummaryStatus) {
	line := fmt.Sprintf("%-6s %-10s %s", st.Symbol, st.Status, st.Message)
	if st.EstimatedRemaining != "" && !st.Status.IsTerminal() {
		line += fmt.Sprintf(" (~%ss remaining)", st.EstimatedRemaining)
	}
	fmt.Fprintln(w, mutedStyle.Render(line))
}

func printSummary(w io.Writer, symbol string, st folio.NewsSummaryStatus) error {
	sum, err := st.Summary()
	if err != nil {
		return err
	}
	if sum == nil {
		printWarning(w, "%s completed without a summary", symbol)
		return nil
	}

	fmt.Fprintln(w, headingStyle.Render(symbol))
	fmt.Fprintln(w, sum.ExecutiveSummary)
	if sum.OverallSentiment != nil {
		fmt.Fprintf(w, "Sentiment: %s\n", sum.OverallSentiment.Sentiment)
	}
	for _, section := range []struct{ title, text string }{
		{"Catalysts", sum.PositiveCatalysts},
		{"Risks", sum.RiskFactors},
	} {
		points := folio.Bullets(section.text)
		if len(points) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", section.title)
		for _, p := range points {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	}
	printSuccess(w, "%s summary refreshed", symbol)
	return nil
}

func init() {
	f := securitiesSearchCmd.Flags()
	f.String("type", "", "security type: CS, ETF or ADRC")
	f.String("exchange", "", "exchange, e.g. NASDAQ")
	f.Int("limit", 20, "maximum results")
	f.Int("offset", 0, "results to skip")
	f.String("ordering", "symbol", "sort field, prefix with - for descending")
	securitiesCmd.AddCommand(securitiesSearchCmd, securitiesShowCmd)

	newsRefreshCmd.Flags().Bool("force", false, "regenerate even if a recent summary exists")
	newsRefreshCmd.Flags().Int("concurrency", 2, "maximum jobs polled at once")
	newsCmd.AddCommand(newsRefreshCmd, newsStatusCmd)

	rootCmd.AddCommand(securitiesCmd, newsCmd)
}
