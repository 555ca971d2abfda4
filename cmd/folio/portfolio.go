package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio"
)

var holdingsCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Manage portfolio holdings",
}

var holdingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holdings with portfolio totals",
	Args:  cobra.NoArgs,
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		manual, _ := cmd.Flags().GetBool("manual")

		var list *folio.HoldingList
		var err error
		if manual {
			list, err = c.Holdings.Manual(cmd.Context())
		} else {
			list, err = c.Holdings.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tSYMBOL\tQUANTITY\tAVG COST\tVALUE\tGAIN %\tWEIGHT %")
		for _, h := range list.Results {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%.2f\t%.2f\t%+.2f\t%.2f\n",
				h.ID, h.Security.Symbol, h.Quantity, h.AverageCost, h.CurrentValue,
				h.UnrealizedGainLossPercent, h.PortfolioWeightPercent)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(
			fmt.Sprintf("%d holdings, total value %.2f", list.Count, list.TotalPortfolioValue)))
		return nil
	}),
}

var holdingsAddCmd = &cobra.Command{
	Use:   "add SYMBOL",
	Short: "Record a manual holding",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		flags := cmd.Flags()
		qty, _ := flags.GetFloat64("quantity")
		cost, _ := flags.GetFloat64("cost")
		date, _ := flags.GetString("date")
		broker, _ := flags.GetString("broker")
		notes, _ := flags.GetString("notes")

		if qty <= 0 {
			return errors.New("--quantity must be positive")
		}
		if cost <= 0 {
			return errors.New("--cost must be positive")
		}
		if date != "" {
			if _, err := time.Parse(time.DateOnly, date); err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
		}

		h, err := c.Holdings.Create(cmd.Context(), folio.CreateHoldingRequest{
			SecuritySymbol:    strings.ToUpper(args[0]),
			Quantity:          qty,
			AverageCost:       cost,
			FirstPurchaseDate: date,
			Broker:            broker,
			Notes:             notes,
		})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), h)
		}
		printSuccess(cmd.OutOrStdout(), "Added %g %s (holding %s)", h.Quantity, h.Security.Symbol, h.ID)
		return nil
	}),
}

var holdingsDeleteCmd = &cobra.Command{
	Use:   "delete HOLDING_ID",
	Short: "Delete a holding",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		if err := c.Holdings.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Deleted holding %s", args[0])
		return nil
	}),
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the watchlist",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched securities",
	Args:  cobra.NoArgs,
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		list, err := c.Watchlist.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tSYMBOL\tNAME\tPRICE\tCHANGE %\tSENTIMENT")
		for _, it := range list.Results {
			sentiment := "-"
			if s := it.SecurityNewsSummary; s != nil && s.OverallSentiment != nil {
				sentiment = s.OverallSentiment.Sentiment
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%+.2f\t%s\n",
				it.ID, it.Security.Symbol, it.Security.Name,
				it.Security.CurrentPrice, it.Security.DayChangePercent, sentiment)
		}
		return tw.Flush()
	}),
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add SYMBOL",
	Short: "Watch a security",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		item, err := c.Watchlist.Add(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Watching %s (item %d)", item.Security.Symbol, item.ID)
		return nil
	}),
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove SYMBOL|ID",
	Short: "Stop watching a security",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			list, lerr := c.Watchlist.List(cmd.Context())
			if lerr != nil {
				return lerr
			}
			var ok bool
			if id, ok = list.IDForSymbol(args[0]); !ok {
				return fmt.Errorf("%s is not on the watchlist", strings.ToUpper(args[0]))
			}
		}

		if err := c.Watchlist.Remove(cmd.Context(), id); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Removed watchlist item %d", id)
		return nil
	}),
}

func init() {
	holdingsListCmd.Flags().Bool("manual", false, "only manually entered holdings")
	holdingsAddCmd.Flags().Float64("quantity", 0, "number of shares (required)")
	holdingsAddCmd.Flags().Float64("cost", 0, "average cost per share (required)")
	holdingsAddCmd.Flags().String("date", "", "first purchase date, YYYY-MM-DD")
	holdingsAddCmd.Flags().String("broker", "", "broker name")
	holdingsAddCmd.Flags().String("notes", "", "free-form notes")
	_ = holdingsAddCmd.MarkFlagRequired("quantity")
	_ = holdingsAddCmd.MarkFlagRequired("cost")
	holdingsCmd.AddCommand(holdingsListCmd, holdingsAddCmd, holdingsDeleteCmd)

	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd, watchlistRemoveCmd)

	rootCmd.AddCommand(holdingsCmd, watchlistCmd)
}
