package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio"
)

var plaidCmd = &cobra.Command{
	Use:   "plaid",
	Short: "Link brokerage accounts through Plaid",
}

var plaidLinkTokenCmd = &cobra.Command{
	Use:   "link-token",
	Short: "Create a Plaid Link token",
	Args:  cobra.NoArgs,
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		tok, err := c.Plaid.CreateLinkToken(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), tok)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tok.LinkToken)
		fmt.Fprintln(out, mutedStyle.Render("expires "+tok.Expiration))
		return nil
	}),
}

var plaidExchangeCmd = &cobra.Command{
	Use:   "exchange PUBLIC_TOKEN",
	Short: "Exchange a Link public token for account access",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		res, err := c.Plaid.ExchangePublicToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "%s", res.Message)
		return nil
	}),
}

func init() {
	plaidCmd.AddCommand(plaidLinkTokenCmd, plaidExchangeCmd)
	rootCmd.AddCommand(plaidCmd)
}
