package main

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage assistant chats",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		list, err := c.Chats.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tTITLE\tMESSAGES\tUPDATED")
		for _, ch := range list.Chats {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", ch.ID, cmp.Or(ch.Title, "New Chat"), ch.MessageCount, ch.UpdatedAt.Format(time.DateTime))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("%d chats", list.Total)))
		return nil
	}),
}

var chatsCreateCmd = &cobra.Command{
	Use:   "create [TITLE]",
	Short: "Start a new chat",
	Args:  cobra.MaximumNArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		ch, err := c.Chats.Create(cmd.Context(), title)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), ch)
		}
		printSuccess(cmd.OutOrStdout(), "Created chat %s", ch.ID)
		return nil
	}),
}

var chatsShowCmd = &cobra.Command{
	Use:   "show CHAT_ID",
	Short: "Show a chat and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		detail, err := c.Chats.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), detail)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render(cmp.Or(detail.Title, "New Chat")))
		for _, m := range detail.Messages {
			printMessage(cmd, m, false)
		}
		return nil
	}),
}

var chatsRenameCmd = &cobra.Command{
	Use:   "rename CHAT_ID TITLE",
	Short: "Rename a chat",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		ch, err := c.Chats.Update(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Renamed chat %s to %q", ch.ID, ch.Title)
		return nil
	}),
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete CHAT_ID",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		if err := c.Chats.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Deleted chat %s", args[0])
		return nil
	}),
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Send and read chat messages",
}

var messagesSendCmd = &cobra.Command{
	Use:   "send CHAT_ID MESSAGE...",
	Short: "Send a message and print the assistant's reply",
	Long: `Send a message to a chat and print the assistant's reply.

The reply is rendered as markdown unless --raw is given.`,
	Args: cobra.MinimumNArgs(2),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		resp, err := c.Messages.Send(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		raw, _ := cmd.Flags().GetBool("raw")
		printMessage(cmd, resp.AIMessage, raw)
		return nil
	}),
}

var messagesListCmd = &cobra.Command{
	Use:   "list CHAT_ID",
	Short: "List the messages in a chat",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		var msgs []folio.Message
		var err error
		if page > 0 {
			msgs, err = c.Messages.Page(cmd.Context(), args[0], page, limit)
		} else {
			msgs, err = c.Messages.List(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), msgs)
		}

		raw, _ := cmd.Flags().GetBool("raw")
		for _, m := range msgs {
			printMessage(cmd, m, raw)
		}
		return nil
	}),
}

var messagesClearCmd = &cobra.Command{
	Use:   "clear CHAT_ID",
	Short: "Delete every message in a chat",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(cmd *cobra.Command, c *folio.Client, args []string) error {
		if err := c.Messages.Clear(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Cleared messages in chat %s", args[0])
		return nil
	}),
}

func printMessage(cmd *cobra.Command, m folio.Message, raw bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("[%s] %s", m.CreatedAt.Format(time.DateTime), m.Role)))
	if m.Role == folio.RoleAssistant && !raw {
		fmt.Fprint(out, renderMarkdown(m.Content))
		return
	}
	fmt.Fprintln(out, m.Content)
}

func init() {
	chatsCmd.AddCommand(chatsListCmd, chatsCreateCmd, chatsShowCmd, chatsRenameCmd, chatsDeleteCmd)

	messagesSendCmd.Flags().Bool("raw", false, "print the reply without markdown rendering")
	messagesListCmd.Flags().Bool("raw", false, "print replies without markdown rendering")
	messagesListCmd.Flags().Int("page", 0, "1-based page number (0 lists everything)")
	messagesListCmd.Flags().Int("limit", 20, "messages per page")
	messagesCmd.AddCommand(messagesSendCmd, messagesListCmd, messagesClearCmd)

	rootCmd.AddCommand(chatsCmd, messagesCmd)
}
