package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/intake/internal/config"
	"github.com/kalambet/intake/internal/pipeline"
	"github.com/kalambet/intake/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "intake <input>",
	Short: "Classify a document and extract its key fields",
	Long: `Classify a document and extract its key fields.

The input is a path ending in .pdf, a JSON object, or free text such as
an email. Results are appended to the conversation log.

Examples:
  intake ./invoice.pdf
  intake '{"vendor":"Acme","product_id":"P-1","quantity":5}'
  intake "From: buyer@example.com Subject: quote for 200 units"`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	Version:       version,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		conversationID, _ := cmd.Flags().GetString("conversation")
		return runProcess(cmd, args[0], conversationID)
	},
}

func init() {
	rootCmd.Flags().String("conversation", "", "append to an existing conversation id")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(configCmd)
}

func runProcess(cmd *cobra.Command, input, conversationID string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.processor.Process(cmd.Context(), pipeline.Request{
		Input:          pipeline.InputFromArg(input),
		Source:         "cli",
		ConversationID: conversationID,
	})
	if err != nil {
		return err
	}

	return printOutcome(cmd.OutOrStdout(), out)
}

func printOutcome(w io.Writer, out pipeline.Outcome) error {
	fmt.Fprintf(w, "Detected format: %s\n", out.Format)
	if !out.Supported {
		printWarning("Unsupported content format")
		return nil
	}
	fmt.Fprintf(w, "Detected intent: %s\n", out.Intent)

	data, err := json.MarshalIndent(out.Result(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintf(w, "Result:\n%s\n", data)
	fmt.Fprintf(w, "Session ID: %s\n", colorize(colorCyan, out.ConversationID))
	return nil
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history <conversation-id>",
	Short: "Show the log entries of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.processor.Conversation(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range records {
			fmt.Fprintf(w, "%s  %-5s  %-6s  %s\n",
				colorize(colorCyan, r.Timestamp.Format(storage.TimestampLayout)),
				r.Format,
				r.Source,
				compact(r.ExtractedData),
			)
		}
		return nil
	},
}

func compact(raw json.RawMessage) string {
	s := strings.Join(strings.Fields(string(raw)), " ")
	if runes := []rune(s); len(runes) > 120 {
		s = string(runes[:120]) + "..."
	}
	return s
}

// --- conversations ---

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List recently active conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		convs, err := a.processor.Conversations(limit, 0)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(convs) == 0 {
			fmt.Fprintln(w, "No conversations found.")
			return nil
		}
		for _, c := range convs {
			fmt.Fprintf(w, "%s  %3d  %s  %s\n",
				colorize(colorBold, c.ConversationID),
				c.Records,
				c.FirstSeen.Format(storage.TimestampLayout),
				c.LastSeen.Format(storage.TimestampLayout),
			)
		}
		return nil
	},
}

func init() {
	conversationsCmd.Flags().Int("limit", 20, "maximum number of conversations to list")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(w, "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
