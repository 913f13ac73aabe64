package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Inspect the payment webhook inbox",
}

var webhookReceiveCmd = &cobra.Command{
	Use:   "receive [order-code]",
	Short: "Store a webhook delivery read from --file or stdin",
	Long: `Store a payment gateway delivery in the inbox. A redelivery of the same
payload is recognised and not stored twice.

Examples:
  garage webhook receive 123456 --file payload.json --signature abc
  cat payload.json | garage webhook receive 123456`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var orderCode int64
		if _, err := fmt.Sscan(args[0], &orderCode); err != nil {
			return fmt.Errorf("invalid order code %q", args[0])
		}
		file, _ := cmd.Flags().GetString("file")
		signature, _ := cmd.Flags().GetString("signature")

		payload, err := readPayload(file, cmd.InOrStdin())
		if err != nil {
			return err
		}

		entry, err := wire.WebhookService().Receive(NewContext(), orderCode, payload, signature)
		if err != nil {
			return fmt.Errorf("failed to store delivery: %w", err)
		}
		if entry.Duplicate {
			fmt.Printf("%s Duplicate delivery of entry %d ignored\n", warnMark, entry.ID)
			return nil
		}
		fmt.Printf("%s Stored delivery %d (%s)\n", okMark, entry.ID, entry.PayloadHash)
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending entries, or all entries of an order code",
	RunE: func(cmd *cobra.Command, args []string) error {
		orderCode, _ := cmd.Flags().GetInt64("order-code")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := NewContext()
		var entries []*primary.WebhookEntry
		var err error
		if orderCode != 0 {
			entries, err = wire.WebhookService().ListByOrderCode(ctx, orderCode)
		} else {
			entries, err = wire.WebhookService().ListPending(ctx, limit)
		}
		if err != nil {
			return fmt.Errorf("failed to list webhook entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No webhook entries found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tORDER CODE\tSTATUS\tATTEMPTS\tRECEIVED\tLAST ERROR")
		fmt.Fprintln(w, "--\t----------\t------\t--------\t--------\t----------")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%s\n",
				e.ID, e.OrderCode, e.Status, e.Attempts, e.ReceivedAt.Format("2006-01-02 15:04"), orDash(e.LastError))
		}
		w.Flush()
		return nil
	},
}

var webhookProcessedCmd = &cobra.Command{
	Use:   "processed [entry-id]",
	Short: "Mark an entry processed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		if err := wire.WebhookService().MarkProcessed(NewContext(), id); err != nil {
			return fmt.Errorf("failed to mark processed: %w", err)
		}
		fmt.Printf("%s Entry %d processed\n", okMark, id)
		return nil
	},
}

var webhookFailCmd = &cobra.Command{
	Use:   "fail [entry-id] [cause]",
	Short: "Record a failed processing attempt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		entry, err := wire.WebhookService().RecordFailure(NewContext(), id, args[1])
		if err != nil {
			return fmt.Errorf("failed to record failure: %w", err)
		}
		fmt.Printf("%s Entry %d failed %d time(s)\n", warnMark, entry.ID, entry.Attempts)
		return nil
	},
}

// readPayload reads file, or stdin when file is "" or "-".
func readPayload(file string, stdin io.Reader) ([]byte, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return data, nil
}

func init() {
	webhookReceiveCmd.Flags().StringP("file", "f", "", "Payload file (default stdin)")
	webhookReceiveCmd.Flags().String("signature", "", "Gateway signature header")

	webhookListCmd.Flags().Int64("order-code", 0, "Show every entry of this order code")
	webhookListCmd.Flags().Int("limit", 50, "Maximum pending entries")

	webhookCmd.AddCommand(webhookReceiveCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookProcessedCmd)
	webhookCmd.AddCommand(webhookFailCmd)
}

// WebhookCmd returns the webhook command
func WebhookCmd() *cobra.Command {
	return webhookCmd
}
