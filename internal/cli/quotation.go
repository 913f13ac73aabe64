package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var quotationCmd = &cobra.Command{
	Use:   "quotation",
	Short: "Manage quotations",
}

var quotationCreateCmd = &cobra.Command{
	Use:   "create [customer-id]",
	Short: "Create a quotation from an inspection, order or request",
	Long: `Price the proposed lines from the catalog and store a pending quotation.
At least one of --inspection, --order and --request is required.

Lines are SERVICE-ID or SERVICE-ID=PART-ID:qty,PART-ID:qty.

Examples:
  garage quotation create USR-1 --order RO-1 --line SVC-PAINT=PART-PRIMER:1 --promo SPRING10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inspectionID, _ := cmd.Flags().GetString("inspection")
		orderID, _ := cmd.Flags().GetString("order")
		requestID, _ := cmd.Flags().GetString("request")
		promo, _ := cmd.Flags().GetString("promo")
		note, _ := cmd.Flags().GetString("note")
		validUntil, _ := cmd.Flags().GetString("valid-until")
		lineArgs, _ := cmd.Flags().GetStringArray("line")

		until, err := optionalTime(validUntil)
		if err != nil {
			return err
		}
		lines, err := parseQuotationLines(lineArgs)
		if err != nil {
			return err
		}

		q, err := wire.QuotationService().CreateQuotation(NewContext(), primary.CreateQuotationRequest{
			InspectionID:    inspectionID,
			RepairOrderID:   orderID,
			RepairRequestID: requestID,
			CustomerID:      args[0],
			PromotionCode:   promo,
			Note:            note,
			ValidUntil:      until,
			Lines:           lines,
		})
		if err != nil {
			return fmt.Errorf("failed to create quotation: %w", err)
		}

		fmt.Printf("%s Created quotation %s\n", okMark, q.ID)
		fmt.Printf("  Subtotal: %s\n", money.Format(q.SubtotalCents))
		if q.DiscountCents > 0 {
			fmt.Printf("  Discount: -%s\n", money.Format(q.DiscountCents))
		}
		fmt.Printf("  Total:    %s\n", money.Format(q.TotalCents))
		if q.PromotionNote != "" {
			fmt.Printf("%s Promotion not applied: %s\n", warnMark, q.PromotionNote)
		}
		return nil
	},
}

var quotationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quotations of a customer or an order",
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		orderID, _ := cmd.Flags().GetString("order")
		status, _ := cmd.Flags().GetString("status")

		quotes, err := wire.QuotationService().ListQuotations(NewContext(), customerID, orderID, status)
		if err != nil {
			return fmt.Errorf("failed to list quotations: %w", err)
		}
		if len(quotes) == 0 {
			fmt.Println("No quotations found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tSTATUS\tTOTAL\tVALID UNTIL")
		fmt.Fprintln(w, "--\t--------\t------\t-----\t-----------")
		for _, q := range quotes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", q.ID, q.CustomerID, q.Status, money.Format(q.TotalCents), formatTime(q.ValidUntil))
		}
		w.Flush()
		return nil
	},
}

var quotationShowCmd = &cobra.Command{
	Use:   "show [quotation-id]",
	Short: "Show a quotation with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := wire.QuotationService().GetQuotation(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("quotation not found: %w", err)
		}

		fmt.Printf("Quotation: %s\n", q.ID)
		fmt.Printf("Customer: %s\n", q.CustomerID)
		fmt.Printf("Status: %s\n", q.Status)
		if q.InspectionID != "" {
			fmt.Printf("Inspection: %s\n", q.InspectionID)
		}
		if q.RepairOrderID != "" {
			fmt.Printf("Order: %s\n", q.RepairOrderID)
		}
		if q.RepairRequestID != "" {
			fmt.Printf("Request: %s\n", q.RepairRequestID)
		}
		fmt.Printf("Subtotal: %s\n", money.Format(q.SubtotalCents))
		fmt.Printf("Discount: %s\n", money.Format(q.DiscountCents))
		fmt.Printf("Total: %s\n", money.Format(q.TotalCents))
		fmt.Printf("Valid until: %s\n", formatTime(q.ValidUntil))
		fmt.Printf("Sent: %s\n", formatTime(q.SentToCustomerAt))
		fmt.Printf("Answered: %s\n", formatTime(q.CustomerResponseAt))
		for _, l := range q.Lines {
			fmt.Printf("  - %s selected=%t required=%t\n", l.ServiceID, l.IsSelected, l.IsRequired)
			for _, p := range l.Parts {
				fmt.Printf("      %s x%d\n", p.PartID, p.Quantity)
			}
		}
		return nil
	},
}

var quotationSendCmd = &cobra.Command{
	Use:   "send [quotation-id]",
	Short: "Send a pending quotation to the customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.QuotationService().Send(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to send quotation: %w", err)
		}
		fmt.Printf("%s Sent quotation %s\n", okMark, args[0])
		return nil
	},
}

var quotationApproveCmd = &cobra.Command{
	Use:   "approve [quotation-id]",
	Short: "Record the customer's approval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return respondQuotation(cmd, args[0], true)
	},
}

var quotationRejectCmd = &cobra.Command{
	Use:   "reject [quotation-id]",
	Short: "Record the customer's rejection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return respondQuotation(cmd, args[0], false)
	},
}

var quotationExpireCmd = &cobra.Command{
	Use:   "expire [quotation-id]",
	Short: "Expire an unanswered quotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.QuotationService().Expire(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to expire quotation: %w", err)
		}
		fmt.Printf("%s Expired quotation %s\n", okMark, args[0])
		return nil
	},
}

func respondQuotation(cmd *cobra.Command, id string, approve bool) error {
	note, _ := cmd.Flags().GetString("note")
	if err := wire.QuotationService().Respond(NewContext(), id, approve, note); err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	outcome := "rejected"
	if approve {
		outcome = "approved"
	}
	fmt.Printf("%s Quotation %s %s\n", okMark, id, outcome)
	return nil
}

// parseQuotationLines parses "SVC" or "SVC=PART:qty,PART:qty". Every line
// and part given on the command line is selected.
func parseQuotationLines(values []string) ([]primary.QuotationLine, error) {
	lines := make([]primary.QuotationLine, 0, len(values))
	for _, v := range values {
		serviceID, partList, hasParts := strings.Cut(v, "=")
		if serviceID == "" {
			return nil, fmt.Errorf("invalid quotation line %q", v)
		}
		line := primary.QuotationLine{ServiceID: serviceID, IsSelected: true}
		if hasParts {
			parts, err := parsePartQuantities(strings.Split(partList, ","))
			if err != nil {
				return nil, err
			}
			for _, p := range parts {
				line.Parts = append(line.Parts, primary.QuotationPart{PartID: p.PartID, Quantity: p.Quantity, IsSelected: true})
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func init() {
	quotationCreateCmd.Flags().String("inspection", "", "Originating inspection")
	quotationCreateCmd.Flags().String("order", "", "Originating repair order")
	quotationCreateCmd.Flags().String("request", "", "Originating repair request")
	quotationCreateCmd.Flags().String("promo", "", "Promotion code")
	quotationCreateCmd.Flags().String("note", "", "Note")
	quotationCreateCmd.Flags().String("valid-until", "", "Validity end")
	quotationCreateCmd.Flags().StringArray("line", nil, "Service line (repeatable)")

	quotationListCmd.Flags().String("customer", "", "Filter by customer")
	quotationListCmd.Flags().String("order", "", "Filter by order")
	quotationListCmd.Flags().StringP("status", "s", "", "Filter by status")

	quotationApproveCmd.Flags().String("note", "", "Customer note")
	quotationRejectCmd.Flags().String("note", "", "Customer note")

	quotationCmd.AddCommand(quotationCreateCmd)
	quotationCmd.AddCommand(quotationListCmd)
	quotationCmd.AddCommand(quotationShowCmd)
	quotationCmd.AddCommand(quotationSendCmd)
	quotationCmd.AddCommand(quotationApproveCmd)
	quotationCmd.AddCommand(quotationRejectCmd)
	quotationCmd.AddCommand(quotationExpireCmd)
}

// QuotationCmd returns the quotation command
func QuotationCmd() *cobra.Command {
	return quotationCmd
}
