package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Record and settle order payments",
}

var paymentRecordCmd = &cobra.Command{
	Use:   "record [order-id] [amount]",
	Short: "Record a pending payment against an active order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		method, _ := cmd.Flags().GetString("method")
		orderCode, _ := cmd.Flags().GetInt64("order-code")

		p, err := wire.PaymentService().RecordPayment(NewContext(), primary.RecordPaymentRequest{
			RepairOrderID: args[0],
			UserID:        userID,
			Amount:        args[1],
			Method:        method,
			OrderCode:     orderCode,
		})
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		fmt.Printf("%s Recorded payment %s of %s (%s)\n", okMark, p.ID, money.Format(p.AmountCents), p.Status)
		return nil
	},
}

var paymentPaidCmd = &cobra.Command{
	Use:   "paid [payment-id]",
	Short: "Settle a pending payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := wire.PaymentService().MarkPaid(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to settle payment: %w", err)
		}
		fmt.Printf("%s Payment %s settled (%s)\n", okMark, p.ID, money.Format(p.AmountCents))
		return nil
	},
}

var paymentFailedCmd = &cobra.Command{
	Use:   "failed [payment-id]",
	Short: "Mark a payment failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.PaymentService().MarkFailed(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		fmt.Printf("%s Payment %s marked failed\n", warnMark, args[0])
		return nil
	},
}

var paymentListCmd = &cobra.Command{
	Use:   "list [order-id]",
	Short: "List the payments of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payments, err := wire.PaymentService().ListPayments(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		if len(payments) == 0 {
			fmt.Println("No payments found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tAMOUNT\tMETHOD\tSTATUS\tORDER CODE\tPAID AT")
		fmt.Fprintln(w, "--\t------\t------\t------\t----------\t-------")
		for _, p := range payments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, money.Format(p.AmountCents), p.Method, p.Status, p.OrderCode, formatTime(p.PaidAt))
		}
		w.Flush()
		return nil
	},
}

var promotionCmd = &cobra.Command{
	Use:   "promotion",
	Short: "Manage promotions",
}

var promotionCreateCmd = &cobra.Command{
	Use:   "create [code] [name]",
	Short: "Create a promotion",
	Long: `Create a percentage or fixed-amount promotion.

Examples:
  garage promotion create SPRING10 "Spring sale" --percent 10 --max 250 --min-order 1000
  garage promotion create WELCOME "Welcome" --amount 50 --limit 100`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		percent, _ := cmd.Flags().GetInt("percent")
		amount, _ := cmd.Flags().GetString("amount")
		maxDiscount, _ := cmd.Flags().GetString("max")
		minOrder, _ := cmd.Flags().GetString("min-order")
		starts, _ := cmd.Flags().GetString("starts")
		ends, _ := cmd.Flags().GetString("ends")

		req := primary.CreatePromotionRequest{
			Code:        args[0],
			Name:        args[1],
			MaxDiscount: maxDiscount,
			MinOrder:    minOrder,
			StartsAt:    time.Now().UTC(),
		}
		switch {
		case percent > 0 && amount != "":
			return fmt.Errorf("use either --percent or --amount, not both")
		case percent > 0:
			req.DiscountType = "percentage"
			req.DiscountPercent = percent
		case amount != "":
			req.DiscountType = "fixed"
			req.DiscountAmount = amount
		default:
			return fmt.Errorf("one of --percent or --amount is required")
		}
		if starts != "" {
			t, err := parseTime(starts)
			if err != nil {
				return err
			}
			req.StartsAt = t
		}
		endsAt, err := optionalTime(ends)
		if err != nil {
			return err
		}
		req.EndsAt = endsAt
		if cmd.Flags().Changed("limit") {
			limit, _ := cmd.Flags().GetInt("limit")
			req.UsageLimit = &limit
		}

		p, err := wire.PromotionService().CreatePromotion(NewContext(), req)
		if err != nil {
			return fmt.Errorf("failed to create promotion: %w", err)
		}
		fmt.Printf("%s Created promotion %s (%s)\n", okMark, p.Code, p.DiscountType)
		return nil
	},
}

var promotionShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show a promotion and its usage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := wire.PromotionService().GetPromotion(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("promotion not found: %w", err)
		}

		fmt.Printf("Promotion: %s (%s)\n", p.Code, p.ID)
		fmt.Printf("Name: %s\n", p.Name)
		if p.DiscountType == "percentage" {
			fmt.Printf("Discount: %d%%\n", p.DiscountPercent)
		} else {
			fmt.Printf("Discount: %s\n", money.Format(p.DiscountAmountCents))
		}
		limit := "unlimited"
		if p.UsageLimit != nil {
			limit = strconv.Itoa(*p.UsageLimit)
		}
		fmt.Printf("Used: %d of %s\n", p.UsedCount, limit)
		fmt.Printf("Active: %t\n", p.IsActive)
		return nil
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Customer feedback on completed orders",
}

var feedbackLeaveCmd = &cobra.Command{
	Use:   "leave [order-id] [rating]",
	Short: "Rate a completed order from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating %q", args[1])
		}
		userID, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")

		fb, err := wire.FeedbackService().LeaveFeedback(NewContext(), args[0], userID, rating, comment)
		if err != nil {
			return fmt.Errorf("failed to leave feedback: %w", err)
		}
		fmt.Printf("%s Feedback %s recorded (%d/5)\n", okMark, fb.ID, fb.Rating)
		return nil
	},
}

var feedbackShowCmd = &cobra.Command{
	Use:   "show [order-id]",
	Short: "Show the feedback of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fb, err := wire.FeedbackService().GetFeedback(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("feedback not found: %w", err)
		}
		fmt.Printf("Order %s rated %d/5 by %s\n", fb.RepairOrderID, fb.Rating, fb.UserID)
		if fb.Comment != "" {
			fmt.Printf("  %q\n", fb.Comment)
		}
		return nil
	},
}

func init() {
	paymentRecordCmd.Flags().String("user", "", "Paying user ID (required)")
	paymentRecordCmd.Flags().String("method", "cash", "Payment method")
	paymentRecordCmd.Flags().Int64("order-code", 0, "Gateway order code")
	paymentRecordCmd.MarkFlagRequired("user")

	paymentCmd.AddCommand(paymentRecordCmd)
	paymentCmd.AddCommand(paymentPaidCmd)
	paymentCmd.AddCommand(paymentFailedCmd)
	paymentCmd.AddCommand(paymentListCmd)

	promotionCreateCmd.Flags().Int("percent", 0, "Percentage discount")
	promotionCreateCmd.Flags().String("amount", "", "Fixed discount amount")
	promotionCreateCmd.Flags().String("max", "", "Cap on a percentage discount")
	promotionCreateCmd.Flags().String("min-order", "", "Minimum order subtotal")
	promotionCreateCmd.Flags().String("starts", "", "Start date (default now)")
	promotionCreateCmd.Flags().String("ends", "", "End date")
	promotionCreateCmd.Flags().Int("limit", 0, "Usage limit")

	promotionCmd.AddCommand(promotionCreateCmd)
	promotionCmd.AddCommand(promotionShowCmd)

	feedbackLeaveCmd.Flags().String("user", "", "Customer user ID (required)")
	feedbackLeaveCmd.Flags().String("comment", "", "Comment")
	feedbackLeaveCmd.MarkFlagRequired("user")

	feedbackCmd.AddCommand(feedbackLeaveCmd)
	feedbackCmd.AddCommand(feedbackShowCmd)
}

// PaymentCmd returns the payment command
func PaymentCmd() *cobra.Command {
	return paymentCmd
}

// PromotionCmd returns the promotion command
func PromotionCmd() *cobra.Command {
	return promotionCmd
}

// FeedbackCmd returns the feedback command
func FeedbackCmd() *cobra.Command {
	return feedbackCmd
}
