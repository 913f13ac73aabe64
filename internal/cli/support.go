package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ctxutil"
	"github.com/example/garage/internal/wire"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Store and read user notifications",
}

var notifySendCmd = &cobra.Command{
	Use:   "send [user-id] [title] [content]",
	Short: "Store a notification for a user",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		n, err := wire.NotificationService().Notify(NewContext(), args[0], args[1], args[2], kind)
		if err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}
		fmt.Printf("%s Notification %s stored for %s\n", okMark, n.ID, n.UserID)
		return nil
	},
}

var notifyListCmd = &cobra.Command{
	Use:   "list [user-id]",
	Short: "List a user's notifications, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unread, _ := cmd.Flags().GetBool("unread")
		items, err := wire.NotificationService().ListNotifications(NewContext(), args[0], unread)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tTITLE\tREAD\tCREATED")
		fmt.Fprintln(w, "--\t----\t-----\t----\t-------")
		for _, n := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", n.ID, orDash(n.Type), n.Title, n.IsRead, n.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		return nil
	},
}

var notifyReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.NotificationService().MarkRead(NewContext(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s Notification %s read\n", okMark, args[0])
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent system and security log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := wire.AuditService().Recent(NewContext(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No log entries.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tLEVEL\tSOURCE\tUSER\tMESSAGE")
		fmt.Fprintln(w, "----\t-----\t------\t----\t-------")
		for _, e := range entries {
			level := e.Level
			if e.Security {
				level = fmt.Sprintf("%s/%s", e.Level, orDash(e.Outcome))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), level, orDash(e.Source), orDash(e.UserID), e.Message)
		}
		w.Flush()
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Store AI assistant conversations",
}

var chatStartCmd = &cobra.Command{
	Use:   "start [title]",
	Short: "Open a conversation for the acting user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		userID := ctxutil.ActorFromContext(ctx)
		if userID == "" {
			return fmt.Errorf("no acting user: pass --as or set %s", ctxutil.ActorEnv)
		}
		vehicleID, _ := cmd.Flags().GetString("vehicle")

		c, err := wire.ChatService().StartConversation(ctx, userID, vehicleID, args[0])
		if err != nil {
			return fmt.Errorf("failed to start conversation: %w", err)
		}
		fmt.Printf("%s Conversation %s started\n", okMark, c.ID)
		return nil
	},
}

var chatSayCmd = &cobra.Command{
	Use:   "say [conversation-id] [message]",
	Short: "Append a message to a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		suggested, _ := cmd.Flags().GetString("suggest")
		id, err := wire.ChatService().AppendMessage(NewContext(), args[0], role, args[1], suggested)
		if err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
		fmt.Printf("%s Message %d stored\n", okMark, id)
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Print a conversation in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := wire.ChatService().ListMessages(NewContext(), args[0])
		if err != nil {
			return err
		}
		for _, m := range messages {
			fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.Role, m.Content)
			if m.SuggestedServiceID != "" {
				fmt.Printf("        suggested service %s\n", m.SuggestedServiceID)
			}
		}
		return nil
	},
}

var chatCloseCmd = &cobra.Command{
	Use:   "close [conversation-id]",
	Short: "Close a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.ChatService().CloseConversation(NewContext(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s Conversation %s closed\n", okMark, args[0])
		return nil
	},
}

func init() {
	notifySendCmd.Flags().String("type", "", "Notification type")
	notifyListCmd.Flags().Bool("unread", false, "Only unread notifications")
	notifyCmd.AddCommand(notifySendCmd)
	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyReadCmd)

	auditCmd.Flags().IntP("limit", "n", 20, "Number of entries")

	chatStartCmd.Flags().String("vehicle", "", "Vehicle the conversation is about")
	chatSayCmd.Flags().String("role", "user", "Message role (user|assistant|system)")
	chatSayCmd.Flags().String("suggest", "", "Suggested service ID")
	chatCmd.AddCommand(chatStartCmd)
	chatCmd.AddCommand(chatSayCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatCloseCmd)
}

// NotifyCmd returns the notify command
func NotifyCmd() *cobra.Command {
	return notifyCmd
}

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	return auditCmd
}

// ChatCmd returns the chat command
func ChatCmd() *cobra.Command {
	return chatCmd
}
