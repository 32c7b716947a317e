package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mailsift/internal/clix"
)

var (
	messageListLimit  int
	messageListOffset int
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Inspect and manage stored messages",
}

var messageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		pagination := clix.ParsePagination(cmd.Flags())
		msgs, err := appInstance.MessagesService.ListMessages(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Println("No messages stored.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Subject", "From", "Date"})
		table.SetBorder(true)
		for _, msg := range msgs {
			date := "N/A"
			if msg.Date != nil {
				date = msg.Date.Format(time.RFC3339)
			}
			table.Append([]string{msg.ID, msg.Subject, msg.Sender, date})
		}
		table.Render()
		return nil
	},
}

var messageShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one message and its category assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		msg, err := appInstance.MessagesService.GetMessage(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", msg.ID)
		fmt.Printf("Subject: %s\n", msg.Subject)
		fmt.Printf("From:    %s\n", msg.Sender)
		if len(msg.To) > 0 {
			fmt.Printf("To:      %s\n", strings.Join(msg.To, ", "))
		}
		if msg.Date != nil {
			fmt.Printf("Date:    %s\n", msg.Date.Format(time.RFC3339))
		}
		if preview := msg.Preview(200); preview != "" {
			fmt.Printf("Body:    %s\n", preview)
		}

		assignments, err := appInstance.CategoriesService.ListAssignmentsForMessage(ctx, msg.ID)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			fmt.Println("\nNo category assignments.")
			return nil
		}
		fmt.Println("\nCategories:")
		for _, a := range assignments {
			fmt.Printf("  %s %s (%.4f, %s)\n",
				color.GreenString("->"), a.CategoryName, a.Score, a.ClassifiedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var messageRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a message and its classification records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.MessagesService.DeleteMessage(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s deleted message %s\n", color.GreenString("OK"), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(messageCmd)
	messageCmd.AddCommand(messageListCmd)
	messageCmd.AddCommand(messageShowCmd)
	messageCmd.AddCommand(messageRemoveCmd)
	messageListCmd.Flags().IntVar(&messageListLimit, "limit", 50, "Maximum messages to list (0 for all)")
	messageListCmd.Flags().IntVar(&messageListOffset, "offset", 0, "Messages to skip")
}
