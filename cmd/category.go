package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage classification categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name> <description>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cat, err := appInstance.CategoriesService.CreateCategory(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s created category %d (%s)\n", color.GreenString("OK"), cat.ID, cat.Name)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		categories, err := appInstance.CategoriesService.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			fmt.Println("No categories defined.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Description", "Embedded"})
		table.SetBorder(true)
		table.SetRowLine(true)
		for _, cat := range categories {
			embedded := "no"
			if cat.HasEmbedding() {
				embedded = "yes"
			}
			table.Append([]string{
				strconv.FormatInt(cat.ID, 10),
				cat.Name,
				cat.Description,
				embedded,
			})
		}
		table.Render()
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category and its classification records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("category id must be an integer: %q", args[0])
		}
		if err := appInstance.CategoriesService.DeleteCategory(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("%s deleted category %d\n", color.GreenString("OK"), id)
		return nil
	},
}

var categoryMessagesCmd = &cobra.Command{
	Use:   "messages <id>",
	Short: "List the messages assigned to a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("category id must be an integer: %q", args[0])
		}
		cat, err := appInstance.CategoriesService.GetCategory(cmd.Context(), id)
		if err != nil {
			return err
		}
		msgs, err := appInstance.MessagesService.ListMessagesByCategory(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Messages in %q (%d):\n", cat.Name, len(msgs))
		for _, msg := range msgs {
			fmt.Printf("  %s  %s\n", msg.ID, msg.Subject)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRemoveCmd)
	categoryCmd.AddCommand(categoryMessagesCmd)
}
