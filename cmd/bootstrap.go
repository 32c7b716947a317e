package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mailsift/internal/clix"
	"mailsift/internal/services"
	"mailsift/internal/tasks"
)

var (
	bootstrapMessages   string
	bootstrapCategories string
	bootstrapDrop       bool
	bootstrapClassify   bool
	bootstrapAsync      bool
	bootstrapStrategy   string
	bootstrapTopN       int
	bootstrapThreshold  float64
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Initialize the schema and seed it from JSONL files",
	Long: `Creates the database schema, imports categories and messages from
JSONL files, and optionally classifies every imported message. Categories
import before messages so auto-classification has targets to match.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		strategy, err := clix.ParseStrategy(cmd.Flags())
		if err != nil {
			return err
		}

		result, err := appInstance.BootstrapService.Bootstrap(ctx, services.BootstrapOptions{
			MessagesFile:   bootstrapMessages,
			CategoriesFile: bootstrapCategories,
			DropExisting:   bootstrapDrop,
			AutoClassify:   bootstrapClassify && !bootstrapAsync,
			Strategy: services.StrategyOptions{
				Strategy:  strategy,
				TopN:      bootstrapTopN,
				Threshold: bootstrapThreshold,
			},
		})
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}

		// With --async, classification goes to the queue instead of
		// running inline.
		if bootstrapClassify && bootstrapAsync {
			msgs, err := appInstance.MessagesService.ListMessages(ctx, 0, 0)
			if err != nil {
				return fmt.Errorf("list messages for classification: %w", err)
			}
			for _, msg := range msgs {
				task, err := tasks.NewClassifyMessageTask(tasks.ClassifyMessagePayload{
					MessageID: msg.ID,
					Strategy:  strategy,
					TopN:      bootstrapTopN,
					Threshold: bootstrapThreshold,
				})
				if err != nil {
					return err
				}
				if _, err := appInstance.JobClient().EnqueueContext(ctx, task); err != nil {
					return fmt.Errorf("enqueue classification of %s: %w", msg.ID, err)
				}
			}
			fmt.Printf("Queued classification of %d messages\n", len(msgs))
		}

		fmt.Printf("%s imported %d categories, %d messages\n",
			color.GreenString("OK"), result.TotalCategories, result.TotalMessages)
		if bootstrapClassify && !bootstrapAsync {
			fmt.Printf("Classified %d of %d messages\n", result.TotalClassified, result.TotalMessages)
		}

		if len(result.PreviewCategories) > 0 {
			fmt.Println("\nCategories:")
			for _, cat := range result.PreviewCategories {
				fmt.Printf("  [%d] %s: %s\n", cat.ID, cat.Name, cat.Description)
			}
			if result.TotalCategories > len(result.PreviewCategories) {
				fmt.Printf("  ... and %d more\n", result.TotalCategories-len(result.PreviewCategories))
			}
		}
		if len(result.PreviewMessages) > 0 {
			fmt.Println("\nMessages:")
			for _, msg := range result.PreviewMessages {
				fmt.Printf("  %s  %s\n", msg.ID, msg.Subject)
			}
			if result.TotalMessages > len(result.PreviewMessages) {
				fmt.Printf("  ... and %d more\n", result.TotalMessages-len(result.PreviewMessages))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().StringVar(&bootstrapMessages, "messages", "", "Path to a JSONL file of messages")
	bootstrapCmd.Flags().StringVar(&bootstrapCategories, "categories", "", "Path to a JSONL file of categories")
	bootstrapCmd.Flags().BoolVar(&bootstrapDrop, "drop", false, "Drop existing tables before creating the schema")
	bootstrapCmd.Flags().BoolVar(&bootstrapClassify, "classify", false, "Classify every imported message after import")
	bootstrapCmd.Flags().BoolVar(&bootstrapAsync, "async", false, "With --classify, enqueue background tasks instead of classifying inline")
	bootstrapCmd.Flags().StringVar(&bootstrapStrategy, "strategy", "", "Classification strategy for --classify (embedding or llm)")
	bootstrapCmd.Flags().IntVar(&bootstrapTopN, "top-n", 0, "Maximum categories per message for --classify; defaults to config")
	bootstrapCmd.Flags().Float64Var(&bootstrapThreshold, "threshold", 0, "Minimum score for --classify; defaults to config")
}
