package cmd

import (
	"fmt"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsift/internal/clix"
	"mailsift/internal/services"
	"mailsift/internal/tasks"
)

var (
	classifyStrategy  string
	classifyTopN      int
	classifyThreshold float64
	classifyAll       bool
	classifyAsync     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message-id]",
	Short: "Classify a message against all categories",
	Long: `Runs the selected classification strategy for one message (or every
stored message with --all) and stores one record per matching category.
Re-running over the same message updates records in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		if !classifyAll && len(args) == 0 {
			return fmt.Errorf("a message id is required unless --all is given")
		}
		if classifyAll && len(args) > 0 {
			return fmt.Errorf("--all and an explicit message id are mutually exclusive")
		}

		strategy, err := clix.ParseStrategy(cmd.Flags())
		if err != nil {
			return err
		}
		opts := services.StrategyOptions{
			Strategy:  strategy,
			TopN:      classifyTopN,
			Threshold: classifyThreshold,
		}

		var ids []string
		if classifyAll {
			msgs, err := appInstance.MessagesService.ListMessages(ctx, 0, 0)
			if err != nil {
				return fmt.Errorf("list messages: %w", err)
			}
			for _, m := range msgs {
				ids = append(ids, m.ID)
			}
		} else {
			ids = args
		}

		if classifyAsync {
			for _, id := range ids {
				task, err := tasks.NewClassifyMessageTask(tasks.ClassifyMessagePayload{
					MessageID: id,
					Strategy:  opts.Strategy,
					TopN:      opts.TopN,
					Threshold: opts.Threshold,
				})
				if err != nil {
					return err
				}
				info, err := appInstance.JobClient().EnqueueContext(ctx, task)
				if err != nil {
					return fmt.Errorf("enqueue classification of %s: %w", id, err)
				}
				fmt.Printf("queued %s (task %s)\n", id, info.ID)
			}
			return nil
		}

		failed := 0
		for _, id := range ids {
			resp, err := appInstance.ClassificationService.ClassifyMessage(ctx, id, opts)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				if classifyAll {
					log.Warnf("classification of message %s failed, skipping: %v", id, err)
					failed++
					continue
				}
				return err
			}
			printClassifyResponse(resp)
		}
		if failed > 0 {
			fmt.Printf("%s %d messages failed to classify\n", color.YellowString("WARN"), failed)
		}
		return nil
	},
}

func printClassifyResponse(resp *services.ClassifyResponse) {
	if len(resp.Classifications) == 0 {
		fmt.Printf("%s: no matching categories\n", resp.MessageID)
		return
	}
	fmt.Printf("%s:\n", resp.MessageID)
	for _, entry := range resp.Classifications {
		fmt.Printf("  %s %s (%.4f)\n      %s\n",
			color.GreenString("->"), entry.CategoryName, entry.Score, entry.Explanation)
	}
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyStrategy, "strategy", "", "Strategy to use (embedding or llm); defaults to config")
	classifyCmd.Flags().IntVar(&classifyTopN, "top-n", 0, "Maximum categories to assign; defaults to config")
	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", 0, "Minimum score to count as a match; defaults to config")
	classifyCmd.Flags().BoolVar(&classifyAll, "all", false, "Classify every stored message")
	classifyCmd.Flags().BoolVar(&classifyAsync, "async", false, "Enqueue background tasks instead of classifying inline")
}
