// Package cmd hosts the CLI. Every subcommand shares one application
// instance built in PersistentPreRunE and carried through the command
// context.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mailsift/internal/app"
	"mailsift/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mailsift",
	Short: "Classify mail-style messages into user-defined categories",
	Long: `mailsift assigns user-defined categories to free-text messages using
either embedding similarity or a single-shot LLM evaluation, and keeps
one classification record per (message, category) pair.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "version", "completion":
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a, err := GetAppFromContext(cmd.Context()); err == nil {
			a.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the shared application instance stored by
// PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database connectivity and provider configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Checking database connectivity...")
		if err := appInstance.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("Database connection successful.")

		fmt.Printf("Embedding provider: %s (model %s, %d dimensions)\n",
			appInstance.Provider.Name(), appInstance.Provider.ModelName(), appInstance.Provider.Dimension())
		fmt.Printf("Default strategy: %s (top_n=%d, threshold=%.2f)\n",
			appInstance.Config.Classification.Strategy,
			appInstance.Config.Classification.TopN,
			appInstance.Config.Classification.Threshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
