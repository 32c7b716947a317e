package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initDrop bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	Long:  `Creates the pgvector extension and all tables. With --drop, existing tables are removed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.SchemaStore.InitSchema(cmd.Context(), initDrop); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		fmt.Printf("%s schema ready\n", color.GreenString("OK"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initDrop, "drop", false, "Drop existing tables first")
}
