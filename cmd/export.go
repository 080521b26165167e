package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/counsel-tools/prep-cli/internal/export"
	"github.com/counsel-tools/prep-cli/internal/model"
)

var (
	exportProfile string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session as a markdown briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Store.Get(ctx, args[0])
		if err != nil {
			return err
		}

		markdown := export.Markdown(sess, model.ProfileFor(exportProfile))
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", exportOutput, err)
			}
			fmt.Printf("wrote %s\n", exportOutput)
			return nil
		}
		fmt.Print(markdown)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportProfile, "profile", "witness", "subject profile: witness or deponent")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write markdown to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
