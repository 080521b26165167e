package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/counsel-tools/prep-cli/internal/export"
	"github.com/counsel-tools/prep-cli/internal/ingest"
	"github.com/counsel-tools/prep-cli/internal/model"
)

var (
	genSubject  string
	genCase     string
	genProfile  string
	genCategory string
	genOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate prep questions from case documents",
	Long:  "Creates a session, ingests the given documents, generates questions, and prints a markdown briefing.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Store.Create(ctx, genSubject, genCase)
		if err != nil {
			return err
		}

		var files []ingest.File
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files = append(files, ingest.File{
				Name:     filepath.Base(path),
				Category: genCategory,
				Content:  content,
			})
		}

		if _, err := env.Ingestor.Ingest(ctx, sess.ID, files); err != nil {
			return err
		}

		profile := model.ProfileFor(genProfile)
		sess, err = env.Generator.Generate(ctx, sess.ID, profile)
		if err != nil {
			return err
		}

		zap.L().Info("generation complete",
			zap.String("session_id", sess.ID),
			zap.Int("questions", len(sess.Questions)),
			zap.Bool("used_fallback", sess.UsedFallback),
		)

		markdown := export.Markdown(sess, profile)
		if genOutput != "" {
			if err := os.WriteFile(genOutput, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", genOutput, err)
			}
			fmt.Printf("wrote %s (session %s)\n", genOutput, sess.ID)
			return nil
		}
		fmt.Print(markdown)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genSubject, "subject", "", "name of the witness or deponent (required)")
	generateCmd.Flags().StringVar(&genCase, "case", "", "case name")
	generateCmd.Flags().StringVar(&genProfile, "profile", "witness", "subject profile: witness or deponent")
	generateCmd.Flags().StringVar(&genCategory, "category", "other", "document category for all files")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "write markdown to file instead of stdout")
	generateCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(generateCmd)
}
