package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karan/inbox-agent/internal/pipeline"
	"github.com/karan/inbox-agent/internal/telegram"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the application pipeline once",
	Long: `Runs the full pipeline for a single job posting: extraction, template
selection, mutation, compilation, drafts, and persistence. Input is a text
file, a URL, or a screenshot image.`,
	RunE: runOnce,
}

var (
	runTextPath     string
	runURL          string
	runImagePath    string
	runSkipUpload   bool
	runSkipCalendar bool
)

func init() {
	runCommand.Flags().StringVarP(&runTextPath, "text", "t", "", "Path to a job posting text file")
	runCommand.Flags().StringVarP(&runURL, "url", "u", "", "Job posting URL")
	runCommand.Flags().StringVarP(&runImagePath, "image", "i", "", "Path to a job posting screenshot")
	runCommand.Flags().BoolVar(&runSkipUpload, "skip-upload", false, "Skip the Drive upload")
	runCommand.Flags().BoolVar(&runSkipCalendar, "skip-calendar", false, "Skip the follow-up calendar event")
	rootCmd.AddCommand(runCommand)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	set := 0
	for _, v := range []string{runTextPath, runURL, runImagePath} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("provide exactly one of --text, --url, or --image")
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	in := pipeline.Input{
		SkipUpload:   runSkipUpload,
		SkipCalendar: runSkipCalendar,
	}
	switch {
	case runTextPath != "":
		raw, err := os.ReadFile(runTextPath)
		if err != nil {
			return fmt.Errorf("failed to read posting file: %w", err)
		}
		in.RawText = string(raw)
	case runURL != "":
		in.RawText = runURL
	case runImagePath != "":
		in.ImagePath = runImagePath
	}

	pack := a.pipeline.Run(ctx, in)
	fmt.Println(telegram.FormatPack(pack))
	if pack.OCRRejection != nil {
		return fmt.Errorf("screenshot rejected: %s", pack.OCRRejection.Reason)
	}
	return nil
}
