// Package main provides the entry point for the inbox agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inbox_agent",
	Short: "Job-application automation agent",
	Long:  "inbox_agent turns job postings (text, URL, or screenshot) into tailored resume PDFs, outreach drafts, and tracked applications.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
