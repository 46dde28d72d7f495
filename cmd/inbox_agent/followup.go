package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karan/inbox-agent/internal/followup"
)

var followupCommand = &cobra.Command{
	Use:   "followup",
	Short: "Draft follow-up notes for stale applications",
	RunE:  runFollowup,
}

func init() {
	rootCmd.AddCommand(followupCommand)
}

func runFollowup(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	scanner := &followup.Scanner{
		Store:  a.store,
		Client: a.client,
		Logger: a.logger,
	}
	notes, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Println("Nothing needs a follow-up right now.")
		return nil
	}
	for _, note := range notes {
		fmt.Printf("%s at %s:\n%s\n\n", note.Role, note.Company, note.Text)
	}
	return nil
}
