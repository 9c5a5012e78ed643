package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete completed events",
	Long: `Delete every completed event from the store. 'memo list' nudges once
a month when completed events have piled up; pass --skip to silence
that nudge for the current month without deleting anything.`,
	RunE: runCleanup,
}

var cleanupSkip bool

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupSkip, "skip", false, "Silence this month's cleanup nudge instead of deleting")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if cleanupSkip {
		if err := theApp.keeper.SkipCleanupThisMonth(time.Now()); err != nil {
			return err
		}
		fmt.Println("Cleanup nudge silenced for this month")
		return nil
	}

	if err := requireUnlock(); err != nil {
		return err
	}
	removed, err := theApp.store.DeleteCompleted()
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Println("No completed events to delete")
		return nil
	}
	fmt.Printf("Deleted %d completed event(s)\n", removed)
	return nil
}
