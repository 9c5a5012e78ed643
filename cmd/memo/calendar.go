package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventmemo/internal/calendar"
)

var icsCmd = &cobra.Command{
	Use:   "ics [event-id]",
	Short: "Generate an ICS calendar for all events, or one event",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runICS,
}

var calurlCmd = &cobra.Command{
	Use:   "calurl [event-id]",
	Short: "Print a calendar deep link for an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalurl,
}

var (
	icsOut        string
	calurlOutlook bool
)

func init() {
	icsCmd.Flags().StringVar(&icsOut, "out", "", "Write to a file instead of stdout")
	calurlCmd.Flags().BoolVar(&calurlOutlook, "outlook", false, "Emit an Outlook link instead of Google Calendar")
}

func runICS(cmd *cobra.Command, args []string) error {
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}

	var content string
	if len(args) == 1 {
		event, err := findEvent(events, args[0])
		if err != nil {
			return err
		}
		content = calendar.GenerateSingleEventICS(*event)
	} else {
		content = calendar.GenerateICS(events)
	}

	if icsOut != "" {
		if err := os.WriteFile(icsOut, []byte(content), 0600); err != nil {
			return fmt.Errorf("write ics file: %w", err)
		}
		fmt.Printf("Wrote %s\n", icsOut)
		return nil
	}
	fmt.Print(content)
	return nil
}

func runCalurl(cmd *cobra.Command, args []string) error {
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}
	event, err := findEvent(events, args[0])
	if err != nil {
		return err
	}
	var url string
	if calurlOutlook {
		url = calendar.OutlookCalendarURL(*event)
	} else {
		url = calendar.GoogleCalendarURL(*event)
	}
	fmt.Println(url)
	return nil
}
