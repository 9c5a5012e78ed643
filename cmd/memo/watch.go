package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventmemo/internal/reminder"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the reminder watch loop",
	Long: `Sweep the store on the configured cadence and surface due reminders
one at a time. Press enter to dismiss the current reminder and advance
to the next queued one; ctrl-c exits.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	manager := reminder.NewManager(theApp.kv, theApp.store.Load)

	stdin := bufio.NewReader(os.Stdin)
	present := func(item reminder.Item, dismiss func() *reminder.Item) {
		for {
			printReminder(item)
			fmt.Print("press enter to dismiss... ")
			stdin.ReadString('\n')
			next := dismiss()
			if next == nil {
				return
			}
			// A short pause before the next reminder, as the modal UI does.
			time.Sleep(300 * time.Millisecond)
			item = *next
		}
	}

	watcher, err := reminder.NewWatcher(manager, theApp.cfg.ScanSchedule, present)
	if err != nil {
		return err
	}

	watcher.Start()
	defer watcher.Stop()
	watcher.Poke()

	fmt.Printf("Watching for reminders (%s); ctrl-c to exit\n", theApp.cfg.ScanSchedule)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func printReminder(item reminder.Item) {
	var what string
	switch item.Kind {
	case reminder.KindStep:
		what = fmt.Sprintf("step %q of %q", item.StepContent, item.EventTitle)
	case reminder.KindStart:
		what = fmt.Sprintf("%q starts", item.EventTitle)
	default:
		what = fmt.Sprintf("%q is due", item.EventTitle)
	}

	fmt.Printf("\n*** REMINDER: %s (scheduled %s)", what, item.ScheduledTime.Format("15:04"))
	if item.Overdue {
		fmt.Printf(", overdue by %s", reminder.FormatOverdue(item.OverdueMinutes))
	}
	fmt.Println()
}
