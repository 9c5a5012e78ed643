package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"eventmemo/internal/models"
	"eventmemo/internal/ordering"
	"eventmemo/internal/stepgen"
	"eventmemo/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new event",
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events in the quadrant view",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [event-id]",
	Short: "Show event details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var doneCmd = &cobra.Command{
	Use:   "done [event-id]",
	Short: "Mark an event completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:   "rm [event-id]...",
	Short: "Delete events",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

var moveCmd = &cobra.Command{
	Use:   "move [event-id] up|down",
	Short: "Move an event within its priority bucket",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

var (
	addTitle       string
	addDesc        string
	addCategory    string
	addPriority    int
	addStart       string
	addDeadline    string
	addRemindStart bool
	addRemindDead  bool
	addNoSteps     bool
	listAll        bool
	listCompleted  bool
	doneUndo       bool
)

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "Event title (required)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Event description; lines become generated steps")
	addCmd.Flags().StringVar(&addCategory, "category", string(models.CategoryOther), "Event category")
	addCmd.Flags().IntVar(&addPriority, "priority", 4, "Priority quadrant 1-4 (1 = urgent+important)")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start time (2006-01-02 15:04 or RFC3339)")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "Deadline (2006-01-02 15:04 or RFC3339)")
	addCmd.Flags().BoolVar(&addRemindStart, "remind-start", false, "Enable the start time reminder")
	addCmd.Flags().BoolVar(&addRemindDead, "remind-deadline", false, "Enable the deadline reminder")
	addCmd.Flags().BoolVar(&addNoSteps, "no-steps", false, "Skip generating the step checklist")
	addCmd.MarkFlagRequired("title")

	listCmd.Flags().BoolVar(&listAll, "all", false, "Include completed and expired events")
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "List completed events only")

	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Re-open the event instead")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	if strings.TrimSpace(addTitle) == "" {
		return fmt.Errorf("title must not be empty")
	}
	category := models.Category(addCategory)
	if !category.Valid() {
		return fmt.Errorf("unknown category %q (valid: %s)", addCategory, categoryList())
	}
	if addPriority < models.PriorityMin || addPriority > models.PriorityMax {
		return fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax)
	}

	events, err := theApp.store.Load()
	if err != nil {
		return err
	}

	event := theApp.store.NewEvent(addTitle, addDesc, category, addPriority)
	event.SortOrder = ordering.NextSortOrder(events, addPriority)

	if addStart != "" {
		t, err := parseTime(addStart)
		if err != nil {
			return err
		}
		event.StartTime = &t
		event.StartReminderEnabled = addRemindStart
		if addRemindStart {
			event.StartReminderType = models.ReminderSound
		}
	}
	if addDeadline != "" {
		t, err := parseTime(addDeadline)
		if err != nil {
			return err
		}
		event.Deadline = &t
		event.DeadlineReminderEnabled = addRemindDead
		if addRemindDead {
			event.DeadlineReminderType = models.ReminderSound
		}
	}

	if !addNoSteps {
		event.Steps = stepgen.Generate(category, addTitle, addDesc)
	}

	if err := theApp.store.Add(event); err != nil {
		return err
	}
	fmt.Printf("Created event %s (%d steps)\n", truncateID(event.ID), len(event.Steps))
	return nil
}

var quadrantTitles = map[int]string{
	1: "Q1 urgent + important",
	2: "Q2 important",
	3: "Q3 urgent",
	4: "Q4 neither",
}

var quadrantStyles = map[int]lipgloss.Style{
	1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	4: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func runList(cmd *cobra.Command, args []string) error {
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}

	if listCompleted {
		return printEventTable(store.FilterCompleted(events))
	}

	buckets := ordering.Buckets(events)
	for p := models.PriorityMin; p <= models.PriorityMax; p++ {
		fmt.Println(quadrantStyles[p].Render(quadrantTitles[p]))
		if len(buckets[p]) == 0 {
			fmt.Println(dimStyle.Render("  (none)"))
			continue
		}
		for _, e := range buckets[p] {
			doneSteps := 0
			for _, s := range e.Steps {
				if s.Completed {
					doneSteps++
				}
			}
			line := fmt.Sprintf("  %s  %-40s %s  %d/%d steps",
				truncateID(e.ID), truncate(e.Title, 40), e.Category, doneSteps, len(e.Steps))
			if e.Deadline != nil {
				line += "  due " + e.Deadline.Format("2006-01-02 15:04")
			}
			fmt.Println(line)
		}
	}

	if listAll {
		if completed := store.FilterCompleted(events); len(completed) > 0 {
			fmt.Println(dimStyle.Render("completed"))
			printEventTable(completed)
		}
		var expired []models.Event
		for _, e := range events {
			if e.Expired {
				expired = append(expired, e)
			}
		}
		if len(expired) > 0 {
			fmt.Println(dimStyle.Render("expired"))
			printEventTable(expired)
		}
	}

	if theApp.keeper.ShouldRemindBackup(time.Now()) {
		fmt.Println(dimStyle.Render("hint: no recent backup; run 'memo export --out <file>' then 'memo backup record'"))
	}
	if n := store.CountCompleted(events); n > 0 && theApp.keeper.ShouldRemindCleanup(time.Now()) {
		fmt.Println(dimStyle.Render(fmt.Sprintf("hint: %d completed event(s); run 'memo cleanup' to clear them, or 'memo cleanup --skip' to hide this for the month", n)))
		if err := theApp.keeper.MarkCleanupShown(time.Now()); err != nil {
			return err
		}
	}
	return nil
}

func printEventTable(events []models.Event) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRIORITY\tCREATED")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncateID(e.ID), truncate(e.Title, 40), e.Category, e.Priority, e.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}
	event, err := findEvent(events, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", event.ID)
	fmt.Printf("Title:     %s\n", event.Title)
	if event.Description != "" {
		fmt.Printf("Desc:      %s\n", event.Description)
	}
	fmt.Printf("Category:  %s\n", event.Category)
	fmt.Printf("Priority:  %d\n", event.Priority)
	if event.StartTime != nil {
		fmt.Printf("Start:     %s (reminder: %v)\n", event.StartTime.Format(time.RFC3339), event.StartReminderEnabled)
	}
	if event.Deadline != nil {
		fmt.Printf("Deadline:  %s (reminder: %v)\n", event.Deadline.Format(time.RFC3339), event.DeadlineReminderEnabled)
	}
	fmt.Printf("Created:   %s\n", event.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Completed: %v  Expired: %v\n", event.Completed, event.Expired)

	if len(event.Steps) > 0 {
		fmt.Println("Steps:")
		for _, s := range event.StepsSorted() {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %s  %s", mark, truncateID(s.ID), s.Content)
			if s.ScheduledTime != nil {
				line += "  @" + s.ScheduledTime.Format("2006-01-02 15:04")
			}
			if s.Status != "" {
				line += "  (" + s.Status + ")"
			}
			fmt.Println(line)
		}
	}
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}
	event, err := findEvent(events, args[0])
	if err != nil {
		return err
	}
	completed := !doneUndo
	if err := theApp.store.Update(event.ID, models.EventPatch{Completed: &completed}); err != nil {
		return err
	}
	if completed {
		fmt.Printf("Completed event %s\n", truncateID(event.ID))
	} else {
		fmt.Printf("Re-opened event %s\n", truncateID(event.ID))
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	events, err := theApp.store.Load()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		event, err := findEvent(events, arg)
		if err != nil {
			return err
		}
		ids = append(ids, event.ID)
	}
	if err := theApp.store.DeleteMany(ids); err != nil {
		return err
	}
	fmt.Printf("Deleted %d event(s)\n", len(ids))
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	dir := ordering.Direction(args[1])
	if dir != ordering.Up && dir != ordering.Down {
		return fmt.Errorf("direction must be 'up' or 'down'")
	}

	events, err := theApp.store.Load()
	if err != nil {
		return err
	}
	event, err := findEvent(events, args[0])
	if err != nil {
		return err
	}
	if !ordering.MoveEvent(events, event.ID, dir, event.Priority) {
		fmt.Println("No change")
		return nil
	}
	if err := theApp.store.Save(events); err != nil {
		return err
	}
	fmt.Printf("Moved event %s %s\n", truncateID(event.ID), dir)
	return nil
}

// --- Helpers ---

// findEvent resolves an id or unambiguous id prefix to an event.
func findEvent(events []models.Event, idOrPrefix string) (*models.Event, error) {
	var match *models.Event
	for i := range events {
		if events[i].ID == idOrPrefix {
			return &events[i], nil
		}
		if strings.HasPrefix(events[i].ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous event id %q", idOrPrefix)
			}
			match = &events[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no event with id %q", idOrPrefix)
	}
	return match, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (use 2006-01-02 15:04 or RFC3339)", s)
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
