package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eventmemo/internal/models"
	"eventmemo/internal/ordering"
	"eventmemo/internal/stepgen"
	"eventmemo/internal/store"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage an event's step checklist",
}

var stepAddCmd = &cobra.Command{
	Use:   "add [event-id]",
	Short: "Append a step",
	Args:  cobra.ExactArgs(1),
	RunE:  runStepAdd,
}

var stepDoneCmd = &cobra.Command{
	Use:   "done [event-id] [step-id]",
	Short: "Toggle a step completed",
	Args:  cobra.ExactArgs(2),
	RunE:  runStepDone,
}

var stepRmCmd = &cobra.Command{
	Use:   "rm [event-id] [step-id]",
	Short: "Delete a step",
	Args:  cobra.ExactArgs(2),
	RunE:  runStepRm,
}

var stepMoveCmd = &cobra.Command{
	Use:   "move [event-id] [step-id] up|down",
	Short: "Move a step within its checklist",
	Args:  cobra.ExactArgs(3),
	RunE:  runStepMove,
}

var stepSchedCmd = &cobra.Command{
	Use:   "sched [event-id] [step-id]",
	Short: "Schedule a step reminder",
	Args:  cobra.ExactArgs(2),
	RunE:  runStepSched,
}

var stepRegenCmd = &cobra.Command{
	Use:   "regen [event-id]",
	Short: "Regenerate steps from the event description",
	Long: `Regenerate the checklist from the category template and the current
description. Steps matching neither are dropped; pass --confirm to
acknowledge that.`,
	Args: cobra.ExactArgs(1),
	RunE: runStepRegen,
}

var (
	stepContent  string
	stepStatus   string
	stepAt       string
	stepType     string
	stepUndo     bool
	regenConfirm bool
)

func init() {
	stepCmd.AddCommand(stepAddCmd, stepDoneCmd, stepRmCmd, stepMoveCmd, stepSchedCmd, stepRegenCmd)

	stepAddCmd.Flags().StringVar(&stepContent, "content", "", "Step content (required)")
	stepAddCmd.MarkFlagRequired("content")

	stepDoneCmd.Flags().BoolVar(&stepUndo, "undo", false, "Re-open the step instead")
	stepDoneCmd.Flags().StringVar(&stepStatus, "status", "", "Free-text status annotation")

	stepSchedCmd.Flags().StringVar(&stepAt, "at", "", "Scheduled time (2006-01-02 15:04 or RFC3339; required)")
	stepSchedCmd.Flags().StringVar(&stepType, "type", string(models.ReminderSound), "Reminder type: sound, vibration, both")
	stepSchedCmd.MarkFlagRequired("at")

	stepRegenCmd.Flags().BoolVar(&regenConfirm, "confirm", false, "Acknowledge that non-matching steps are dropped")
}

func runStepAdd(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	event, err := loadEvent(args[0])
	if err != nil {
		return err
	}
	steps := append(event.Steps, models.Step{
		ID:      store.NewStepID(),
		Content: stepContent,
		Order:   ordering.NextStepOrder(event.Steps),
	})
	if err := theApp.store.Update(event.ID, models.EventPatch{Steps: &steps}); err != nil {
		return err
	}
	fmt.Printf("Added step to event %s\n", truncateID(event.ID))
	return nil
}

func runStepDone(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	event, step, err := loadStep(args[0], args[1])
	if err != nil {
		return err
	}
	completed := !stepUndo
	patch := models.StepPatch{Completed: &completed}
	if stepStatus != "" {
		patch.Status = &stepStatus
	}
	if err := theApp.store.UpdateStep(event.ID, step.ID, patch); err != nil {
		return err
	}
	if completed {
		fmt.Printf("Completed step %s\n", truncateID(step.ID))
	} else {
		fmt.Printf("Re-opened step %s\n", truncateID(step.ID))
	}
	return nil
}

func runStepRm(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	event, step, err := loadStep(args[0], args[1])
	if err != nil {
		return err
	}
	kept := make([]models.Step, 0, len(event.Steps)-1)
	for _, s := range event.Steps {
		if s.ID != step.ID {
			kept = append(kept, s)
		}
	}
	kept = ordering.CompactSteps(kept)
	if err := theApp.store.Update(event.ID, models.EventPatch{Steps: &kept}); err != nil {
		return err
	}
	fmt.Printf("Deleted step %s\n", truncateID(step.ID))
	return nil
}

func runStepMove(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	dir := ordering.Direction(args[2])
	if dir != ordering.Up && dir != ordering.Down {
		return fmt.Errorf("direction must be 'up' or 'down'")
	}
	event, step, err := loadStep(args[0], args[1])
	if err != nil {
		return err
	}
	steps := make([]models.Step, len(event.Steps))
	copy(steps, event.Steps)
	if !ordering.MoveStep(steps, step.ID, dir) {
		fmt.Println("No change")
		return nil
	}
	if err := theApp.store.Update(event.ID, models.EventPatch{Steps: &steps}); err != nil {
		return err
	}
	fmt.Printf("Moved step %s %s\n", truncateID(step.ID), dir)
	return nil
}

func runStepSched(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	rtype := models.ReminderType(stepType)
	if rtype != models.ReminderSound && rtype != models.ReminderVibration && rtype != models.ReminderBoth {
		return fmt.Errorf("reminder type must be sound, vibration, or both")
	}
	at, err := parseTime(stepAt)
	if err != nil {
		return err
	}
	event, step, err := loadStep(args[0], args[1])
	if err != nil {
		return err
	}
	enabled := true
	patch := models.StepPatch{
		ScheduledTime:   &at,
		ReminderEnabled: &enabled,
		ReminderType:    &rtype,
	}
	if err := theApp.store.UpdateStep(event.ID, step.ID, patch); err != nil {
		return err
	}
	fmt.Printf("Scheduled step %s at %s\n", truncateID(step.ID), at.Format("2006-01-02 15:04"))
	return nil
}

func runStepRegen(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}
	event, err := loadEvent(args[0])
	if err != nil {
		return err
	}
	steps := stepgen.UpdateFromDescription(event.Steps, event.Description, event.Category)
	if !regenConfirm {
		dropped := len(event.Steps) - retainedCount(event.Steps, steps)
		return fmt.Errorf("regenerating yields %d step(s) and would drop %d current one(s); re-run with --confirm", len(steps), dropped)
	}
	if err := theApp.store.Update(event.ID, models.EventPatch{Steps: &steps}); err != nil {
		return err
	}
	fmt.Printf("Regenerated %d step(s) for event %s\n", len(steps), truncateID(event.ID))
	return nil
}

func retainedCount(before, after []models.Step) int {
	ids := make(map[string]bool, len(after))
	for _, s := range after {
		ids[s.ID] = true
	}
	n := 0
	for _, s := range before {
		if ids[s.ID] {
			n++
		}
	}
	return n
}

// loadEvent loads the store and resolves one event.
func loadEvent(idOrPrefix string) (*models.Event, error) {
	events, err := theApp.store.Load()
	if err != nil {
		return nil, err
	}
	return findEvent(events, idOrPrefix)
}

// loadStep resolves an event and one of its steps, by id or prefix.
func loadStep(eventID, stepID string) (*models.Event, *models.Step, error) {
	event, err := loadEvent(eventID)
	if err != nil {
		return nil, nil, err
	}
	var match *models.Step
	for i := range event.Steps {
		if event.Steps[i].ID == stepID {
			return event, &event.Steps[i], nil
		}
		if strings.HasPrefix(event.Steps[i].ID, stepID) {
			if match != nil {
				return nil, nil, fmt.Errorf("ambiguous step id %q", stepID)
			}
			match = &event.Steps[i]
		}
	}
	if match == nil {
		return nil, nil, fmt.Errorf("no step with id %q in event %s", stepID, truncateID(event.ID))
	}
	return event, match, nil
}
