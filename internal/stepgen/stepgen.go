// Package stepgen derives a default step checklist from an event's
// category and free-text description. It is pure: callers feed the result
// back into the store.
package stepgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"eventmemo/internal/models"
)

// categorySteps maps each category to its ordered template checklist.
var categorySteps = map[models.Category][]string{
	models.CategoryShipping: {
		"Inspect the goods and check the packing list",
		"Have the customer confirm the block list",
		"Issue the PI to the customer",
		"File the T2L and notify the quarry a day ahead to stage the container",
		"Issue the invoice and send it to the customer promptly",
		"Send the invoice, T2L and statement to the forwarder",
		"Prepare the PL once the forwarder returns MRN and VGM",
		"Send the full document set to the customer (PL, MRN, invoice)",
	},
	models.CategoryImport: {
		"Confirm the purchase order (requires sign-off)",
		"Confirm the PI (requires director sign-off)",
		"Confirm the shipping date",
		"Prepare customs documents (invoice, PL, CE, declaration form)",
		"Confirm receipt of the goods",
	},
	models.CategoryLocalSales: {
		"Record this month's deliveries",
		"Issue the invoice next month",
		"Send the invoice to the customer and the accountant",
	},
	models.CategoryMeeting: {
		"Prepare the agenda",
		"Notify the attendees",
		"Prepare the materials",
		"Hold the meeting",
		"Write up the minutes",
	},
	models.CategoryStudy: {
		"Pick the topic",
		"Collect materials",
		"Draft a study plan",
		"Work through the content",
		"Summarize what was learned",
	},
	models.CategoryProject: {
		"Analyze the requirements",
		"Design and plan",
		"Implement",
		"Test and review",
		"Deploy and release",
	},
	models.CategoryEventPlanning: {
		"Settle the theme",
		"Draft the plan",
		"Prepare supplies",
		"Run the event",
		"Write the recap",
	},
	models.CategoryMaintenance: {
		"Diagnose the fault",
		"Plan the repair",
		"Prepare tools and spare parts",
		"Carry out the repair",
		"Test and sign off",
	},
	models.CategoryOther: {
		"Analyze what is needed",
		"Make a plan",
		"Execute",
		"Verify completion",
	},
}

// TemplateSteps returns the template checklist for a category, falling
// back to the generic list for unknown categories.
func TemplateSteps(category models.Category) []string {
	if steps, ok := categorySteps[category]; ok {
		return steps
	}
	return categorySteps[models.CategoryOther]
}

// ordinalPrefix matches a leading "1. " or "1、" style numbering on a
// description line.
var ordinalPrefix = regexp.MustCompile(`^\d+[\.、]\s*(.+)$`)

// Generate emits the initial checklist for a new event: the category's
// template steps, then one step per description line not already
// represented (case-sensitive containment either way), with ordinal
// prefixes stripped. When nothing at all is produced it falls back to a
// single step referencing the title. Order is renumbered densely.
func Generate(category models.Category, title, description string) []models.Step {
	var steps []models.Step
	for _, content := range TemplateSteps(category) {
		steps = append(steps, newStep(content))
	}

	for _, line := range descriptionLines(description) {
		if containsStep(steps, line, false) {
			continue
		}
		steps = append(steps, newStep(stripOrdinal(line)))
	}

	if len(steps) == 0 {
		steps = append(steps, newStep(fmt.Sprintf("Finish %s", title)))
	}

	return renumber(steps)
}

// UpdateFromDescription recomputes the checklist after a description edit.
// Current steps that match the category template keep their state; lines
// of the new description not already represented (case-insensitive
// containment) are appended. Steps matching neither are dropped: the
// description is the source of truth for generated steps, and callers fold
// manually added steps into current before invoking this.
func UpdateFromDescription(current []models.Step, description string, category models.Category) []models.Step {
	template := TemplateSteps(category)

	var steps []models.Step
	for _, s := range current {
		if matchesTemplate(s.Content, template) {
			steps = append(steps, s)
		}
	}

	for _, line := range descriptionLines(description) {
		if containsStep(steps, line, true) {
			continue
		}
		steps = append(steps, newStep(stripOrdinal(line)))
	}

	return renumber(steps)
}

func newStep(content string) models.Step {
	return models.Step{ID: uuid.New().String(), Content: content}
}

// descriptionLines returns the trimmed non-blank lines of a description.
func descriptionLines(description string) []string {
	var lines []string
	for _, line := range strings.Split(description, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// containsStep reports whether line is already represented among steps by
// substring containment in either direction.
func containsStep(steps []models.Step, line string, foldCase bool) bool {
	probe := line
	if foldCase {
		probe = strings.ToLower(line)
	}
	for _, s := range steps {
		content := s.Content
		if foldCase {
			content = strings.ToLower(content)
		}
		if strings.Contains(content, probe) || strings.Contains(probe, content) {
			return true
		}
	}
	return false
}

// matchesTemplate reports whether content matches any template entry by
// substring containment in either direction.
func matchesTemplate(content string, template []string) bool {
	for _, t := range template {
		if strings.Contains(content, t) || strings.Contains(t, content) {
			return true
		}
	}
	return false
}

func stripOrdinal(line string) string {
	if m := ordinalPrefix.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return line
}

func renumber(steps []models.Step) []models.Step {
	for i := range steps {
		steps[i].Order = i
	}
	return steps
}
