package stepgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmemo/internal/models"
)

func contents(steps []models.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Content
	}
	return out
}

func TestTemplateStepsFallback(t *testing.T) {
	assert.Len(t, TemplateSteps(models.CategoryShipping), 8)
	assert.Equal(t, TemplateSteps(models.CategoryOther), TemplateSteps(models.Category("unknown")))
}

func TestGenerateFromTemplate(t *testing.T) {
	steps := Generate(models.CategoryMeeting, "Quarterly review", "")

	require.Len(t, steps, 5)
	assert.Equal(t, "Prepare the agenda", steps[0].Content)
	for i, s := range steps {
		assert.Equal(t, i, s.Order)
		assert.NotEmpty(t, s.ID)
		assert.False(t, s.Completed)
	}
}

func TestGenerateAppendsDescriptionLines(t *testing.T) {
	description := "1. Book the conference room\n2、Order lunch\n\n   \n"
	steps := Generate(models.CategoryMeeting, "Quarterly review", description)

	require.Len(t, steps, 7)
	assert.Equal(t, "Book the conference room", steps[5].Content, "ordinal prefixes are stripped")
	assert.Equal(t, "Order lunch", steps[6].Content)
	assert.Equal(t, 6, steps[6].Order)
}

func TestGenerateSkipsLinesAlreadyCovered(t *testing.T) {
	// "the agenda" is contained in the template step "Prepare the agenda".
	steps := Generate(models.CategoryMeeting, "Review", "the agenda")
	assert.Len(t, steps, 5)
}

func TestGenerateNeverEmpty(t *testing.T) {
	steps := Generate(models.Category("unknown"), "Pay the rent", "")
	require.NotEmpty(t, steps)
}

func TestUpdateRetainsTemplateStepsWithState(t *testing.T) {
	current := Generate(models.CategoryMeeting, "Review", "1. Book the room")
	current[0].Completed = true
	keptID := current[0].ID

	updated := UpdateFromDescription(current, "1. Reserve the projector", models.CategoryMeeting)

	require.Len(t, updated, 6)
	assert.Equal(t, keptID, updated[0].ID, "matching template steps keep identity")
	assert.True(t, updated[0].Completed, "completion state survives the regeneration")
	assert.NotContains(t, contents(updated), "Book the room", "stale description steps are dropped")
	assert.Equal(t, "Reserve the projector", updated[5].Content)
}

func TestUpdateDedupIsCaseInsensitive(t *testing.T) {
	current := Generate(models.CategoryMeeting, "Review", "")

	updated := UpdateFromDescription(current, "PREPARE THE AGENDA", models.CategoryMeeting)
	assert.Len(t, updated, 5, "a case-variant of an existing step is not appended")
}

func TestUpdateRenumbersDensely(t *testing.T) {
	current := []models.Step{
		{ID: "a", Content: "Prepare the agenda", Order: 7},
		{ID: "b", Content: "Hold the meeting", Order: 9},
	}

	updated := UpdateFromDescription(current, "", models.CategoryMeeting)
	require.Len(t, updated, 2)
	assert.Equal(t, 0, updated[0].Order)
	assert.Equal(t, 1, updated[1].Order)
}
