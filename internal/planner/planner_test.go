package planner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyplanner/pkg/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testContext() PlanContext {
	reviewed := date(2024, time.March, 1)
	return PlanContext{
		User: models.User{
			Name:                 "Anu",
			Grade:                "UKG",
			Board:                "CBSE",
			DailyDurationMinutes: 30,
			WeeklyFrequency:      6,
			Subjects:             "Math, English, EVS",
		},
		WeekStartDate: date(2024, time.March, 4),
		Curriculum: []models.CurriculumItem{
			{Subject: "Math", Topic: "Counting to 100", StartDate: date(2024, time.March, 4)},
			{Subject: "English", Topic: "Rhyming words", StartDate: date(2024, time.March, 6)},
		},
		DueTopics: []models.LearningHistory{
			{Subject: "EVS", Topic: "Plants around us", EasinessFactor: 2.2, NextReview: date(2024, time.March, 1)},
		},
		History: []models.LearningHistory{
			{Subject: "EVS", Topic: "Plants around us", LastReviewed: &reviewed},
			{Subject: "Math", Topic: "Shapes"}, // Never reviewed, must be skipped
		},
		FocusRequest: "focus on Math",
		Events:       "Olympiad on March 20",
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := buildUserPrompt(testContext())

	assert.Contains(t, prompt, "Name: Anu")
	assert.Contains(t, prompt, "Grade: UKG (CBSE)")
	assert.Contains(t, prompt, "2024-03-04 to 2024-03-09 (6 study days)")
	assert.Contains(t, prompt, "Math: Counting to 100 (starts 2024-03-04)")
	// The due topic is 3 days overdue relative to the week start.
	assert.Contains(t, prompt, "EVS: Plants around us (due: 2024-03-01, 3 days overdue, easiness: 2.2)")
	assert.Contains(t, prompt, "EVS: 1 topics practiced, last session 2024-03-01 (3 days ago)")
	assert.NotContains(t, prompt, "Shapes")
	assert.Contains(t, prompt, "**User's Focus Request:** focus on Math")
	assert.Contains(t, prompt, "**Upcoming Events:** Olympiad on March 20")
}

func TestBuildUserPromptEmptySections(t *testing.T) {
	ctx := testContext()
	ctx.Curriculum = nil
	ctx.DueTopics = nil
	ctx.History = nil
	ctx.FocusRequest = ""
	ctx.Events = ""

	prompt := buildUserPrompt(ctx)

	assert.Contains(t, prompt, "No new curriculum topics for this period.")
	assert.Contains(t, prompt, "No topics currently due for review.")
	assert.Contains(t, prompt, "No learning history yet.")
	assert.NotContains(t, prompt, "Focus Request")
}

func TestParsePlanResponse(t *testing.T) {
	raw := `{"weekly_plan":[{"date":"2024-03-04","subjects":["Math"],"topics":["Counting to 100"],"is_new_topic":[true],"duration_minutes":30}],"rationale":"Math first."}`

	plan, err := parsePlanResponse(raw)
	require.NoError(t, err)
	require.Len(t, plan.WeeklyPlan, 1)
	assert.Equal(t, "2024-03-04", plan.WeeklyPlan[0].Date)
	assert.Equal(t, []string{"Counting to 100"}, plan.WeeklyPlan[0].Topics)
	assert.Equal(t, []bool{true}, plan.WeeklyPlan[0].IsNewTopic)
	assert.Equal(t, "Math first.", plan.Rationale)
}

func TestParsePlanResponseStripsCodeFences(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"weekly_plan\":[{\"date\":\"2024-03-04\",\"subjects\":[\"Math\"],\"topics\":[\"Counting to 100\"],\"is_new_topic\":[true],\"duration_minutes\":30}],\"rationale\":\"ok\"}\n```"

	plan, err := parsePlanResponse(raw)
	require.NoError(t, err)
	assert.Len(t, plan.WeeklyPlan, 1)
}

func TestParsePlanResponseRejectsGarbage(t *testing.T) {
	_, err := parsePlanResponse("not json at all")
	assert.Error(t, err)

	_, err = parsePlanResponse(`{"weekly_plan":[],"rationale":"empty"}`)
	assert.Error(t, err)
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("AI_PROVIDER", "ollama")
	g, err := NewFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, g)

	os.Setenv("AI_PROVIDER", "claude")
	os.Unsetenv("CLAUDE_API_KEY")
	_, err = NewFromEnv()
	assert.Error(t, err)

	os.Setenv("CLAUDE_API_KEY", "test-key")
	g, err = NewFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &Claude{}, g)

	os.Setenv("AI_PROVIDER", "gemini")
	_, err = NewFromEnv()
	assert.Error(t, err)

	os.Unsetenv("AI_PROVIDER")
	os.Unsetenv("CLAUDE_API_KEY")
}
