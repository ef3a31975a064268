package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// PlanContext carries everything the generator needs to lay out one week
type PlanContext struct {
	User          models.User
	WeekStartDate time.Time
	Curriculum    []models.CurriculumItem   // New topics from the current newsletters
	DueTopics     []models.LearningHistory  // Topics due for SM-2 review
	History       []models.LearningHistory  // Full learning history
	FocusRequest  string                    // Optional user emphasis, e.g. "focus on Math"
	Events        string                    // Optional upcoming events, e.g. "Olympiad on March 20"
}

// DailyPlan is one day of the generated schedule
type DailyPlan struct {
	Date            string   `json:"date"` // YYYY-MM-DD
	Subjects        []string `json:"subjects"`
	Topics          []string `json:"topics"`
	IsNewTopic      []bool   `json:"is_new_topic"` // Parallel to Topics: new curriculum vs review
	DurationMinutes int      `json:"duration_minutes"`
}

// WeeklyPlan is the complete generated schedule plus the model's reasoning
type WeeklyPlan struct {
	WeeklyPlan []DailyPlan `json:"weekly_plan"`
	Rationale  string      `json:"rationale"`
}

// Generator produces a weekly study plan from the plan context. The two
// implementations (Ollama for local development, Claude for production) are
// interchangeable; NewFromEnv picks one based on configuration.
type Generator interface {
	GenerateWeeklyPlan(ctx PlanContext) (*WeeklyPlan, error)
}

// NewFromEnv returns the generator selected by the AI_PROVIDER environment
// variable ("ollama" or "claude"; defaults to ollama)
func NewFromEnv() (Generator, error) {
	provider := strings.ToLower(os.Getenv("AI_PROVIDER"))
	switch provider {
	case "", "ollama":
		return NewOllama(), nil
	case "claude":
		return NewClaude()
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", provider)
	}
}

// parsePlanResponse decodes the model output into a WeeklyPlan. Models
// sometimes wrap the JSON in markdown code fences, so those are stripped
// before unmarshalling.
func parsePlanResponse(raw string) (*WeeklyPlan, error) {
	content := strings.TrimSpace(raw)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	}

	var plan WeeklyPlan
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %v", err)
	}
	if len(plan.WeeklyPlan) == 0 {
		return nil, fmt.Errorf("plan response contains no days")
	}
	return &plan, nil
}
