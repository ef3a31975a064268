package planner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/studyplanner/internal/database"
	"github.com/example/studyplanner/internal/review"
	"github.com/example/studyplanner/internal/spaced_repetition"
	"github.com/example/studyplanner/pkg/models"
)

// GenerateForUser assembles the plan context from the store, runs the
// generator and persists the result. Returns the stored plan record.
func GenerateForUser(gen Generator, userID int64, weekStart time.Time, focusRequest, events string) (*models.WeeklyPlan, error) {
	weekStart = spaced_repetition.TruncateToDay(weekStart)

	user, err := database.NewUserRepository().GetByID(userID)
	if err != nil {
		return nil, err
	}

	curriculum, err := database.NewNewsletterRepository().GetCurrentCurriculum(userID, weekStart)
	if err != nil {
		return nil, err
	}

	tracker := review.NewTracker(database.NewLearningHistoryRepository())
	due, err := tracker.DueTopics(userID, weekStart)
	if err != nil {
		return nil, err
	}
	history, err := database.NewLearningHistoryRepository().QueryStates(userID)
	if err != nil {
		return nil, err
	}

	plan, err := gen.GenerateWeeklyPlan(PlanContext{
		User:          *user,
		WeekStartDate: weekStart,
		Curriculum:    curriculum,
		DueTopics:     due,
		History:       history,
		FocusRequest:  focusRequest,
		Events:        events,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate weekly plan: %v", err)
	}

	planData, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %v", err)
	}

	record := &models.WeeklyPlan{
		PlanID:        uuid.NewString(),
		UserID:        userID,
		WeekStartDate: weekStart,
		PlanData:      string(planData),
		FocusRequest:  focusRequest,
		Events:        events,
	}
	if err := database.NewWeeklyPlanRepository().Save(record); err != nil {
		return nil, err
	}
	return record, nil
}
