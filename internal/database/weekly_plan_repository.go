package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/studyplanner/pkg/models"
)

// WeeklyPlanRepository handles database operations for generated weekly plans
type WeeklyPlanRepository struct{}

// NewWeeklyPlanRepository creates a new repository instance
func NewWeeklyPlanRepository() *WeeklyPlanRepository {
	return &WeeklyPlanRepository{}
}

// Save inserts a generated plan
func (r *WeeklyPlanRepository) Save(plan *models.WeeklyPlan) error {
	if DB.DriverName() == "postgres" {
		return DB.QueryRow(`
			INSERT INTO weekly_plans (plan_id, user_id, week_start_date, plan_data, focus_request, events)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, generated_at`,
			plan.PlanID, plan.UserID, plan.WeekStartDate, plan.PlanData, plan.FocusRequest, plan.Events,
		).Scan(&plan.ID, &plan.GeneratedAt)
	}

	result, err := DB.Exec(`
		INSERT INTO weekly_plans (plan_id, user_id, week_start_date, plan_data, focus_request, events)
		VALUES (?, ?, ?, ?, ?, ?)`,
		plan.PlanID, plan.UserID, plan.WeekStartDate, plan.PlanData, plan.FocusRequest, plan.Events,
	)
	if err != nil {
		return fmt.Errorf("failed to save weekly plan: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	plan.ID = id
	return nil
}

// GetLatestForUser returns the most recently generated plan for a user, or
// (nil, nil) when none exists yet
func (r *WeeklyPlanRepository) GetLatestForUser(userID int64) (*models.WeeklyPlan, error) {
	query := "SELECT * FROM weekly_plans WHERE user_id = ? ORDER BY generated_at DESC, id DESC LIMIT 1"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var plan models.WeeklyPlan
	err := DB.Get(&plan, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weekly plan: %v", err)
	}
	return &plan, nil
}
