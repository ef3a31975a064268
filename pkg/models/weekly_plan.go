package models

import "time"

// WeeklyPlan stores one generated weekly study plan
type WeeklyPlan struct {
	ID            int64     `json:"id" db:"id"`
	PlanID        string    `json:"plan_id" db:"plan_id"` // UUID assigned at generation time
	UserID        int64     `json:"user_id" db:"user_id"`
	WeekStartDate time.Time `json:"week_start_date" db:"week_start_date"`
	PlanData      string    `json:"plan_data" db:"plan_data"` // Full week schedule as JSON
	FocusRequest  string    `json:"focus_request" db:"focus_request"`
	Events        string    `json:"events" db:"events"`
	GeneratedAt   string    `json:"generated_at" db:"generated_at"`
}
