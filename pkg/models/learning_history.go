package models

import "time"

// LearningHistory tracks a student's memory state for one topic using the SM-2 algorithm.
// Exactly one record exists per (user, subject, topic).
type LearningHistory struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	Subject        string     `json:"subject" db:"subject"`
	Topic          string     `json:"topic" db:"topic"`
	EasinessFactor float64    `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF parameter, never below 1.3
	Interval       int        `json:"interval" db:"interval"`               // Current interval in days
	Repetitions    int        `json:"repetitions" db:"repetitions"`         // Consecutive successful reviews since last lapse
	LastReviewed   *time.Time `json:"last_reviewed" db:"last_reviewed"`     // Nil until the first recorded session
	NextReview     time.Time  `json:"next_review" db:"next_review"`
	Version        int64      `json:"version" db:"version"` // Bumped on every update, used for conflict detection
	CreatedAt      string     `json:"created_at" db:"created_at"`
	UpdatedAt      string     `json:"updated_at" db:"updated_at"`
}
