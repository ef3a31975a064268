package models

import "time"

// Session types
const (
	SessionTypeStudy  = "study"  // First exposure to a topic
	SessionTypeReview = "review" // Spaced-repetition review
)

// StudySession is an immutable record of one study or review session.
// A "review" session always carries a quality rating; a "study" session may omit it.
type StudySession struct {
	ID                int64     `json:"id" db:"id"`
	UserID            int64     `json:"user_id" db:"user_id"`
	LearningHistoryID int64     `json:"learning_history_id" db:"learning_history_id"`
	SessionDate       time.Time `json:"session_date" db:"session_date"`
	SessionType       string    `json:"session_type" db:"session_type"`
	QualityRating     *int      `json:"quality_rating" db:"quality_rating"` // 0-5 recall quality
	Notes             string    `json:"notes" db:"notes"`
	CreatedAt         string    `json:"created_at" db:"created_at"`
}
