package models

import "time"

// CurriculumItem is a single topic extracted from a newsletter curriculum table
type CurriculumItem struct {
	ID           int64      `json:"id" db:"id"`
	NewsletterID int64      `json:"newsletter_id" db:"newsletter_id"`
	Subject      string     `json:"subject" db:"subject"`
	Topic        string     `json:"topic" db:"topic"`
	StartDate    time.Time  `json:"start_date" db:"start_date"` // When the school introduces the topic
	EndDate      *time.Time `json:"end_date" db:"end_date"`
	CreatedAt    string     `json:"created_at" db:"created_at"`
}
