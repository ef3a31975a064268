package models

import "strings"

// User represents a student profile with study preferences
type User struct {
	ID                   int64  `json:"id" db:"id"`
	Name                 string `json:"name" db:"name"`
	Grade                string `json:"grade" db:"grade"` // e.g. "UKG", "1st", "2nd"
	Board                string `json:"board" db:"board"` // e.g. "CBSE", "ICSE"
	DailyDurationMinutes int    `json:"daily_duration_minutes" db:"daily_duration_minutes"`
	WeeklyFrequency      int    `json:"weekly_frequency" db:"weekly_frequency"` // Study days per week
	Subjects             string `json:"subjects" db:"subjects"`                 // Comma-separated list of subjects
	NotificationEnabled  bool   `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour     int    `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	TelegramID           int64  `json:"telegram_id" db:"telegram_id"`
	CreatedAt            string `json:"created_at" db:"created_at"`
	UpdatedAt            string `json:"updated_at" db:"updated_at"`
}

// SubjectList splits the stored subjects string into individual subjects
func (u *User) SubjectList() []string {
	if u.Subjects == "" {
		return nil
	}
	parts := strings.Split(u.Subjects, ",")
	subjects := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			subjects = append(subjects, s)
		}
	}
	return subjects
}
