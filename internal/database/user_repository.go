package database

import (
	"fmt"
	"strings"

	"github.com/example/studyplanner/pkg/models"
)

// UserRepository handles database operations for student profiles
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := "SELECT * FROM users WHERE id = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var user models.User
	if err := DB.Get(&user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &user, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	if err := DB.Select(&users, "SELECT * FROM users ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return users, nil
}

// Create inserts a new student profile
func (r *UserRepository) Create(user *models.User) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO users (
				name, grade, board, daily_duration_minutes, weekly_frequency,
				subjects, notification_enabled, notification_hour, telegram_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRow(
			query,
			user.Name,
			user.Grade,
			user.Board,
			user.DailyDurationMinutes,
			user.WeeklyFrequency,
			user.Subjects,
			user.NotificationEnabled,
			user.NotificationHour,
			user.TelegramID,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	}

	result, err := DB.Exec(`
		INSERT INTO users (
			name, grade, board, daily_duration_minutes, weekly_frequency,
			subjects, notification_enabled, notification_hour, telegram_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Grade,
		user.Board,
		user.DailyDurationMinutes,
		user.WeeklyFrequency,
		user.Subjects,
		user.NotificationEnabled,
		user.NotificationHour,
		user.TelegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	user.ID = id
	return nil
}

// Update modifies profile settings
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users SET
			name = ?,
			grade = ?,
			board = ?,
			daily_duration_minutes = ?,
			weekly_frequency = ?,
			subjects = ?,
			notification_enabled = ?,
			notification_hour = ?,
			telegram_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if DB.DriverName() == "postgres" {
		query = `
			UPDATE users SET
				name = $1,
				grade = $2,
				board = $3,
				daily_duration_minutes = $4,
				weekly_frequency = $5,
				subjects = $6,
				notification_enabled = $7,
				notification_hour = $8,
				telegram_id = $9,
				updated_at = NOW()
			WHERE id = $10
		`
	}

	_, err := DB.Exec(
		query,
		user.Name,
		user.Grade,
		user.Board,
		user.DailyDurationMinutes,
		user.WeeklyFrequency,
		user.Subjects,
		user.NotificationEnabled,
		user.NotificationHour,
		user.TelegramID,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// GetUsersForNotification returns users with reminders enabled for the given hour
func (r *UserRepository) GetUsersForNotification(hour int) ([]models.User, error) {
	query := "SELECT * FROM users WHERE notification_enabled = ? AND notification_hour = ?"
	if DB.DriverName() == "postgres" {
		query = "SELECT * FROM users WHERE notification_enabled = $1 AND notification_hour = $2"
	}

	var users []models.User
	if err := DB.Select(&users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}
