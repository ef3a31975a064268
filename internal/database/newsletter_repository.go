package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// NewsletterRepository handles database operations for newsletters and their
// curriculum items
type NewsletterRepository struct{}

// NewNewsletterRepository creates a new repository instance
func NewNewsletterRepository() *NewsletterRepository {
	return &NewsletterRepository{}
}

// Create inserts a new newsletter record
func (r *NewsletterRepository) Create(n *models.Newsletter) error {
	if DB.DriverName() == "postgres" {
		return DB.QueryRow(`
			INSERT INTO newsletters (user_id, month, year, file_path)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			n.UserID, n.Month, n.Year, n.FilePath,
		).Scan(&n.ID, &n.CreatedAt)
	}

	result, err := DB.Exec(
		"INSERT INTO newsletters (user_id, month, year, file_path) VALUES (?, ?, ?, ?)",
		n.UserID, n.Month, n.Year, n.FilePath,
	)
	if err != nil {
		return fmt.Errorf("failed to create newsletter: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	n.ID = id
	return nil
}

// GetByUser returns all newsletters uploaded for a user
func (r *NewsletterRepository) GetByUser(userID int64) ([]models.Newsletter, error) {
	query := "SELECT * FROM newsletters WHERE user_id = ? ORDER BY year DESC, id DESC"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var newsletters []models.Newsletter
	if err := DB.Select(&newsletters, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get newsletters: %v", err)
	}
	return newsletters, nil
}

// AddCurriculumItems bulk-inserts curriculum items for a newsletter in one
// transaction
func (r *NewsletterRepository) AddCurriculumItems(newsletterID int64, items []models.CurriculumItem) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO curriculum_items (newsletter_id, subject, topic, start_date, end_date) VALUES (?, ?, ?, ?, ?)"
	if DB.DriverName() == "postgres" {
		query = "INSERT INTO curriculum_items (newsletter_id, subject, topic, start_date, end_date) VALUES ($1, $2, $3, $4, $5)"
	}

	for i := range items {
		items[i].NewsletterID = newsletterID
		if _, err := tx.Exec(query,
			newsletterID,
			items[i].Subject,
			items[i].Topic,
			items[i].StartDate,
			items[i].EndDate,
		); err != nil {
			return fmt.Errorf("failed to insert curriculum item %q: %v", items[i].Topic, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit curriculum items: %v", err)
	}
	return nil
}

// GetCurrentCurriculum returns the curriculum items active on the given date
// across all of the user's newsletters. Items with an open end date stay
// active from their start date onwards.
func (r *NewsletterRepository) GetCurrentCurriculum(userID int64, asOf time.Time) ([]models.CurriculumItem, error) {
	query := `
		SELECT ci.* FROM curriculum_items ci
		JOIN newsletters n ON ci.newsletter_id = n.id
		WHERE n.user_id = ?
		AND ci.start_date <= ?
		AND (ci.end_date IS NULL OR ci.end_date >= ?)
		ORDER BY ci.start_date ASC
	`
	if DB.DriverName() == "postgres" {
		query = `
			SELECT ci.* FROM curriculum_items ci
			JOIN newsletters n ON ci.newsletter_id = n.id
			WHERE n.user_id = $1
			AND ci.start_date <= $2
			AND (ci.end_date IS NULL OR ci.end_date >= $3)
			ORDER BY ci.start_date ASC
		`
	}

	var items []models.CurriculumItem
	if err := DB.Select(&items, query, userID, asOf, asOf); err != nil {
		return nil, fmt.Errorf("failed to get current curriculum: %v", err)
	}
	return items, nil
}

// GetAllCurriculum returns every curriculum item for the user
func (r *NewsletterRepository) GetAllCurriculum(userID int64) ([]models.CurriculumItem, error) {
	query := `
		SELECT ci.* FROM curriculum_items ci
		JOIN newsletters n ON ci.newsletter_id = n.id
		WHERE n.user_id = ?
		ORDER BY ci.start_date ASC
	`
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var items []models.CurriculumItem
	if err := DB.Select(&items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get curriculum: %v", err)
	}
	return items, nil
}
