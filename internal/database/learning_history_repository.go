package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/studyplanner/internal/review"
	"github.com/example/studyplanner/pkg/models"
)

// LearningHistoryRepository handles database operations for SM-2 learning
// history. It implements review.Store.
type LearningHistoryRepository struct{}

// NewLearningHistoryRepository creates a new repository instance
func NewLearningHistoryRepository() *LearningHistoryRepository {
	return &LearningHistoryRepository{}
}

// GetState returns the learning history for a (user, subject, topic), or
// (nil, nil) when the topic is not tracked yet
func (r *LearningHistoryRepository) GetState(userID int64, subject, topic string) (*models.LearningHistory, error) {
	query := "SELECT * FROM learning_history WHERE user_id = ? AND subject = ? AND topic = ?"
	if DB.DriverName() == "postgres" {
		query = "SELECT * FROM learning_history WHERE user_id = $1 AND subject = $2 AND topic = $3"
	}

	var lh models.LearningHistory
	err := DB.Get(&lh, query, userID, subject, topic)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning history: %v", err)
	}
	return &lh, nil
}

// GetByID returns a learning history record by its ID
func (r *LearningHistoryRepository) GetByID(id int64) (*models.LearningHistory, error) {
	query := "SELECT * FROM learning_history WHERE id = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var lh models.LearningHistory
	if err := DB.Get(&lh, query, id); err != nil {
		return nil, fmt.Errorf("failed to get learning history by ID: %v", err)
	}
	return &lh, nil
}

// CreateState inserts a new learning history record
func (r *LearningHistoryRepository) CreateState(state *models.LearningHistory) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO learning_history (
				user_id, subject, topic, easiness_factor, interval,
				repetitions, last_reviewed, next_review
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRow(
			query,
			state.UserID,
			state.Subject,
			state.Topic,
			state.EasinessFactor,
			state.Interval,
			state.Repetitions,
			state.LastReviewed,
			state.NextReview,
		).Scan(&state.ID, &state.CreatedAt, &state.UpdatedAt)
	}

	// SQLite
	result, err := DB.Exec(`
		INSERT INTO learning_history (
			user_id, subject, topic, easiness_factor, interval,
			repetitions, last_reviewed, next_review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		state.UserID,
		state.Subject,
		state.Topic,
		state.EasinessFactor,
		state.Interval,
		state.Repetitions,
		state.LastReviewed,
		state.NextReview,
	)
	if err != nil {
		return fmt.Errorf("failed to create learning history: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	state.ID = id
	return nil
}

// SaveReview persists a session record and the recomputed state in a single
// transaction. The state row is updated with an optimistic version check;
// when another writer got there first no row matches, nothing is written,
// and review.ErrConflict is returned so the caller can reload and retry.
func (r *LearningHistoryRepository) SaveReview(session *models.StudySession, state *models.LearningHistory) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE learning_history SET
			easiness_factor = ?,
			interval = ?,
			repetitions = ?,
			last_reviewed = ?,
			next_review = ?,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`
	if DB.DriverName() == "postgres" {
		updateQuery = `
			UPDATE learning_history SET
				easiness_factor = $1,
				interval = $2,
				repetitions = $3,
				last_reviewed = $4,
				next_review = $5,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $6 AND version = $7
		`
	}

	result, err := tx.Exec(
		updateQuery,
		state.EasinessFactor,
		state.Interval,
		state.Repetitions,
		state.LastReviewed,
		state.NextReview,
		state.ID,
		state.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update learning history: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("learning history %d was modified concurrently: %w", state.ID, review.ErrConflict)
	}

	if DB.DriverName() == "postgres" {
		err = tx.QueryRow(`
			INSERT INTO study_sessions (
				user_id, learning_history_id, session_date, session_type, quality_rating, notes
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			session.UserID,
			session.LearningHistoryID,
			session.SessionDate,
			session.SessionType,
			session.QualityRating,
			session.Notes,
		).Scan(&session.ID)
		if err != nil {
			return fmt.Errorf("failed to insert study session: %v", err)
		}
	} else {
		result, err := tx.Exec(`
			INSERT INTO study_sessions (
				user_id, learning_history_id, session_date, session_type, quality_rating, notes
			) VALUES (?, ?, ?, ?, ?, ?)`,
			session.UserID,
			session.LearningHistoryID,
			session.SessionDate,
			session.SessionType,
			session.QualityRating,
			session.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert study session: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		session.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %v", err)
	}
	state.Version++
	return nil
}

// QueryStates returns all learning history records for a user
func (r *LearningHistoryRepository) QueryStates(userID int64) ([]models.LearningHistory, error) {
	query := "SELECT * FROM learning_history WHERE user_id = ? ORDER BY next_review ASC"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var states []models.LearningHistory
	if err := DB.Select(&states, query, userID); err != nil {
		return nil, fmt.Errorf("failed to query learning history: %v", err)
	}
	return states, nil
}

// GetDueForUser returns learning history records whose next review date has
// passed as of the given date, most overdue first
func (r *LearningHistoryRepository) GetDueForUser(userID int64, asOf time.Time) ([]models.LearningHistory, error) {
	query := "SELECT * FROM learning_history WHERE user_id = ? AND next_review <= ? ORDER BY next_review ASC"
	if DB.DriverName() == "postgres" {
		query = "SELECT * FROM learning_history WHERE user_id = $1 AND next_review <= $2 ORDER BY next_review ASC"
	}

	var states []models.LearningHistory
	if err := DB.Select(&states, query, userID, asOf); err != nil {
		return nil, fmt.Errorf("failed to get due topics: %v", err)
	}
	return states, nil
}

// GetUserStatistics returns summary statistics about a user's review progress
func (r *LearningHistoryRepository) GetUserStatistics(userID int64, asOf time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	q1 := "SELECT COUNT(*) FROM learning_history WHERE user_id = ?"
	q2 := "SELECT COUNT(*) FROM learning_history WHERE user_id = ? AND next_review <= ?"
	q3 := "SELECT COUNT(*) FROM learning_history WHERE user_id = ? AND repetitions >= 5 AND interval >= 30"
	q4 := "SELECT COALESCE(AVG(easiness_factor), 2.5) FROM learning_history WHERE user_id = ?"
	if DB.DriverName() == "postgres" {
		q1 = strings.Replace(q1, "?", "$1", 1)
		q2 = "SELECT COUNT(*) FROM learning_history WHERE user_id = $1 AND next_review <= $2"
		q3 = strings.Replace(q3, "?", "$1", 1)
		q4 = strings.Replace(q4, "?", "$1", 1)
	}

	var totalTopics int
	if err := DB.Get(&totalTopics, q1, userID); err != nil {
		return nil, err
	}
	stats["total_topics"] = totalTopics

	var dueToday int
	if err := DB.Get(&dueToday, q2, userID, asOf); err != nil {
		return nil, err
	}
	stats["due_today"] = dueToday

	// A topic counts as mastered after 5 successful reviews once its
	// interval has grown past a month.
	var mastered int
	if err := DB.Get(&mastered, q3, userID); err != nil {
		return nil, err
	}
	stats["mastered"] = mastered

	var avgEF float64
	if err := DB.Get(&avgEF, q4, userID); err != nil {
		return nil, err
	}
	stats["avg_easiness_factor"] = avgEF

	return stats, nil
}
