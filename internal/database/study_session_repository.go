package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// StudySessionRepository handles read access to the append-only session
// history. Sessions are written through LearningHistoryRepository.SaveReview
// so that the session and the state update commit as one unit.
type StudySessionRepository struct{}

// NewStudySessionRepository creates a new repository instance
func NewStudySessionRepository() *StudySessionRepository {
	return &StudySessionRepository{}
}

// GetRecentForUser returns the most recent sessions for a user
func (r *StudySessionRepository) GetRecentForUser(userID int64, limit int) ([]models.StudySession, error) {
	query := "SELECT * FROM study_sessions WHERE user_id = ? ORDER BY session_date DESC, id DESC LIMIT ?"
	if DB.DriverName() == "postgres" {
		query = "SELECT * FROM study_sessions WHERE user_id = $1 ORDER BY session_date DESC, id DESC LIMIT $2"
	}

	var sessions []models.StudySession
	if err := DB.Select(&sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %v", err)
	}
	return sessions, nil
}

// GetByDate returns all sessions a user recorded on a specific date
func (r *StudySessionRepository) GetByDate(userID int64, sessionDate time.Time) ([]models.StudySession, error) {
	query := "SELECT * FROM study_sessions WHERE user_id = ? AND session_date = ? ORDER BY id ASC"
	if DB.DriverName() == "postgres" {
		query = "SELECT * FROM study_sessions WHERE user_id = $1 AND session_date = $2 ORDER BY id ASC"
	}

	var sessions []models.StudySession
	if err := DB.Select(&sessions, query, userID, sessionDate); err != nil {
		return nil, fmt.Errorf("failed to get sessions by date: %v", err)
	}
	return sessions, nil
}

// GetForTopic returns the session history for one learning history record
func (r *StudySessionRepository) GetForTopic(learningHistoryID int64) ([]models.StudySession, error) {
	query := "SELECT * FROM study_sessions WHERE learning_history_id = ? ORDER BY session_date ASC, id ASC"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
	}

	var sessions []models.StudySession
	if err := DB.Select(&sessions, query, learningHistoryID); err != nil {
		return nil, fmt.Errorf("failed to get sessions for topic: %v", err)
	}
	return sessions, nil
}
