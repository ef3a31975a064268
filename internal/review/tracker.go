package review

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/studyplanner/internal/spaced_repetition"
	"github.com/example/studyplanner/pkg/models"
)

// DefaultStudyQuality is applied when a "study" session is recorded without
// an explicit rating. First exposures count as a good response so the topic
// enters the normal review cycle.
const DefaultStudyQuality = spaced_repetition.QualityCorrectHesitation

// Store is the persistence boundary the tracker works against
type Store interface {
	// GetState returns the learning history for a (user, subject, topic),
	// or (nil, nil) when none exists.
	GetState(userID int64, subject, topic string) (*models.LearningHistory, error)
	// CreateState inserts a new learning history record
	CreateState(state *models.LearningHistory) error
	// SaveReview persists the session and the updated state as one atomic
	// unit. Implementations return ErrConflict when the state was modified
	// concurrently; in that case neither record may be written.
	SaveReview(session *models.StudySession, state *models.LearningHistory) error
	// QueryStates returns all learning history records for a user
	QueryStates(userID int64) ([]models.LearningHistory, error)
}

// Tracker orchestrates topic initialization, session recording and due-topic
// queries on top of the SM-2 engine and a Store.
type Tracker struct {
	store Store
	sm2   *spaced_repetition.SM2
}

// NewTracker creates a tracker backed by the given store
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store: store,
		sm2:   spaced_repetition.NewSM2(),
	}
}

// InitializeTopic creates the memory state for a newly introduced topic.
// startDate is the curriculum start date for the topic, not necessarily
// today, so the first due date lines up with when the school introduces the
// material. Called exactly once per (user, subject, topic); a second call
// fails with ErrConflict.
func (t *Tracker) InitializeTopic(userID int64, subject, topic string, startDate time.Time) (*models.LearningHistory, error) {
	existing, err := t.store.GetState(userID, subject, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to look up learning history: %v", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: topic %q/%q already tracked for user %d", ErrConflict, subject, topic, userID)
	}

	state := t.sm2.Initialize(startDate)
	lh := &models.LearningHistory{
		UserID:         userID,
		Subject:        subject,
		Topic:          topic,
		EasinessFactor: state.EasinessFactor,
		Interval:       state.Interval,
		Repetitions:    state.Repetitions,
		LastReviewed:   nil,
		NextReview:     state.NextReview,
	}
	if err := t.store.CreateState(lh); err != nil {
		return nil, fmt.Errorf("failed to create learning history: %v", err)
	}
	return lh, nil
}

// SessionRequest carries the caller input for RecordSession
type SessionRequest struct {
	UserID        int64
	Subject       string
	Topic         string
	SessionDate   time.Time // Defaults to today when zero
	SessionType   string    // models.SessionTypeStudy or models.SessionTypeReview
	QualityRating *int      // 0-5; required for review sessions
	Notes         string
}

// RecordSession appends an immutable session record and advances the topic's
// SM-2 state, persisting both atomically. It is the only path that mutates a
// learning history after initialization.
func (t *Tracker) RecordSession(req SessionRequest) (*models.StudySession, error) {
	if req.SessionType != models.SessionTypeStudy && req.SessionType != models.SessionTypeReview {
		return nil, fmt.Errorf("%w: unknown session type %q", ErrValidation, req.SessionType)
	}
	if req.SessionType == models.SessionTypeReview && req.QualityRating == nil {
		return nil, fmt.Errorf("%w: review session requires a quality rating", ErrValidation)
	}
	if req.QualityRating != nil && (*req.QualityRating < 0 || *req.QualityRating > 5) {
		return nil, fmt.Errorf("%w: quality rating %d outside [0, 5]", ErrValidation, *req.QualityRating)
	}

	sessionDate := req.SessionDate
	if sessionDate.IsZero() {
		sessionDate = time.Now()
	}
	sessionDate = spaced_repetition.TruncateToDay(sessionDate)

	lh, err := t.store.GetState(req.UserID, req.Subject, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to look up learning history: %v", err)
	}
	if lh == nil {
		return nil, fmt.Errorf("%w: %q/%q for user %d", ErrNotFound, req.Subject, req.Topic, req.UserID)
	}

	quality := DefaultStudyQuality
	if req.QualityRating != nil {
		quality = spaced_repetition.QualityResponse(*req.QualityRating)
	}

	state := t.sm2.Recompute(lh.EasinessFactor, lh.Interval, lh.Repetitions, quality, sessionDate)
	lh.EasinessFactor = state.EasinessFactor
	lh.Interval = state.Interval
	lh.Repetitions = state.Repetitions
	lh.NextReview = state.NextReview
	reviewed := sessionDate
	lh.LastReviewed = &reviewed

	session := &models.StudySession{
		UserID:            req.UserID,
		LearningHistoryID: lh.ID,
		SessionDate:       sessionDate,
		SessionType:       req.SessionType,
		QualityRating:     req.QualityRating,
		Notes:             req.Notes,
	}

	if err := t.store.SaveReview(session, lh); err != nil {
		return nil, err
	}
	return session, nil
}

// SyncCurriculum initializes memory state for every curriculum item the user
// is not tracking yet, using each item's start date as the reference date.
// Already-tracked topics are left untouched. Returns the number of topics
// initialized.
func (t *Tracker) SyncCurriculum(userID int64, items []models.CurriculumItem) (int, error) {
	created := 0
	for _, item := range items {
		_, err := t.InitializeTopic(userID, item.Subject, item.Topic, item.StartDate)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to initialize topic %q/%q: %v", item.Subject, item.Topic, err)
		}
		created++
	}
	return created, nil
}

// DueTopics returns every learning history for the user whose next review
// date is on or before asOf, most overdue first. A user with no due topics
// gets an empty slice.
func (t *Tracker) DueTopics(userID int64, asOf time.Time) ([]models.LearningHistory, error) {
	states, err := t.store.QueryStates(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning history: %v", err)
	}

	due := make([]models.LearningHistory, 0)
	for _, s := range states {
		if spaced_repetition.IsDue(s.NextReview, asOf) {
			due = append(due, s)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})
	return due, nil
}
