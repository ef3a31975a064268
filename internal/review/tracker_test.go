package review

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyplanner/pkg/models"
)

type stateKey struct {
	userID  int64
	subject string
	topic   string
}

// fakeStore is an in-memory Store. saveErr, when set, is returned from
// SaveReview before anything is written, which models a failed transaction.
type fakeStore struct {
	states   map[stateKey]models.LearningHistory
	sessions []models.StudySession
	nextID   int64
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[stateKey]models.LearningHistory)}
}

func (f *fakeStore) GetState(userID int64, subject, topic string) (*models.LearningHistory, error) {
	s, ok := f.states[stateKey{userID, subject, topic}]
	if !ok {
		return nil, nil
	}
	copied := s
	return &copied, nil
}

func (f *fakeStore) CreateState(state *models.LearningHistory) error {
	f.nextID++
	state.ID = f.nextID
	f.states[stateKey{state.UserID, state.Subject, state.Topic}] = *state
	return nil
}

func (f *fakeStore) SaveReview(session *models.StudySession, state *models.LearningHistory) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	session.ID = f.nextID
	f.sessions = append(f.sessions, *session)
	f.states[stateKey{state.UserID, state.Subject, state.Topic}] = *state
	return nil
}

func (f *fakeStore) QueryStates(userID int64) ([]models.LearningHistory, error) {
	var out []models.LearningHistory
	for _, s := range f.states {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestInitializeTopicUsesCurriculumStartDate(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	// The school introduces the topic on March 3rd, so the first review is
	// due March 4th regardless of when the newsletter was uploaded.
	lh, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 3))
	require.NoError(t, err)

	assert.Equal(t, 2.5, lh.EasinessFactor)
	assert.Equal(t, 1, lh.Interval)
	assert.Equal(t, 0, lh.Repetitions)
	assert.Nil(t, lh.LastReviewed)
	assert.Equal(t, date(2024, time.March, 4), lh.NextReview)
	assert.NotZero(t, lh.ID)
}

func TestInitializeTopicTwiceConflicts(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 3))
	require.NoError(t, err)

	_, err = tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 5))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, store.states, 1)
}

func TestRecordSessionValidation(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 3))
	require.NoError(t, err)
	before, err := store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)

	cases := []struct {
		name string
		req  SessionRequest
	}{
		{"unknown session type", SessionRequest{
			UserID: 1, Subject: "Math", Topic: "Fractions",
			SessionType: "cram", QualityRating: intPtr(4),
		}},
		{"review without rating", SessionRequest{
			UserID: 1, Subject: "Math", Topic: "Fractions",
			SessionType: models.SessionTypeReview,
		}},
		{"rating above range", SessionRequest{
			UserID: 1, Subject: "Math", Topic: "Fractions",
			SessionType: models.SessionTypeReview, QualityRating: intPtr(6),
		}},
		{"rating below range", SessionRequest{
			UserID: 1, Subject: "Math", Topic: "Fractions",
			SessionType: models.SessionTypeStudy, QualityRating: intPtr(-1),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tracker.RecordSession(tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// No session was appended and the state is untouched.
	assert.Empty(t, store.sessions)
	after, err := store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRecordSessionUnknownTopic(t *testing.T) {
	tracker := NewTracker(newFakeStore())

	_, err := tracker.RecordSession(SessionRequest{
		UserID:        1,
		Subject:       "Math",
		Topic:         "Fractions",
		SessionDate:   date(2024, time.March, 4),
		SessionType:   models.SessionTypeReview,
		QualityRating: intPtr(4),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

// A study session without an explicit rating is scored as quality 4
// ("correct response after some hesitation"), which leaves the EF at 2.5 and
// moves the topic onto the first rung of the ladder.
func TestStudySessionDefaultsToQualityFour(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "English", "Rhyming words", date(2024, time.March, 3))
	require.NoError(t, err)

	session, err := tracker.RecordSession(SessionRequest{
		UserID:      1,
		Subject:     "English",
		Topic:       "Rhyming words",
		SessionDate: date(2024, time.March, 4),
		SessionType: models.SessionTypeStudy,
	})
	require.NoError(t, err)
	assert.Nil(t, session.QualityRating)

	lh, err := store.GetState(1, "English", "Rhyming words")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, lh.EasinessFactor, 1e-9)
	assert.Equal(t, 1, lh.Repetitions)
	assert.Equal(t, 1, lh.Interval)
	assert.Equal(t, date(2024, time.March, 5), lh.NextReview)
	require.NotNil(t, lh.LastReviewed)
	assert.Equal(t, date(2024, time.March, 4), *lh.LastReviewed)
}

func TestRecordReviewAdvancesState(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.January, 1))
	require.NoError(t, err)

	// Perfect recall on January 2nd.
	_, err = tracker.RecordSession(SessionRequest{
		UserID: 1, Subject: "Math", Topic: "Fractions",
		SessionDate: date(2024, time.January, 2),
		SessionType: models.SessionTypeReview, QualityRating: intPtr(5),
	})
	require.NoError(t, err)

	lh, err := store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)
	assert.InDelta(t, 2.6, lh.EasinessFactor, 1e-9)
	assert.Equal(t, 1, lh.Repetitions)
	assert.Equal(t, date(2024, time.January, 3), lh.NextReview)

	// Lapse on January 3rd.
	_, err = tracker.RecordSession(SessionRequest{
		UserID: 1, Subject: "Math", Topic: "Fractions",
		SessionDate: date(2024, time.January, 3),
		SessionType: models.SessionTypeReview, QualityRating: intPtr(2),
	})
	require.NoError(t, err)

	lh, err = store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)
	assert.InDelta(t, 2.28, lh.EasinessFactor, 1e-9)
	assert.Equal(t, 0, lh.Repetitions)
	assert.Equal(t, 1, lh.Interval)
	assert.Equal(t, date(2024, time.January, 4), lh.NextReview)

	assert.Len(t, store.sessions, 2)
}

// When the store's atomic write fails, neither the session nor the state
// update may be observable afterwards.
func TestRecordSessionIsAtomicOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.January, 1))
	require.NoError(t, err)
	before, err := store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)

	store.saveErr = fmt.Errorf("disk full")

	_, err = tracker.RecordSession(SessionRequest{
		UserID: 1, Subject: "Math", Topic: "Fractions",
		SessionDate: date(2024, time.January, 2),
		SessionType: models.SessionTypeReview, QualityRating: intPtr(5),
	})
	require.Error(t, err)

	after, err := store.GetState(1, "Math", "Fractions")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, store.sessions)
}

func TestRecordSessionPropagatesConflict(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.January, 1))
	require.NoError(t, err)

	store.saveErr = fmt.Errorf("learning history 1: %w", ErrConflict)

	_, err = tracker.RecordSession(SessionRequest{
		UserID: 1, Subject: "Math", Topic: "Fractions",
		SessionDate: date(2024, time.January, 2),
		SessionType: models.SessionTypeReview, QualityRating: intPtr(3),
	})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestSyncCurriculumInitializesOnlyNewTopics(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Counting to 100", date(2024, time.March, 1))
	require.NoError(t, err)

	items := []models.CurriculumItem{
		{Subject: "Math", Topic: "Counting to 100", StartDate: date(2024, time.March, 1)},
		{Subject: "English", Topic: "Rhyming words", StartDate: date(2024, time.March, 6)},
		{Subject: "EVS", Topic: "Plants around us", StartDate: date(2024, time.March, 10)},
	}

	created, err := tracker.SyncCurriculum(1, items)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, store.states, 3)

	// Re-running the sync is a no-op.
	created, err = tracker.SyncCurriculum(1, items)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	lh, err := store.GetState(1, "English", "Rhyming words")
	require.NoError(t, err)
	require.NotNil(t, lh)
	assert.Equal(t, date(2024, time.March, 7), lh.NextReview)
}

func TestDueTopicsFiltersAndOrders(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 1))
	require.NoError(t, err)
	_, err = tracker.InitializeTopic(1, "English", "Rhyming words", date(2024, time.March, 5))
	require.NoError(t, err)
	_, err = tracker.InitializeTopic(1, "EVS", "Plants around us", date(2024, time.March, 20))
	require.NoError(t, err)
	// Another student's topic must not leak into the result.
	_, err = tracker.InitializeTopic(2, "Math", "Fractions", date(2024, time.March, 1))
	require.NoError(t, err)

	due, err := tracker.DueTopics(1, date(2024, time.March, 10))
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, "Fractions", due[0].Topic) // Due March 2nd, most overdue
	assert.Equal(t, "Rhyming words", due[1].Topic)
	for _, lh := range due {
		assert.Equal(t, int64(1), lh.UserID)
	}
}

func TestDueTopicsIsIdempotent(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	_, err := tracker.InitializeTopic(1, "Math", "Fractions", date(2024, time.March, 1))
	require.NoError(t, err)
	_, err = tracker.InitializeTopic(1, "English", "Rhyming words", date(2024, time.March, 2))
	require.NoError(t, err)

	first, err := tracker.DueTopics(1, date(2024, time.March, 10))
	require.NoError(t, err)
	second, err := tracker.DueTopics(1, date(2024, time.March, 10))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDueTopicsEmptyForUnknownUser(t *testing.T) {
	tracker := NewTracker(newFakeStore())

	due, err := tracker.DueTopics(42, date(2024, time.March, 10))
	require.NoError(t, err)
	assert.Empty(t, due)
}
