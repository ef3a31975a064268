package spaced_repetition

import (
	"math"
	"time"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Quality ratings at or above this value count as a successful recall
	PassThreshold int
	// Lower bound for the easiness factor
	MinEasinessFactor float64
	// Easiness factor assigned to newly introduced topics
	InitialEasinessFactor float64
}

// NewSM2 creates a new SM2 instance with the canonical parameters
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:         3,
		MinEasinessFactor:     1.3,
		InitialEasinessFactor: 2.5,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// State holds the SM-2 memory parameters for a single topic
type State struct {
	EasinessFactor float64
	Interval       int // Days until the next review
	Repetitions    int // Consecutive successful reviews since the last lapse
	NextReview     time.Time
}

// Initialize returns the memory state for a newly introduced topic.
// referenceDate is the day the topic is introduced; the first review is due
// the following day.
func (sm *SM2) Initialize(referenceDate time.Time) State {
	ref := TruncateToDay(referenceDate)
	return State{
		EasinessFactor: sm.InitialEasinessFactor,
		Interval:       1,
		Repetitions:    0,
		NextReview:     ref.AddDate(0, 0, 1),
	}
}

// Recompute applies one recorded quality rating to the current memory
// parameters and returns the updated state. It is a pure function: quality is
// clamped into [0, 5] rather than rejected, and the easiness factor never
// drops below MinEasinessFactor.
//
// Interval growth for repeated successes uses round-half-to-even on
// interval * EF, so results are stable on exact .5 boundaries.
func (sm *SM2) Recompute(easinessFactor float64, interval, repetitions int, quality QualityResponse, referenceDate time.Time) State {
	if quality < QualityBlackout {
		quality = QualityBlackout
	}
	if quality > QualityPerfect {
		quality = QualityPerfect
	}

	q := float64(quality)
	newEF := easinessFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if newEF < sm.MinEasinessFactor {
		newEF = sm.MinEasinessFactor
	}

	var newInterval int
	var newRepetitions int

	if int(quality) < sm.PassThreshold {
		// Failed recall: restart the repetition ladder
		newRepetitions = 0
		newInterval = 1
	} else {
		newRepetitions = repetitions + 1

		switch newRepetitions {
		case 1:
			newInterval = 1
		case 2:
			newInterval = 6
		default:
			newInterval = int(math.RoundToEven(float64(interval) * newEF))
		}
	}

	ref := TruncateToDay(referenceDate)
	return State{
		EasinessFactor: newEF,
		Interval:       newInterval,
		Repetitions:    newRepetitions,
		NextReview:     ref.AddDate(0, 0, newInterval),
	}
}

// IsDue reports whether a topic with the given next review date is due as of asOf
func IsDue(nextReview, asOf time.Time) bool {
	return !TruncateToDay(asOf).Before(TruncateToDay(nextReview))
}

// DaysOverdue returns how many whole days past its next review date a topic is,
// or 0 if the review date has not arrived yet
func DaysOverdue(nextReview, asOf time.Time) int {
	days := int(TruncateToDay(asOf).Sub(TruncateToDay(nextReview)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// TruncateToDay normalizes a timestamp to midnight UTC. All SM-2 date
// arithmetic works in whole calendar days.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
