package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studyplanner/internal/database"
	"github.com/example/studyplanner/pkg/models"
)

// Notifier delivers review reminders to students
type Notifier interface {
	SendReminder(user *models.User, dueCount int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly check for users whose reminder hour has arrived
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders finds users with reminders due this hour and tells
// them how many topics are waiting for review
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().UTC().Hour()

	userRepo := database.NewUserRepository()
	historyRepo := database.NewLearningHistoryRepository()

	users, err := userRepo.GetUsersForNotification(currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for i := range users {
		user := users[i]
		due, err := historyRepo.GetDueForUser(user.ID, time.Now())
		if err != nil {
			log.Printf("Error getting due topics for user %d: %v", user.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.SendReminder(&user, len(due)); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	user, err := database.NewUserRepository().GetByID(userID)
	if err != nil {
		return err
	}

	due, err := database.NewLearningHistoryRepository().GetDueForUser(userID, time.Now())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	return s.notifier.SendReminder(user, len(due))
}
