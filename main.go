package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/studyplanner/internal/database"
	"github.com/example/studyplanner/internal/newsletter"
	"github.com/example/studyplanner/internal/notify"
	"github.com/example/studyplanner/internal/planner"
	"github.com/example/studyplanner/internal/review"
	"github.com/example/studyplanner/internal/scheduler"
	"github.com/example/studyplanner/pkg/models"
)

const dateLayout = "2006-01-02"

func usage() {
	fmt.Println(`Study Planner - SM-2 spaced repetition scheduling for kids

Usage: studyplanner <command> [options]

Commands:
  create-profile     Create a new student profile
  view-profile       Show a student profile and progress statistics
  upload-newsletter  Parse a newsletter (.csv/.xlsx) and start tracking its topics
  record-session     Record a study or review session for a topic
  due                List topics due for review
  generate-plan      Generate a weekly study plan with the configured AI provider
  serve              Run the reminder scheduler until interrupted`)
}

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	var err error
	switch os.Args[1] {
	case "create-profile":
		err = runCreateProfile(os.Args[2:])
	case "view-profile":
		err = runViewProfile(os.Args[2:])
	case "upload-newsletter":
		err = runUploadNewsletter(os.Args[2:])
	case "record-session":
		err = runRecordSession(os.Args[2:])
	case "due":
		err = runDue(os.Args[2:])
	case "generate-plan":
		err = runGeneratePlan(os.Args[2:])
	case "serve":
		err = runServe()
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runCreateProfile(args []string) error {
	fs := flag.NewFlagSet("create-profile", flag.ExitOnError)
	name := fs.String("name", "", "Child's name")
	grade := fs.String("grade", "", "Grade/Standard (e.g. UKG, 1st)")
	board := fs.String("board", "", "Board (e.g. CBSE, ICSE)")
	duration := fs.Int("duration", 30, "Daily study duration in minutes")
	frequency := fs.Int("frequency", 6, "Study days per week")
	subjects := fs.String("subjects", "", "Comma-separated subjects (e.g. Math,English,EVS)")
	fs.Parse(args)

	if *name == "" || *grade == "" || *subjects == "" {
		return fmt.Errorf("name, grade and subjects are required")
	}

	user := &models.User{
		Name:                 *name,
		Grade:                *grade,
		Board:                *board,
		DailyDurationMinutes: *duration,
		WeeklyFrequency:      *frequency,
		Subjects:             *subjects,
	}
	if err := database.NewUserRepository().Create(user); err != nil {
		return err
	}

	fmt.Printf("Profile created. User ID: %d\n", user.ID)
	fmt.Printf("  %s, grade %s (%s), %d min/day, %d days/week\n",
		user.Name, user.Grade, user.Board, user.DailyDurationMinutes, user.WeeklyFrequency)
	return nil
}

func runViewProfile(args []string) error {
	fs := flag.NewFlagSet("view-profile", flag.ExitOnError)
	userID := fs.Int64("user", 0, "User ID")
	fs.Parse(args)

	user, err := database.NewUserRepository().GetByID(*userID)
	if err != nil {
		return err
	}

	fmt.Printf("Student Profile\n")
	fmt.Printf("  ID: %d\n  Name: %s\n  Grade: %s (%s)\n", user.ID, user.Name, user.Grade, user.Board)
	fmt.Printf("  Study plan: %d min/day, %d days/week\n", user.DailyDurationMinutes, user.WeeklyFrequency)
	fmt.Printf("  Subjects: %s\n", user.Subjects)

	stats, err := database.NewLearningHistoryRepository().GetUserStatistics(user.ID, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Progress\n")
	fmt.Printf("  Topics tracked: %v\n  Due today: %v\n  Mastered: %v\n  Average easiness: %.2f\n",
		stats["total_topics"], stats["due_today"], stats["mastered"], stats["avg_easiness_factor"])
	return nil
}

func runUploadNewsletter(args []string) error {
	fs := flag.NewFlagSet("upload-newsletter", flag.ExitOnError)
	userID := fs.Int64("user", 0, "User ID")
	file := fs.String("file", "", "Newsletter file path (.csv or .xlsx)")
	month := fs.String("month", "", "Month (e.g. March)")
	year := fs.Int("year", time.Now().Year(), "Year")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("file is required")
	}

	items, err := newsletter.Parse(*file)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d curriculum items\n", len(items))

	repo := database.NewNewsletterRepository()
	n := &models.Newsletter{UserID: *userID, Month: *month, Year: *year, FilePath: *file}
	if err := repo.Create(n); err != nil {
		return err
	}
	if err := repo.AddCurriculumItems(n.ID, items); err != nil {
		return err
	}

	// Start SM-2 tracking for topics that are new to this student
	tracker := review.NewTracker(database.NewLearningHistoryRepository())
	created, err := tracker.SyncCurriculum(*userID, items)
	if err != nil {
		return err
	}
	fmt.Printf("Newsletter %d saved, %d new topics now tracked\n", n.ID, created)
	return nil
}

func runRecordSession(args []string) error {
	fs := flag.NewFlagSet("record-session", flag.ExitOnError)
	userID := fs.Int64("user", 0, "User ID")
	subject := fs.String("subject", "", "Subject")
	topic := fs.String("topic", "", "Topic")
	sessionType := fs.String("type", models.SessionTypeReview, `Session type: "study" or "review"`)
	quality := fs.Int("quality", -1, "Recall quality 0-5 (required for review sessions)")
	dateStr := fs.String("date", "", "Session date YYYY-MM-DD (defaults to today)")
	notes := fs.String("notes", "", "Free-text notes")
	fs.Parse(args)

	req := review.SessionRequest{
		UserID:      *userID,
		Subject:     *subject,
		Topic:       *topic,
		SessionType: *sessionType,
		Notes:       *notes,
	}
	if *quality >= 0 {
		req.QualityRating = quality
	}
	if *dateStr != "" {
		d, err := time.Parse(dateLayout, *dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: %v", *dateStr, err)
		}
		req.SessionDate = d
	}

	tracker := review.NewTracker(database.NewLearningHistoryRepository())
	session, err := tracker.RecordSession(req)
	if err != nil {
		return err
	}

	lh, err := database.NewLearningHistoryRepository().GetByID(session.LearningHistoryID)
	if err != nil {
		return err
	}
	fmt.Printf("Session %d recorded. Next review of %q: %s (interval %d days, EF %.2f)\n",
		session.ID, lh.Topic, lh.NextReview.Format(dateLayout), lh.Interval, lh.EasinessFactor)
	return nil
}

func runDue(args []string) error {
	fs := flag.NewFlagSet("due", flag.ExitOnError)
	userID := fs.Int64("user", 0, "User ID")
	dateStr := fs.String("date", "", "As-of date YYYY-MM-DD (defaults to today)")
	fs.Parse(args)

	asOf := time.Now()
	if *dateStr != "" {
		d, err := time.Parse(dateLayout, *dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: %v", *dateStr, err)
		}
		asOf = d
	}

	tracker := review.NewTracker(database.NewLearningHistoryRepository())
	due, err := tracker.DueTopics(*userID, asOf)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		fmt.Println("No topics due for review. 🎉")
		return nil
	}
	fmt.Printf("%d topic(s) due for review:\n", len(due))
	for _, lh := range due {
		fmt.Printf("  - %s: %s (due %s, EF %.2f, %d repetitions)\n",
			lh.Subject, lh.Topic, lh.NextReview.Format(dateLayout), lh.EasinessFactor, lh.Repetitions)
	}
	return nil
}

func runGeneratePlan(args []string) error {
	fs := flag.NewFlagSet("generate-plan", flag.ExitOnError)
	userID := fs.Int64("user", 0, "User ID")
	weekStart := fs.String("week-start", "", "Week start date YYYY-MM-DD (defaults to today)")
	focus := fs.String("focus", "", `Optional focus request (e.g. "focus on Math")`)
	events := fs.String("events", "", `Optional upcoming events (e.g. "Olympiad on March 20")`)
	fs.Parse(args)

	start := time.Now()
	if *weekStart != "" {
		d, err := time.Parse(dateLayout, *weekStart)
		if err != nil {
			return fmt.Errorf("invalid date %q: %v", *weekStart, err)
		}
		start = d
	}

	gen, err := planner.NewFromEnv()
	if err != nil {
		return err
	}

	log.Println("Generating weekly plan...")
	record, err := planner.GenerateForUser(gen, *userID, start, *focus, *events)
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s generated for week of %s\n", record.PlanID, record.WeekStartDate.Format(dateLayout))
	fmt.Println(record.PlanData)
	return nil
}

func runServe() error {
	var notifier scheduler.Notifier
	tg, err := notify.NewTelegram()
	if err != nil {
		log.Printf("Telegram notifications disabled: %v", err)
		notifier = notify.LogNotifier{}
	} else {
		notifier = tg
	}

	s := scheduler.New(notifier)
	s.Start()
	defer s.Stop()

	log.Println("Scheduler started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
	return nil
}
