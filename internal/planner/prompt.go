package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/studyplanner/internal/spaced_repetition"
	"github.com/example/studyplanner/pkg/models"
)

// Prompt size guards to keep requests within model context limits
const (
	maxCurriculumItems = 20
	maxDueTopics       = 15
)

// buildSystemPrompt returns the planner instructions shared by all providers
func buildSystemPrompt() string {
	return `You are an expert educational planner specializing in creating balanced study schedules for children using spaced repetition principles.

**Your Responsibilities:**
1. Create daily study plans that balance NEW curriculum topics with REVIEW of previously learned topics
2. Follow the SM-2 spaced repetition algorithm - prioritize topics that are due for review
3. Ensure NO subject is neglected for more than 7 consecutive days
4. Distribute subjects evenly across the week to maintain engagement
5. Respect time constraints (daily duration and weekly frequency)
6. Adapt plans based on upcoming events (e.g., olympiads, tests)
7. Honor the user's focus requests while maintaining balance

**CRITICAL:**
ONLY use subjects and topics from the curriculum data provided. DO NOT make up or invent subjects or topics.

**SM-2 Spaced Repetition Guidelines:**
- Topics listed as due should be prioritized
- Topics not practiced in 7+ days risk being forgotten
- Balance: ~60% time on NEW topics, ~40% on REVIEW topics
- Mix subjects within each day when possible (max 2 subjects per day)

**Output Requirements:**
- Respond with a JSON object: {"weekly_plan": [{"date": "YYYY-MM-DD", "subjects": [...], "topics": [...], "is_new_topic": [...], "duration_minutes": N}], "rationale": "..."}
- Exactly match the requested number of study days
- Stay within daily time limits
- Mark each topic as new or review
- ABSOLUTE HARD LIMIT: maximum 2 topics per day; unscheduled topics carry over to next week`
}

// buildUserPrompt renders the full plan context into the request prompt.
// Overdue-ness is computed relative to the week start date so that repeated
// generations for the same week produce the same prompt.
func buildUserPrompt(ctx PlanContext) string {
	var b strings.Builder

	weekDates := make([]string, 0, ctx.User.WeeklyFrequency)
	for i := 0; i < ctx.User.WeeklyFrequency; i++ {
		weekDates = append(weekDates, ctx.WeekStartDate.AddDate(0, 0, i).Format("2006-01-02"))
	}

	fmt.Fprintf(&b, "**Student Profile:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", ctx.User.Name)
	fmt.Fprintf(&b, "- Grade: %s (%s)\n", ctx.User.Grade, ctx.User.Board)
	fmt.Fprintf(&b, "- Daily Study Duration: %d minutes\n", ctx.User.DailyDurationMinutes)
	fmt.Fprintf(&b, "- Study Days Per Week: %d days\n", ctx.User.WeeklyFrequency)
	fmt.Fprintf(&b, "- Subjects: %s\n\n", strings.Join(ctx.User.SubjectList(), ", "))

	fmt.Fprintf(&b, "**Week to Plan:** %s to %s (%d study days)\n\n",
		weekDates[0], weekDates[len(weekDates)-1], ctx.User.WeeklyFrequency)

	fmt.Fprintf(&b, "**Current Curriculum (New Topics to Cover):**\n%s\n\n", formatCurriculum(ctx.Curriculum))
	fmt.Fprintf(&b, "**Topics Due for Review (SM-2 Algorithm):**\n%s\n\n", formatDueTopics(ctx.DueTopics, ctx.WeekStartDate))
	fmt.Fprintf(&b, "**Learning History Summary:**\n%s\n", formatHistory(ctx.History, ctx.WeekStartDate))

	if ctx.FocusRequest != "" {
		fmt.Fprintf(&b, "\n**User's Focus Request:** %s\n", ctx.FocusRequest)
	}
	if ctx.Events != "" {
		fmt.Fprintf(&b, "\n**Upcoming Events:** %s\n", ctx.Events)
	}

	fmt.Fprintf(&b, "\n**Task:** Generate a %d-day study plan for the dates listed above. "+
		"Each day should total %d minutes. Copy topic names EXACTLY as they appear in the curriculum data. "+
		"Balance new curriculum topics (~60%%) with review topics (~40%%).\n",
		ctx.User.WeeklyFrequency, ctx.User.DailyDurationMinutes)

	return b.String()
}

func formatCurriculum(items []models.CurriculumItem) string {
	if len(items) == 0 {
		return "No new curriculum topics for this period."
	}
	if len(items) > maxCurriculumItems {
		items = items[:maxCurriculumItems]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("  - %s: %s (starts %s)",
			item.Subject, item.Topic, item.StartDate.Format("2006-01-02")))
	}
	return strings.Join(lines, "\n")
}

func formatDueTopics(due []models.LearningHistory, asOf time.Time) string {
	if len(due) == 0 {
		return "No topics currently due for review."
	}
	if len(due) > maxDueTopics {
		due = due[:maxDueTopics]
	}

	lines := make([]string, 0, len(due))
	for _, lh := range due {
		lines = append(lines, fmt.Sprintf("  - %s: %s (due: %s, %d days overdue, easiness: %.1f)",
			lh.Subject, lh.Topic,
			lh.NextReview.Format("2006-01-02"),
			spaced_repetition.DaysOverdue(lh.NextReview, asOf),
			lh.EasinessFactor))
	}
	return strings.Join(lines, "\n")
}

// formatHistory summarizes per-subject practice recency. Topics that were
// never reviewed are skipped: they are new, not overdue.
func formatHistory(history []models.LearningHistory, asOf time.Time) string {
	if len(history) == 0 {
		return "No learning history yet."
	}

	type subjectSummary struct {
		lastDate   time.Time
		topicCount int
	}
	summaries := make(map[string]*subjectSummary)
	order := make([]string, 0)

	for _, lh := range history {
		if lh.LastReviewed == nil {
			continue
		}
		s, ok := summaries[lh.Subject]
		if !ok {
			s = &subjectSummary{lastDate: *lh.LastReviewed}
			summaries[lh.Subject] = s
			order = append(order, lh.Subject)
		}
		s.topicCount++
		if lh.LastReviewed.After(s.lastDate) {
			s.lastDate = *lh.LastReviewed
		}
	}

	if len(summaries) == 0 {
		return "No topics have been practiced yet - focus on introducing new curriculum."
	}

	lines := make([]string, 0, len(order))
	for _, subject := range order {
		s := summaries[subject]
		daysSince := spaced_repetition.DaysOverdue(s.lastDate, asOf)
		lines = append(lines, fmt.Sprintf("  - %s: %d topics practiced, last session %s (%d days ago)",
			subject, s.topicCount, s.lastDate.Format("2006-01-02"), daysSince))
	}
	return strings.Join(lines, "\n")
}
