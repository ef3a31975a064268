package notify

import (
	"fmt"
	"log"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studyplanner/pkg/models"
)

// Telegram sends review reminders through a Telegram bot
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram notifier from TELEGRAM_BOT_TOKEN
func NewTelegram() (*Telegram, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %v", err)
	}
	return &Telegram{api: api}, nil
}

// SendReminder implements scheduler.Notifier. Users without a linked
// Telegram chat are skipped silently.
func (t *Telegram) SendReminder(user *models.User, dueCount int) error {
	if user.TelegramID == 0 {
		return nil
	}

	text := fmt.Sprintf("📚 Hi! %s has %d topic(s) due for review today. A quick session keeps them fresh!",
		user.Name, dueCount)
	msg := tgbotapi.NewMessage(user.TelegramID, text)

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %v", err)
	}
	return nil
}

// LogNotifier is a fallback notifier that writes reminders to the log when
// no Telegram token is configured
type LogNotifier struct{}

// SendReminder implements scheduler.Notifier
func (LogNotifier) SendReminder(user *models.User, dueCount int) error {
	log.Printf("Reminder: %s has %d topic(s) due for review", user.Name, dueCount)
	return nil
}
