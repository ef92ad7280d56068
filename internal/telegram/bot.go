package telegram

import (
	"context"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autocrm/internal/auth"
	"autocrm/internal/session"
)

const (
	resetCmd      = "reset_ctx"
	approvePrefix = "approve:"
	denyPrefix    = "deny:"

	// Telegram rejects messages longer than 4096 characters.
	maxMessageLen = 4000
)

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	files       fileLocator
	httpClient  *http.Client
	authSvc     *auth.Service
	sessions    *session.Store
	processor   *session.Processor
	adminUserID int64
	location    *time.Location
	now         func() time.Time
}

func New(botToken string, authSvc *auth.Service, sessions *session.Store, processor *session.Processor, adminUserID int64, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("🤖 Authorized on account @%s", api.Self.UserName)
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		files:       api,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		authSvc:     authSvc,
		sessions:    sessions,
		processor:   processor,
		adminUserID: adminUserID,
		location:    loc,
		now:         time.Now,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil:
		b.handleIncomingMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

// Notify sends a plain message to the admin chat. It is used by background
// jobs such as the reminder digest.
func (b *Bot) Notify(ctx context.Context, text string) error {
	if b.adminUserID == 0 {
		log.Printf("⚠️ ADMIN_USER not set, dropping notification")
		return nil
	}
	for _, part := range chunk(text, maxMessageLen) {
		if _, err := b.s.Send(tgbotapi.NewMessage(b.adminUserID, part)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) nowTime() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}
