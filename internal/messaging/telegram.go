package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// keyboardColumns is how many quick-reply buttons share a row. Hebrew
// labels are long, so two per row keeps them readable on phones.
const keyboardColumns = 2

// telegramAPI is the slice of the Telegram client the service uses.
// *tgbotapi.BotAPI satisfies it.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramService implements Service over the Telegram Bot API using
// long polling.
type TelegramService struct {
	api       telegramAPI
	responses chan Inbound

	stopOnce sync.Once
	done     chan struct{}
}

// NewTelegramService connects to Telegram with the given bot token.
func NewTelegramService(token string) (*TelegramService, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	slog.Info("Telegram bot authorized", "username", api.Self.UserName)
	return newTelegramService(api), nil
}

func newTelegramService(api telegramAPI) *TelegramService {
	return &TelegramService{
		api:       api,
		responses: make(chan Inbound, 64),
		done:      make(chan struct{}),
	}
}

// SendMessage sends text with an optional quick-reply keyboard.
func (s *TelegramService) SendMessage(ctx context.Context, userID int64, text string, options []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(userID, text)
	if len(options) > 0 {
		msg.ReplyMarkup = quickReplyKeyboard(options)
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", userID, err)
	}
	return nil
}

// quickReplyKeyboard lays the options out in fixed-width rows.
func quickReplyKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for start := 0; start < len(options); start += keyboardColumns {
		end := start + keyboardColumns
		if end > len(options) {
			end = len(options)
		}
		var row []tgbotapi.KeyboardButton
		for _, o := range options[start:end] {
			row = append(row, tgbotapi.NewKeyboardButton(o))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// Start begins long polling for updates and feeds text messages into
// the responses channel until the context is canceled or Stop is
// called.
func (s *TelegramService) Start(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := s.api.GetUpdatesChan(cfg)

	go func() {
		defer close(s.responses)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || update.Message.Text == "" {
					continue
				}
				in := Inbound{
					UserID: update.Message.Chat.ID,
					Text:   update.Message.Text,
				}
				select {
				case s.responses <- in:
				case <-ctx.Done():
					return
				case <-s.done:
					return
				}
			}
		}
	}()
	slog.Info("Telegram long polling started")
	return nil
}

// Stop ends long polling. Safe to call more than once.
func (s *TelegramService) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		s.api.StopReceivingUpdates()
		slog.Info("Telegram service stopped")
	})
	return nil
}

// Responses returns the incoming message channel.
func (s *TelegramService) Responses() <-chan Inbound {
	return s.responses
}
