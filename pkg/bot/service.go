// Package bot runs the Telegram update loop: ingesting owner messages into
// the lifecycle and dispatching action button taps.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"savbot/pkg/chat"
	"savbot/pkg/config"
	"savbot/pkg/store"
	"savbot/pkg/strategy"
)

const greeting = "Hi! Forward or send me messages and I will offer actions for each one."

// Service is the inbound side of the bot: one long-polling loop feeding the
// dispatcher.
type Service struct {
	bot        *telego.Bot
	dispatcher *strategy.Dispatcher
	repo       *store.Repository
	chat       chat.Chat
	allowed    map[int64]struct{}
	log        *slog.Logger
}

// New wires the update loop. An empty allow list accepts every sender, which
// only makes sense for local experiments.
func New(tgBot *telego.Bot, dispatcher *strategy.Dispatcher, repo *store.Repository, ch chat.Chat, cfg config.TelegramConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	var allowed map[int64]struct{}
	if len(cfg.AllowedUsers) > 0 {
		allowed = make(map[int64]struct{}, len(cfg.AllowedUsers))
		for _, id := range cfg.AllowedUsers {
			allowed[id] = struct{}{}
		}
	}
	return &Service{
		bot:        tgBot,
		dispatcher: dispatcher,
		repo:       repo,
		chat:       ch,
		allowed:    allowed,
		log:        log.With("component", "bot"),
	}
}

// Run starts long polling and processes updates until the context ends.
func (s *Service) Run(ctx context.Context) error {
	updates, err := s.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	s.log.Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}
			switch {
			case update.Message != nil:
				s.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				s.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *telego.Message) {
	if msg.From == nil {
		s.log.Debug("Ignoring message without sender")
		return
	}
	if !s.senderAllowed(msg.From.ID) {
		s.log.Debug("Ignoring message from unauthorized sender", "sender_id", msg.From.ID)
		return
	}

	if command := strings.TrimSpace(msg.Text); command == "/start" || command == "/help" || command == "/menu" {
		if _, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(msg.Chat.ID), greeting)); err != nil {
			s.log.Error("Failed to send greeting", "error", err)
		}
		return
	}

	st, ok := Convert(msg)
	if !ok {
		s.log.Debug("Ignoring unsupported message payload", "chat_id", msg.Chat.ID, "message_id", msg.MessageID)
		return
	}

	s.log.Info("Received message", "chat_id", st.ChatID, "message_id", st.MessageID, "kind", st.ContentKind)
	if res := s.dispatcher.AddNewMessage(ctx, st); !res.OK() {
		s.log.Error("Failed to ingest message", "chat_id", st.ChatID, "message_id", st.MessageID, "error", res.Err())
	}
}

func (s *Service) handleCallback(ctx context.Context, query *telego.CallbackQuery) {
	if !s.senderAllowed(query.From.ID) {
		s.log.Debug("Ignoring callback from unauthorized sender", "sender_id", query.From.ID)
		return
	}

	code, recordID, err := chat.DecodeCallback(query.Data)
	if err != nil {
		s.log.Warn("Dropping malformed callback", "data", query.Data)
		s.answer(ctx, query.ID, "Unknown button")
		return
	}

	st, err := s.repo.Load(ctx, recordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.answer(ctx, query.ID, "This message is gone")
			return
		}
		s.log.Error("Failed to load record for callback", "record_id", recordID, "error", err)
		s.answer(ctx, query.ID, "Something went wrong")
		return
	}

	s.log.Info("Performing action", "record_id", recordID, "code", code)
	out, res := s.dispatcher.Perform(ctx, st, code)
	if !res.OK() {
		s.log.Error("Action failed", "record_id", recordID, "code", code, "error", res.Err())
		if out.Popup == "" {
			out.Popup = "Action failed"
		}
	}
	s.answer(ctx, query.ID, out.Popup)
}

func (s *Service) answer(ctx context.Context, callbackID, text string) {
	if err := s.chat.AnswerPopup(ctx, callbackID, text); err != nil {
		s.log.Warn("Failed to answer callback", "error", err)
	}
}

// senderAllowed checks the owner allow list. An empty list accepts everyone.
func (s *Service) senderAllowed(senderID int64) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[senderID]
	return ok
}
