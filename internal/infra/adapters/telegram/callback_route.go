package telegram

import (
	"context"
	"errors"
	"strings"

	"ramadan-timetable-bot/internal/infra/i18n"
	"ramadan-timetable-bot/internal/infra/logging"
	"ramadan-timetable-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbHelp     = "cmd:help"
	cbMappings = "cmd:mappings"
)

type cbHandler func(ctx context.Context, tr *i18n.Translator, chatID int64) error

func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		cbHelp: func(ctx context.Context, tr *i18n.Translator, chatID int64) error {
			return r.SendMessage(ctx, chatID, r.facade.HandleHelp(tr))
		},
		cbMappings: func(ctx context.Context, tr *i18n.Translator, chatID int64) error {
			return r.sendMessages(ctx, chatID, r.facade.HandleMappings(tr))
		},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop the Telegram spinner when we return
	defer func() { _ = r.request(ctx, "answerCallbackQuery", tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	ctx = logging.WithTgID(ctx, query.From.ID)
	ctx = logging.WithChatID(ctx, chatID)
	tr := r.locales.For(query.From.LanguageCode)

	data := strings.TrimSpace(query.Data)
	fn, ok := r.cbRoutes()[data]
	if !ok {
		return errors.New("unknown callback data")
	}
	metrics.IncTelegramCommand(data)
	return fn(ctx, tr, chatID)
}
