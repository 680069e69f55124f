package telegram

import (
	"context"

	"ramadan-timetable-bot/internal/infra/i18n"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, tr *i18n.Translator, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":    r.handleStartCommand,
		"help":     r.handleHelpCommand,
		"mappings": r.handleMappingsCommand,
		"stats":    r.handleStatsCommand,
	}
}

// handleStartCommand greets the user and offers the help and mapping buttons.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, tr *i18n.Translator, message *tgbotapi.Message) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, r.facade.HandleStart(tr))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(tr.T("button_help"), cbHelp),
			tgbotapi.NewInlineKeyboardButtonData(tr.T("button_mappings"), cbMappings),
		),
	)
	_, err := r.send(ctx, "sendMessage", msg)
	return err
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, tr *i18n.Translator, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp(tr))
}

func (r *RealTelegramBotAdapter) handleMappingsCommand(ctx context.Context, tr *i18n.Translator, message *tgbotapi.Message) error {
	return r.sendMessages(ctx, message.Chat.ID, r.facade.HandleMappings(tr))
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, tr *i18n.Translator, message *tgbotapi.Message) error {
	text, err := r.facade.HandleStats(ctx, tr, message.From.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("stats command failed")
		return r.SendMessage(ctx, message.Chat.ID, tr.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}
