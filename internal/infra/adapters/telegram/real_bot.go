package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ramadan-timetable-bot/internal/application"
	"ramadan-timetable-bot/internal/config"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/domain/ports/repository"
	"ramadan-timetable-bot/internal/infra/i18n"
	"ramadan-timetable-bot/internal/infra/logging"
	"ramadan-timetable-bot/internal/infra/metrics"
	"ramadan-timetable-bot/internal/infra/worker"
)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// jobSubmitter queues photo conversions.
type jobSubmitter interface {
	Submit(task worker.Task) error
}

// Compile-time check
var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates with tgbotapi and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	locales     *i18n.Bundle
	rateLimiter repository.RateLimiter
	jobs        jobSubmitter
	httpClient  *http.Client
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	locales *i18n.Bundle,
	rateLimiter repository.RateLimiter,
	jobs jobSubmitter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, facade, locales, rateLimiter, jobs, logger)
}

func newAdapter(
	bot botAPI,
	cfg *config.BotConfig,
	facade *application.BotFacade,
	locales *i18n.Bundle,
	rateLimiter repository.RateLimiter,
	jobs jobSubmitter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if locales == nil {
		return nil, errors.New("locales are nil")
	}
	if jobs == nil {
		return nil, errors.New("job pool is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	l := logger.With().Str("component", "telegram").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		locales:       locales,
		rateLimiter:   rateLimiter,
		jobs:          jobs,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		log:           &l,
		updateWorkers: workers,
	}, nil
}

// StartPolling receives updates until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if err := r.SetMenuCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to set bot commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Int("update_id", update.UpdateID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(updateChan)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	r.log.Info().Int("workers", r.updateWorkers).Msg("telegram polling started")
	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SetMenuCommands publishes the command list in every bundled language.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	tr := r.locales.Default()
	cmds := []tgbotapi.BotCommand{
		{Command: "start", Description: tr.T("cmd_start")},
		{Command: "help", Description: tr.T("cmd_help")},
		{Command: "mappings", Description: tr.T("cmd_mappings")},
		{Command: "stats", Description: tr.T("cmd_stats")},
	}
	_, err := r.bot.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in update handler: %v", rec)
		}
	}()

	ctx = logging.WithTraceID(ctx, logging.NewTraceID())

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)
	ctx = logging.WithChatID(ctx, msg.Chat.ID)
	tr := r.locales.For(msg.From.LanguageCode)

	if msg.IsCommand() {
		cmd := msg.Command()
		handler, ok := r.commandRoutes()[cmd]
		if !ok {
			metrics.IncTelegramCommand("unknown")
			return r.SendMessage(ctx, msg.Chat.ID, tr.T("unknown_command"))
		}
		metrics.IncTelegramCommand("/" + cmd)
		return handler(ctx, tr, msg)
	}

	if len(msg.Photo) > 0 || msg.Document != nil {
		return r.handlePhoto(ctx, tr, msg)
	}
	return r.SendMessage(ctx, msg.Chat.ID, tr.T("send_photo_hint"))
}

// SendMessage sends plain text to chatID.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := r.send(ctx, "sendMessage", tgbotapi.NewMessage(chatID, text))
	return err
}

// sendMessages sends texts in order and stops at the first failure.
func (r *RealTelegramBotAdapter) sendMessages(ctx context.Context, chatID int64, texts []string) error {
	for _, t := range texts {
		if err := r.SendMessage(ctx, chatID, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "ramadan_timetable.png", Bytes: png})
	photo.Caption = caption
	_, err := r.send(ctx, "sendPhoto", photo)
	return err
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := r.send(ctx, "sendDocument", doc)
	return err
}

func (r *RealTelegramBotAdapter) send(ctx context.Context, method string, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := ctx.Err(); err != nil {
		return tgbotapi.Message{}, err
	}
	m, err := r.bot.Send(c)
	if err != nil {
		metrics.IncTelegramSendError(method)
		logging.With(ctx, r.log).Warn().Err(err).Str("method", method).Msg("telegram send failed")
	}
	return m, err
}

// request is for calls whose result is not a Message (edit, delete, answer callback).
func (r *RealTelegramBotAdapter) request(ctx context.Context, method string, c tgbotapi.Chattable) error {
	if _, err := r.bot.Request(c); err != nil {
		metrics.IncTelegramSendError(method)
		logging.With(ctx, r.log).Debug().Err(err).Str("method", method).Msg("telegram request failed")
		return err
	}
	return nil
}
