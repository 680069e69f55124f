package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/infra/i18n"
	"ramadan-timetable-bot/internal/infra/logging"
	"ramadan-timetable-bot/internal/infra/metrics"
	red "ramadan-timetable-bot/internal/infra/redis"
	"ramadan-timetable-bot/internal/usecase"
)

const (
	// Bot API download limit.
	maxDownloadBytes = 20 << 20
	jobTimeout       = 3 * time.Minute
	calendarFileName = "ramadan_timetable.ics"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type upload struct {
	fileID   string
	mimeType string
}

// pickUpload chooses the largest photo size, or an image document sent as a file.
func pickUpload(msg *tgbotapi.Message) (upload, error) {
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return upload{fileID: best.FileID, mimeType: "image/jpeg"}, nil
	}
	if d := msg.Document; d != nil {
		mime := strings.ToLower(d.MimeType)
		if !supportedImageTypes[mime] {
			return upload{}, fmt.Errorf("%w: document type %q", domain.ErrUnsupportedMedia, d.MimeType)
		}
		if d.FileSize > maxDownloadBytes {
			return upload{}, fmt.Errorf("%w: document too large (%d bytes)", domain.ErrUnsupportedMedia, d.FileSize)
		}
		return upload{fileID: d.FileID, mimeType: mime}, nil
	}
	return upload{}, domain.ErrUnsupportedMedia
}

// handlePhoto validates and rate-limits the upload, then queues the conversion.
func (r *RealTelegramBotAdapter) handlePhoto(ctx context.Context, tr *i18n.Translator, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	log := logging.With(ctx, r.log)

	up, err := pickUpload(msg)
	if err != nil {
		log.Info().Err(err).Msg("rejected upload")
		return r.sendMessages(ctx, chatID, r.facade.ErrorMessage(tr, err))
	}

	if r.rateLimiter != nil && r.cfg.RateLimitPerMinute > 0 {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(msg.From.ID, "photo"), r.cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.sendMessages(ctx, chatID, r.facade.ErrorMessage(tr, domain.ErrRateLimited))
		}
	}

	progress, err := r.send(ctx, "sendMessage", tgbotapi.NewMessage(chatID, tr.T("progress_received")))
	if err != nil {
		return err
	}

	traceID := logging.TraceID(ctx)
	tgID := msg.From.ID
	err = r.jobs.Submit(func(poolCtx context.Context) error {
		jobCtx := logging.WithTraceID(poolCtx, traceID)
		jobCtx = logging.WithTgID(jobCtx, tgID)
		jobCtx = logging.WithChatID(jobCtx, chatID)
		jobCtx, cancel := context.WithTimeout(jobCtx, jobTimeout)
		defer cancel()
		return r.convert(jobCtx, tr, chatID, progress.MessageID, up)
	})
	if err != nil {
		log.Warn().Err(err).Msg("conversion not queued")
		r.finishProgress(ctx, chatID, progress.MessageID)
		return r.sendMessages(ctx, chatID, r.facade.ErrorMessage(tr, err))
	}
	return nil
}

// convert runs on the worker pool: download, pipeline, reply.
func (r *RealTelegramBotAdapter) convert(ctx context.Context, tr *i18n.Translator, chatID int64, progressID int, up upload) error {
	log := logging.With(ctx, r.log)
	defer r.finishProgress(ctx, chatID, progressID)

	data, err := r.download(ctx, up.fileID)
	if err != nil {
		log.Error().Err(err).Msg("photo download failed")
		if errors.Is(err, domain.ErrUnsupportedMedia) {
			return r.sendMessages(ctx, chatID, r.facade.ErrorMessage(tr, err))
		}
		_ = r.SendMessage(ctx, chatID, tr.T("error_download"))
		return err
	}

	lastText := tr.T("progress_received")
	onProgress := func(stage usecase.Stage, entries int) {
		text := r.facade.ProgressText(tr, stage, entries)
		if text == lastText {
			return
		}
		lastText = text
		_ = r.request(ctx, "editMessageText", tgbotapi.NewEditMessageText(chatID, progressID, text))
	}

	res, err := r.facade.HandleConvert(ctx, adapter.Image{Data: data, MIMEType: up.mimeType}, onProgress)
	observeResult(res, err)
	if err != nil {
		log.Warn().Err(err).Msg("conversion failed")
		_ = r.sendMessages(ctx, chatID, r.facade.ErrorMessage(tr, err))
		return err
	}

	if err := r.SendPhoto(ctx, chatID, res.Image, tr.T("result_caption")); err != nil {
		_ = r.SendMessage(ctx, chatID, tr.T("error_generic"))
		return err
	}
	if err := r.sendMessages(ctx, chatID, r.facade.ResultSummary(tr, res.Conversion)); err != nil {
		return err
	}
	if len(res.Calendar) > 0 {
		if err := r.SendDocument(ctx, chatID, calendarFileName, res.Calendar, tr.T("calendar_caption")); err != nil {
			log.Warn().Err(err).Msg("calendar document not sent")
		}
	}

	log.Info().
		Int("converted", len(res.Conversion.Converted)).
		Int("unmapped", len(res.Conversion.Unmapped)).
		Int("skipped", res.Conversion.Skipped).
		Msg("timetable converted")
	return nil
}

// finishProgress deletes the progress message. It runs detached from ctx so
// a timed-out job still cleans up.
func (r *RealTelegramBotAdapter) finishProgress(ctx context.Context, chatID int64, messageID int) {
	_ = r.request(context.WithoutCancel(ctx), "deleteMessage", tgbotapi.NewDeleteMessage(chatID, messageID))
}

func (r *RealTelegramBotAdapter) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("%w: file larger than %d bytes", domain.ErrUnsupportedMedia, maxDownloadBytes)
	}
	return data, nil
}

func observeResult(res *usecase.ConvertResult, err error) {
	if res != nil {
		for stage, d := range res.Timings {
			metrics.ObserveStage(string(stage), d)
		}
		if res.Extraction != nil {
			metrics.ObserveExtractedEntries(len(res.Extraction.Entries))
		}
		if res.Conversion != nil {
			for _, c := range res.Conversion.Converted {
				metrics.IncMappingResult(string(c.Match))
			}
			for range res.Conversion.Unmapped {
				metrics.IncMappingResult("unmapped")
			}
		}
	}
	if err != nil {
		metrics.IncStageFailure(string(failedStage(res, err)))
	}
}

func failedStage(res *usecase.ConvertResult, err error) usecase.Stage {
	switch {
	case errors.Is(err, domain.ErrRender):
		return usecase.StageRender
	case errors.Is(err, domain.ErrNothingConverted):
		return usecase.StageMap
	case res == nil || res.Extraction == nil:
		return usecase.StageExtract
	default:
		return usecase.StageMap
	}
}
