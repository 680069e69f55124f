package extractlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/repository"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// FileRepo writes one <id>.json per attempt into dir, plus <id>.<ext> for
// kept images.
type FileRepo struct {
	dir    string
	logger *zerolog.Logger
}

// Compile-time check
var _ repository.ExtractionLogRepository = (*FileRepo)(nil)

func NewFileRepo(dir string, logger *zerolog.Logger) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("extraction log dir %s: %w", dir, err)
	}
	l := logger.With().Str("component", "extraction_log").Logger()
	return &FileRepo{dir: dir, logger: &l}, nil
}

func (r *FileRepo) Save(ctx context.Context, rec *repository.ExtractionRecord, image []byte) error {
	if rec == nil || rec.ID == "" {
		return errors.New("extraction record without id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if image != nil {
		name := rec.ID + imageExt(image)
		if err := writeFile(filepath.Join(r.dir, name), image); err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		rec.ImageFile = name
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := writeFile(filepath.Join(r.dir, rec.ID+".json"), b); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (r *FileRepo) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", r.dir, err)
	}

	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() || !ownedName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn().Err(err).Str("file", e.Name()).Msg("failed to remove old extraction log")
			continue
		}
		removed++
	}
	return removed, nil
}

// ownedName reports whether name looks like a file Save wrote: a ULID stem
// with one of the known extensions, optionally left behind as .tmp.
func ownedName(name string) bool {
	name = strings.TrimSuffix(name, ".tmp")
	ext := filepath.Ext(name)
	switch ext {
	case ".json", ".jpg", ".png", ".webp", ".bin":
	default:
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimSuffix(name, ext))
	return err == nil
}

// writeFile writes through a temp file so readers never see a partial record.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func imageExt(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
