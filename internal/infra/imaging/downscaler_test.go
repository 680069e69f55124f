//go:build !integration

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		m.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// withDimensions rewrites the IHDR size of a PNG, leaving the pixel data alone.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	if string(out[12:16]) != "IHDR" {
		t.Fatal("IHDR is not the first chunk")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDownscaler(t *testing.T) {
	t.Run("large image is scaled to fit and re-encoded", func(t *testing.T) {
		d := NewDownscaler(100)
		out, err := d.Prepare(adapter.Image{Data: pngOf(t, 400, 200), MIMEType: "image/png"})
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if out.MIMEType != "image/jpeg" {
			t.Errorf("expected jpeg output, got %s", out.MIMEType)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
		if err != nil {
			t.Fatalf("output must decode: %v", err)
		}
		if format != "jpeg" || cfg.Width != 100 || cfg.Height != 50 {
			t.Errorf("expected 100x50 jpeg, got %dx%d %s", cfg.Width, cfg.Height, format)
		}
	})

	t.Run("small image is passed through", func(t *testing.T) {
		in := adapter.Image{Data: pngOf(t, 50, 40), MIMEType: "image/png"}
		out, err := NewDownscaler(100).Prepare(in)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if !bytes.Equal(out.Data, in.Data) || out.MIMEType != "image/png" {
			t.Error("expected the original bytes to be returned")
		}
	})

	t.Run("garbage returns an error", func(t *testing.T) {
		if _, err := NewDownscaler(100).Prepare(adapter.Image{Data: []byte("not an image")}); err == nil {
			t.Error("expected a decode error")
		}
	})

	t.Run("oversized header is rejected before decoding", func(t *testing.T) {
		// --- Arrange ---
		data := withDimensions(t, pngOf(t, 4, 4), 40000, 40000)
		if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err != nil || cfg.Width != 40000 {
			t.Fatalf("crafted header must parse, got %+v %v", cfg, err)
		}

		// --- Act ---
		_, err := NewDownscaler(2048).Prepare(adapter.Image{Data: data, MIMEType: "image/png"})

		// --- Assert ---
		if !errors.Is(err, domain.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
	})

	t.Run("transparent background becomes white", func(t *testing.T) {
		// --- Arrange ---
		m := image.NewNRGBA(image.Rect(0, 0, 400, 200))
		for x := 0; x < 400; x++ {
			m.Set(x, 100, color.Black)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, m); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		out, err := NewDownscaler(100).Prepare(adapter.Image{Data: buf.Bytes(), MIMEType: "image/png"})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		dec, _, err := image.Decode(bytes.NewReader(out.Data))
		if err != nil {
			t.Fatalf("output must decode: %v", err)
		}
		r, g, b, _ := dec.At(5, 5).RGBA()
		if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
			t.Errorf("expected a light pixel where the source was transparent, got %d,%d,%d", r>>8, g>>8, b>>8)
		}
	})
}
