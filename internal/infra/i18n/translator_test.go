//go:build !integration

package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	// 1. Arrange: write a temporary YAML file with test data.
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "test_ar.yaml")
	contentBytes := []byte("greeting: مرحبا\nwelcome_user: مرحبا %s")
	if err := os.WriteFile(filePath, contentBytes, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}

	// 2. Act
	translator, err := newTranslatorFromBytes(data)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	// 3. Assert
	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "مرحبا"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "Sara")
		want := "مرحبا Sara"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestBundle(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("hello: Hello")},
		"locales/ar.yaml": {Data: []byte("hello: أهلا")},
	}
	b, err := NewBundle(fsys, "en", "en", "ar")
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	cases := map[string]string{
		"ar":    "ar",
		"ar-SA": "ar",
		"AR_eg": "ar",
		"en-US": "en",
		"fr":    "en",
		"":      "en",
	}
	for code, want := range cases {
		if got := b.For(code).Lang(); got != want {
			t.Errorf("For(%q) = %s, want %s", code, got, want)
		}
	}

	if _, err := NewBundle(fsys, "fa", "en"); err == nil {
		t.Error("expected an error when the default language is not loaded")
	}
}

func TestEmbeddedLocalesHaveSameKeys(t *testing.T) {
	en, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("load en: %v", err)
	}
	ar, err := NewTranslator(LocalesFS, "ar")
	if err != nil {
		t.Fatalf("load ar: %v", err)
	}
	for k := range en.translations {
		if _, ok := ar.translations[k]; !ok {
			t.Errorf("key %q missing from ar locale", k)
		}
	}
	for k := range ar.translations {
		if _, ok := en.translations[k]; !ok {
			t.Errorf("key %q missing from en locale", k)
		}
	}
}
