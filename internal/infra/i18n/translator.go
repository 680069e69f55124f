package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = langCode
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// Lang is the language code this translator was loaded for.
func (t *Translator) Lang() string { return t.lang }

// T returns the message for key, formatted with args. Unknown keys return the key itself.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one translator per supported language.
type Bundle struct {
	def   string
	langs map[string]*Translator
}

// NewBundle loads every language in langs. def must be one of them.
func NewBundle(fsys fs.FS, def string, langs ...string) (*Bundle, error) {
	b := &Bundle{def: def, langs: make(map[string]*Translator, len(langs))}
	for _, l := range langs {
		t, err := NewTranslator(fsys, l)
		if err != nil {
			return nil, err
		}
		b.langs[l] = t
	}
	if _, ok := b.langs[def]; !ok {
		return nil, fmt.Errorf("default language %q not loaded", def)
	}
	return b, nil
}

// For picks a translator from a Telegram language_code such as "ar", "ar-SA" or "en-US".
// Unsupported or empty codes get the default language.
func (b *Bundle) For(languageCode string) *Translator {
	code := strings.ToLower(strings.TrimSpace(languageCode))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if t, ok := b.langs[code]; ok {
		return t
	}
	return b.langs[b.def]
}

// Default returns the default-language translator.
func (b *Bundle) Default() *Translator { return b.langs[b.def] }
