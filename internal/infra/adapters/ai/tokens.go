package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates prompt tokens with tiktoken encodings, cached per model.
// Encodings are loaded lazily; the first call for a model may fetch BPE ranks.
type TokenCounter struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{encs: make(map[string]*tiktoken.Tiktoken)}
}

func (t *TokenCounter) Count(model, text string) (int, error) {
	enc, err := t.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

func (t *TokenCounter) encoding(model string) (*tiktoken.Tiktoken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enc, ok := t.encs[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// unknown to tiktoken (gateway aliases, gemini): use the gpt-4o encoding
		enc, err = tiktoken.GetEncoding("o200k_base")
		if err != nil {
			return nil, err
		}
	}
	t.encs[model] = enc
	return enc, nil
}
