// Package cache defines the LLM cache contract shared by its bindings:
// generations are cached per prompt and per llm identity string, so two
// differently configured models never share entries.
package cache

import (
	"context"
	"fmt"

	"github.com/minio/highwayhash"
	"github.com/viant/vendly/llms"
)

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// LLMCache caches model generations keyed by prompt and llm identity string.
type LLMCache interface {
	// Lookup returns the cached generations, or nil when absent.
	Lookup(ctx context.Context, prompt, llmString string) ([]llms.Generation, error)
	// Update stores generations for the prompt.
	Update(ctx context.Context, prompt, llmString string, generations []llms.Generation) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// Key derives a stable cache key from a prompt and llm identity string.
func Key(prompt, llmString string) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err = h.Write([]byte(prompt)); err != nil {
		return "", err
	}
	if _, err = h.Write([]byte{0}); err != nil {
		return "", err
	}
	if _, err = h.Write([]byte(llmString)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
