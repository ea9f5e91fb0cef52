package cache

import (
	"context"

	"github.com/viant/vendly/llms"
)

// Memory is an in-process LLMCache for tests and single-process use.
type Memory struct {
	entries *Map[string, []llms.Generation]
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: NewMap[string, []llms.Generation]()}
}

// Lookup returns the cached generations, or nil when absent.
func (m *Memory) Lookup(ctx context.Context, prompt, llmString string) ([]llms.Generation, error) {
	key, err := Key(prompt, llmString)
	if err != nil {
		return nil, err
	}
	generations, ok := m.entries.Get(key)
	if !ok {
		return nil, nil
	}
	out := make([]llms.Generation, len(generations))
	copy(out, generations)
	return out, nil
}

// Update stores generations for the prompt.
func (m *Memory) Update(ctx context.Context, prompt, llmString string, generations []llms.Generation) error {
	key, err := Key(prompt, llmString)
	if err != nil {
		return err
	}
	stored := make([]llms.Generation, len(generations))
	copy(stored, generations)
	m.entries.Set(key, stored)
	return nil
}

// Clear removes every entry.
func (m *Memory) Clear(ctx context.Context) error {
	m.entries.Clear()
	return nil
}
