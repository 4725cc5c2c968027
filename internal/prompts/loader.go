// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	loaded   map[string]string
	loadErr  error
)

// Get retrieves a prompt template by key from the embedded prompt set.
// Returns an error if the key is not found.
func Get(key string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}

	prompt, exists := loaded[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return prompt, nil
}

// MustGet retrieves a prompt template by key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(key string) string {
	prompt, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// This is a simple template system for prompt customization.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// load reads every embedded JSON file into a single key->template map.
func load() {
	loaded = make(map[string]string)

	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		loadErr = fmt.Errorf("failed to list embedded prompts: %w", err)
		return
	}

	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
			return
		}

		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
			return
		}

		for key, value := range prompts {
			loaded[key] = value
		}
	}
}
