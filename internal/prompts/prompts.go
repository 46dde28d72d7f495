// Package prompts provides versioned LLM prompt templates, embedded at
// compile time. Prompts live in JSON files keyed by "<name>_v<version>" so
// a prompt change is always a new key, never a silent edit.
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
	cacheMu sync.RWMutex
	cache   = make(map[string]map[string]string)
)

// Load returns the prompt with the given name and version from a file.
// The filename should not include a path (e.g. "inbox.json").
func Load(filename, name string, version int) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s_v%d", name, version)
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustLoad is Load for prompts that are required at startup; it panics on a
// missing prompt, which indicates a packaging bug.
func MustLoad(filename, name string, version int) string {
	prompt, err := Load(filename, name, version)
	if err != nil {
		panic(err)
	}
	return prompt
}

// Format replaces {{.Key}} placeholders with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, ok := cache[filename]; ok {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()
	return prompts, nil
}
