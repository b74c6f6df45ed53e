// Package trans is the localization lookup for the framework's fixed
// user-facing strings. Message tables are plain YAML maps; a missing key
// falls back to the built-in english text so the framework never renders an
// empty message.
package trans

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Message keys used by the lifecycle controller.
const (
	KeyAnotherUserModified = "anotherUserModified"
	KeyPleaseRetry         = "pleaseRetry"
	KeyUnknownPostBack     = "unknownPostBack"
)

var defaults = map[string]string{
	KeyAnotherUserModified: "Another user may have modified this page. Please check the data and try again.",
	KeyPleaseRetry:         "Something went wrong with your submission. Please try again.",
	KeyUnknownPostBack:     "The action you requested is no longer available on this page.",
}

// Translator a thread-safe message table
type Translator struct {
	mu       sync.RWMutex
	messages map[string]string
}

func New() *Translator {
	return &Translator{messages: map[string]string{}}
}

// Get the translated message for key, falling back to the built-in text
func (t *Translator) Get(key string) string {
	t.mu.RLock()
	message, exists := t.messages[key]
	t.mu.RUnlock()
	if exists {
		return message
	}
	return defaults[key]
}

// Set overrides one message
func (t *Translator) Set(key, message string) {
	t.mu.Lock()
	t.messages[key] = message
	t.mu.Unlock()
}

// LoadFile merges a YAML message table into the translator
func (t *Translator) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return t.Load(data)
}

// Load merges a YAML message table
func (t *Translator) Load(data []byte) error {
	table := map[string]string{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return err
	}
	t.mu.Lock()
	for key, message := range table {
		t.messages[key] = message
	}
	t.mu.Unlock()
	return nil
}
