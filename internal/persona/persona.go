// Package persona loads the natural-language instruction documents that
// define the assistant's tone and behavior for a given business type, and
// injects session business context into them.
package persona

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/config"
)

const defaultPersonaName = "default"

// Manager resolves persona names to prompt documents stored as flat text
// files in a single directory. Lookups fail open: a missing persona falls
// back to the default document, and a missing default degrades to an empty
// prompt rather than failing the call.
type Manager struct {
	dir string
}

func NewManager(cfg config.PersonaConfig) *Manager {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = config.DefaultPersonaDir
	}
	return &Manager{dir: dir}
}

// Load returns the persona text for name, falling back to the default
// persona when the named document is absent. It never returns an error: a
// degraded greeting is preferable to a dropped call.
func (m *Manager) Load(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultPersonaName
	}

	text, err := m.read(name)
	if err == nil {
		return text
	}

	if name != defaultPersonaName {
		slog.Warn("Persona not found, using default", "persona", name, "error", err)
		if text, err = m.read(defaultPersonaName); err == nil {
			return text
		}
	}

	slog.Error("Default persona not found, proceeding without persona text", "dir", m.dir, "error", err)
	return ""
}

// List enumerates available persona names in sorted order.
func (m *Manager) List() []string {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	sort.Strings(names)
	return names
}

func (m *Manager) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
