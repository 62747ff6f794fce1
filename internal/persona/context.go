package persona

import (
	"sort"
	"strings"
)

// BusinessNamePlaceholder is the token persona documents use where the
// configured business name should appear.
const BusinessNamePlaceholder = "[Business Name]"

// BusinessContext carries the static key/value substitutions injected into a
// persona document for one session.
type BusinessContext struct {
	Name string
	Info map[string]string
}

// Inject renders a complete system prompt from a persona document and
// business context. The context section is rendered in sorted key order so
// the output is deterministic for a given input.
func Inject(personaText string, biz BusinessContext) string {
	result := personaText

	if biz.Name != "" {
		result = strings.ReplaceAll(result, BusinessNamePlaceholder, biz.Name)
	}

	if len(biz.Info) == 0 {
		return result
	}

	keys := make([]string, 0, len(biz.Info))
	for key := range biz.Info {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var section strings.Builder
	section.WriteString("\n\n## Business Context (Current Session)\n")
	for _, key := range keys {
		section.WriteString("- **")
		section.WriteString(titleCase(key))
		section.WriteString("**: ")
		section.WriteString(biz.Info[key])
		section.WriteString("\n")
	}

	return result + section.String()
}

// SystemPrompt is the main entry point: load a persona by name and inject
// the business context.
func (m *Manager) SystemPrompt(name string, biz BusinessContext) string {
	return Inject(m.Load(name), biz)
}

// titleCase turns a snake_case key into a human-readable heading
// ("current_date" -> "Current Date").
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
