package evaluation

import (
	"strings"
	"text/template"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-prospect/internal/domain"
)

// RenderPrompt fills a character's input template from the unit's
// feature context. A placeholder with no matching context key is a
// configuration error, not a data condition: the template references a
// feature the pipeline never produced. The error names the closest
// existing key to make the typo findable.
func RenderPrompt(characterName, templateText string, context map[string]string) (string, error) {
	tmpl, err := template.New(characterName).Option("missingkey=error").Parse(templateText)
	if err != nil {
		return "", domain.NewConfigError(
			"characters."+characterName+".input_template", "parse failed: %v", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, context); err != nil {
		field := "characters." + characterName + ".input_template"
		if key, ok := missingKey(err); ok {
			if suggestion := nearestKey(key, context); suggestion != "" {
				return "", domain.NewConfigError(field,
					"no context value for %q (did you mean %q?)", key, suggestion)
			}
			return "", domain.NewConfigError(field, "no context value for %q", key)
		}
		return "", domain.NewConfigError(field, "render failed: %v", err)
	}
	return buf.String(), nil
}

// missingKey extracts the offending key from a missingkey=error
// execution error, which ends in `... no entry for key "name"`.
func missingKey(err error) (string, bool) {
	msg := err.Error()
	const marker = `no entry for key "`
	idx := strings.LastIndex(msg, marker)
	if idx < 0 {
		return "", false
	}
	rest := msg[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// nearestKey returns the context key closest to the missing one by edit
// distance, or "" when nothing is plausibly close.
func nearestKey(missing string, context map[string]string) string {
	best := ""
	bestDist := len(missing)/2 + 1 // beyond this the suggestion is noise
	for key := range context {
		if d := levenshtein.ComputeDistance(missing, key); d < bestDist ||
			(d == bestDist && best != "" && key < best) {
			best = key
			bestDist = d
		}
	}
	return best
}
