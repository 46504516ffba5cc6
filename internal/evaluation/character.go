// Package evaluation drives the multi-character assessment of sites and
// clusters: it fans out one request per registered character per unit,
// retries transient failures with jittered exponential backoff, runs an
// optional summary character over the settled outputs, and aggregates
// everything into records plus a failure ledger without ever letting one
// unit's failures block another's progress.
package evaluation

import (
	"strings"
)

// Temperature bounds applied after character offsets.
const (
	minCharacterTemperature = 0.1
	maxCharacterTemperature = 2.0
)

// CharacterSpec is a named evaluation persona: its system prompt parts,
// its user prompt template, and an optional sampling temperature offset
// relative to the batch base temperature.
type CharacterSpec struct {
	// Name uniquely identifies the character within a panel.
	Name string `yaml:"name" validate:"required"`

	// Role is the first system prompt line describing who the character is.
	Role string `yaml:"role" validate:"required"`

	// Style optionally constrains tone and form.
	Style string `yaml:"style"`

	// Instruction is prepended to the rendered input template in the user
	// prompt.
	Instruction string `yaml:"instruction" validate:"required"`

	// InputTemplate is a text/template body filled from the unit's
	// feature context by name; a placeholder with no matching context key
	// is a configuration error.
	InputTemplate string `yaml:"input_template" validate:"required"`

	// TemperatureOffset shifts the base sampling temperature for this
	// character. A skeptical character runs cooler than an optimistic
	// one. Nil means the base temperature is used unchanged.
	TemperatureOffset *float64 `yaml:"temperature_offset"`
}

// SystemPrompt assembles the character's system prompt from role and
// style.
func (c CharacterSpec) SystemPrompt() string {
	if c.Style == "" {
		return c.Role
	}
	return c.Role + "\n" + c.Style
}

// Temperature resolves the effective sampling temperature for this
// character. It is a pure function of the character and the base value;
// the result is clamped so an aggressive negative offset can never
// reach zero or below.
func (c CharacterSpec) Temperature(base float64) float64 {
	t := base
	if c.TemperatureOffset != nil {
		t += *c.TemperatureOffset
	}
	if t < minCharacterTemperature {
		return minCharacterTemperature
	}
	if t > maxCharacterTemperature {
		return maxCharacterTemperature
	}
	return t
}

func offset(v float64) *float64 { return &v }

// DefaultCharacters returns the standard five-persona panel used for
// per-site evaluation.
func DefaultCharacters() []CharacterSpec {
	siteTemplate := strings.TrimSpace(`
Location: {{.coordinates}} ({{.region_name}})
NDVI: {{.ndvi}}
Slope (deg): {{.slope}}
Elevation (m): {{.elevation}}
Soil carbon: {{.carbon}}
Landcover class: {{.landcover}}
Site score: {{.site_score}}`)

	return []CharacterSpec{
		{
			Name:              "explorer",
			Role:              "You are an enthusiastic field explorer assessing a candidate archaeological site in the Amazon basin.",
			Style:             "Write vividly but stay grounded in the data provided.",
			Instruction:       "Argue why this location could hide a pre-Columbian settlement and what you would expect to find.",
			InputTemplate:     siteTemplate,
			TemperatureOffset: offset(0.2),
		},
		{
			Name:          "engineer",
			Role:          "You are a geospatial engineer evaluating terrain suitability for ancient settlement.",
			Instruction:   "Assess slope, elevation, and hydrology constraints for habitation and earthworks at this location.",
			InputTemplate: siteTemplate,
		},
		{
			Name:              "skeptic",
			Role:              "You are a methodological skeptic reviewing remote-sensing evidence for archaeological claims.",
			Style:             "Be concise and point out alternative natural explanations.",
			Instruction:       "List the weaknesses of this candidate and the natural processes that could produce the same signal.",
			InputTemplate:     siteTemplate,
			TemperatureOffset: offset(-0.3),
		},
		{
			Name:          "historian",
			Role:          "You are a historian of Amazonian societies and early colonial accounts.",
			Instruction:   "Relate this location to known settlement patterns, trade routes, and documented expeditions.",
			InputTemplate: siteTemplate,
		},
		{
			Name:          "ecologist",
			Role:          "You are an ecologist specializing in anthropogenic forest signatures.",
			Instruction:   "Evaluate whether the vegetation and soil signals here are consistent with past human occupation.",
			InputTemplate: siteTemplate,
		},
	}
}

// SummaryCharacterName is the reserved name under which the synthesis
// step is recorded in ledgers and reports.
const SummaryCharacterName = "summary"

// DefaultSummaryCharacter returns the narrator that synthesizes the
// panel's settled outputs into a single balanced assessment. It runs
// cooler than the panel.
func DefaultSummaryCharacter() CharacterSpec {
	return CharacterSpec{
		Name:              SummaryCharacterName,
		Role:              "You are a neutral narrator synthesizing several expert assessments of a candidate archaeological site.",
		Style:             "Weigh the perspectives against each other; do not simply concatenate them.",
		Instruction:       "Produce a short balanced verdict from the following assessments.",
		InputTemplate:     "{{.opinions}}",
		TemperatureOffset: offset(-0.2),
	}
}
