package fallback

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// classTemplate is one question template with its follow-ups and rationale.
type classTemplate struct {
	Topic     string   `yaml:"topic"`
	Question  string   `yaml:"question"`
	FollowUps []string `yaml:"follow_ups"`
	Rationale string   `yaml:"rationale"`
}

// gapTemplate describes one synthesized gap.
type gapTemplate struct {
	Description string `yaml:"description"`
	Question    string `yaml:"question"`
}

// templateSet is the full template file.
type templateSet struct {
	Person   classTemplate `yaml:"person"`
	Date     classTemplate `yaml:"date"`
	Amount   classTemplate `yaml:"amount"`
	Location classTemplate `yaml:"location"`
	Quote    classTemplate `yaml:"quote"`
	Summary  classTemplate `yaml:"summary"`
	Fixed    struct {
		DocumentGap    classTemplate `yaml:"document_gap"`
		Consistency    classTemplate `yaml:"consistency"`
		PriorTestimony classTemplate `yaml:"prior_testimony"`
		Padding        classTemplate `yaml:"padding"`
	} `yaml:"fixed"`
	FollowUp classTemplate `yaml:"follow_up"`
	Gaps     struct {
		Person gapTemplate `yaml:"person"`
		Date   gapTemplate `yaml:"date"`
	} `yaml:"gaps"`
}

var templates = mustLoadTemplates()

func mustLoadTemplates() templateSet {
	var ts templateSet
	if err := yaml.Unmarshal(templatesYAML, &ts); err != nil {
		panic("fallback: invalid embedded templates: " + err.Error())
	}
	return ts
}

// fillVars are the placeholder substitutions applied to template text.
type fillVars struct {
	value string
	doc   string
	cas   string
	role  string
}

func fill(tmpl string, v fillVars) string {
	r := strings.NewReplacer(
		"{value}", v.value,
		"{doc}", v.doc,
		"{case}", v.cas,
		"{role}", v.role,
	)
	return r.Replace(tmpl)
}

func fillAll(tmpls []string, v fillVars) []string {
	out := make([]string, 0, len(tmpls))
	for _, t := range tmpls {
		out = append(out, fill(t, v))
	}
	return out
}
