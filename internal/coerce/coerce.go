// Package coerce turns loosely-typed parsed model output into fully-typed
// records. Every function here is total: invalid or missing input maps to a
// fixed default, never to an error.
package coerce

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// MaxQuestions caps the coerced question list. The product contract is a
// fixed-size question set, enforced here rather than trusted to the model.
const MaxQuestions = 20

// missingQuestionText is the user-facing placeholder for a question whose
// text field was absent or not a string.
const missingQuestionText = "Question not available"

// Questions coerces a list of parsed objects into typed questions,
// truncated to MaxQuestions.
func Questions(raw []map[string]any) []model.Question {
	if len(raw) > MaxQuestions {
		raw = raw[:MaxQuestions]
	}
	out := make([]model.Question, 0, len(raw))
	for _, m := range raw {
		out = append(out, Question(m))
	}
	return out
}

// Question coerces a single parsed object into a typed question.
func Question(m map[string]any) model.Question {
	return model.Question{
		ID:                uuid.New().String(),
		Text:              requiredString(m, "question", missingQuestionText),
		Topic:             optionalString(m, "topic"),
		Category:          model.NormalizeCategory(optionalString(m, "category")),
		Priority:          model.NormalizePriority(optionalString(m, "priority")),
		Difficulty:        model.NormalizeDifficulty(optionalString(m, "difficulty")),
		SourceDocument:    optionalString(m, "sourceDocument"),
		SourcePage:        optionalInt(m, "sourcePage"),
		Rationale:         optionalString(m, "rationale"),
		FollowUpQuestions: optionalStrings(m, "followUpQuestions"),
		ExhibitToShow:     optionalString(m, "exhibitToShow"),
	}
}

// Gap coerces a single parsed object into a typed gap.
func Gap(m map[string]any) model.Gap {
	return model.Gap{
		ID:                 uuid.New().String(),
		Description:        requiredString(m, "description", "Gap description not available"),
		DocumentReferences: requiredStrings(m, "documentReferences"),
		Severity:           model.NormalizeSeverity(optionalString(m, "severity")),
		SuggestedQuestions: requiredStrings(m, "suggestedQuestions"),
	}
}

// Gaps coerces a list of parsed objects into typed gaps.
func Gaps(raw []map[string]any) []model.Gap {
	out := make([]model.Gap, 0, len(raw))
	for _, m := range raw {
		out = append(out, Gap(m))
	}
	return out
}

// Contradiction coerces a single parsed object into a typed contradiction.
// Missing sources become empty records so the two-source invariant holds.
func Contradiction(m map[string]any) model.Contradiction {
	c := model.Contradiction{
		ID:          uuid.New().String(),
		Description: requiredString(m, "description", "Contradiction description not available"),
		Severity:    model.NormalizeSeverity(optionalString(m, "severity")),
	}
	sources, _ := m["sources"].([]any)
	for i := 0; i < 2 && i < len(sources); i++ {
		src, _ := sources[i].(map[string]any)
		c.Sources[i] = model.ContradictionSource{
			Document: optionalString(src, "document"),
			Excerpt:  optionalString(src, "excerpt"),
			Page:     optionalInt(src, "page"),
		}
	}
	return c
}

// Contradictions coerces a list of parsed objects into typed contradictions.
func Contradictions(raw []map[string]any) []model.Contradiction {
	out := make([]model.Contradiction, 0, len(raw))
	for _, m := range raw {
		out = append(out, Contradiction(m))
	}
	return out
}

// Analysis coerces the analysis block. Absent fields become empty lists.
func Analysis(m map[string]any) model.Analysis {
	a := model.Analysis{
		KeyThemes:   requiredStrings(m, "keyThemes"),
		Witnesses:   requiredStrings(m, "witnesses"),
		KeyExhibits: requiredStrings(m, "keyExhibits"),
	}
	events, _ := m["timelineEvents"].([]any)
	for _, el := range events {
		ev, ok := el.(map[string]any)
		if !ok {
			continue
		}
		a.TimelineEvents = append(a.TimelineEvents, model.TimelineEvent{
			Date:   optionalString(ev, "date"),
			Event:  optionalString(ev, "event"),
			Source: optionalString(ev, "source"),
		})
	}
	return a
}

// ObjectList pulls a list of objects out of a parsed envelope field.
// Non-array input and non-object elements yield an empty list.
func ObjectList(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func requiredString(m map[string]any, key, placeholder string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return placeholder
}

func optionalString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optionalInt(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// requiredStrings coerces an array field element-wise to strings; non-array
// input becomes an empty list.
func requiredStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case string:
			out = append(out, v)
		case float64, bool:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}

// optionalStrings is requiredStrings with nil instead of empty on non-array
// input, so optional fields stay omitted in serialized output.
func optionalStrings(m map[string]any, key string) []string {
	if _, ok := m[key].([]any); !ok {
		return nil
	}
	return requiredStrings(m, key)
}
