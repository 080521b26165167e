package coerce

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counsel-tools/prep-cli/internal/model"
)

func TestQuestion_FullObject(t *testing.T) {
	t.Parallel()

	q := Question(map[string]any{
		"question":          "Where were you on March 3?",
		"topic":             "Timeline",
		"category":          "timeline",
		"priority":          "high",
		"difficulty":        "hard",
		"sourceDocument":    "deposition.pdf",
		"sourcePage":        float64(12),
		"rationale":         "Pins the date.",
		"followUpQuestions": []any{"Who was with you?", "What records confirm it?"},
		"exhibitToShow":     "Exhibit 4",
	})

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "Where were you on March 3?", q.Text)
	assert.Equal(t, model.CategoryTimeline, q.Category)
	assert.Equal(t, model.PriorityHigh, q.Priority)
	assert.Equal(t, model.DifficultyHard, q.Difficulty)
	assert.Equal(t, "deposition.pdf", q.SourceDocument)
	assert.Equal(t, 12, q.SourcePage)
	assert.Equal(t, []string{"Who was with you?", "What records confirm it?"}, q.FollowUpQuestions)
	assert.Equal(t, "Exhibit 4", q.ExhibitToShow)
}

func TestQuestion_DefaultsOnGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   map[string]any
	}{
		{"empty object", map[string]any{}},
		{"wrong types", map[string]any{
			"question": 42, "category": []any{"x"}, "priority": true,
			"difficulty": map[string]any{}, "sourcePage": "twelve",
		}},
		{"unknown enum values", map[string]any{
			"question": "ok", "category": "rhetorical", "priority": "urgent",
			"difficulty": "brutal",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := Question(tt.in)
			assert.NotEmpty(t, q.ID)
			assert.NotEmpty(t, q.Text)
			assert.Equal(t, model.DefaultCategory, q.Category)
			assert.Equal(t, model.DefaultPriority, q.Priority)
			assert.Equal(t, model.DefaultDifficulty, q.Difficulty)
		})
	}
}

func TestQuestion_MissingTextPlaceholder(t *testing.T) {
	t.Parallel()

	q := Question(map[string]any{"topic": "x"})
	assert.Equal(t, "Question not available", q.Text)
}

func TestQuestions_TruncatesToCap(t *testing.T) {
	t.Parallel()

	raw := make([]map[string]any, 25)
	for i := range raw {
		raw[i] = map[string]any{"question": fmt.Sprintf("Q%d", i)}
	}

	out := Questions(raw)
	require.Len(t, out, MaxQuestions)
	assert.Equal(t, "Q0", out[0].Text)
	assert.Equal(t, "Q19", out[19].Text)
}

func TestGap_Defaults(t *testing.T) {
	t.Parallel()

	g := Gap(map[string]any{})
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Gap description not available", g.Description)
	assert.Equal(t, model.DefaultSeverity, g.Severity)
	assert.Equal(t, []string{}, g.DocumentReferences)
	assert.Equal(t, []string{}, g.SuggestedQuestions)
}

func TestContradiction_TwoSourceInvariant(t *testing.T) {
	t.Parallel()

	t.Run("missing sources become empty records", func(t *testing.T) {
		t.Parallel()
		c := Contradiction(map[string]any{"description": "accounts differ"})
		assert.Equal(t, model.ContradictionSource{}, c.Sources[0])
		assert.Equal(t, model.ContradictionSource{}, c.Sources[1])
	})

	t.Run("extra sources are dropped", func(t *testing.T) {
		t.Parallel()
		c := Contradiction(map[string]any{
			"description": "accounts differ",
			"severity":    "significant",
			"sources": []any{
				map[string]any{"document": "a.pdf", "excerpt": "left", "page": float64(1)},
				map[string]any{"document": "b.pdf", "excerpt": "right"},
				map[string]any{"document": "c.pdf", "excerpt": "ignored"},
			},
		})
		assert.Equal(t, model.SeveritySignificant, c.Severity)
		assert.Equal(t, "a.pdf", c.Sources[0].Document)
		assert.Equal(t, 1, c.Sources[0].Page)
		assert.Equal(t, "b.pdf", c.Sources[1].Document)
	})
}

func TestAnalysis_MixedInput(t *testing.T) {
	t.Parallel()

	a := Analysis(map[string]any{
		"keyThemes": []any{"money", float64(7), true, []any{"nested"}},
		"witnesses": "not an array",
		"timelineEvents": []any{
			map[string]any{"date": "2024-01-02", "event": "meeting", "source": "notes.txt"},
			"not an object",
		},
	})

	assert.Equal(t, []string{"money", "7", "true"}, a.KeyThemes)
	assert.Equal(t, []string{}, a.Witnesses)
	assert.Equal(t, []string{}, a.KeyExhibits)
	require.Len(t, a.TimelineEvents, 1)
	assert.Equal(t, "meeting", a.TimelineEvents[0].Event)
}

func TestObjectList(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"questions": []any{map[string]any{"question": "a"}, "junk", map[string]any{"question": "b"}},
		"notAList":  "x",
	}
	assert.Len(t, ObjectList(m, "questions"), 2)
	assert.Empty(t, ObjectList(m, "notAList"))
	assert.Empty(t, ObjectList(m, "absent"))
}
