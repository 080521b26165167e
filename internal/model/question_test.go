package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEnums(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryImpeachment, NormalizeCategory("impeachment"))
	assert.Equal(t, DefaultCategory, NormalizeCategory("rhetorical"))
	assert.Equal(t, DefaultCategory, NormalizeCategory(""))

	assert.Equal(t, PriorityLow, NormalizePriority("low"))
	assert.Equal(t, DefaultPriority, NormalizePriority("urgent"))

	assert.Equal(t, SeverityMinor, NormalizeSeverity("minor"))
	assert.Equal(t, DefaultSeverity, NormalizeSeverity("catastrophic"))

	assert.Equal(t, DifficultyEasy, NormalizeDifficulty("easy"))
	assert.Equal(t, DefaultDifficulty, NormalizeDifficulty("brutal"))
}

func TestNormalizeDocCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DocPriorTestimony, NormalizeDocCategory("prior-testimony"))
	assert.Equal(t, DocOther, NormalizeDocCategory("spreadsheet"))
	assert.Equal(t, DocOther, NormalizeDocCategory(""))
}

func TestSession_ReadyDocuments(t *testing.T) {
	t.Parallel()

	s := Session{Documents: []Document{
		{ID: "a", Status: DocStatusReady},
		{ID: "b", Status: DocStatusProcessing},
		{ID: "c", Status: DocStatusError},
		{ID: "d", Status: DocStatusReady},
	}}
	ready := s.ReadyDocuments()
	assert.Len(t, ready, 2)
	assert.Equal(t, "a", ready[0].ID)
	assert.Equal(t, "d", ready[1].ID)
}

func TestSession_ApplyResult(t *testing.T) {
	t.Parallel()

	s := Session{Status: SessionStatusGenerating}
	s.ApplyResult(&GenerationResult{
		Questions:      []Question{{ID: "q1"}},
		Gaps:           []Gap{{ID: "g1"}},
		Contradictions: []Contradiction{},
		Analysis:       Analysis{KeyThemes: []string{"Timeline"}},
		UsedFallback:   true,
	})

	assert.Equal(t, SessionStatusReady, s.Status)
	assert.True(t, s.UsedFallback)
	assert.Len(t, s.Questions, 1)
	assert.NotNil(t, s.Analysis)
	assert.Equal(t, []string{"Timeline"}, s.Analysis.KeyThemes)
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ProfileDeponent, ProfileFor("deponent"))
	assert.Equal(t, ProfileWitness, ProfileFor("witness"))
	assert.Equal(t, ProfileWitness, ProfileFor(""))
	assert.Equal(t, ProfileWitness, ProfileFor("juror"))
}
