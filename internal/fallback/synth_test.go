package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counsel-tools/prep-cli/internal/model"
)

func testInput(docs ...model.Document) Input {
	return Input{
		Documents:   docs,
		SubjectName: "Jordan Reyes",
		CaseName:    "Acme v. Beta",
		Profile:     model.ProfileWitness,
	}
}

func richDoc(name string, category model.DocumentCategory) model.Document {
	return model.Document{
		Name:     name,
		Category: category,
		Status:   model.DocStatusReady,
		Text: `John Smith signed the agreement on March 5, 2021 in Chicago. ` +
			`The contract price was $45,000 according to the ledger. ` +
			`He stated that the delivery was never completed as promised.`,
	}
}

func TestSynthesize_QuestionFloor(t *testing.T) {
	t.Parallel()

	// A single near-empty document yields almost no extractions; padding
	// must still bring the count up to the floor.
	result := Synthesize(testInput(model.Document{
		Name: "empty.txt", Category: model.DocOther, Text: "nothing here",
	}))

	assert.GreaterOrEqual(t, len(result.Questions), QuestionFloor)
	assert.True(t, result.UsedFallback)
}

func TestSynthesize_Deterministic(t *testing.T) {
	t.Parallel()

	in := testInput(richDoc("contract.pdf", model.DocExhibit))
	a := Synthesize(in)
	b := Synthesize(in)

	require.Equal(t, len(a.Questions), len(b.Questions))
	for i := range a.Questions {
		assert.Equal(t, a.Questions[i].Text, b.Questions[i].Text)
		assert.Equal(t, a.Questions[i].Topic, b.Questions[i].Topic)
		assert.Equal(t, a.Questions[i].Category, b.Questions[i].Category)
	}
	assert.Equal(t, a.Analysis, b.Analysis)
}

func TestSynthesize_SecondPerson(t *testing.T) {
	t.Parallel()

	result := Synthesize(testInput(richDoc("contract.pdf", model.DocExhibit)))
	for _, q := range result.Questions {
		lower := strings.ToLower(q.Text)
		assert.True(t,
			strings.Contains(lower, "you") || strings.Contains(lower, "your"),
			"question not in second person: %q", q.Text)
	}
}

func TestSynthesize_EntityQuestions(t *testing.T) {
	t.Parallel()

	result := Synthesize(testInput(richDoc("contract.pdf", model.DocExhibit)))

	var topics []string
	for _, q := range result.Questions {
		topics = append(topics, q.Topic)
	}
	assert.Contains(t, topics, "Relationships")
	assert.Contains(t, topics, "Timeline")
	assert.Contains(t, topics, "Financial Records")
	assert.Contains(t, topics, "Missing Records")

	for _, q := range result.Questions {
		if q.Topic == "Relationships" {
			assert.Contains(t, q.Text, "John Smith")
			assert.Equal(t, model.CategoryFoundation, q.Category)
			assert.Equal(t, "contract.pdf", q.SourceDocument)
		}
	}
}

func TestSynthesize_FixedTopics(t *testing.T) {
	t.Parallel()

	t.Run("consistency requires two documents", func(t *testing.T) {
		t.Parallel()
		one := Synthesize(testInput(richDoc("a.pdf", model.DocOther)))
		assert.NotContains(t, topicsOf(one), "Consistency")

		two := Synthesize(testInput(
			richDoc("a.pdf", model.DocOther),
			richDoc("b.pdf", model.DocOther),
		))
		assert.Contains(t, topicsOf(two), "Consistency")
	})

	t.Run("prior testimony requires transcript or prior testimony doc", func(t *testing.T) {
		t.Parallel()
		without := Synthesize(testInput(richDoc("a.pdf", model.DocExhibit)))
		assert.NotContains(t, topicsOf(without), "Prior Testimony")

		with := Synthesize(testInput(richDoc("depo.pdf", model.DocTranscript)))
		assert.Contains(t, topicsOf(with), "Prior Testimony")
	})
}

func TestSynthesize_GapsAndAnalysis(t *testing.T) {
	t.Parallel()

	result := Synthesize(testInput(richDoc("contract.pdf", model.DocExhibit)))

	require.Len(t, result.Gaps, 2)
	assert.Equal(t, model.SeveritySignificant, result.Gaps[0].Severity)
	assert.Equal(t, model.SeverityModerate, result.Gaps[1].Severity)
	assert.Equal(t, []string{"contract.pdf"}, result.Gaps[0].DocumentReferences)

	assert.Empty(t, result.Contradictions)
	assert.NotNil(t, result.Contradictions)

	assert.Contains(t, result.Analysis.KeyThemes, "Relationships")
	assert.Contains(t, result.Analysis.KeyThemes, "Timeline")
	assert.Contains(t, result.Analysis.Witnesses, "John Smith")
	assert.Contains(t, result.Analysis.KeyExhibits, "contract.pdf")
	require.NotEmpty(t, result.Analysis.TimelineEvents)
	assert.Equal(t, "March 5, 2021", result.Analysis.TimelineEvents[0].Date)
}

func TestSynthesize_DeponentRole(t *testing.T) {
	t.Parallel()

	in := testInput(richDoc("contract.pdf", model.DocExhibit))
	in.Profile = model.ProfileDeponent

	result := Synthesize(in)
	var rationales string
	for _, q := range result.Questions {
		rationales += q.Rationale + "\n"
	}
	assert.Contains(t, rationales, "deponent")
	assert.NotContains(t, rationales, "witness's")
}

func TestFollowUps(t *testing.T) {
	t.Parallel()

	out := FollowUps("Where were you on March 5?", testInput())
	require.NotEmpty(t, out)
	assert.Contains(t, out[0].Text, "Where were you on March 5?")
	for _, q := range out {
		assert.Equal(t, model.CategoryFollowUp, q.Category)
		assert.NotEmpty(t, q.ID)
	}
}

func topicsOf(r *model.GenerationResult) []string {
	var out []string
	for _, q := range r.Questions {
		out = append(out, q.Topic)
	}
	return out
}
