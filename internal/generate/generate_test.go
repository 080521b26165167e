package generate

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counsel-tools/prep-cli/internal/model"
	"github.com/counsel-tools/prep-cli/internal/session"
	"github.com/counsel-tools/prep-cli/pkg/llm"
)

// stubClient scripts completion responses and counts calls.
type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) CompleteStream(ctx context.Context, req llm.Request, onDelta func(string)) (string, error) {
	s.calls++
	if s.err == nil && s.response != "" && onDelta != nil {
		onDelta(s.response)
	}
	return s.response, s.err
}

const validEnvelope = `{
	"questions": [
		{"question": "Where were you on March 5?", "topic": "Timeline", "category": "timeline", "priority": "high", "difficulty": "medium", "sourceDocument": "contract.pdf"},
		{"question": "What is your relationship with John Smith?", "category": "foundation", "priority": "medium"}
	],
	"gaps": [
		{"description": "No delivery records produced.", "severity": "significant", "documentReferences": ["contract.pdf"], "suggestedQuestions": ["Where are the delivery records?"]}
	],
	"contradictions": [
		{"description": "Dates disagree.", "severity": "moderate", "sources": [
			{"document": "a.pdf", "excerpt": "March 5", "page": 2},
			{"document": "b.pdf", "excerpt": "March 7", "page": 4}
		]}
	],
	"analysis": {
		"keyThemes": ["Timeline"],
		"timelineEvents": [{"date": "March 5, 2021", "event": "signing", "source": "contract.pdf"}],
		"witnesses": ["John Smith"],
		"keyExhibits": ["contract.pdf"]
	}
}`

func newSessionWithDoc(t *testing.T, store session.Store) *model.Session {
	t.Helper()
	sess, err := store.Create(context.TODO(), "Jordan Reyes", "Acme v. Beta")
	require.NoError(t, err)

	sess.Documents = append(sess.Documents, model.Document{
		ID: "d1", Name: "contract.pdf", Category: model.DocExhibit,
		Text:   "John Smith signed the agreement on March 5, 2021 in Chicago for $45,000.",
		Status: model.DocStatusReady,
	})
	require.NoError(t, store.Put(context.TODO(), sess))
	return sess
}

func TestGenerate_ModelPath(t *testing.T) {
	t.Parallel()

	store := session.NewMemory(nil)
	sess := newSessionWithDoc(t, store)
	client := &stubClient{response: validEnvelope}

	out, err := New(client, store).Generate(context.TODO(), sess.ID, model.ProfileWitness)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.False(t, out.UsedFallback)
	assert.Equal(t, model.SessionStatusReady, out.Status)
	require.Len(t, out.Questions, 2)
	assert.Equal(t, "Where were you on March 5?", out.Questions[0].Text)
	assert.Equal(t, model.CategoryTimeline, out.Questions[0].Category)
	require.Len(t, out.Gaps, 1)
	require.Len(t, out.Contradictions, 1)
	assert.Equal(t, "a.pdf", out.Contradictions[0].Sources[0].Document)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, []string{"John Smith"}, out.Analysis.Witnesses)

	// Result must be persisted, not just returned.
	stored, err := store.Get(context.TODO(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusReady, stored.Status)
	assert.Len(t, stored.Questions, 2)
}

func TestGenerate_FallbackScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *stubClient
	}{
		{"transport error", &stubClient{err: eris.New("connection refused")}},
		{"empty response", &stubClient{response: ""}},
		{"unparseable response", &stubClient{response: "I'm sorry, I can't produce JSON today."}},
		{"envelope without questions", &stubClient{response: `{"questions": [], "gaps": []}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := session.NewMemory(nil)
			sess := newSessionWithDoc(t, store)

			out, err := New(tt.client, store).Generate(context.TODO(), sess.ID, model.ProfileWitness)
			require.NoError(t, err)

			assert.Equal(t, 1, tt.client.calls)
			assert.True(t, out.UsedFallback)
			assert.Equal(t, model.SessionStatusReady, out.Status)
			assert.NotEmpty(t, out.Questions)
		})
	}
}

func TestGenerate_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("no ready documents", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemory(nil)
		sess, err := store.Create(context.TODO(), "Jordan Reyes", "Acme v. Beta")
		require.NoError(t, err)

		client := &stubClient{response: validEnvelope}
		_, err = New(client, store).Generate(context.TODO(), sess.ID, model.ProfileWitness)
		assert.ErrorIs(t, err, ErrNoDocuments)
		assert.Zero(t, client.calls)

		// Precondition failure must not mutate the session.
		stored, err := store.Get(context.TODO(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SessionStatusSetup, stored.Status)
		assert.Empty(t, stored.Questions)
	})

	t.Run("no credential", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemory(nil)
		sess := newSessionWithDoc(t, store)

		_, err := New(nil, store).Generate(context.TODO(), sess.ID, model.ProfileWitness)
		assert.ErrorIs(t, err, ErrNoCredential)

		stored, err := store.Get(context.TODO(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SessionStatusSetup, stored.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemory(nil)
		_, err := New(&stubClient{}, store).Generate(context.TODO(), "missing", model.ProfileWitness)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestGenerateStream_DeliversDeltas(t *testing.T) {
	t.Parallel()

	store := session.NewMemory(nil)
	sess := newSessionWithDoc(t, store)
	client := &stubClient{response: validEnvelope}

	var streamed string
	out, err := New(client, store).GenerateStream(context.TODO(), sess.ID, model.ProfileWitness, func(delta string) {
		streamed += delta
	})
	require.NoError(t, err)
	assert.Equal(t, validEnvelope, streamed)
	assert.False(t, out.UsedFallback)
}

func TestFollowUps_ModelPath(t *testing.T) {
	t.Parallel()

	store := session.NewMemory(nil)
	sess := newSessionWithDoc(t, store)
	sess.Questions = []model.Question{{ID: "q1", Text: "Where were you on March 5?"}}
	require.NoError(t, store.Put(context.TODO(), sess))

	client := &stubClient{response: `[
		{"question": "Who was with you that day?", "priority": "high"},
		{"question": "What records confirm your location?"}
	]`}

	out, err := New(client, store).FollowUps(context.TODO(), sess.ID, "q1", model.ProfileWitness)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, q := range out {
		assert.Equal(t, model.CategoryFollowUp, q.Category)
	}

	stored, err := store.Get(context.TODO(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Questions, 3)
}

func TestFollowUps_FallbackOnUnparseable(t *testing.T) {
	t.Parallel()

	store := session.NewMemory(nil)
	sess := newSessionWithDoc(t, store)
	sess.Questions = []model.Question{{ID: "q1", Text: "Where were you on March 5?"}}
	require.NoError(t, store.Put(context.TODO(), sess))

	client := &stubClient{response: "no json"}
	out, err := New(client, store).FollowUps(context.TODO(), sess.ID, "q1", model.ProfileWitness)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Contains(t, out[0].Text, "Where were you on March 5?")
}

func TestFollowUps_UnknownQuestion(t *testing.T) {
	t.Parallel()

	store := session.NewMemory(nil)
	sess := newSessionWithDoc(t, store)

	_, err := New(&stubClient{}, store).FollowUps(context.TODO(), sess.ID, "nope", model.ProfileWitness)
	assert.Error(t, err)
}
