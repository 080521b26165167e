// Package generate orchestrates question generation for a prep session. It
// prefers the hosted model and falls back to deterministic synthesis whenever
// the model path cannot produce usable output; precondition failures are the
// only errors the caller ever sees.
package generate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/counsel-tools/prep-cli/internal/coerce"
	"github.com/counsel-tools/prep-cli/internal/fallback"
	"github.com/counsel-tools/prep-cli/internal/model"
	"github.com/counsel-tools/prep-cli/internal/parse"
	"github.com/counsel-tools/prep-cli/internal/session"
	"github.com/counsel-tools/prep-cli/pkg/llm"
)

// Precondition errors. Neither mutates the session.
var (
	ErrNoDocuments  = eris.New("generate: session has no ready documents")
	ErrNoCredential = eris.New("generate: no model credential configured")
)

// Generator runs the two-path generation flow against a session store.
type Generator struct {
	client    llm.Client
	store     session.Store
	maxTokens int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxTokens caps the completion size requested from the model.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// New creates a Generator. A nil client means no credential is configured;
// Generate then fails its precondition rather than silently using fallback.
func New(client llm.Client, store session.Store, opts ...Option) *Generator {
	g := &Generator{client: client, store: store}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate produces questions, gaps, contradictions, and analysis for the
// session and persists them. The model path and the fallback path converge
// on the same result shape; UsedFallback records which one ran.
func (g *Generator) Generate(ctx context.Context, sessionID string, profile model.SubjectProfile) (*model.Session, error) {
	return g.generate(ctx, sessionID, profile, nil)
}

// GenerateStream is Generate with incremental delivery of raw model output.
// onDelta receives partial completion text for UI feedback; the parsed result
// is identical to the blocking path.
func (g *Generator) GenerateStream(ctx context.Context, sessionID string, profile model.SubjectProfile, onDelta func(string)) (*model.Session, error) {
	return g.generate(ctx, sessionID, profile, onDelta)
}

func (g *Generator) generate(ctx context.Context, sessionID string, profile model.SubjectProfile, onDelta func(string)) (*model.Session, error) {
	sess, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	docs := sess.ReadyDocuments()
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if g.client == nil {
		return nil, ErrNoCredential
	}

	sess.Status = model.SessionStatusGenerating
	if err := g.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	result := g.run(ctx, sess, profile, onDelta)

	sess.ApplyResult(result)
	if err := g.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// run executes the model path and degrades to fallback synthesis on
// transport failure, empty output, or unparseable output. It always returns
// a complete result.
func (g *Generator) run(ctx context.Context, sess *model.Session, profile model.SubjectProfile, onDelta func(string)) *model.GenerationResult {
	req := llm.Request{
		System:    systemPrompt(profile),
		Prompt:    buildPrompt(sess, profile),
		MaxTokens: g.maxTokens,
	}

	var raw string
	var err error
	if onDelta != nil {
		raw, err = g.client.CompleteStream(ctx, req, onDelta)
	} else {
		raw, err = g.client.Complete(ctx, req)
	}

	in := fallback.Input{
		Documents:   sess.ReadyDocuments(),
		SubjectName: sess.SubjectName,
		CaseName:    sess.CaseName,
		Profile:     profile,
	}

	if err != nil {
		zap.L().Warn("generate: model call failed, using fallback",
			zap.String("session_id", sess.ID), zap.Error(err))
		return fallback.Synthesize(in)
	}
	if raw == "" {
		zap.L().Warn("generate: model returned no content, using fallback",
			zap.String("session_id", sess.ID))
		return fallback.Synthesize(in)
	}

	envelope := parse.Object(raw)
	if envelope == nil {
		zap.L().Warn("generate: model output unparseable, using fallback",
			zap.String("session_id", sess.ID))
		return fallback.Synthesize(in)
	}

	result := resultFromEnvelope(envelope)
	if len(result.Questions) == 0 {
		zap.L().Warn("generate: model produced zero questions, using fallback",
			zap.String("session_id", sess.ID))
		return fallback.Synthesize(in)
	}
	return result
}

// FollowUps generates follow-up questions for one existing question and
// appends them to the session. The fallback here is templated rather than
// extraction-based since only one question is in scope.
func (g *Generator) FollowUps(ctx context.Context, sessionID, questionID string, profile model.SubjectProfile) ([]model.Question, error) {
	sess, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var parent *model.Question
	for i := range sess.Questions {
		if sess.Questions[i].ID == questionID {
			parent = &sess.Questions[i]
			break
		}
	}
	if parent == nil {
		return nil, eris.Errorf("generate: question not found: %s", questionID)
	}
	if g.client == nil {
		return nil, ErrNoCredential
	}

	followUps := g.runFollowUps(ctx, sess, *parent, profile)

	sess.Questions = append(sess.Questions, followUps...)
	if err := g.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return followUps, nil
}

func (g *Generator) runFollowUps(ctx context.Context, sess *model.Session, parent model.Question, profile model.SubjectProfile) []model.Question {
	req := llm.Request{
		System:    systemPrompt(profile),
		Prompt:    followUpPrompt(parent, sess, profile),
		MaxTokens: g.maxTokens,
	}

	in := fallback.Input{
		Documents:   sess.ReadyDocuments(),
		SubjectName: sess.SubjectName,
		CaseName:    sess.CaseName,
		Profile:     profile,
	}

	raw, err := g.client.Complete(ctx, req)
	if err != nil || raw == "" {
		zap.L().Warn("generate: follow-up model call failed, using fallback",
			zap.String("session_id", sess.ID), zap.Error(err))
		return fallback.FollowUps(parent.Text, in)
	}

	objects := parse.Array(raw)
	if len(objects) == 0 {
		zap.L().Warn("generate: follow-up output unparseable, using fallback",
			zap.String("session_id", sess.ID))
		return fallback.FollowUps(parent.Text, in)
	}

	questions := coerce.Questions(objects)
	for i := range questions {
		questions[i].Category = model.CategoryFollowUp
	}
	return questions
}

// resultFromEnvelope coerces the parsed model envelope into the typed
// result. Missing envelope fields become empty collections, never errors.
func resultFromEnvelope(m map[string]any) *model.GenerationResult {
	analysisRaw, _ := m["analysis"].(map[string]any)
	return &model.GenerationResult{
		Questions:      coerce.Questions(coerce.ObjectList(m, "questions")),
		Gaps:           coerce.Gaps(coerce.ObjectList(m, "gaps")),
		Contradictions: coerce.Contradictions(coerce.ObjectList(m, "contradictions")),
		Analysis:       coerce.Analysis(analysisRaw),
		UsedFallback:   false,
	}
}
