package fallback

import (
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// QuestionFloor is the minimum number of questions the synthesizer returns
// when at least one document exists. Hard invariant: padding questions are
// appended round-robin across the document list until the floor is met.
const QuestionFloor = 10

// maxQuestionsPerClass bounds how many questions each extraction class
// contributes before the fixed-topic questions are appended.
const maxQuestionsPerClass = 3

var titler = cases.Title(language.AmericanEnglish)

// Input carries everything the synthesizer needs. No network access happens
// beyond this boundary.
type Input struct {
	Documents   []model.Document
	SubjectName string
	CaseName    string
	Profile     model.SubjectProfile
}

// entity is one extracted value together with the document it came from.
type entity struct {
	value string
	doc   string
}

// Synthesize deterministically builds a complete generation result from the
// document set. Two invocations over identical input produce the same
// extractions and question texts; only record identities differ.
func Synthesize(in Input) *model.GenerationResult {
	docs := in.Documents
	role := in.Profile.Role

	persons := collect(docs, Names)
	dates := collect(docs, Dates)
	amounts := collect(docs, Amounts)
	locations := collect(docs, Locations)
	quotes := collect(docs, Quotes)

	var questions []model.Question
	questions = append(questions, classQuestions(templates.Person, persons, in, model.CategoryFoundation, model.PriorityMedium)...)
	questions = append(questions, classQuestions(templates.Date, dates, in, model.CategoryTimeline, model.PriorityMedium)...)
	questions = append(questions, classQuestions(templates.Amount, amounts, in, model.CategoryFoundation, model.PriorityHigh)...)
	questions = append(questions, classQuestions(templates.Location, locations, in, model.CategoryFoundation, model.PriorityMedium)...)
	questions = append(questions, classQuestions(templates.Quote, quotes, in, model.CategoryImpeachment, model.PriorityMedium)...)

	// Document-summary questions, always high priority.
	for i, d := range docs {
		if i == maxQuestionsPerClass {
			break
		}
		summary := Summary(d.Text)
		if summary == "" {
			continue
		}
		v := fillVars{value: summary, doc: d.Name, cas: in.CaseName, role: role}
		questions = append(questions, templatedQuestion(templates.Summary, v, model.CategoryFoundation, model.PriorityHigh, d.Name))
	}

	// Fixed-topic questions guarantee breadth regardless of extraction yield.
	baseVars := fillVars{cas: in.CaseName, role: role}
	questions = append(questions, templatedQuestion(templates.Fixed.DocumentGap, baseVars, model.CategoryGap, model.PriorityHigh, ""))
	if len(docs) >= 2 {
		questions = append(questions, templatedQuestion(templates.Fixed.Consistency, baseVars, model.CategoryContradiction, model.PriorityMedium, ""))
	}
	if hasPriorTestimony(docs) {
		questions = append(questions, templatedQuestion(templates.Fixed.PriorTestimony, baseVars, model.CategoryImpeachment, model.PriorityHigh, ""))
	}

	// Enforce the floor with round-robin padding across the document list.
	for i := 0; len(questions) < QuestionFloor && len(docs) > 0; i++ {
		d := docs[i%len(docs)]
		v := fillVars{doc: d.Name, cas: in.CaseName, role: role}
		questions = append(questions, templatedQuestion(templates.Fixed.Padding, v, model.CategoryGeneral, model.PriorityMedium, d.Name))
	}

	return &model.GenerationResult{
		Questions:      questions,
		Gaps:           buildGaps(persons, dates, role),
		Contradictions: []model.Contradiction{},
		Analysis:       buildAnalysis(persons, dates, amounts, locations, docs),
		UsedFallback:   true,
	}
}

// FollowUps synthesizes templated follow-up questions for one answered
// question. Used when the model cannot produce the follow-up array.
func FollowUps(questionText string, in Input) []model.Question {
	v := fillVars{value: questionText, cas: in.CaseName, role: in.Profile.Role}
	q := templatedQuestion(templates.FollowUp, v, model.CategoryFollowUp, model.PriorityMedium, "")
	out := []model.Question{q}
	for _, f := range fillAll(templates.FollowUp.FollowUps, v) {
		out = append(out, model.Question{
			ID:       uuid.New().String(),
			Text:     f,
			Topic:    templates.FollowUp.Topic,
			Category: model.CategoryFollowUp,
			Priority: model.PriorityMedium,
		})
	}
	return out
}

// collect runs one extraction class over every document, deduplicating
// values across documents while preserving first-seen order.
func collect(docs []model.Document, extract func(string) []string) []entity {
	seen := make(map[string]bool)
	var out []entity
	for _, d := range docs {
		for _, v := range extract(d.Text) {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, entity{value: v, doc: d.Name})
		}
	}
	return out
}

// classQuestions synthesizes one question per distinct extracted value,
// bounded by maxQuestionsPerClass.
func classQuestions(tmpl classTemplate, entities []entity, in Input, cat model.QuestionCategory, prio model.Priority) []model.Question {
	var out []model.Question
	for i, e := range entities {
		if i == maxQuestionsPerClass {
			break
		}
		v := fillVars{value: e.value, doc: e.doc, cas: in.CaseName, role: in.Profile.Role}
		out = append(out, templatedQuestion(tmpl, v, cat, prio, e.doc))
	}
	return out
}

func templatedQuestion(tmpl classTemplate, v fillVars, cat model.QuestionCategory, prio model.Priority, sourceDoc string) model.Question {
	return model.Question{
		ID:                uuid.New().String(),
		Text:              fill(tmpl.Question, v),
		Topic:             tmpl.Topic,
		Category:          cat,
		Priority:          prio,
		Difficulty:        model.DefaultDifficulty,
		SourceDocument:    sourceDoc,
		Rationale:         fill(tmpl.Rationale, v),
		FollowUpQuestions: fillAll(tmpl.FollowUps, v),
	}
}

// buildGaps derives gaps from the person and date extraction classes.
// Person-relationship gaps are significant, date-timeline gaps moderate.
func buildGaps(persons, dates []entity, role string) []model.Gap {
	gaps := []model.Gap{}
	if len(persons) > 0 {
		gaps = append(gaps, model.Gap{
			ID:                 uuid.New().String(),
			Description:        fill(templates.Gaps.Person.Description, fillVars{role: role}),
			DocumentReferences: docNames(persons),
			Severity:           model.SeveritySignificant,
			SuggestedQuestions: []string{fill(templates.Gaps.Person.Question, fillVars{role: role})},
		})
	}
	if len(dates) > 0 {
		gaps = append(gaps, model.Gap{
			ID:                 uuid.New().String(),
			Description:        fill(templates.Gaps.Date.Description, fillVars{role: role}),
			DocumentReferences: docNames(dates),
			Severity:           model.SeverityModerate,
			SuggestedQuestions: []string{fill(templates.Gaps.Date.Question, fillVars{role: role})},
		})
	}
	return gaps
}

func buildAnalysis(persons, dates, amounts, locations []entity, docs []model.Document) model.Analysis {
	a := model.Analysis{
		KeyThemes:      []string{},
		TimelineEvents: []model.TimelineEvent{},
		Witnesses:      []string{},
		KeyExhibits:    []string{},
	}

	themes := map[string][]entity{
		"relationships":     persons,
		"timeline":          dates,
		"financial records": amounts,
		"locations":         locations,
	}
	for _, name := range []string{"relationships", "timeline", "financial records", "locations"} {
		if len(themes[name]) > 0 {
			a.KeyThemes = append(a.KeyThemes, titler.String(name))
		}
	}

	for _, e := range dates {
		a.TimelineEvents = append(a.TimelineEvents, model.TimelineEvent{
			Date:   e.value,
			Event:  "Date referenced in " + e.doc,
			Source: e.doc,
		})
	}
	for _, e := range persons {
		a.Witnesses = append(a.Witnesses, e.value)
	}
	for _, d := range docs {
		if d.Category == model.DocExhibit {
			a.KeyExhibits = append(a.KeyExhibits, d.Name)
		}
	}
	return a
}

func hasPriorTestimony(docs []model.Document) bool {
	for _, d := range docs {
		if d.Category == model.DocTranscript || d.Category == model.DocPriorTestimony {
			return true
		}
	}
	return false
}

// docNames returns the distinct source documents for an entity list.
func docNames(entities []entity) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entities {
		if seen[e.doc] {
			continue
		}
		seen[e.doc] = true
		out = append(out, e.doc)
	}
	return out
}
