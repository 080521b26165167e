package model

// QuestionCategory classifies a generated question.
type QuestionCategory string

// Question categories.
const (
	CategoryGap           QuestionCategory = "gap"
	CategoryContradiction QuestionCategory = "contradiction"
	CategoryTimeline      QuestionCategory = "timeline"
	CategoryFoundation    QuestionCategory = "foundation"
	CategoryImpeachment   QuestionCategory = "impeachment"
	CategoryFollowUp      QuestionCategory = "follow_up"
	CategoryGeneral       QuestionCategory = "general"
)

// Priority ranks a question's importance.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Severity ranks how serious a gap or contradiction is.
type Severity string

// Severities.
const (
	SeverityMinor       Severity = "minor"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
)

// Difficulty ranks how hard a question is to handle on the stand.
type Difficulty string

// Difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Closed-set membership tables. Each enum field has exactly one default used
// whenever input is missing or outside the set; the coercer relies on these
// to stay a total function.
var (
	validCategories = map[QuestionCategory]bool{
		CategoryGap: true, CategoryContradiction: true, CategoryTimeline: true,
		CategoryFoundation: true, CategoryImpeachment: true,
		CategoryFollowUp: true, CategoryGeneral: true,
	}
	validPriorities = map[Priority]bool{
		PriorityHigh: true, PriorityMedium: true, PriorityLow: true,
	}
	validSeverities = map[Severity]bool{
		SeverityMinor: true, SeverityModerate: true, SeveritySignificant: true,
	}
	validDifficulties = map[Difficulty]bool{
		DifficultyEasy: true, DifficultyMedium: true, DifficultyHard: true,
	}
)

// Default values for unrecognized or missing enum input.
const (
	DefaultCategory   = CategoryGeneral
	DefaultPriority   = PriorityMedium
	DefaultSeverity   = SeverityModerate
	DefaultDifficulty = DifficultyMedium
)

// NormalizeCategory maps arbitrary input to a member of the closed set.
func NormalizeCategory(s string) QuestionCategory {
	if c := QuestionCategory(s); validCategories[c] {
		return c
	}
	return DefaultCategory
}

// NormalizePriority maps arbitrary input to a member of the closed set.
func NormalizePriority(s string) Priority {
	if p := Priority(s); validPriorities[p] {
		return p
	}
	return DefaultPriority
}

// NormalizeSeverity maps arbitrary input to a member of the closed set.
func NormalizeSeverity(s string) Severity {
	if sv := Severity(s); validSeverities[sv] {
		return sv
	}
	return DefaultSeverity
}

// NormalizeDifficulty maps arbitrary input to a member of the closed set.
func NormalizeDifficulty(s string) Difficulty {
	if d := Difficulty(s); validDifficulties[d] {
		return d
	}
	return DefaultDifficulty
}

// Question is a single prepared cross-examination or deposition question.
// Created by the generator (model path or fallback path) and never mutated
// afterward except when copied into an outline section.
type Question struct {
	ID                string           `json:"id"`
	Text              string           `json:"text"`
	Topic             string           `json:"topic,omitempty"`
	Category          QuestionCategory `json:"category"`
	Priority          Priority         `json:"priority"`
	Difficulty        Difficulty       `json:"difficulty,omitempty"`
	SourceDocument    string           `json:"source_document,omitempty"`
	SourcePage        int              `json:"source_page,omitempty"`
	Rationale         string           `json:"rationale,omitempty"`
	FollowUpQuestions []string         `json:"follow_up_questions,omitempty"`
	ExhibitToShow     string           `json:"exhibit_to_show,omitempty"`
}

// Gap describes testimony that the document set does not cover.
type Gap struct {
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	DocumentReferences []string `json:"document_references,omitempty"`
	Severity           Severity `json:"severity"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}

// ContradictionSource points at one side of a contradiction.
type ContradictionSource struct {
	Document string `json:"document"`
	Excerpt  string `json:"excerpt"`
	Page     int    `json:"page,omitempty"`
}

// Contradiction records two document excerpts that disagree. Sources always
// has exactly two entries.
type Contradiction struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Sources     [2]ContradictionSource `json:"sources"`
	Severity    Severity               `json:"severity"`
}

// TimelineEvent is a dated event surfaced by the analysis.
type TimelineEvent struct {
	Date   string `json:"date"`
	Event  string `json:"event"`
	Source string `json:"source,omitempty"`
}

// Analysis summarizes the document set alongside the generated questions.
type Analysis struct {
	KeyThemes      []string        `json:"key_themes"`
	TimelineEvents []TimelineEvent `json:"timeline_events"`
	Witnesses      []string        `json:"witnesses"`
	KeyExhibits    []string        `json:"key_exhibits"`
}

// GenerationResult is the converged output shape of both generation paths.
// UsedFallback tells the caller whether the deterministic path produced it.
type GenerationResult struct {
	Questions      []Question      `json:"questions"`
	Gaps           []Gap           `json:"gaps"`
	Contradictions []Contradiction `json:"contradictions"`
	Analysis       Analysis        `json:"analysis"`
	UsedFallback   bool            `json:"used_fallback"`
}
