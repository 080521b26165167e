package model

import "time"

// DocumentCategory classifies an uploaded case document.
type DocumentCategory string

// Document categories.
const (
	DocPriorTestimony DocumentCategory = "prior-testimony"
	DocExhibit        DocumentCategory = "exhibit"
	DocTranscript     DocumentCategory = "transcript"
	DocCaseFile       DocumentCategory = "case-file"
	DocOther          DocumentCategory = "other"
)

var validDocCategories = map[DocumentCategory]bool{
	DocPriorTestimony: true, DocExhibit: true, DocTranscript: true,
	DocCaseFile: true, DocOther: true,
}

// NormalizeDocCategory maps arbitrary input to a member of the closed set.
func NormalizeDocCategory(s string) DocumentCategory {
	if c := DocumentCategory(s); validDocCategories[c] {
		return c
	}
	return DocOther
}

// DocumentStatus tracks document processing state.
type DocumentStatus string

// Document statuses.
const (
	DocStatusUploading  DocumentStatus = "uploading"
	DocStatusProcessing DocumentStatus = "processing"
	DocStatusReady      DocumentStatus = "ready"
	DocStatusError      DocumentStatus = "error"
)

// PlaceholderText is stored when text extraction is not possible so that
// downstream consumers always have non-empty content to work with.
const PlaceholderText = "[document text could not be extracted]"

// Document is one uploaded case document. Owned exclusively by its session;
// immutable once ready except for text backfill during upload.
type Document struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Category   DocumentCategory `json:"category"`
	Text       string           `json:"text"`
	SizeBytes  int64            `json:"size_bytes"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Status     DocumentStatus   `json:"status"`
}

// SessionStatus tracks the prep session lifecycle.
type SessionStatus string

// Session statuses.
const (
	SessionStatusSetup      SessionStatus = "setup"
	SessionStatusGenerating SessionStatus = "generating"
	SessionStatusReady      SessionStatus = "ready"
	SessionStatusPracticing SessionStatus = "practicing"
	SessionStatusCompleted  SessionStatus = "completed"
)

// SessionTTL is how long a session lives before the lazy sweep removes it.
const SessionTTL = 24 * time.Hour

// Session is the aggregate root. It exclusively owns its documents,
// questions, gaps, contradictions, and outline; nothing outside the session
// holds a mutable reference to any of them.
type Session struct {
	ID             string          `json:"id"`
	SubjectName    string          `json:"subject_name"`
	CaseName       string          `json:"case_name"`
	CreatedAt      time.Time       `json:"created_at"`
	Documents      []Document      `json:"documents"`
	Questions      []Question      `json:"questions"`
	Gaps           []Gap           `json:"gaps"`
	Contradictions []Contradiction `json:"contradictions"`
	Analysis       *Analysis       `json:"analysis,omitempty"`
	Outline        *Outline        `json:"outline,omitempty"`
	Status         SessionStatus   `json:"status"`
	UsedFallback   bool            `json:"used_fallback"`
}

// ReadyDocuments returns the session's documents in ready state.
func (s *Session) ReadyDocuments() []Document {
	var out []Document
	for _, d := range s.Documents {
		if d.Status == DocStatusReady {
			out = append(out, d)
		}
	}
	return out
}

// ExpiresAt returns the instant the session becomes eligible for sweeping.
func (s *Session) ExpiresAt() time.Time {
	return s.CreatedAt.Add(SessionTTL)
}

// ApplyResult persists a generation result onto the session and moves it to
// ready. Called once per generation request; both paths converge here.
func (s *Session) ApplyResult(r *GenerationResult) {
	s.Questions = r.Questions
	s.Gaps = r.Gaps
	s.Contradictions = r.Contradictions
	analysis := r.Analysis
	s.Analysis = &analysis
	s.UsedFallback = r.UsedFallback
	s.Status = SessionStatusReady
}
