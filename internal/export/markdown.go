// Package export renders a prep session as a markdown briefing document
// suitable for printing or pasting into a case file.
package export

import (
	"fmt"
	"strings"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// Markdown renders the full session: header, outline if present, questions
// grouped by category, gaps, contradictions, and analysis.
func Markdown(sess *model.Session, profile model.SubjectProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Prep: %s\n\n", titleCase(profile.Role), sess.SubjectName)
	fmt.Fprintf(&b, "**Case:** %s  \n", sess.CaseName)
	fmt.Fprintf(&b, "**Documents:** %d  \n", len(sess.Documents))
	if sess.UsedFallback {
		b.WriteString("**Note:** questions were produced by document analysis without model assistance.\n")
	}
	b.WriteString("\n")

	if sess.Outline != nil && len(sess.Outline.Sections) > 0 {
		writeOutline(&b, sess.Outline)
	} else if len(sess.Questions) > 0 {
		writeQuestionsByCategory(&b, sess.Questions)
	}

	if len(sess.Gaps) > 0 {
		writeGaps(&b, sess.Gaps)
	}
	if len(sess.Contradictions) > 0 {
		writeContradictions(&b, sess.Contradictions)
	}
	if sess.Analysis != nil {
		writeAnalysis(&b, sess.Analysis)
	}

	return b.String()
}

func writeOutline(b *strings.Builder, o *model.Outline) {
	fmt.Fprintf(b, "## %s\n\n", o.Title)
	for _, sec := range o.Sections {
		fmt.Fprintf(b, "### %d. %s", sec.Order+1, sec.Title)
		if sec.EstimatedMinutes > 0 {
			fmt.Fprintf(b, " (~%d min)", sec.EstimatedMinutes)
		}
		b.WriteString("\n\n")
		if sec.Notes != "" {
			fmt.Fprintf(b, "> %s\n\n", sec.Notes)
		}
		for i, q := range sec.Questions {
			writeQuestion(b, i+1, q)
		}
	}
}

// categoryOrder fixes the section order of the flat question export.
var categoryOrder = []model.QuestionCategory{
	model.CategoryFoundation,
	model.CategoryTimeline,
	model.CategoryImpeachment,
	model.CategoryContradiction,
	model.CategoryGap,
	model.CategoryFollowUp,
	model.CategoryGeneral,
}

var categoryHeadings = map[model.QuestionCategory]string{
	model.CategoryFoundation:    "Foundation",
	model.CategoryTimeline:      "Timeline",
	model.CategoryImpeachment:   "Impeachment",
	model.CategoryContradiction: "Contradictions",
	model.CategoryGap:           "Gaps in the Record",
	model.CategoryFollowUp:      "Follow-Ups",
	model.CategoryGeneral:       "General",
}

func writeQuestionsByCategory(b *strings.Builder, questions []model.Question) {
	b.WriteString("## Questions\n\n")
	for _, cat := range categoryOrder {
		var group []model.Question
		for _, q := range questions {
			if q.Category == cat {
				group = append(group, q)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", categoryHeadings[cat])
		for i, q := range group {
			writeQuestion(b, i+1, q)
		}
	}
}

func writeQuestion(b *strings.Builder, n int, q model.Question) {
	fmt.Fprintf(b, "%d. %s", n, q.Text)
	var tags []string
	if q.Priority != "" {
		tags = append(tags, string(q.Priority)+" priority")
	}
	if q.SourceDocument != "" {
		tags = append(tags, "source: "+q.SourceDocument)
	}
	if q.ExhibitToShow != "" {
		tags = append(tags, "show: "+q.ExhibitToShow)
	}
	if len(tags) > 0 {
		fmt.Fprintf(b, " *(%s)*", strings.Join(tags, "; "))
	}
	b.WriteString("\n")
	if q.Rationale != "" {
		fmt.Fprintf(b, "   - Rationale: %s\n", q.Rationale)
	}
	for _, f := range q.FollowUpQuestions {
		fmt.Fprintf(b, "   - Follow-up: %s\n", f)
	}
	b.WriteString("\n")
}

func writeGaps(b *strings.Builder, gaps []model.Gap) {
	b.WriteString("## Gaps in the Record\n\n")
	for _, g := range gaps {
		fmt.Fprintf(b, "- **[%s]** %s\n", g.Severity, g.Description)
		if len(g.DocumentReferences) > 0 {
			fmt.Fprintf(b, "  - Documents: %s\n", strings.Join(g.DocumentReferences, ", "))
		}
		for _, q := range g.SuggestedQuestions {
			fmt.Fprintf(b, "  - Ask: %s\n", q)
		}
	}
	b.WriteString("\n")
}

func writeContradictions(b *strings.Builder, contradictions []model.Contradiction) {
	b.WriteString("## Contradictions\n\n")
	for _, c := range contradictions {
		fmt.Fprintf(b, "- **[%s]** %s\n", c.Severity, c.Description)
		for _, src := range c.Sources {
			if src.Document == "" && src.Excerpt == "" {
				continue
			}
			fmt.Fprintf(b, "  - %s: %q", src.Document, src.Excerpt)
			if src.Page > 0 {
				fmt.Fprintf(b, " (p. %d)", src.Page)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeAnalysis(b *strings.Builder, a *model.Analysis) {
	b.WriteString("## Analysis\n\n")
	if len(a.KeyThemes) > 0 {
		fmt.Fprintf(b, "**Key themes:** %s\n\n", strings.Join(a.KeyThemes, ", "))
	}
	if len(a.Witnesses) > 0 {
		fmt.Fprintf(b, "**Witnesses:** %s\n\n", strings.Join(a.Witnesses, ", "))
	}
	if len(a.KeyExhibits) > 0 {
		fmt.Fprintf(b, "**Key exhibits:** %s\n\n", strings.Join(a.KeyExhibits, ", "))
	}
	if len(a.TimelineEvents) > 0 {
		b.WriteString("**Timeline:**\n\n")
		for _, ev := range a.TimelineEvents {
			fmt.Fprintf(b, "- %s: %s", ev.Date, ev.Event)
			if ev.Source != "" {
				fmt.Fprintf(b, " (%s)", ev.Source)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
