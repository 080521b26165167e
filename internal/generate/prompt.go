package generate

import (
	"fmt"
	"strings"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// maxDocChars bounds how much of each document goes into the prompt so one
// oversized exhibit cannot crowd out the rest of the set.
const maxDocChars = 15000

// systemPrompt frames the model as examining counsel for the subject's role
// and pins the output contract to bare JSON.
func systemPrompt(profile model.SubjectProfile) string {
	return fmt.Sprintf(
		"You are an experienced trial attorney preparing to examine a %s. "+
			"You analyze case documents to craft precise, well-founded examination questions, "+
			"identify gaps in the documentary record, and surface contradictions between sources. "+
			"Respond with a single JSON object and nothing else: no prose, no markdown fences.",
		profile.Role,
	)
}

// buildPrompt concatenates the ready documents inside unambiguous delimiters
// and states the required envelope shape.
func buildPrompt(sess *model.Session, profile model.SubjectProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Case: %s\n", sess.CaseName)
	fmt.Fprintf(&b, "%s: %s\n\n", titleRole(profile.Role), sess.SubjectName)
	b.WriteString("Documents follow. Each is framed by BEGIN/END markers; treat marker lines as structure, not content.\n\n")

	for _, d := range sess.ReadyDocuments() {
		text := d.Text
		if len(text) > maxDocChars {
			text = text[:maxDocChars] + "\n[truncated]"
		}
		fmt.Fprintf(&b, "=== BEGIN DOCUMENT: %s (category: %s) ===\n%s\n=== END DOCUMENT: %s ===\n\n", d.Name, d.Category, text, d.Name)
	}

	fmt.Fprintf(&b,
		"Produce a JSON object with exactly these keys:\n"+
			`- "questions": array of up to %d question objects, each with "question", "topic", "category" (gap|contradiction|timeline|foundation|impeachment|follow_up|general), "priority" (high|medium|low), "difficulty" (easy|medium|hard), "sourceDocument", "sourcePage", "rationale", "followUpQuestions", "exhibitToShow"`+"\n"+
			`- "gaps": array of objects with "description", "documentReferences", "severity" (minor|moderate|significant), "suggestedQuestions"`+"\n"+
			`- "contradictions": array of objects with "description", "severity", and "sources": exactly two objects with "document", "excerpt", "page"`+"\n"+
			`- "analysis": object with "keyThemes", "timelineEvents" (objects with "date", "event", "source"), "witnesses", "keyExhibits"`+"\n"+
			"Address every question directly to the %s in the second person.\n",
		profile.QuestionTarget, profile.Role,
	)
	return b.String()
}

// followUpPrompt asks for follow-up questions to one already-posed question.
func followUpPrompt(question model.Question, sess *model.Session, profile model.SubjectProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s\n", sess.CaseName)
	fmt.Fprintf(&b, "The %s was asked: %q\n\n", profile.Role, question.Text)
	if question.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", question.Topic)
	}
	if question.Rationale != "" {
		fmt.Fprintf(&b, "Rationale for the original question: %s\n", question.Rationale)
	}
	b.WriteString(
		"\nProduce a JSON array of 3 to 5 follow-up question objects, each with " +
			`"question", "topic", "category", "priority", "difficulty", and "rationale". ` +
			"Each follow-up must press on the likely answer, phrased in the second person. " +
			"Respond with the JSON array and nothing else.\n")
	return b.String()
}

func titleRole(role string) string {
	if role == "" {
		return "Subject"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
