package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outlineWithSections(t *testing.T, titles ...string) *Outline {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	o := NewOutline("Examination Outline", now)
	for _, title := range titles {
		o.AddSection(title, now)
	}
	return o
}

func TestOutline_AddSectionRenumbers(t *testing.T) {
	t.Parallel()

	o := outlineWithSections(t, "Background", "Timeline", "Impeachment")
	require.Len(t, o.Sections, 3)
	for i, sec := range o.Sections {
		assert.Equal(t, i, sec.Order)
	}
}

func TestOutline_AddQuestionCopies(t *testing.T) {
	t.Parallel()

	o := outlineWithSections(t, "Background")
	q := Question{ID: "q1", Text: "original"}
	o.AddQuestion(0, q, time.Now())

	// Mutating the source question must not touch the outline's copy.
	q.Text = "mutated"
	assert.Equal(t, "original", o.Sections[0].Questions[0].Text)
}

func TestOutline_AddQuestionOutOfRange(t *testing.T) {
	t.Parallel()

	o := outlineWithSections(t, "Background")
	o.AddQuestion(-1, Question{ID: "a"}, time.Now())
	o.AddQuestion(5, Question{ID: "b"}, time.Now())
	assert.Empty(t, o.Sections[0].Questions)
}

func TestOutline_Reorder(t *testing.T) {
	t.Parallel()

	o := outlineWithSections(t, "A", "B", "C")
	ok := o.Reorder([]int{2, 0, 1}, time.Now())
	require.True(t, ok)

	assert.Equal(t, "C", o.Sections[0].Title)
	assert.Equal(t, "A", o.Sections[1].Title)
	assert.Equal(t, "B", o.Sections[2].Title)
	for i, sec := range o.Sections {
		assert.Equal(t, i, sec.Order)
	}
}

func TestOutline_ReorderIdentityIsNoOp(t *testing.T) {
	t.Parallel()

	o := outlineWithSections(t, "A", "B")
	ok := o.Reorder([]int{0, 1}, time.Now())
	require.True(t, ok)
	assert.Equal(t, "A", o.Sections[0].Title)
	assert.Equal(t, "B", o.Sections[1].Title)
}

func TestOutline_ReorderInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		perm []int
	}{
		{"wrong length", []int{0}},
		{"duplicate index", []int{0, 0, 1}},
		{"out of range", []int{0, 1, 3}},
		{"negative", []int{0, 1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := outlineWithSections(t, "A", "B", "C")
			assert.False(t, o.Reorder(tt.perm, time.Now()))
			assert.Equal(t, "A", o.Sections[0].Title)
			assert.Equal(t, "B", o.Sections[1].Title)
			assert.Equal(t, "C", o.Sections[2].Title)
		})
	}
}
