package model

import "time"

// Outline structures the questioning session into ordered sections.
type Outline struct {
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section is a named, ordered grouping of questions. Questions are held by
// value: moving a question into a section copies it, the session's flat
// question list is untouched.
type Section struct {
	Title            string     `json:"title"`
	Order            int        `json:"order"`
	Questions        []Question `json:"questions"`
	Notes            string     `json:"notes,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes,omitempty"`
}

// NewOutline creates an empty outline.
func NewOutline(title string, now time.Time) *Outline {
	return &Outline{
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSection appends a section at the end and renumbers.
func (o *Outline) AddSection(title string, now time.Time) *Section {
	o.Sections = append(o.Sections, Section{Title: title})
	o.renumber()
	o.UpdatedAt = now
	return &o.Sections[len(o.Sections)-1]
}

// AddQuestion copies q into the section at the given index. Out-of-range
// indexes are ignored.
func (o *Outline) AddQuestion(sectionIdx int, q Question, now time.Time) {
	if sectionIdx < 0 || sectionIdx >= len(o.Sections) {
		return
	}
	o.Sections[sectionIdx].Questions = append(o.Sections[sectionIdx].Questions, q)
	o.UpdatedAt = now
}

// Reorder rearranges sections according to perm, a permutation of current
// section indexes. Invalid permutations (wrong length, out-of-range or
// duplicate entries) leave the outline unchanged. Order values are always
// contiguous from 0 afterward, so reordering by the identity permutation is
// a no-op.
func (o *Outline) Reorder(perm []int, now time.Time) bool {
	if len(perm) != len(o.Sections) {
		return false
	}
	seen := make(map[int]bool, len(perm))
	for _, idx := range perm {
		if idx < 0 || idx >= len(o.Sections) || seen[idx] {
			return false
		}
		seen[idx] = true
	}

	reordered := make([]Section, len(o.Sections))
	for pos, idx := range perm {
		reordered[pos] = o.Sections[idx]
	}
	o.Sections = reordered
	o.renumber()
	o.UpdatedAt = now
	return true
}

// renumber makes section order values contiguous from 0 in list position.
func (o *Outline) renumber() {
	for i := range o.Sections {
		o.Sections[i].Order = i
	}
}
