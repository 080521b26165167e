// Package fallback deterministically builds a full question set from raw
// document text, without any network call. It runs when the hosted model is
// unreachable, returns no content, or returns content the parser cannot
// salvage.
package fallback

import (
	"regexp"
	"strings"
)

// Per-document extraction caps. Each extraction class is an independent pure
// function from raw text to an ordered, deduplicated list, so the synthesizer
// stays testable class by class.
const (
	maxNamesPerDoc     = 5
	maxDatesPerDoc     = 5
	maxAmountsPerDoc   = 3
	maxLocationsPerDoc = 3
	maxQuotesPerDoc    = 3

	summaryMinSentence = 20
	summaryMaxLen      = 200
)

var (
	nameRE = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)

	monthDateRE   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2},? \d{4}\b`)
	numericDateRE = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	isoDateRE     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

	currencyRE = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	numeralRE  = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)

	locationRE = regexp.MustCompile(`\b(?:in|at|from|to) ([A-Z][A-Za-z]+(?: [A-Z][A-Za-z]+){0,2})`)

	doubleQuoteRE   = regexp.MustCompile(`"([^"]{10,100})"`)
	singleQuoteRE   = regexp.MustCompile(`'([^']{10,100})'`)
	reportedSayRE   = regexp.MustCompile(`(?:stated|claimed|testified) that ([^.]{10,100})`)
	sentenceSplitRE = regexp.MustCompile(`[.!?]+\s`)
)

// Names returns up to maxNamesPerDoc proper-name-shaped tokens (two
// consecutive capitalized words) in order of first appearance.
func Names(text string) []string {
	return capped(nameRE.FindAllString(text, -1), maxNamesPerDoc)
}

// Dates returns up to maxDatesPerDoc calendar-style date tokens: month-name
// dates, numeric D/M/Y, and ISO dates, in that scan order.
func Dates(text string) []string {
	var hits []string
	hits = append(hits, monthDateRE.FindAllString(text, -1)...)
	hits = append(hits, numericDateRE.FindAllString(text, -1)...)
	hits = append(hits, isoDateRE.FindAllString(text, -1)...)
	return capped(hits, maxDatesPerDoc)
}

// Amounts returns up to maxAmountsPerDoc currency or thousand-separated
// numeric tokens.
func Amounts(text string) []string {
	var hits []string
	hits = append(hits, currencyRE.FindAllString(text, -1)...)
	hits = append(hits, numeralRE.FindAllString(text, -1)...)
	return capped(hits, maxAmountsPerDoc)
}

// Locations returns up to maxLocationsPerDoc preposition-led capitalized
// phrases.
func Locations(text string) []string {
	var hits []string
	for _, m := range locationRE.FindAllStringSubmatch(text, -1) {
		hits = append(hits, m[1])
	}
	return capped(hits, maxLocationsPerDoc)
}

// Quotes returns up to maxQuotesPerDoc quoted or reported-speech phrases,
// length-bounded to 10-100 characters.
func Quotes(text string) []string {
	var hits []string
	for _, re := range []*regexp.Regexp{doubleQuoteRE, singleQuoteRE, reportedSayRE} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			hits = append(hits, strings.TrimSpace(m[1]))
		}
	}
	return capped(hits, maxQuotesPerDoc)
}

// Summary returns the first two sentences longer than summaryMinSentence
// characters, truncated to summaryMaxLen. Empty when the text has no
// qualifying sentence.
func Summary(text string) string {
	var kept []string
	for _, s := range sentenceSplitRE.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > summaryMinSentence {
			kept = append(kept, s)
		}
		if len(kept) == 2 {
			break
		}
	}
	summary := strings.Join(kept, ". ")
	if len(summary) > summaryMaxLen {
		summary = summary[:summaryMaxLen]
	}
	return summary
}

// capped deduplicates hits preserving first-seen order and truncates to n.
func capped(hits []string, n int) []string {
	seen := make(map[string]bool, len(hits))
	var out []string
	for _, h := range hits {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
		if len(out) == n {
			break
		}
	}
	return out
}
