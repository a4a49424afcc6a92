package chunker

import (
	"regexp"
	"strings"

	"github.com/poiesic/curator/core"
)

// Classifier assigns a coarse semantic type to chunk text. It is a pure
// function kept swappable so the keyword heuristic can later be replaced by
// a model-based classifier without touching the chunker's control flow.
type Classifier func(text string) core.ChunkType

// navigation keyword list; matched against a lowercased prefix window of the text
var navigationKeywords = []string{
	"table of contents",
	"see also",
	"related articles",
	"related links",
	"quick links",
	"next page",
	"previous page",
	"back to top",
	"breadcrumb",
	"site map",
	"main menu",
}

var (
	faqPattern      = regexp.MustCompile(`(?mi)^\s*(q[:.]|question[:.?]|faq)`)
	answerPattern   = regexp.MustCompile(`(?mi)^\s*(a[:.]|answer[:.])`)
	glossaryPattern = regexp.MustCompile(`^\s*\S[^\n]{0,60}?\s+[-–—]\s+\S`)
	codeHintPattern = regexp.MustCompile(`(?m)^\s*(func |def |class |package |import |#include|var |const )`)
)

// DefaultClassifier is the keyword/pattern heuristic of the pipeline:
// navigation keyword list, question/answer prefixes for FAQ, a leading
// "term - definition" pattern for glossary, code syntax hints, otherwise
// knowledge.
func DefaultClassifier(text string) core.ChunkType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return core.ChunkTypeKnowledge
	}

	lower := strings.ToLower(trimmed)
	for _, keyword := range navigationKeywords {
		if strings.Contains(lower, keyword) {
			return core.ChunkTypeNavigation
		}
	}

	if faqPattern.MatchString(trimmed) ||
		(strings.Contains(trimmed, "?") && answerPattern.MatchString(trimmed)) {
		return core.ChunkTypeFAQ
	}

	if codeHintPattern.MatchString(trimmed) {
		return core.ChunkTypeCode
	}

	if glossaryPattern.MatchString(trimmed) && !strings.Contains(trimmed, ". ") {
		return core.ChunkTypeGlossary
	}

	return core.ChunkTypeKnowledge
}
