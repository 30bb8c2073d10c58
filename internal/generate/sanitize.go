package generate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
)

// GenericPhrases are filler sentences models fall back to. Expansion fields
// containing them are replaced, and the scanner flags them in output.
var GenericPhrases = []string{
	"this concept is like a familiar everyday process",
	"understanding this helps in practical applications",
	"consider a typical scenario where this applies",
	"students often confuse this with related concepts",
}

const minFieldRunes = 24

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isGenericOrEmpty(text string) bool {
	clean := strings.ToLower(normalizeText(text))
	if clean == "" {
		return true
	}
	for _, p := range GenericPhrases {
		if strings.Contains(clean, p) {
			return true
		}
	}
	return false
}

// FallbackExpansion builds an expansion from the lecture text alone, used
// when the model output is missing or generic.
func FallbackExpansion(concept, original string) ai.Expansion {
	source := normalizeText(original)
	if source == "" {
		source = fmt.Sprintf("%s is a core topic in this lecture and should be interpreted together with the surrounding context.", concept)
	}
	if utf8.RuneCountInString(source) > 520 {
		r := []rune(source)[:520]
		cut := string(r)
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		source = cut + "..."
	}
	return ai.Expansion{
		SimpleAnalogy:   fmt.Sprintf("Think of %s like a workflow where each step depends on the quality of the previous step; if one part is weak, the final outcome is unreliable.", concept),
		WhyItMatters:    fmt.Sprintf("In this lecture, %s influences how evidence is interpreted and how decisions are made, so getting it right improves both analysis quality and practical decisions.", concept),
		DeepExplanation: source,
		Example:         fmt.Sprintf("A practical way to apply %s is to start from the lecture's core definition, test it on a concrete case, and compare results under different assumptions.", concept),
		CommonMistake:   fmt.Sprintf("A common mistake is to memorize %s as a slogan without checking assumptions, data quality, and the specific decision context.", concept),
	}
}

// Sanitize replaces short or generic fields with their fallback and keeps
// the visualization only when it names a type.
func Sanitize(concept, original string, exp ai.Expansion) ai.Expansion {
	fb := FallbackExpansion(concept, original)
	pick := func(got, fallback string) string {
		text := normalizeText(got)
		if utf8.RuneCountInString(text) < minFieldRunes || isGenericOrEmpty(text) {
			return fallback
		}
		return text
	}
	out := ai.Expansion{
		SimpleAnalogy:   pick(exp.SimpleAnalogy, fb.SimpleAnalogy),
		WhyItMatters:    pick(exp.WhyItMatters, fb.WhyItMatters),
		DeepExplanation: pick(exp.DeepExplanation, fb.DeepExplanation),
		Example:         pick(exp.Example, fb.Example),
		CommonMistake:   pick(exp.CommonMistake, fb.CommonMistake),
	}
	if exp.Visualization != nil && exp.Visualization.Type != "" {
		out.Visualization = exp.Visualization
	}
	return out
}

// DefaultAnalysis is used when the analysis call fails.
func DefaultAnalysis() ai.Analysis {
	return ai.Analysis{
		MainConcepts:       []ai.Concept{{Name: "Overview", Description: "Introduction to the topic"}},
		DifficultyLevel:    "intermediate",
		Prerequisites:      []string{"Basic understanding of the subject"},
		LearningObjectives: []string{"Understand the main concepts"},
	}
}

// relevantText returns the lines around the first mention of concept in
// fullText, or the concept description when it is never mentioned.
func relevantText(fullText, concept, description string) string {
	needle := strings.ToLower(concept)
	lines := strings.Split(fullText, "\n")
	for j, line := range lines {
		if needle != "" && strings.Contains(strings.ToLower(line), needle) {
			start := max(0, j-3)
			end := min(len(lines), j+10)
			return strings.Join(lines[start:end], "\n")
		}
	}
	return description
}
