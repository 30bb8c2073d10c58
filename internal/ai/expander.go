package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Concept is one idea the analysis pass picked out of a lecture.
type Concept struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Analysis is the lecture-level summary used to plan the page.
type Analysis struct {
	MainConcepts       []Concept `json:"main_concepts"`
	DifficultyLevel    string    `json:"difficulty_level"`
	Prerequisites      []string  `json:"prerequisites"`
	LearningObjectives []string  `json:"learning_objectives"`
}

// Stat is a single metric card.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Visualization is one of chartjs, mermaid, comparison or stats, selected by Type.
type Visualization struct {
	Type        string          `json:"viz_type"`
	ChartType   string          `json:"chart_type,omitempty"`
	Title       string          `json:"title,omitempty"`
	Caption     string          `json:"caption,omitempty"`
	Labels      json.RawMessage `json:"labels,omitempty"`
	Datasets    json.RawMessage `json:"datasets,omitempty"`
	Code        string          `json:"code,omitempty"`
	LeftTitle   string          `json:"left_title,omitempty"`
	LeftPoints  []string        `json:"left_points,omitempty"`
	RightTitle  string          `json:"right_title,omitempty"`
	RightPoints []string        `json:"right_points,omitempty"`
	Stats       []Stat          `json:"stats,omitempty"`
}

// Expansion is the Feynman-style write-up of one concept.
type Expansion struct {
	SimpleAnalogy   string         `json:"SIMPLE_ANALOGY"`
	WhyItMatters    string         `json:"WHY_IT_MATTERS"`
	DeepExplanation string         `json:"DEEP_EXPLANATION"`
	Example         string         `json:"EXAMPLE"`
	CommonMistake   string         `json:"COMMON_MISTAKE"`
	Visualization   *Visualization `json:"VISUALIZATION,omitempty"`
}

// QuizQuestion is a four-option multiple choice question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Expander produces the AI-written parts of a study page.
type Expander interface {
	Analyze(ctx context.Context, title, text string) (Analysis, error)
	Expand(ctx context.Context, concept, original, pageContext string) (Expansion, error)
	Quiz(ctx context.Context, concept, content string) ([]QuizQuestion, error)
}

// Noop produces nothing; callers fall back to their defaults.
type Noop struct{}

func (Noop) Analyze(ctx context.Context, title, text string) (Analysis, error) {
	return Analysis{}, errors.New("AI expansion disabled")
}

func (Noop) Expand(ctx context.Context, concept, original, pageContext string) (Expansion, error) {
	return Expansion{}, errors.New("AI expansion disabled")
}

func (Noop) Quiz(ctx context.Context, concept, content string) ([]QuizQuestion, error) {
	return nil, nil
}

// PromptExpander implements Expander over any Dispatcher.
type PromptExpander struct {
	d Dispatcher
}

func NewPromptExpander(d Dispatcher) *PromptExpander {
	return &PromptExpander{d: d}
}

func (e *PromptExpander) Analyze(ctx context.Context, title, text string) (Analysis, error) {
	prompt := fmt.Sprintf(`Analyze this course lecture content and identify the main concepts for learning.

Title: %s

Content (first 8000 chars):
%s

Please provide a JSON response with:
1. main_concepts: List of 5-10 key concepts (each with name and brief description)
2. difficulty_level: "beginner", "intermediate", or "advanced"
3. prerequisites: List of 3-5 prerequisite topics
4. learning_objectives: List of 3-5 main learning objectives

Format as valid JSON only, no markdown or explanation.`, title, truncateRunes(text, 8000))

	var out Analysis
	if err := e.askJSON(ctx, prompt, &out); err != nil {
		return Analysis{}, fmt.Errorf("analyzing content: %w", err)
	}
	return out, nil
}

const expandPrompt = `You are an expert educator using the Feynman technique. Expand this concept for deep learning.

Concept: %s

Original explanation from lecture:
%s

Context: %s

Provide a comprehensive explanation with:

1. SIMPLE_ANALOGY: One intuitive, everyday analogy (2-3 sentences)

2. WHY_IT_MATTERS: Real-world application and importance (2-3 sentences)

3. DEEP_EXPLANATION: Clear, detailed explanation without jargon (1 paragraph)

4. EXAMPLE: One practical, worked example with numbers or concrete scenario (3-4 sentences)

5. COMMON_MISTAKE: One common misconception or error students make (2 sentences)

6. VISUALIZATION: A data visualization specification. Choose ONE type that best fits the concept:
   - If the concept involves numerical data, trends, or comparisons, provide a Chart.js config:
     {"viz_type": "chartjs", "chart_type": "line|bar|pie|doughnut|radar|scatter", "title": "...", "caption": "...", "labels": [...], "datasets": [{"label": "...", "data": [...]}]}
   - If the concept involves a process, flow, or relationship, provide a Mermaid diagram:
     {"viz_type": "mermaid", "title": "...", "caption": "...", "code": "flowchart TD\n    A[Step1] --> B[Step2]"}
   - If the concept involves comparing two approaches/methods, provide a comparison:
     {"viz_type": "comparison", "left_title": "...", "left_points": ["..."], "right_title": "...", "right_points": ["..."]}
   - If the concept has key metrics or stats, provide stats cards:
     {"viz_type": "stats", "stats": [{"value": "...", "label": "..."}]}

Format as JSON with these exact keys. Keep it concise and clear.
Never use generic filler text such as "This concept is like a familiar everyday process." or similarly vague placeholders.`

// Expand asks for the Feynman write-up, retrying once with a nudge toward
// concrete detail when the first answer is unusable.
func (e *PromptExpander) Expand(ctx context.Context, concept, original, pageContext string) (Expansion, error) {
	prompt := fmt.Sprintf(expandPrompt, concept, truncateRunes(original, 2000), truncateRunes(pageContext, 1000))
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		p := prompt
		if attempt == 1 {
			p += "\nPrevious output was too generic. Use concrete, lecture-grounded details."
		}
		var out Expansion
		if err := e.askJSON(ctx, p, &out); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return out, nil
	}
	return Expansion{}, fmt.Errorf("expanding %q: %w", concept, lastErr)
}

func (e *PromptExpander) Quiz(ctx context.Context, concept, content string) ([]QuizQuestion, error) {
	prompt := fmt.Sprintf(`Create 3 multiple choice quiz questions for this concept.

Concept: %s
Content: %s

For each question provide:
- question: The question text
- options: Array of 4 options (A, B, C, D)
- correct: Index of correct answer (0-3)
- explanation: Why this answer is correct (1 sentence)

Return as JSON array of 3 questions.`, concept, truncateRunes(content, 1500))

	var out []QuizQuestion
	if err := e.askJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("quiz for %q: %w", concept, err)
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out, nil
}

func (e *PromptExpander) askJSON(ctx context.Context, prompt string, out any) error {
	text, err := e.d.Send(ctx, prompt)
	if err != nil {
		return err
	}
	return DecodeJSON(strings.TrimSuffix(text, TrimmedSuffix), out)
}

// DecodeJSON parses model output that may be wrapped in code fences or
// surrounded by prose.
func DecodeJSON(text string, out any) error {
	js := stripCodeFences(text)
	err := json.Unmarshal([]byte(js), out)
	if err == nil {
		return nil
	}
	open, closing := byte('{'), byte('}')
	if b := strings.IndexByte(js, '['); b != -1 {
		if o := strings.IndexByte(js, '{'); o == -1 || b < o {
			open, closing = '[', ']'
		}
	}
	s := findFirstJSON(js, open, closing)
	if s == "" {
		return fmt.Errorf("no JSON found in model output: %w", err)
	}
	if err2 := json.Unmarshal([]byte(s), out); err2 != nil {
		return fmt.Errorf("parse model output: %w (original error: %v)", err2, err)
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSON returns the first balanced open..closing span. Brackets
// inside strings are skipped.
func findFirstJSON(s string, open, closing byte) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start != -1 {
				inString = true
			}
		case open:
			if start == -1 {
				start = i
			}
			depth++
		case closing:
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
