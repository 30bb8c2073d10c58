package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var a Analysis
	require.NoError(t, DecodeJSON("```json\n{\"main_concepts\":[{\"name\":\"Utility\"}],\"difficulty_level\":\"beginner\"}\n```", &a))
	assert.Equal(t, "Utility", a.MainConcepts[0].Name)

	var q []QuizQuestion
	require.NoError(t, DecodeJSON(`Here you go: [{"question":"Q?","options":["a","b","c","d"],"correct":2}] hope it helps`, &q))
	require.Len(t, q, 1)
	assert.Equal(t, 2, q[0].Correct)

	var e Expansion
	require.NoError(t, DecodeJSON(`prefix {"SIMPLE_ANALOGY":"a } brace in a string","EXAMPLE":"e"} suffix`, &e))
	assert.Equal(t, "a } brace in a string", e.SimpleAnalogy)

	assert.Error(t, DecodeJSON("no json here", &e))
}

func TestPromptExpanderRetriesOnce(t *testing.T) {
	var prompts []string
	d := dispatchFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return "not json", nil
		}
		return `{"SIMPLE_ANALOGY":"like a thermostat","VISUALIZATION":{"viz_type":"stats","stats":[{"value":"3","label":"steps"}]}}`, nil
	})
	x := NewPromptExpander(d)
	got, err := x.Expand(context.Background(), "Feedback", "original", "context")
	require.NoError(t, err)
	assert.Equal(t, "like a thermostat", got.SimpleAnalogy)
	require.NotNil(t, got.Visualization)
	assert.Equal(t, "stats", got.Visualization.Type)
	require.Len(t, prompts, 2)
	assert.True(t, strings.HasSuffix(prompts[1], "Use concrete, lecture-grounded details."))
}

func TestPromptExpanderGivesUpAfterTwoFailures(t *testing.T) {
	calls := 0
	d := dispatchFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("boom")
	})
	_, err := NewPromptExpander(d).Expand(context.Background(), "X", "", "")
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestQuizCapsAtThree(t *testing.T) {
	d := dispatchFunc(func(ctx context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "Concept: Supply")
		return `[{"question":"1"},{"question":"2"},{"question":"3"},{"question":"4"}]`, nil
	})
	q, err := NewPromptExpander(d).Quiz(context.Background(), "Supply", "text")
	require.NoError(t, err)
	assert.Len(t, q, 3)
}

func TestAnalyzeTruncatesInput(t *testing.T) {
	d := dispatchFunc(func(ctx context.Context, prompt string) (string, error) {
		assert.NotContains(t, prompt, strings.Repeat("z", 8001))
		return `{"main_concepts":[{"name":"A","description":"d"}],"prerequisites":["p"]}`, nil
	})
	a, err := NewPromptExpander(d).Analyze(context.Background(), "T", strings.Repeat("z", 9000))
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, a.Prerequisites)
}
