package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"escape", `<b>"x" & 'y'</b>`, "&lt;b&gt;&quot;x&quot; &amp; &#39;y&#39;&lt;/b&gt;"},
		{"headings", "# One\n## Two\n### Three", "<h1>One</h1><h2>Two</h2><h3>Three</h3>"},
		{"bold italic", "**b** and *i*", "<strong>b</strong> and <em>i</em>"},
		{"code stays literal", "`**not bold**`", "<code>**not bold**</code>"},
		{"bullets grouped", "- a\n* b\n- c", "<ul><li>a</li><li>b</li><li>c</li></ul>"},
		{"lines joined", "a\nb", "a<br>b"},
		{"blank line", "a\n\nb", "a<br><br>b"},
		{"list then text", "- a\ntext", "<ul><li>a</li></ul>text"},
		{"script injection", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"four hashes is text", "#### x", "#### x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"# Title\n- **a**\n- `b`\n\n*c*",
		"key concept",
		strings.Repeat("x*y*z\n", 20),
		"\x00 0 \x00",
	}
	for _, in := range inputs {
		first := Render(in)
		assert.Equal(t, first, Render(in))
		assert.NotContains(t, first, "\x00")
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 140))
	long := strings.Repeat("é", 150)
	got := Preview(long, 140)
	assert.Equal(t, strings.Repeat("é", 140)+"...", got)
}
