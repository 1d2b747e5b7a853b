package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tp := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "**bold** and *italic*",
			contains: []string{"<strong>bold</strong>", "<em>italic</em>"},
		},
		{
			name:     "strikethrough",
			input:    "~~gone~~",
			contains: []string{"<del>gone</del>"},
		},
		{
			name:     "inline code is escaped",
			input:    "`<b>`",
			contains: []string{"<code>&lt;b&gt;</code>"},
		},
		{
			name:     "raw html is dropped",
			input:    "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script>", "alert(1)</script>"},
		},
		{
			name:     "javascript links are stripped",
			input:    "[x](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "external links get nofollow",
			input:    "[site](https://example.com)",
			contains: []string{`href="https://example.com"`, `rel="nofollow`},
		},
		{
			name:     "line breaks are kept",
			input:    "one\ntwo",
			contains: []string{"one<br"},
		},
		{
			name:     "lists",
			input:    "- a\n- b",
			contains: []string{"<ul>", "<li>a</li>", "<li>b</li>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tp.Render(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
