package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "A wizard of Earthsea", "A wizard of Earthsea"},
		{"paragraphs", "<p>First line.</p><p>Second line.</p>", "First line.\nSecond line."},
		{"inline tags", "<p>The <em>last</em> <strong>wish</strong></p>", "The last wish"},
		{"line breaks", "One<br>Two<br/>Three<br />Four", "One\nTwo\nThree\nFour"},
		{"attributes", `<div class="x"><p style="font-weight: 600">Styled</p></div>`, "Styled"},
		{"list items", "<ul><li>Part one</li><li>Part two</li></ul>", "Part one\nPart two"},
		{"headings", "<h2>Prologue</h2>It begins.", "Prologue\nIt begins."},
		{"named entities", "Tom &amp; Jerry &mdash; &ldquo;classic&rdquo;", "Tom & Jerry \u2014 \u201Cclassic\u201D"},
		{"numeric entities", "&#60;tag&#62; it&#39;s", "<tag> it's"},
		{"non-breaking space", "Hello&nbsp;world", "Hello world"},
		{"collapses whitespace", "Too    many \t spaces", "Too many spaces"},
		{"self-closing", "Text <img src='cover.jpg'/> more", "Text more"},
		{"drops scripts", "Safe<script>alert(1)</script> text", "Safe text"},
		{"comments", "Keep<!-- hidden --> this", "Keep this"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}
