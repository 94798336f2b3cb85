package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsScripts(t *testing.T) {
	p := New()

	out := p.Sanitize(`<p>hello</p><script>alert(1)</script>`)

	assert.Contains(t, out, "<p>hello</p>")
	assert.NotContains(t, out, "script")
}

func TestSanitizeLinkifiesBackReferences(t *testing.T) {
	p := New()

	out := p.Sanitize("&gt;&gt;42 agreed")

	assert.Contains(t, out, `data-post-id="42"`)
	assert.Contains(t, out, `href="#post-42"`)
	assert.Contains(t, out, "&gt;&gt;42")
}

func TestRenderPreviewEscapesAndLinks(t *testing.T) {
	p := New()

	out := p.RenderPreview(">>7\n<b>not bold</b> *em*")

	assert.Contains(t, out, `data-post-id="7"`)
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "<em>em</em>")
}

func TestPlainTextStripsMarkup(t *testing.T) {
	p := New()

	got := p.PlainText(`<div class="post-text">first line<br>&amp; second</div>`)

	assert.Equal(t, "first line& second", got)
}
