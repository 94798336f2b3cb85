// Package markup prepares post text for display: a restricted markdown
// subset for locally composed previews, back-reference linkification and
// HTML sanitation for anything that came from the network.
package markup

import (
	"bytes"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Matches an already-escaped ">>N" back-reference.
var postLinkRegex = regexp.MustCompile(`&gt;&gt;(\d+)`)

type Processor struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
	strip    *bluemonday.Policy
}

func New() *Processor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(htmlrenderer.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	return &Processor{
		md:       md,
		sanitize: buildPolicy(),
		strip:    bluemonday.StrictPolicy(),
	}
}

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile("^post-link$")).OnElements("a")
	p.AllowAttrs("data-post-id").OnElements("a")
	p.RequireNoFollowOnLinks(false)
	return p
}

// Sanitize cleans server-delivered post content before it is inserted into
// the document. Back-references survive as annotated anchors.
func (p *Processor) Sanitize(content string) string {
	return p.sanitize.Sanitize(linkifyPostRefs(content))
}

// RenderPreview turns locally composed plain text into the HTML fragment the
// server would render for it: markdown subset, escaped, back-references
// linked, sanitized.
func (p *Processor) RenderPreview(text string) string {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	rendered := strings.TrimSpace(buf.String())
	return p.sanitize.Sanitize(linkifyPostRefs(rendered))
}

// PlainText strips all markup from a rendered fragment, yielding the visible
// text. Used for quote extraction.
func (p *Processor) PlainText(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(p.strip.Sanitize(fragment)))
}

// linkifyPostRefs converts escaped ">>N" references into post links carrying
// the target id.
func linkifyPostRefs(text string) string {
	return postLinkRegex.ReplaceAllStringFunc(text, func(match string) string {
		submatch := postLinkRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		id, err := strconv.ParseInt(submatch[1], 10, 64)
		if err != nil {
			return match
		}
		idStr := strconv.FormatInt(id, 10)
		return `<a class="post-link" data-post-id="` + idStr + `" href="#post-` + idStr + `">&gt;&gt;` + idStr + `</a>`
	})
}
