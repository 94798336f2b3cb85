// Package render maps post records to document nodes. The mapping is pure
// given the record and the configured locale, so it is testable without any
// live page: the output is an HTML fragment plus a stable node id.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sameanonim/imageboard/internal/domain"
	"github.com/sameanonim/imageboard/internal/markup"
	"github.com/sameanonim/imageboard/internal/view"
)

// Hooks carries the interaction handlers bound to every rendered post.
type Hooks struct {
	Quote  func(postID int64)
	Report func(postID int64)
}

type Renderer struct {
	proc      *markup.Processor
	templates *template.Template
	locale    string
}

func New(locale string, proc *markup.Processor) *Renderer {
	return &Renderer{
		proc:      proc,
		templates: mustParseTemplates(),
		locale:    locale,
	}
}

// PostNodeID derives the stable document id for a post.
func PostNodeID(id int64) string {
	return fmt.Sprintf("post-%d", id)
}

// ReplyNodeID derives the stable document id for a nested reply.
func ReplyNodeID(id int64) string {
	return fmt.Sprintf("reply-%d", id)
}

// RepliesContainerID names the lazily created replies container under a post.
func RepliesContainerID(parentID int64) string {
	return fmt.Sprintf("replies-%d", parentID)
}

// PreviewNodeID names a file preview by its position in the selection.
// Basenames are not unique across directories, so they cannot key the node.
func PreviewNodeID(index int) string {
	return fmt.Sprintf("preview-%d", index)
}

type postView struct {
	Post    domain.Post
	Content template.HTML
	Date    string
}

// Post renders a post record into a document node. Author-supplied fields are
// escaped by the template engine; Content is sanitized and inserted as
// markup.
func (r *Renderer) Post(p domain.Post, hooks Hooks) (*view.Node, error) {
	html, err := r.execute("post", postView{
		Post:    p,
		Content: template.HTML(r.proc.Sanitize(p.Content)),
		Date:    FormatDate(p.CreatedAt, r.locale),
	})
	if err != nil {
		return nil, err
	}
	return r.node(PostNodeID(p.Id), "post", html, p.Id, hooks), nil
}

// Reply renders a nested reply record.
func (r *Renderer) Reply(rep domain.Reply, hooks Hooks) (*view.Node, error) {
	html, err := r.execute("reply", postView{
		Post:    rep.Post,
		Content: template.HTML(r.proc.Sanitize(rep.Content)),
		Date:    FormatDate(rep.CreatedAt, r.locale),
	})
	if err != nil {
		return nil, err
	}
	return r.node(ReplyNodeID(rep.Id), "reply", html, rep.Id, hooks), nil
}

type previewView struct {
	Name    string
	IsVideo bool
	DataURL template.URL
	Summary string
}

// FilePreview renders a client-side preview for a locally selected file.
func (r *Renderer) FilePreview(index int, name string, isVideo bool, dataURL string, sizeBytes int64) (*view.Node, error) {
	html, err := r.execute("preview", previewView{
		Name:    name,
		IsVideo: isVideo,
		DataURL: template.URL(dataURL),
		Summary: fmt.Sprintf("%s (%.1fKB)", name, float64(sizeBytes)/1024),
	})
	if err != nil {
		return nil, err
	}
	return &view.Node{ID: PreviewNodeID(index), Class: "preview-item", HTML: html}, nil
}

// QuoteText extracts the visible text of a post's content for quoting.
func (r *Renderer) QuoteText(p domain.Post) string {
	return r.proc.PlainText(r.proc.Sanitize(p.Content))
}

func (r *Renderer) node(id, class string, html template.HTML, recordID int64, hooks Hooks) *view.Node {
	n := &view.Node{ID: id, Class: class, HTML: html}
	if hooks.Quote != nil {
		n.OnQuote = func() { hooks.Quote(recordID) }
	}
	if hooks.Report != nil {
		n.OnReport = func() { hooks.Report(recordID) }
	}
	return n
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	buf := new(bytes.Buffer)
	if err := r.templates.ExecuteTemplate(buf, name, data); err != nil {
		return "", fmt.Errorf("render %s fragment: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
