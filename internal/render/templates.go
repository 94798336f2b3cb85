package render

import "html/template"

// Fragment templates mirror the markup of the server-rendered thread page so
// pushed and polled posts are indistinguishable from the initial render.
const fragmentTemplates = `
{{define "fileBlock"}}
{{if .Files}}<div class="post-files">
{{range .Files}}<div class="file">
<a href="/static/uploads/{{.Filename}}" target="_blank" class="file-link"><img src="/static/uploads/{{.Filename}}" alt="{{.OriginalFilename}}" loading="lazy"></a>
<div class="file-info">
<span class="file-name">{{.OriginalFilename}}</span>
<span class="file-size">{{kb .FileSize}}KB</span>
{{if and .Width .Height}}<span class="file-dimensions">{{deref .Width}}x{{deref .Height}}</span>{{end}}
</div>
</div>{{end}}
</div>{{end}}
{{end}}

{{define "post"}}<div class="post-header">
<span class="post-number">№{{.Post.Id}}</span>
{{if .Post.Author}}<span class="post-name">{{.Post.Author}}</span>{{end}}
<span class="post-date">{{.Date}}</span>
</div>
<div class="post-content">
{{template "fileBlock" .Post}}
<div class="post-text">{{.Content}}</div>
</div>
<div class="post-actions">
<a href="#post-{{.Post.Id}}" class="post-anchor">#</a>
<button class="quote-btn" data-post-id="{{.Post.Id}}">Quote</button>
<button class="report-btn" data-post-id="{{.Post.Id}}">Report</button>
</div>{{end}}

{{define "reply"}}<div class="reply-header">
{{if .Post.Author}}<span class="reply-name">{{.Post.Author}}</span>{{end}}
<span class="reply-date">{{.Date}}</span>
</div>
<div class="reply-content">{{.Content}}</div>{{end}}

{{define "preview"}}{{if .IsVideo}}<video src="{{.DataURL}}" class="preview-media"></video>{{else}}<img src="{{.DataURL}}" class="preview-media">{{end}}<span class="preview-name">{{.Summary}}</span>{{end}}
`

func mustParseTemplates() *template.Template {
	return template.Must(template.New("fragments").Funcs(template.FuncMap{
		"kb": func(size int64) string {
			return trimKB(float64(size) / 1024)
		},
		"deref": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
	}).Parse(fragmentTemplates))
}
