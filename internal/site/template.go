package site

import (
	"bytes"
	"fmt"
	"html/template"
)

// layoutData is everything the page layout template needs.
type layoutData struct {
	SiteName        string
	SiteDescription string
	PageTitle       string
	Content         template.HTML
	Nav             []*NavNode
	RepoURL         string
	BodyClass       string
	PrimaryHex      string
	AccentHex       string
	RootPrefix      string // relative prefix back to the site root
	LiveReload      bool
}

const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .PageTitle}}{{.PageTitle}} - {{end}}{{.SiteName}}</title>
{{- if .SiteDescription}}
<meta name="description" content="{{.SiteDescription}}">
{{- end}}
<link rel="stylesheet" href="{{.RootPrefix}}assets/mksite.css">
<style>:root{--md-primary:{{.PrimaryHex}};--md-accent:{{.AccentHex}};}</style>
</head>
<body class="{{.BodyClass}}">
<header class="site-header">
<a class="site-title" href="{{.RootPrefix}}">{{.SiteName}}</a>
{{- if .RepoURL}}
<a class="repo-link" href="{{.RepoURL}}">Repository</a>
{{- end}}
</header>
<div class="layout">
<nav class="site-nav">
{{template "navlist" dict "Nodes" .Nav "Prefix" .RootPrefix}}
</nav>
<main class="content">
{{.Content}}
</main>
</div>
{{- if .LiveReload}}
<script src="/livereload.js" defer></script>
{{- end}}
</body>
</html>
{{define "navlist"}}<ul>
{{- range .Nodes}}
{{- if .IsSection}}
<li class="nav-section"><span>{{.Title}}</span>
{{template "navlist" dict "Nodes" .Children "Prefix" $.Prefix}}</li>
{{- else}}
<li><a href="{{$.Prefix}}{{.URL}}">{{.Title}}</a></li>
{{- end}}
{{- end}}
</ul>{{end}}`

// newLayout parses the page layout template.
func newLayout() (*template.Template, error) {
	tmpl := template.New("layout").Funcs(template.FuncMap{
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict requires key/value pairs")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
	})
	return tmpl.Parse(layoutTemplate)
}

// contentHTML marks rendered markdown as safe for template insertion.
func contentHTML(html []byte) template.HTML { return template.HTML(html) }

// renderLayout executes the layout for one page.
func renderLayout(tmpl *template.Template, data layoutData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute layout: %w", err)
	}
	return buf.Bytes(), nil
}
