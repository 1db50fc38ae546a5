package pages

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const baseTemplate = `{{define "base"}}<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Todos</title>
  <style>
    body { font-family: sans-serif; margin: 8px; }
    a { color: #000; text-decoration: underline; }
    table { border-collapse: collapse; width: 100%; }
    th, td { padding: 8px; border-bottom: 1px solid #ccc; text-align: left; }
    th a { text-decoration: none; }
    .done { color: #666; text-decoration: line-through; }
    .meta { font-size: 0.9em; color: #666; }
    .errors { border: 1px solid #c00; color: #c00; padding: 8px 12px; margin: 12px 0; }
    .nav { margin: 16px 0; }
    .nav-btn { display: inline-block; padding: 8px 12px; margin: 2px; border: 1px solid #000; text-decoration: none; }
    .nav-btn.disabled { color: #999; border-color: #ccc; }
    .filter { margin-bottom: 12px; }
    .filter-btn { display: inline-block; padding: 4px 8px; margin: 2px; border: 1px solid #ccc; text-decoration: none; }
  </style>
</head>
<body>
  {{template "content" .}}
</body>
</html>{{end}}`

const todosTemplate = `{{define "content"}}
<div class="meta">{{if .Session.IsGuest}}Browsing as a guest{{else}}Signed in as {{.Session.User.Name}} ({{.Session.Role}}){{end}}</div>
<h1>Todos</h1>
{{if .Errors}}
<div class="errors">
  <b>The list was reset because of invalid parameters:</b>
  <ul>{{range .Errors}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}
{{if .Filters}}
<div class="filter">
  <b>Filters:</b>
  {{range .Filters}}<span class="filter-btn">{{.}}</span>{{end}}
  <a href="{{.ClearFiltersHref}}" class="filter-btn">Clear</a>
</div>
{{end}}
<table>
  <thead>
    <tr>
    {{range .HeaderCells}}
      <th>{{if .Sortable}}<a href="{{.Href}}">{{.Label}}{{if .Active}}{{if eq .SortOrder "asc"}} &#9650;{{else}} &#9660;{{end}}{{end}}</a>{{else}}{{.Label}}{{end}}</th>
    {{end}}
    </tr>
  </thead>
  <tbody>
  {{range .Rows}}
    <tr>
      <td>{{.ID}}</td>
      <td{{if .IsCompleted}} class="done"{{end}}>{{.Text}}</td>
      <td>{{if .IsCompleted}}yes{{else}}no{{end}}</td>
      <td>{{if .Author}}{{.Author.Name}}{{else}}<span class="meta">guest</span>{{end}}</td>
    </tr>
  {{else}}
    <tr><td colspan="{{len .HeaderCells}}" class="meta">No todos.</td></tr>
  {{end}}
  </tbody>
</table>
<div class="nav">
  {{if .PreviousHref}}<a href="{{.PreviousHref}}" class="nav-btn">&larr; Prev</a>{{else}}<span class="nav-btn disabled">&larr; Prev</span>{{end}}
  Page {{.Pagination.Page | inc}} of {{.Pagination.PageCount}} ({{.Pagination.TotalRows}} todos)
  {{if .NextHref}}<a href="{{.NextHref}}" class="nav-btn">Next &rarr;</a>{{else}}<span class="nav-btn disabled">Next &rarr;</span>{{end}}
</div>
<div class="nav">
  <b>Per page:</b>
  {{range .SizeLinks}}{{if .Active}}<b class="filter-btn">{{.Size}}</b>{{else}}<a href="{{.Href}}" class="filter-btn">{{.Size}}</a>{{end}}{{end}}
</div>
{{end}}`

// Renderer renders the server-side pages for echo.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the page templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"inc": func(n int) int { return n + 1 },
	}).Parse(baseTemplate)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := t.Parse(todosTemplate); err != nil {
		return nil, errors.WithStack(err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return errors.WithStack(r.templates.ExecuteTemplate(w, name, data))
}
