package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"

	// ListTemplate is the fragment used to refresh the post list alone.
	ListTemplate = "post_list"
)

//go:embed templates/*.html
var templateFS embed.FS

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"dict": dict,
		"selected": func(a, b string) bool {
			return a == b
		},
	}
}

// LoadTemplates parses every page template together with the base layout and partials,
// keyed by file name.
func LoadTemplates() (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs()).ParseFS(templateFS,
			path.Join("templates", baseTemplate),
			path.Join("templates", name),
			path.Join("templates", partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func MustLoadTemplates() map[string]*template.Template {
	templates, err := LoadTemplates()
	if err != nil {
		panic(err)
	}
	return templates
}
