package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// Renderer implements echo.Renderer over html/template. Every page gets its
// own template set made of the layouts, the partials and the page file.
// Pages under admin/ use the console layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(files fs.FS) (*Renderer, error) {
	base := template.New("").Funcs(Funcs())
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		matches, err := fs.Glob(files, pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue
		}
		if base, err = base.ParseFS(files, matches...); err != nil {
			return nil, fmt.Errorf("parse %s: %w", pattern, err)
		}
	}

	pages := make(map[string]*template.Template)
	err := fs.WalkDir(files, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		set, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := set.ParseFS(files, p); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ".html")
		pages[name] = set
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{pages: pages}, nil
}

func layoutFor(name string) string {
	if strings.HasPrefix(name, "admin/") {
		return "admin_layout"
	}
	return "layout"
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, layoutFor(name), data)
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
