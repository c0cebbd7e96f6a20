// Package templates handles HTML rendering for the dashboard page and
// its Datastar SSE fragments.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"

	"github.com/opencurb/curbmap/internal/style"
)

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	// rgba formats a style color as a CSS rgba() value for swatches.
	"rgba": func(v any) template.CSS {
		var c style.RGBA
		switch x := v.(type) {
		case style.RGBA:
			c = x
		case *style.RGBA:
			if x == nil {
				return "transparent"
			}
			c = *x
		default:
			return "transparent"
		}
		return template.CSS(fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c[0], c[1], c[2], float64(c[3])/255))
	},
}

// Renderer manages the dashboard page template and its HTML fragments.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer over webDir, parsing both the page templates
// in webDir/templates and the SSE fragments in webDir/templates/fragments.
func New(webDir string) (*Renderer, error) {
	tmpl, err := parse(webDir)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

func parse(webDir string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(filepath.Join(webDir, "templates", "*.html"))
	if err != nil {
		return nil, err
	}
	return tmpl.ParseGlob(filepath.Join(webDir, "templates", "fragments", "*.html"))
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// MustRender renders a template and panics on error.
// Use only when you're certain the template exists.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Reload reloads templates from disk (useful for dev hot-reload).
func (r *Renderer) Reload(webDir string) error {
	tmpl, err := parse(webDir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}
