package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "auth" layout for the sign-in pages (login, register, forgot-password)
//   - "app" layout for the console pages (dashboard, events, orders, settings)
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - pages/auth/*.html - auth pages (use auth layout)
//   - pages/*.html and pages/<section>/*.html - app pages (use app layout)
type Renderer struct {
	templates map[string]*template.Template
	fsys      fs.FS
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS is rooted at the templates directory. Pass os.DirFS in development
	// so IsDev reloads pick up edits.
	FS     fs.FS
	Logger *slog.Logger
	IsDev  bool
}

// appSections are the nested page directories rendered with the app layout.
var appSections = []string{"events", "orders"}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		fsys:      cfg.FS,
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	components, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}

	authBase, err := r.parseLayout("auth", components)
	if err != nil {
		return err
	}
	appBase, err := r.parseLayout("app", components)
	if err != nil {
		return err
	}

	if err := r.parsePages(authBase, "pages/auth/*.html", "auth/"); err != nil {
		return err
	}
	if err := r.parsePages(appBase, "pages/*.html", ""); err != nil {
		return err
	}
	for _, dir := range appSections {
		if err := r.parsePages(appBase, "pages/"+dir+"/*.html", dir+"/"); err != nil {
			return err
		}
	}

	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

// parseLayout parses layouts/<name>.html together with the shared components.
func (r *Renderer) parseLayout(name string, components []string) (*template.Template, error) {
	files := append([]string{"layouts/" + name + ".html"}, components...)
	tmpl, err := template.New(name).Funcs(TemplateFuncs()).ParseFS(r.fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s layout: %w", name, err)
	}
	return tmpl, nil
}

// parsePages clones base for every file matching pattern and stores it
// under prefix + file name without extension.
func (r *Renderer) parsePages(base *template.Template, pattern, prefix string) error {
	pages, err := fs.Glob(r.fsys, pattern)
	if err != nil {
		return fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	for _, page := range pages {
		pageTmpl, err := base.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		name := strings.TrimSuffix(path.Base(page), path.Ext(page))
		r.templates[prefix+name] = pageTmpl
	}
	return nil
}

// Reload reloads all templates. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = make(map[string]*template.Template)
	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, baseTemplateName(name), data)
}

// RenderHTTP renders a template directly to an http.ResponseWriter with a
// 200 status.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.RenderHTTPStatus(w, http.StatusOK, name, data)
}

// RenderHTTPStatus renders a template with the given status code.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	// Render to buffer first to catch errors before writing headers
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template render failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// baseTemplateName determines which layout to execute.
func baseTemplateName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}

// ListTemplates returns a list of all loaded template names.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
