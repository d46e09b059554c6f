package heatmap

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*
var templateFS embed.FS

const mapTemplate = "map.html.tmpl"

// TemplateProvider abstracts template loading and execution.
type TemplateProvider interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

// EmbeddedTemplateProvider loads templates from an embedded filesystem and
// caches them after the first parse.
type EmbeddedTemplateProvider struct {
	fs      embed.FS
	baseDir string
	cache   map[string]*template.Template
}

// NewEmbeddedTemplateProvider creates a provider with the given embedded FS.
func NewEmbeddedTemplateProvider(embedFS embed.FS, baseDir string) *EmbeddedTemplateProvider {
	return &EmbeddedTemplateProvider{
		fs:      embedFS,
		baseDir: baseDir,
		cache:   make(map[string]*template.Template),
	}
}

// GetTemplate parses and caches a template from the embedded FS.
func (p *EmbeddedTemplateProvider) GetTemplate(name string) (*template.Template, error) {
	if t, ok := p.cache[name]; ok {
		return t, nil
	}

	path := name
	if p.baseDir != "" {
		path = p.baseDir + "/" + name
	}

	content, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, err
	}

	p.cache[name] = t
	return t, nil
}

// ExecuteTemplate loads and executes a template.
func (p *EmbeddedTemplateProvider) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	t, err := p.GetTemplate(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// Renderer writes map documents through a TemplateProvider.
type Renderer struct {
	templates TemplateProvider
}

// NewRenderer returns a Renderer over the embedded map template.
func NewRenderer() *Renderer {
	return &Renderer{templates: NewEmbeddedTemplateProvider(templateFS, "templates")}
}

// NewRendererWithProvider returns a Renderer over a custom provider.
func NewRendererWithProvider(p TemplateProvider) *Renderer {
	return &Renderer{templates: p}
}

// RenderMap renders doc into w. The page is built in memory first so w
// receives nothing when rendering fails.
func (r *Renderer) RenderMap(w io.Writer, doc *MapDocument) error {
	if err := doc.validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, mapTemplate, doc.view()); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var defaultRenderer = NewRenderer()

// RenderMap renders doc with the embedded template.
func RenderMap(w io.Writer, doc *MapDocument) error {
	return defaultRenderer.RenderMap(w, doc)
}
