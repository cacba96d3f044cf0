// Package vanilla renders a session snapshot as a standalone HTML page: the
// schema text in an editor, the generated form in the #dynamicForm mount, and
// the diagnostics of the last render. With a live endpoint configured the page
// also carries a small script that posts edits, reloads and radio changes to
// the preview server and swaps in the returned form.
package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsync/pkg/render"
	rendertemplate "github.com/goliatone/go-formsync/pkg/render/template"
	gotemplate "github.com/goliatone/go-formsync/pkg/render/template/gotemplate"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
	classes          ChromeClasses
	liveEndpoint     string
	mountID          string
	engineOptions    []gotemplatepkg.Option
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithGoTemplateOptions renders the page through a go-template engine built
// with options, e.g. gotemplatepkg.WithTemplateFunc for helpers a custom page
// template calls. It has no effect alongside WithTemplateRenderer.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.engineOptions = append(cfg.engineOptions, options...)
	}
}

// WithTheme sets a resolved theme configuration.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithThemeSelector resolves name and variant through selector when the
// renderer is built. Empty names use the selector's defaults.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(c *config) {
		c.selector = selector
		c.themeName = name
		c.themeVariant = variant
	}
}

// WithChromeClasses overrides the page shell classes.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(c *config) {
		c.classes = classes
	}
}

// WithLiveEndpoint embeds the client script talking to the preview API rooted
// at base, e.g. "/api".
func WithLiveEndpoint(base string) Option {
	return func(c *config) {
		c.liveEndpoint = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithMountID overrides the id of the node holding the form. It must match the
// session's mount id.
func WithMountID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.mountID = id
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     *theme.RendererConfig
	classes   map[string]string
	live      string
	mountID   string
}

var _ render.Output = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), mountID: "dynamicForm"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		var err error
		renderer, err = newTemplateRenderer(cfg)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
	}

	themeCfg := cfg.theme
	if themeCfg == nil && cfg.selector != nil {
		selection, err := cfg.selector.Select(cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: select theme: %w", err)
		}
		themeCfg = ThemeConfig(selection)
	}

	return &Renderer{
		templates: renderer,
		theme:     themeCfg,
		classes:   cfg.classes.resolve(),
		live:      cfg.liveEndpoint,
		mountID:   cfg.mountID,
	}, nil
}

func newTemplateRenderer(cfg config) (rendertemplate.TemplateRenderer, error) {
	options := []gotemplate.Option{
		gotemplate.WithFS(cfg.templateFS),
		gotemplate.WithExtension(".tmpl"),
	}
	if len(cfg.engineOptions) == 0 {
		return gotemplate.New(options...)
	}
	options = append(options, gotemplate.WithGoTemplateOptions(cfg.engineOptions...))
	return gotemplate.NewGoTemplateEngine(options...)
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the full page for snapshot.
func (r *Renderer) Render(ctx context.Context, snapshot render.Snapshot) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var formHTML string
	if snapshot.Form != nil {
		rendered, err := render.HTML(snapshot.Form)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: serialize form: %w", err)
		}
		formHTML = rendered
	}

	title := strings.TrimSpace(snapshot.Schema.Title)
	if title == "" {
		title = "Form preview"
	}

	data := map[string]any{
		"title":          title,
		"text":           snapshot.Text,
		"form":           formHTML,
		"mount_id":       r.mountID,
		"diagnostics":    snapshot.Diagnostics,
		"classes":        r.classes,
		"stylesheet":     "",
		"stylesheet_url": "",
		"css_vars":       map[string]string{},
		"theme_name":     "",
		"theme_variant":  "",
		"live":           r.live != "",
		"api_base":       r.live,
	}

	name := pageTemplate
	stylesheetURL := ""
	if r.theme != nil {
		data["theme_name"] = r.theme.Theme
		data["theme_variant"] = r.theme.Variant
		if len(r.theme.CSSVars) > 0 {
			data["css_vars"] = r.theme.CSSVars
		}
		if r.theme.AssetURL != nil {
			stylesheetURL = r.theme.AssetURL(StylesheetName)
		}
		if partial := strings.TrimSpace(r.theme.Partials[PagePartial]); partial != "" {
			name = partial
		}
	}
	if stylesheetURL != "" {
		data["stylesheet_url"] = stylesheetURL
	} else {
		data["stylesheet"] = defaultStylesheet()
	}

	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(out), nil
}
