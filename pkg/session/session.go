// Package session keeps a text surface and a rendered form in sync.
//
// A Session holds the initial schema, the schema currently on display, the
// text surface, and the mount node the form is rendered into. Text edits
// re-parse the surface and replace the whole form; radio changes only touch
// the dependent questions under the changed trigger and never the text.
//
// Session is not safe for concurrent use. Callers receiving events from
// several goroutines route them through a Dispatcher.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/reveal"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/surface"
)

// DefaultMountID is the id of the node the form is rendered into.
const DefaultMountID = "dynamicForm"

// Option configures a Session.
type Option func(*Session)

// WithSurface sets the text surface. Defaults to an empty Memory surface.
func WithSurface(s surface.Surface) Option {
	return func(sess *Session) {
		if s != nil {
			sess.surface = s
		}
	}
}

// WithLogger routes diagnostics to logger. The logger is shared with the
// renderer and the reveal controller.
func WithLogger(logger *zap.Logger) Option {
	return func(sess *Session) {
		if logger != nil {
			sess.logger = logger
		}
	}
}

// WithMountID overrides DefaultMountID.
func WithMountID(id string) Option {
	return func(sess *Session) {
		if id != "" {
			sess.mountID = id
		}
	}
}

// WithRenderOptions passes options through to the form renderer.
func WithRenderOptions(options ...render.Option) Option {
	return func(sess *Session) {
		sess.renderOptions = append(sess.renderOptions, options...)
	}
}

// Session is one text surface bound to one rendered form.
type Session struct {
	initial schema.FormSchema
	current schema.FormSchema
	surface surface.Surface
	logger  *zap.Logger
	mountID string

	renderOptions []render.Option
	renderer      *render.Renderer
	controller    *reveal.Controller
	mount         *html.Node

	diagnostics []string
}

// New constructs a Session for initial. Call Init before delivering events.
func New(initial schema.FormSchema, options ...Option) *Session {
	s := &Session{
		initial: initial,
		surface: surface.NewMemory(""),
		logger:  zap.NewNop(),
		mountID: DefaultMountID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	renderOptions := append([]render.Option{
		render.WithLogger(s.logger),
		render.WithDiagnosticHandler(s.recordDiagnostic),
	}, s.renderOptions...)
	s.renderer = render.New(renderOptions...)
	s.controller = reveal.New(s.renderer, reveal.WithLogger(s.logger))
	s.mount = dom.Element("div", "id", s.mountID)
	return s
}

// Init writes the serialized initial schema to the text surface and renders
// it.
func (s *Session) Init() error {
	text, err := schema.Serialize(s.initial)
	if err != nil {
		return fmt.Errorf("session: init: %w", err)
	}
	if err := s.surface.Write(text); err != nil {
		return fmt.Errorf("session: init: %w", err)
	}
	s.show(s.initial)
	s.logger.Debug("session initialised", zap.Int("fields", len(s.initial.Fields)))
	return nil
}

// TextEdited re-parses the text surface. On success the form is replaced with
// a render of the new schema. On failure the rendered form and the current
// schema are left untouched and the *schema.ParseError is returned.
func (s *Session) TextEdited() error {
	text, err := s.surface.Read()
	if err != nil {
		s.logger.Warn("text surface unreadable", zap.Error(err))
		s.diagnostics = append(s.diagnostics, err.Error())
		return fmt.Errorf("session: read surface: %w", err)
	}

	next, err := schema.Parse(text)
	if err != nil {
		var parseErr *schema.ParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("schema text rejected",
				zap.Int("line", parseErr.Line),
				zap.Int("column", parseErr.Column),
				zap.Error(parseErr.Err),
			)
		}
		s.diagnostics = append(s.diagnostics, err.Error())
		return err
	}

	s.show(next)
	return nil
}

// Reload restores the initial schema text on the surface and re-renders from
// it, discarding any edits.
func (s *Session) Reload() error {
	text, err := schema.Serialize(s.initial)
	if err != nil {
		return fmt.Errorf("session: reload: %w", err)
	}
	if err := s.surface.Write(text); err != nil {
		return fmt.Errorf("session: reload: %w", err)
	}
	return s.TextEdited()
}

// Change delivers a value change on radio group fieldID.
func (s *Session) Change(fieldID, value string) error {
	return s.controller.Change(fieldID, value)
}

// Schema returns the schema currently on display.
func (s *Session) Schema() schema.FormSchema {
	return s.current
}

// Initial returns the schema Reload restores.
func (s *Session) Initial() schema.FormSchema {
	return s.initial
}

// Text returns the current contents of the text surface.
func (s *Session) Text() (string, error) {
	return s.surface.Read()
}

// Mount returns the node holding the rendered form.
func (s *Session) Mount() *html.Node {
	return s.mount
}

// Form returns the rendered <form>, or nil before Init.
func (s *Session) Form() *html.Node {
	return s.mount.FirstChild
}

// HTML serializes the rendered form.
func (s *Session) HTML() (string, error) {
	return dom.RenderChildren(s.mount)
}

// Reveal returns the current reveal tree.
func (s *Session) Reveal() reveal.State {
	return s.controller.Snapshot()
}

// Diagnostics lists the problems of the last render followed by any rejected
// edits since.
func (s *Session) Diagnostics() []string {
	return append([]string(nil), s.diagnostics...)
}

// Snapshot captures the state outputs render from.
func (s *Session) Snapshot() (render.Snapshot, error) {
	text, err := s.surface.Read()
	if err != nil {
		return render.Snapshot{}, fmt.Errorf("session: snapshot: %w", err)
	}
	return render.Snapshot{
		Schema:      s.current,
		Text:        text,
		Form:        s.Form(),
		Diagnostics: s.Diagnostics(),
	}, nil
}

func (s *Session) show(next schema.FormSchema) {
	s.controller.Reset()
	dom.Clear(s.mount)
	s.diagnostics = nil

	dom.Append(s.mount, s.renderer.RenderForm(next, s.controller))
	s.current = next
	s.logger.Debug("form rendered", zap.String("title", next.Title), zap.Int("fields", len(next.Fields)))
}

func (s *Session) recordDiagnostic(err error) {
	s.diagnostics = append(s.diagnostics, err.Error())
}
