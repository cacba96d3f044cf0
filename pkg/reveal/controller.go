// Package reveal mounts and unmounts dependent questions as their trigger
// radio groups change value.
package reveal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/schema"
)

// ActivationValue is the only trigger value that reveals dependents. The
// comparison is case-sensitive.
const ActivationValue = "yes"

// ErrUnknownTrigger is returned when a change event names a field that is not a
// currently rendered radio group.
var ErrUnknownTrigger = errors.New("reveal: unknown trigger field")

// FieldRenderer renders a single descriptor, reporting nested radio groups to
// the supplied binder.
type FieldRenderer interface {
	RenderField(field schema.Field, binder render.Binder) *html.Node
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes controller diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller tracks every rendered trigger and the dependents currently
// mounted under it. The record is a tree: each mount owns the triggers that
// were rendered inside it, so unmounting drops the whole subtree.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	renderer FieldRenderer
	logger   *zap.Logger

	triggers map[string]*trigger
	roots    []*trigger
	// current is the mount being rendered while Change expands dependents;
	// triggers bound during that render belong to it.
	current *mount
}

type trigger struct {
	field     schema.Field
	container *html.Node
	value     string
	selected  bool
	owner     *mount
	mounted   map[string]*mount
}

type mount struct {
	field    schema.Field
	node     *html.Node
	triggers []*trigger
}

// Ensure the controller can be handed to the renderer as its binder.
var _ render.Binder = (*Controller)(nil)

// New constructs a Controller that renders dependents with renderer.
func New(renderer FieldRenderer, options ...Option) *Controller {
	c := &Controller{
		renderer: renderer,
		logger:   zap.NewNop(),
		triggers: make(map[string]*trigger),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// BindTrigger registers a rendered radio group. A later binding for the same
// id replaces the earlier one.
func (c *Controller) BindTrigger(field schema.Field, container *html.Node) {
	if previous, ok := c.triggers[field.ID]; ok {
		c.logger.Warn("trigger id bound twice", zap.String("field", field.ID))
		c.drop(previous)
	}

	t := &trigger{
		field:     field,
		container: container,
		owner:     c.current,
		mounted:   make(map[string]*mount),
	}
	c.triggers[field.ID] = t
	if c.current != nil {
		c.current.triggers = append(c.current.triggers, t)
	} else {
		c.roots = append(c.roots, t)
	}
}

// Change handles a value change on the radio group fieldID. Selecting
// ActivationValue mounts every dependent not already mounted; any other value
// unmounts those that are. Repeating a value is a no-op.
func (c *Controller) Change(fieldID, value string) error {
	t, ok := c.triggers[fieldID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTrigger, fieldID)
	}

	t.value = value
	t.selected = true
	markChecked(t.container, fieldID, value)

	for _, dependent := range t.field.DependentQuestions {
		existing, mounted := t.mounted[dependent.ID]

		if value == ActivationValue {
			if mounted {
				continue
			}
			t.mounted[dependent.ID] = c.mount(t, dependent)
			continue
		}

		if mounted {
			c.unmount(existing)
			delete(t.mounted, dependent.ID)
		}
	}
	return nil
}

// Mounted reports whether a dependent with fieldID is currently mounted under
// any trigger.
func (c *Controller) Mounted(fieldID string) bool {
	for _, t := range c.triggers {
		if _, ok := t.mounted[fieldID]; ok {
			return true
		}
	}
	return false
}

// Value returns the last value selected on trigger fieldID.
func (c *Controller) Value(fieldID string) (string, bool) {
	t, ok := c.triggers[fieldID]
	if !ok || !t.selected {
		return "", false
	}
	return t.value, true
}

// Bound reports whether fieldID is a currently rendered trigger.
func (c *Controller) Bound(fieldID string) bool {
	_, ok := c.triggers[fieldID]
	return ok
}

// Reset forgets every trigger and mount. Call it before the form the
// controller was bound to is discarded.
func (c *Controller) Reset() {
	c.triggers = make(map[string]*trigger)
	c.roots = nil
	c.current = nil
}

func (c *Controller) mount(t *trigger, dependent schema.Field) *mount {
	m := &mount{field: dependent}

	previous := c.current
	c.current = m
	m.node = c.renderer.RenderField(dependent, c)
	c.current = previous

	dom.Append(t.container, m.node)
	c.logger.Debug("dependent mounted",
		zap.String("trigger", t.field.ID),
		zap.String("field", dependent.ID),
	)
	return m
}

func (c *Controller) unmount(m *mount) {
	dom.Detach(m.node)
	nested := append([]*trigger(nil), m.triggers...)
	for _, t := range nested {
		c.drop(t)
	}
	m.triggers = nil
	c.logger.Debug("dependent unmounted", zap.String("field", m.field.ID))
}

// drop forgets t and everything mounted beneath it.
func (c *Controller) drop(t *trigger) {
	for id, m := range t.mounted {
		c.unmount(m)
		delete(t.mounted, id)
	}

	if c.triggers[t.field.ID] == t {
		delete(c.triggers, t.field.ID)
	}
	if t.owner == nil {
		c.roots = removeTrigger(c.roots, t)
	} else {
		t.owner.triggers = removeTrigger(t.owner.triggers, t)
	}
}

func removeTrigger(list []*trigger, target *trigger) []*trigger {
	out := list[:0]
	for _, t := range list {
		if t != target {
			out = append(out, t)
		}
	}
	return out
}

// markChecked mirrors the browser's radio semantics on the node tree: exactly
// the input holding value is checked within group fieldID.
func markChecked(container *html.Node, fieldID, value string) {
	inputs := dom.FindAll(container, func(node *html.Node) bool {
		if node.Data != "input" {
			return false
		}
		kind, _ := dom.Attr(node, "type")
		name, _ := dom.Attr(node, "name")
		return kind == "radio" && name == fieldID
	})
	for _, input := range inputs {
		if current, _ := dom.Attr(input, "value"); current == value {
			dom.SetAttr(input, "checked", "")
			continue
		}
		dom.RemoveAttr(input, "checked")
	}
}
