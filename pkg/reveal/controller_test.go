package reveal

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/schema"
)

func yesNo() []schema.Option {
	return []schema.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}}
}

func triggerSchema() schema.FormSchema {
	return schema.FormSchema{
		Title: "T",
		Fields: []schema.Field{
			{
				ID:      "a",
				Label:   "A",
				Type:    schema.FieldTypeRadio,
				Options: yesNo(),
				DependentQuestions: []schema.Field{
					{ID: "b", Label: "B", Type: schema.FieldTypeText},
				},
			},
		},
	}
}

func nestedSchema() schema.FormSchema {
	return schema.FormSchema{
		Title: "Nested",
		Fields: []schema.Field{
			{
				ID:      "outer",
				Label:   "Outer",
				Type:    schema.FieldTypeRadio,
				Options: yesNo(),
				DependentQuestions: []schema.Field{
					{
						ID:      "inner",
						Label:   "Inner",
						Type:    schema.FieldTypeRadio,
						Options: yesNo(),
						DependentQuestions: []schema.Field{
							{ID: "leaf", Label: "Leaf", Type: schema.FieldTypeEmail},
						},
					},
					{ID: "note", Label: "Note", Type: schema.FieldTypeTextarea},
				},
			},
		},
	}
}

func mountForm(t *testing.T, s schema.FormSchema) (*html.Node, *Controller) {
	t.Helper()
	renderer := render.New()
	controller := New(renderer)
	form := renderer.RenderForm(s, controller)
	return form, controller
}

func TestChangeRevealsAndHidesDependents(t *testing.T) {
	form, controller := mountForm(t, triggerSchema())

	if dom.FindByID(form, "b_container") != nil {
		t.Fatalf("dependent must not render before a selection")
	}

	if err := controller.Change("a", "yes"); err != nil {
		t.Fatalf("change yes: %v", err)
	}
	b := dom.FindByID(form, "b_container")
	if b == nil {
		t.Fatalf("expected b_container after selecting yes")
	}
	if b.Parent != dom.FindByID(form, "a_container") {
		t.Fatalf("expected b_container inside a_container")
	}
	input := dom.FindByID(b, "b")
	if kind, _ := dom.Attr(input, "type"); kind != "text" {
		t.Fatalf("expected text input, got %q", kind)
	}
	if !controller.Mounted("b") {
		t.Fatalf("expected controller to report b mounted")
	}

	if err := controller.Change("a", "no"); err != nil {
		t.Fatalf("change no: %v", err)
	}
	if dom.FindByID(form, "b_container") != nil {
		t.Fatalf("expected b_container removed after selecting no")
	}
	if controller.Mounted("b") {
		t.Fatalf("expected controller to forget b")
	}
}

func TestChangeIsIdempotent(t *testing.T) {
	form, controller := mountForm(t, triggerSchema())

	for _, value := range []string{"yes", "yes", "no", "yes", "yes"} {
		if err := controller.Change("a", value); err != nil {
			t.Fatalf("change %q: %v", value, err)
		}
	}
	if got := dom.CountByID(form, "b_container"); got != 1 {
		t.Fatalf("expected exactly one b_container, got %d", got)
	}

	for _, value := range []string{"no", "no"} {
		if err := controller.Change("a", value); err != nil {
			t.Fatalf("change %q: %v", value, err)
		}
	}
	if got := dom.CountByID(form, "b_container"); got != 0 {
		t.Fatalf("expected no b_container, got %d", got)
	}
}

func TestChangeActivationIsCaseSensitive(t *testing.T) {
	form, controller := mountForm(t, triggerSchema())

	for _, value := range []string{"Yes", "YES", "true", "on", ""} {
		if err := controller.Change("a", value); err != nil {
			t.Fatalf("change %q: %v", value, err)
		}
		if dom.FindByID(form, "b_container") != nil {
			t.Fatalf("value %q must not reveal dependents", value)
		}
	}
}

func TestChangeMarksSelectedRadio(t *testing.T) {
	form, controller := mountForm(t, triggerSchema())

	if err := controller.Change("a", "yes"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !dom.HasAttr(dom.FindByID(form, "a_yes"), "checked") {
		t.Fatalf("expected a_yes checked")
	}
	if err := controller.Change("a", "no"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if dom.HasAttr(dom.FindByID(form, "a_yes"), "checked") {
		t.Fatalf("expected a_yes unchecked")
	}
	if !dom.HasAttr(dom.FindByID(form, "a_no"), "checked") {
		t.Fatalf("expected a_no checked")
	}
	if value, ok := controller.Value("a"); !ok || value != "no" {
		t.Fatalf("expected recorded value no, got %q (%v)", value, ok)
	}
}

func TestChangeUnknownTrigger(t *testing.T) {
	_, controller := mountForm(t, triggerSchema())

	err := controller.Change("missing", "yes")
	if !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("expected ErrUnknownTrigger, got %v", err)
	}
}

func TestNestedTriggersFollowTheirOwner(t *testing.T) {
	form, controller := mountForm(t, nestedSchema())

	if controller.Bound("inner") {
		t.Fatalf("inner trigger must not be bound before outer reveals it")
	}
	if err := controller.Change("outer", "yes"); err != nil {
		t.Fatalf("change outer: %v", err)
	}
	if !controller.Bound("inner") {
		t.Fatalf("expected inner trigger bound once rendered")
	}
	if dom.FindByID(form, "note_container") == nil {
		t.Fatalf("expected every dependent of outer mounted")
	}

	if err := controller.Change("inner", "yes"); err != nil {
		t.Fatalf("change inner: %v", err)
	}
	leaf := dom.FindByID(form, "leaf_container")
	if leaf == nil || leaf.Parent != dom.FindByID(form, "inner_container") {
		t.Fatalf("expected leaf mounted inside inner_container")
	}

	if err := controller.Change("outer", "no"); err != nil {
		t.Fatalf("change outer no: %v", err)
	}
	for _, id := range []string{"inner_container", "leaf_container", "note_container"} {
		if dom.FindByID(form, id) != nil {
			t.Fatalf("expected %s removed with its owner", id)
		}
	}
	if controller.Bound("inner") {
		t.Fatalf("expected inner trigger forgotten")
	}
	if controller.Mounted("leaf") {
		t.Fatalf("expected leaf mount forgotten")
	}
	if err := controller.Change("inner", "yes"); !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("expected unmounted trigger to be unknown, got %v", err)
	}

	if err := controller.Change("outer", "yes"); err != nil {
		t.Fatalf("change outer again: %v", err)
	}
	if dom.FindByID(form, "leaf_container") != nil {
		t.Fatalf("re-mounted inner must start without a selection")
	}
	if got := dom.CountByID(form, "inner_container"); got != 1 {
		t.Fatalf("expected one inner_container, got %d", got)
	}
}

func TestDuplicateTriggerLaterBindingWins(t *testing.T) {
	renderer := render.New()
	controller := New(renderer)

	first := renderer.RenderField(triggerSchema().Fields[0], controller)
	second := renderer.RenderField(triggerSchema().Fields[0], controller)

	if err := controller.Change("a", "yes"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if dom.FindByID(first, "b_container") != nil {
		t.Fatalf("expected the earlier binding to be replaced")
	}
	if dom.FindByID(second, "b_container") == nil {
		t.Fatalf("expected dependents under the later binding")
	}
}

func TestReset(t *testing.T) {
	_, controller := mountForm(t, triggerSchema())
	controller.Reset()

	if controller.Bound("a") {
		t.Fatalf("expected reset to forget triggers")
	}
	if err := controller.Change("a", "yes"); !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("expected ErrUnknownTrigger after reset, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	_, controller := mountForm(t, nestedSchema())

	if err := controller.Change("outer", "yes"); err != nil {
		t.Fatalf("change outer: %v", err)
	}
	if err := controller.Change("inner", "yes"); err != nil {
		t.Fatalf("change inner: %v", err)
	}

	want := State{Triggers: []TriggerState{{
		Field: "outer",
		Value: "yes",
		Mounted: []MountState{
			{Field: "inner", Triggers: []TriggerState{{
				Field:   "inner",
				Value:   "yes",
				Mounted: []MountState{{Field: "leaf"}},
			}}},
			{Field: "note"},
		},
	}}}
	if diff := cmp.Diff(want, controller.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"inner", "leaf", "note"}, controller.Snapshot().MountedIDs()); diff != "" {
		t.Fatalf("mounted ids mismatch (-want +got):\n%s", diff)
	}

	if err := controller.Change("outer", "no"); err != nil {
		t.Fatalf("change outer no: %v", err)
	}
	want = State{Triggers: []TriggerState{{Field: "outer", Value: "no"}}}
	if diff := cmp.Diff(want, controller.Snapshot()); diff != "" {
		t.Fatalf("snapshot after unmount mismatch (-want +got):\n%s", diff)
	}
}
