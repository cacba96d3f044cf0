// Package tui fills a form schema in from the terminal. Each field becomes a
// prompt; answering a trigger radio with the activation value prompts for its
// dependent questions, mirroring what the rendered form reveals.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/reveal"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/validation"
)

var labelPolicy = bluemonday.StrictPolicy()

// Renderer implements render.Output for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	stdio             *terminal.Stdio
	outputFormat      OutputFormat
	prefill           map[string]any
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *zap.Logger
}

var _ render.Output = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.stdio)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field of the snapshot's schema and serializes the
// answers.
func (r *Renderer) Render(ctx context.Context, snapshot render.Snapshot) ([]byte, error) {
	state, err := r.Fill(ctx, snapshot.Schema)
	if err != nil {
		return nil, err
	}

	values := state.Values()
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values, state.Order())
}

// Fill runs the prompts for doc and returns the collected answers.
func (r *Renderer) Fill(ctx context.Context, doc schema.FormSchema) (*State, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if doc.Title != "" {
		if err := r.info(ctx, doc.Title); err != nil {
			return nil, err
		}
	}

	state := NewState(r.prefill)
	for _, field := range doc.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (r *Renderer) promptField(ctx context.Context, field schema.Field, state *State) error {
	switch {
	case field.Type == schema.FieldTypePassword:
		return r.promptText(ctx, field, state, r.driver.Password)
	case field.Type == schema.FieldTypeNumber:
		return r.promptNumber(ctx, field, state)
	case field.Type.Scalar(), field.Type == schema.FieldTypeFile:
		return r.promptText(ctx, field, state, r.driver.Input)
	case field.Type == schema.FieldTypeTextarea:
		return r.promptTextArea(ctx, field, state)
	case field.Type == schema.FieldTypeSelect:
		_, err := r.promptChoice(ctx, field, state)
		return err
	case field.Type == schema.FieldTypeRadio:
		value, err := r.promptChoice(ctx, field, state)
		if err != nil {
			return err
		}
		if value != reveal.ActivationValue {
			return nil
		}
		for _, dependent := range field.DependentQuestions {
			if err := r.promptField(ctx, dependent, state); err != nil {
				return err
			}
		}
		return nil
	case field.Type == schema.FieldTypeCheckbox && field.HasOptions():
		return r.promptMulti(ctx, field, state)
	case field.Type == schema.FieldTypeCheckbox:
		return r.promptToggle(ctx, field, state)
	default:
		err := &render.UnsupportedFieldTypeError{FieldID: field.ID, Type: field.Type}
		r.logger.Warn("skipping field", zap.Error(err))
		return r.info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Skipping %s: unsupported type %q", displayLabel(field), field.Type))
	}
}

func (r *Renderer) promptText(ctx context.Context, field schema.Field, state *State, ask func(context.Context, InputConfig) (string, error)) error {
	validate := validation.Validator(field)
	for {
		response, err := ask(ctx, InputConfig{
			Message:   displayLabel(field),
			Default:   state.StringValue(field.ID),
			Help:      constraintHelp(field),
			Validator: validate,
		})
		if err != nil {
			return err
		}
		if err := validate(response); err != nil {
			r.invalid(ctx, err)
			continue
		}
		return state.SetValue(field.ID, response)
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, field schema.Field, state *State) error {
	validate := validation.Validator(field)
	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Default: state.StringValue(field.ID),
			Help:    constraintHelp(field),
		})
		if err != nil {
			return err
		}
		if err := validate(response); err != nil {
			r.invalid(ctx, err)
			continue
		}
		return state.SetValue(field.ID, response)
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field schema.Field, state *State) error {
	validate := validation.Validator(field)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   displayLabel(field),
			Default:   state.StringValue(field.ID),
			Help:      constraintHelp(field),
			Validator: validate,
		})
		if err != nil {
			return err
		}
		response = strings.TrimSpace(response)
		if err := validate(response); err != nil {
			r.invalid(ctx, err)
			continue
		}
		if response == "" {
			return state.SetValue(field.ID, nil)
		}
		number, err := strconv.ParseFloat(response, 64)
		if err != nil {
			r.invalid(ctx, err)
			continue
		}
		return state.SetValue(field.ID, number)
	}
}

func (r *Renderer) promptChoice(ctx context.Context, field schema.Field, state *State) (string, error) {
	if len(field.Options) == 0 {
		r.logger.Warn("skipping field", zap.String("field", field.ID), zap.Error(ErrNoOptions))
		return "", r.info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Skipping %s: no options", displayLabel(field)))
	}

	labels := optionLabels(field.Options)
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      labels,
			DefaultIndex: optionIndex(field.Options, state.StringValue(field.ID)),
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			r.invalid(ctx, fmt.Errorf("invalid selection for %s", field.ID))
			continue
		}
		value := field.Options[idx].Value
		return value, state.SetValue(field.ID, value)
	}
}

func (r *Renderer) promptMulti(ctx context.Context, field schema.Field, state *State) error {
	if len(field.Options) == 0 {
		return state.SetValue(field.ID, []string{})
	}

	var defaults []int
	for _, value := range state.StringsValue(field.ID) {
		if idx := optionIndex(field.Options, value); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}

	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  displayLabel(field),
			Options:  optionLabels(field.Options),
			Defaults: defaults,
		})
		if err != nil {
			return err
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx].Value)
			}
		}
		if err := validation.ValidateValues(field, selected); err != nil {
			r.invalid(ctx, err)
			continue
		}
		return state.SetValue(field.ID, selected)
	}
}

// promptToggle asks a checkbox without options as a yes/no confirmation, the
// terminal equivalent of the rendered Yes/No switch.
func (r *Renderer) promptToggle(ctx context.Context, field schema.Field, state *State) error {
	answer, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: state.StringValue(field.ID) == "yes",
	})
	if err != nil {
		return err
	}
	value := "no"
	if answer {
		value = "yes"
	}
	return state.SetValue(field.ID, value)
}

func (r *Renderer) invalid(ctx context.Context, err error) {
	_ = r.info(ctx, r.theme.ErrorPrefix+"Invalid: "+strings.TrimPrefix(err.Error(), "validation: "))
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) serialize(values map[string]any, order []string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(formEncode(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values, order)), nil
	default:
		return json.Marshal(values)
	}
}

// displayLabel strips label markup; prompts are plain text.
func displayLabel(field schema.Field) string {
	label := strings.TrimSpace(plainText(field.Label))
	if label == "" {
		label = field.ID
	}
	if field.Required {
		label += " *"
	}
	return label
}

func constraintHelp(field schema.Field) string {
	c := field.Constraints
	var parts []string
	if c.MinLength != nil {
		parts = append(parts, fmt.Sprintf("min length %d", *c.MinLength))
	}
	if c.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("max length %d", *c.MaxLength))
	}
	if c.Min != nil {
		parts = append(parts, "min "+c.Min.String())
	}
	if c.Max != nil {
		parts = append(parts, "max "+c.Max.String())
	}
	if c.Pattern != "" {
		parts = append(parts, "pattern "+c.Pattern)
	}
	return strings.Join(parts, ", ")
}

// plainText drops all markup from an authored label and decodes entities.
func plainText(raw string) string {
	return html.UnescapeString(labelPolicy.Sanitize(raw))
}

func optionLabels(options []schema.Option) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		out = append(out, label)
	}
	return out
}

func optionIndex(options []schema.Option, value string) int {
	for i, option := range options {
		if option.Value == value {
			return i
		}
	}
	return -1
}

func formEncode(values map[string]any) string {
	form := url.Values{}
	for key, value := range values {
		switch typed := value.(type) {
		case []string:
			for _, item := range typed {
				form.Add(key, item)
			}
		case nil:
			form.Set(key, "")
		default:
			form.Set(key, fmt.Sprint(typed))
		}
	}
	return form.Encode()
}

func prettyPrint(values map[string]any, order []string) string {
	var b strings.Builder
	for _, id := range order {
		value, ok := values[id]
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case []string:
			fmt.Fprintf(&b, "%s=%s\n", id, strings.Join(typed, ","))
		case nil:
			fmt.Fprintf(&b, "%s=\n", id)
		default:
			fmt.Fprintf(&b, "%s=%v\n", id, typed)
		}
	}
	return b.String()
}
