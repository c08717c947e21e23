// Package editor is a terminal editing surface for component values. It walks
// the preview props of a schema, prompts for every field, and commits each
// answer through the field's OnChange so the value is rebuilt immutably.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-docblocks/pkg/preview"
	"github.com/goliatone/go-docblocks/pkg/relationship"
	"github.com/goliatone/go-docblocks/pkg/resolve"
	"github.com/goliatone/go-docblocks/pkg/schema"
)

// Editor prompts for component values.
type Editor struct {
	driver PromptDriver
	lookup resolve.FetchFunc
	logger zerolog.Logger
}

// New constructs an Editor with the survey prompt driver.
func New(options ...Option) *Editor {
	e := &Editor{
		driver: newSurveyDriver(),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

type session struct {
	editor  *Editor
	value   any
	project func(any) preview.Props
	force   bool
}

// Edit prompts for every field of s starting from value (the schema default
// when nil) and returns the edited value. The session only finishes once the
// value passes validation; until then invalid fields are reported and edited
// again.
func (e *Editor) Edit(ctx context.Context, s schema.ComponentSchema, value any) (any, error) {
	if ctx == nil {
		return nil, errors.New("editor: context is required")
	}
	if s == nil {
		return nil, errors.New("editor: schema is required")
	}
	if value == nil {
		value = schema.DefaultValue(s)
	}

	sess := &session{editor: e, value: value}
	sess.project = preview.CreatePreviewProps(s, func(next any) {
		sess.value = next
		e.logger.Debug().Msg("value committed")
	})

	for {
		if err := sess.edit(ctx, nil); err != nil {
			return nil, err
		}

		done := NewFormValue(preview.Valid(s, sess.value), func() {
			e.logger.Debug().Msg("edit session closed")
		})
		if done.Done() {
			return sess.value, nil
		}
		sess.force = done.ForceValidation()
		for _, path := range invalidPaths(sess.project(sess.value), nil) {
			if err := e.driver.Info(ctx, "Invalid value at "+display(path)); err != nil {
				return nil, err
			}
		}
	}
}

func (s *session) edit(ctx context.Context, path []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	props, ok := preview.At(s.project(s.value), path...)
	if !ok {
		return nil
	}

	switch p := props.(type) {
	case *preview.FormProps:
		next, err := s.promptForm(ctx, path, p.Schema, p.Value)
		if err != nil {
			return err
		}
		p.OnChange(next)
		return nil

	case *preview.ChildProps:
		return s.editor.driver.Info(ctx, fmt.Sprintf("%s: %s content is edited in the document", display(p.Path), p.Schema.ChildKind))

	case *preview.RelationshipProps:
		return s.editRelationship(ctx, path, p)

	case *preview.ObjectProps:
		for _, name := range p.Schema.Names() {
			if err := s.edit(ctx, with(path, name)); err != nil {
				return err
			}
		}
		return nil

	case *preview.ConditionalProps:
		if p.Schema.Discriminant == nil {
			if p.Value == nil {
				return fmt.Errorf("editor: %s: conditional has no discriminant field", display(path))
			}
			return s.edit(ctx, with(path, "value"))
		}
		discriminant, err := s.promptForm(ctx, path, p.Schema.Discriminant, p.Discriminant)
		if err != nil {
			return err
		}
		p.OnChange(discriminant)
		return s.edit(ctx, with(path, "value"))

	case *preview.ArrayProps:
		return s.editArray(ctx, path)

	default:
		return fmt.Errorf("editor: unsupported props %T", props)
	}
}

func (s *session) promptForm(ctx context.Context, path []string, f *schema.Form, current any) (any, error) {
	driver := s.editor.driver
	message := f.Label
	if message == "" {
		message = display(path)
	}
	var help string
	if s.force && f.Validate != nil && !f.Validate(current) {
		help = "the current value is invalid"
	}

	switch f.Control {
	case schema.ControlCheckbox:
		def, _ := current.(bool)
		return driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: help})

	case schema.ControlSelect:
		options, _ := f.Options.([]schema.Option)
		labels := make([]string, len(options))
		defaultIndex := 0
		for i, o := range options {
			labels[i] = o.Label
			if o.Value == schema.DiscriminantKey(current) {
				defaultIndex = i
			}
		}
		idx, err := driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: defaultIndex, Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, fmt.Errorf("editor: %s: selection %d out of range", display(path), idx)
		}
		return options[idx].Value, nil

	case schema.ControlInteger:
		def := ""
		if current != nil {
			def = fmt.Sprint(current)
		}
		for {
			resp, err := driver.Input(ctx, InputConfig{Message: message, Default: def, Help: help, Validator: validateInteger})
			if err != nil {
				return nil, err
			}
			if err := validateInteger(resp); err != nil {
				_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", display(path), err))
				continue
			}
			n, _ := strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
			return n, nil
		}

	default:
		def, _ := current.(string)
		validate := func(resp string) error {
			if f.Validate != nil && !f.Validate(resp) {
				return fmt.Errorf("not a valid %s", f.Control)
			}
			return nil
		}
		for {
			resp, err := driver.Input(ctx, InputConfig{Message: message, Default: def, Help: help, Validator: validate})
			if err != nil {
				return nil, err
			}
			if err := validate(resp); err != nil {
				_ = driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", display(path), err))
				continue
			}
			return resp, nil
		}
	}
}

func (s *session) editRelationship(ctx context.Context, path []string, p *preview.RelationshipProps) error {
	var ids []string
	if p.Schema.Many {
		items, _ := p.Value.([]any)
		for _, item := range items {
			if id, ok := relationship.IDOf(item); ok {
				ids = append(ids, id)
			}
		}
	} else if id, ok := relationship.IDOf(p.Value); ok {
		ids = append(ids, id)
	}

	message := p.Schema.Label
	if message == "" {
		message = display(path)
	}
	help := fmt.Sprintf("%s id", p.Schema.ListKey)
	if p.Schema.Many {
		help = fmt.Sprintf("comma separated %s ids", p.Schema.ListKey)
	}
	resp, err := s.editor.driver.Input(ctx, InputConfig{Message: message, Default: strings.Join(ids, ","), Help: help})
	if err != nil {
		return err
	}

	var entered []string
	for _, part := range strings.Split(resp, ",") {
		if id := strings.TrimSpace(part); id != "" {
			entered = append(entered, id)
		}
	}

	var next any
	if p.Schema.Many {
		refs := make([]any, len(entered))
		for i, id := range entered {
			refs[i] = map[string]any{"id": id}
		}
		next = refs
	} else if len(entered) > 0 {
		next = map[string]any{"id": entered[0]}
	}

	if s.editor.lookup != nil {
		next, err = s.editor.lookup(ctx, p.Schema, next)
		if err != nil {
			return fmt.Errorf("editor: %s: %w", display(path), err)
		}
	}
	p.OnChange(next)
	return nil
}

const (
	actionAdd    = "Add item"
	actionRemove = "Remove item"
	actionMove   = "Move item"
	actionDone   = "Done"
)

func (s *session) editArray(ctx context.Context, path []string) error {
	driver := s.editor.driver
	for {
		props, ok := preview.At(s.project(s.value), path...)
		if !ok {
			return nil
		}
		arr := props.(*preview.ArrayProps)
		n := arr.Len()

		options := make([]string, 0, n+4)
		for i := 0; i < n; i++ {
			options = append(options, fmt.Sprintf("Edit item %d", i+1))
		}
		options = append(options, actionAdd)
		if n > 0 {
			options = append(options, actionRemove)
		}
		if n > 1 {
			options = append(options, actionMove)
		}
		options = append(options, actionDone)

		message := arr.Schema.Label
		if message == "" {
			message = display(path)
		}
		idx, err := driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: len(options) - 1})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			return fmt.Errorf("editor: %s: selection %d out of range", display(path), idx)
		}
		if idx < n {
			if err := s.edit(ctx, with(path, strconv.Itoa(idx))); err != nil {
				return err
			}
			continue
		}

		switch options[idx] {
		case actionAdd:
			arr.Append(nil)
			if err := s.edit(ctx, with(path, strconv.Itoa(n))); err != nil {
				return err
			}
		case actionRemove:
			i, err := s.pickItem(ctx, "Remove which item?", n)
			if err != nil {
				return err
			}
			if err := arr.Remove(i); err != nil {
				return err
			}
		case actionMove:
			from, err := s.pickItem(ctx, "Move which item?", n)
			if err != nil {
				return err
			}
			to, err := s.pickItem(ctx, "Move to position", n)
			if err != nil {
				return err
			}
			if err := arr.Move(from, to); err != nil {
				return err
			}
		case actionDone:
			return nil
		}
	}
}

func (s *session) pickItem(ctx context.Context, message string, n int) (int, error) {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("Item %d", i+1)
	}
	return s.editor.driver.Select(ctx, SelectConfig{Message: message, Options: options})
}

func invalidPaths(props preview.Props, path []string) [][]string {
	switch p := props.(type) {
	case *preview.FormProps:
		if p.Schema.Validate != nil && !p.Schema.Validate(p.Value) {
			return [][]string{path}
		}
	case *preview.ObjectProps:
		var out [][]string
		for _, name := range p.Schema.Names() {
			out = append(out, invalidPaths(p.Fields[name], with(path, name))...)
		}
		return out
	case *preview.ConditionalProps:
		disc := p.Schema.Discriminant
		if p.Value == nil || (disc != nil && disc.Validate != nil && !disc.Validate(p.Discriminant)) {
			return [][]string{path}
		}
		return invalidPaths(p.Value, with(path, "value"))
	case *preview.ArrayProps:
		var out [][]string
		for i, el := range p.Elements {
			out = append(out, invalidPaths(el, with(path, strconv.Itoa(i)))...)
		}
		return out
	}
	return nil
}

func validateInteger(resp string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(resp), 10, 64); err != nil {
		return errors.New("expected an integer")
	}
	return nil
}

func display(path []string) string {
	if len(path) == 0 {
		return "value"
	}
	return strings.Join(path, ".")
}

func with(path []string, segment string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = segment
	return out
}
