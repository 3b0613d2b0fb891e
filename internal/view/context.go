// Package view builds read-oriented projections of a resolved entity: a
// padded context window around its span, and a single-level dependency slice
// of the file reduced to what the entity actually uses.
package view

import (
	"scalpel/internal/errors"
	"scalpel/internal/selector"
	"scalpel/internal/span"
)

// DefaultPadding is the context padding applied on each side when the caller
// does not override it.
const DefaultPadding = 512

// EnclosingMode selects how the context window is framed.
type EnclosingMode string

const (
	// ModeExact pads the entity span itself
	ModeExact EnclosingMode = "exact"
	// ModeClass widens to the nearest enclosing class frame
	ModeClass EnclosingMode = "class"
	// ModeFunction widens to the nearest enclosing function frame
	ModeFunction EnclosingMode = "function"
)

// ContextOptions controls context framing.
type ContextOptions struct {
	Before int // bytes of padding before the frame; DefaultPadding when < 0
	After  int // bytes of padding after the frame; DefaultPadding when < 0
	Mode   EnclosingMode
}

// Context is one framed window of source around a target entity.
type Context struct {
	File      string        `json:"file"`
	Target    span.Span     `json:"target"`
	Window    span.Span     `json:"window"`
	Text      string        `json:"text"`
	Mode      EnclosingMode `json:"mode"`
	FrameName string        `json:"frameName,omitempty"`
	Clipped   bool          `json:"clipped"`
}

// BuildContext frames the entity's span according to the options. With
// ModeClass or ModeFunction the window starts from the nearest enclosing
// frame of that kind; an entity with no such frame falls back to ModeExact.
func BuildContext(src []byte, ent *selector.Entity, opts ContextOptions) (*Context, error) {
	target := ent.Span()
	if err := target.Validate(len(src)); err != nil {
		return nil, errors.New(errors.InternalError, "entity span does not fit the source buffer", err)
	}

	before, after := opts.Before, opts.After
	if before < 0 {
		before = DefaultPadding
	}
	if after < 0 {
		after = DefaultPadding
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeExact
	}

	frame := target
	frameName := ""
	if mode != ModeExact {
		wantKind := "class"
		if mode == ModeFunction {
			wantKind = "function"
		}
		found := false
		contexts := ent.EnclosingContexts()
		for i := len(contexts) - 1; i >= 0; i-- {
			if contexts[i].Kind == wantKind {
				frame = contexts[i].Span
				frameName = contexts[i].Name
				found = true
				break
			}
		}
		if !found {
			mode = ModeExact
		}
	}

	window := frame.Pad(before, after, len(src))
	clipped := int(frame.Start)-before < 0 || int(frame.End)+after > len(src)
	return &Context{
		File:      ent.File,
		Target:    target,
		Window:    window,
		Text:      string(window.Text(src)),
		Mode:      mode,
		FrameName: frameName,
		Clipped:   clipped,
	}, nil
}
