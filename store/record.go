// Package store locates the records deferred generation jobs refer to and
// persists the generated content back to them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/forge-ai/promptable"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrUnknownType = errors.New("unknown record type")

// Binding ties a record type to where it lives and the prompt that fills it.
type Binding struct {
	Table  string
	Prompt *promptable.Prompt
}

// Bindings is keyed by record type name.
type Bindings map[string]Binding

func (b Bindings) lookup(typeName string) (Binding, error) {
	bd, ok := b[typeName]
	if !ok || bd.Prompt == nil {
		return Binding{}, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}
	return bd, nil
}

// Row is a loaded record. Its stored fields are the base context for
// rendering; job context wins on conflicting keys.
type Row struct {
	TypeName string
	ID       string
	Fields   map[string]any
	Content  string
	Status   string

	prompt *promptable.Prompt
	save   func(ctx context.Context, r *Row) error
}

func (r *Row) GenerateContent(ctx context.Context, vars map[string]any, o promptable.Overrides) (string, bool, error) {
	merged := make(map[string]any, len(r.Fields)+len(vars))
	for k, v := range r.Fields {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	return r.prompt.Generate(ctx, merged, o)
}

func (r *Row) GenerationCompleted(_ context.Context, _ string, ok bool) {
	if ok {
		r.Status = StatusCompleted
	} else {
		r.Status = StatusFailed
	}
}

func (r *Row) SetGeneratedContent(text string) { r.Content = text }

func (r *Row) Save(ctx context.Context) error {
	if r.save == nil {
		return nil
	}
	return r.save(ctx, r)
}
