// Package catalog holds the static set of document templates: their fields,
// price, visual style and layout function.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/internal/pkg/layout"
)

// ErrTemplateNotFound is returned for ids that are not in the registry.
var ErrTemplateNotFound = errors.New("template not found")

type Category string

const (
	CategoryContract        Category = "contrato"
	CategoryProposal        Category = "proposta"
	CategoryLetter          Category = "carta"
	CategoryPowerOfAttorney Category = "procuracao"
	CategoryOther           Category = "outros"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryContract, CategoryProposal, CategoryLetter, CategoryPowerOfAttorney, CategoryOther,
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type FieldKind string

const (
	KindText      FieldKind = "text"
	KindMultiline FieldKind = "multiline"
	KindNumber    FieldKind = "number"
	KindDate      FieldKind = "date"
	KindEmail     FieldKind = "email"
)

// Field is one input of a template.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Definition describes a template. Definitions are immutable once registered.
type Definition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	BasePrice   decimal.Decimal `json:"price"`
	Fields      []Field         `json:"fields"`
	Style       layout.Style    `json:"-"`
	Color       string          `json:"color"`
	Footer      string          `json:"-"`
	Layout      layout.Func     `json:"-"`
}

// RequiredFields returns the ids of required fields in declaration order.
func (d Definition) RequiredFields() []string {
	var ids []string
	for _, f := range d.Fields {
		if f.Required {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// MissingFieldsError lists required fields that were absent or blank.
type MissingFieldsError struct {
	TemplateID string
	Fields     []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("template %s: missing required fields: %s", e.TemplateID, strings.Join(e.Fields, ", "))
}

// Registry is a read-only, insertion ordered set of definitions. It is safe
// for concurrent use.
type Registry struct {
	order []string
	byID  map[string]Definition
}

// NewRegistry checks and registers defs in the given order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{byID: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, errors.New("catalog: template without id")
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template id %q", d.ID)
		}
		if !d.Category.IsValid() {
			return nil, fmt.Errorf("catalog: template %s: unknown category %q", d.ID, d.Category)
		}
		if d.Layout == nil {
			return nil, fmt.Errorf("catalog: template %s: no layout", d.ID)
		}
		seen := make(map[string]bool, len(d.Fields))
		for _, f := range d.Fields {
			if seen[f.ID] {
				return nil, fmt.Errorf("catalog: template %s: duplicate field %q", d.ID, f.ID)
			}
			seen[f.ID] = true
		}
		r.order = append(r.order, d.ID)
		r.byID[d.ID] = d
	}
	return r, nil
}

// Get returns the definition for id or an error wrapping ErrTemplateNotFound.
func (r *Registry) Get(id string) (Definition, error) {
	d, ok := r.byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return d, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ListByCategory returns the definitions of category c in registration order.
func (r *Registry) ListByCategory(c Category) []Definition {
	var out []Definition
	for _, id := range r.order {
		if d := r.byID[id]; d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// Len is the number of registered templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// Validate checks that every required field of template id carries a
// non-blank value. It returns ErrTemplateNotFound (wrapped) or a
// *MissingFieldsError.
func (r *Registry) Validate(id string, values layout.Values) error {
	d, err := r.Get(id)
	if err != nil {
		return err
	}
	var missing []string
	for _, f := range d.Fields {
		if f.Required && !values.Has(f.ID) {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{TemplateID: id, Fields: missing}
	}
	return nil
}
