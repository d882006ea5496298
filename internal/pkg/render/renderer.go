// Package render turns a template id and field values into PDF bytes.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/layout"
)

type ErrorKind string

const (
	UnknownTemplate ErrorKind = "unknown_template"
	LayoutFailure   ErrorKind = "layout_failure"
)

// Error is returned by Render for unknown templates and failed layouts.
type Error struct {
	Kind       ErrorKind
	TemplateID string
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("render %s: %s", e.TemplateID, e.Kind)
	}
	return fmt.Sprintf("render %s: %s: %v", e.TemplateID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the source of the issue date printed on documents.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithCompression toggles stream compression in the output.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compress = on
	}
}

// WithFonts sets the TrueType fonts available to templates.
func WithFonts(fonts *layout.FontLibrary) Option {
	return func(r *Renderer) {
		r.fonts = fonts
	}
}

// Renderer dispatches to the layout function of a registered template. It
// holds no per-call state and may be shared between goroutines.
type Renderer struct {
	registry *catalog.Registry
	fonts    *layout.FontLibrary
	now      func() time.Time
	compress bool
}

func New(registry *catalog.Registry, opts ...Option) *Renderer {
	r := &Renderer{
		registry: registry,
		now:      time.Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the catalog the renderer dispatches on.
func (r *Renderer) Registry() *catalog.Registry {
	return r.registry
}

// Now reads the renderer clock.
func (r *Renderer) Now() time.Time {
	return r.now()
}

// Render produces the PDF for templateID dated with the renderer clock.
func (r *Renderer) Render(templateID string, values layout.Values) ([]byte, error) {
	return r.RenderAt(templateID, values, r.now())
}

// RenderAt produces the PDF for templateID dated issuedAt. Equal arguments
// produce identical bytes.
func (r *Renderer) RenderAt(templateID string, values layout.Values, issuedAt time.Time) (out []byte, err error) {
	def, err := r.registry.Get(templateID)
	if err != nil {
		return nil, &Error{Kind: UnknownTemplate, TemplateID: templateID, Err: err}
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("[Render] layout %s panicked: %v", templateID, rec)
			out = nil
			err = &Error{Kind: LayoutFailure, TemplateID: templateID, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	doc := layout.NewDocument(layout.Config{
		Style:    def.Style,
		Fonts:    r.fonts,
		IssuedAt: issuedAt,
		Title:    def.Name,
		Author:   "LexForge",
		Footer:   def.Footer,
		Compress: r.compress,
	})
	def.Layout(doc, values.Clone())

	out, err = doc.Bytes()
	if err != nil {
		log.Errorf("[Render] layout %s failed: %v", templateID, err)
		return nil, &Error{Kind: LayoutFailure, TemplateID: templateID, Err: err}
	}
	return out, nil
}

// IsKind reports whether err is a render error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == k
}
