// Package pipeline runs document generation: validate, render, count pages,
// price and hand the result to persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/layout"
	"github.com/lexforge/lexforge/internal/pkg/pagecount"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
	"github.com/lexforge/lexforge/internal/pkg/render"
)

type Stage string

const (
	StageReceived  Stage = "Received"
	StageValidated Stage = "Validated"
	StageRendered  Stage = "Rendered"
	StagePriced    Stage = "Priced"
	StageCompleted Stage = "Completed"
)

// StageError is the terminal Failed state: the stage that could not be
// reached and the reason.
type StageError struct {
	Stage  Stage
	Reason error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error {
	return e.Reason
}

// PersistenceWarning reports that a rendered document could not be stored.
// The document itself is still delivered.
type PersistenceWarning struct {
	Err error
}

func (w *PersistenceWarning) Error() string {
	return "persistence: " + w.Err.Error()
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// Request is the input of a run. DocumentID is optional and only used by
// persistence.
type Request struct {
	DocumentID string
	TemplateID string
	Values     layout.Values
}

// Document is a rendered and priced document.
type Document struct {
	DocumentID  string
	TemplateID  string
	Values      layout.Values
	PDF         []byte
	PageCount   int
	FinalPrice  decimal.Decimal
	GeneratedAt time.Time
}

// Result of a successful run. Warning is set when persistence failed.
type Result struct {
	Document
	Warning *PersistenceWarning
	Trace   []Stage
}

// Persister stores generated documents.
type Persister interface {
	Persist(ctx context.Context, doc *Document) error
}

// Pipeline is stateless between runs and safe for concurrent use.
type Pipeline struct {
	renderer  *render.Renderer
	policy    pricing.Policy
	persister Persister
}

// New builds a pipeline. persister may be nil, in which case documents are
// not stored.
func New(renderer *render.Renderer, policy pricing.Policy, persister Persister) *Pipeline {
	return &Pipeline{renderer: renderer, policy: policy, persister: persister}
}

// Policy returns the pricing policy in use.
func (p *Pipeline) Policy() pricing.Policy {
	return p.policy
}

// Run executes every stage for req. A failure returns a *StageError; a
// persistence failure does not.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := p.produce(req)
	if err != nil {
		return nil, err
	}

	if p.persister != nil {
		if err := p.persister.Persist(ctx, &res.Document); err != nil {
			log.Warnf("[Pipeline] document %s (%s) not persisted: %v", req.DocumentID, req.TemplateID, err)
			res.Warning = &PersistenceWarning{Err: err}
		}
	}
	res.Trace = append(res.Trace, StageCompleted)

	log.Debugf("[Pipeline] %s rendered: %d pages, price %s", req.TemplateID, res.PageCount, pricing.Format(res.FinalPrice))
	return res, nil
}

// Quote renders and prices req without storing anything.
func (p *Pipeline) Quote(ctx context.Context, req Request) (*Document, error) {
	_ = ctx
	res, err := p.produce(req)
	if err != nil {
		return nil, err
	}
	log.Debugf("[Pipeline] %s quoted: %d pages, price %s", req.TemplateID, res.PageCount, pricing.Format(res.FinalPrice))
	return &res.Document, nil
}

func (p *Pipeline) produce(req Request) (*Result, error) {
	res := &Result{Trace: []Stage{StageReceived}}
	values := req.Values.Clone()

	if err := p.renderer.Registry().Validate(req.TemplateID, values); err != nil {
		log.Infof("[Pipeline] %s rejected: %v", req.TemplateID, err)
		return nil, &StageError{Stage: StageValidated, Reason: err}
	}
	res.Trace = append(res.Trace, StageValidated)

	issuedAt := p.renderer.Now()
	pdf, err := p.renderer.RenderAt(req.TemplateID, values, issuedAt)
	if err != nil {
		log.Errorf("[Pipeline] render %s failed: %v", req.TemplateID, err)
		return nil, &StageError{Stage: StageRendered, Reason: err}
	}
	res.Trace = append(res.Trace, StageRendered)

	pages := pagecount.Count(pdf)
	res.Document = Document{
		DocumentID:  req.DocumentID,
		TemplateID:  req.TemplateID,
		Values:      values,
		PDF:         pdf,
		PageCount:   pages,
		FinalPrice:  p.policy.Price(pages),
		GeneratedAt: issuedAt,
	}
	res.Trace = append(res.Trace, StagePriced)
	return res, nil
}

// MissingFields returns the field ids of a missing-fields failure, or nil.
func MissingFields(err error) []string {
	var mf *catalog.MissingFieldsError
	if errors.As(err, &mf) {
		return mf.Fields
	}
	return nil
}

// IsUnknownTemplate reports whether err comes from an unknown template id.
func IsUnknownTemplate(err error) bool {
	return errors.Is(err, catalog.ErrTemplateNotFound)
}
