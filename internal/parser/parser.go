// Package parser compiles a raw JSON script into a validated action graph.
// The pipeline runs in fixed phases: structural validation, the semantic
// passes, then dependency resolution. Each phase collects every error it
// can find before the parse fails, so one round-trip surfaces all problems.
package parser

import (
	"context"
	"encoding/json"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/ctxlog"
	"github.com/vk/scriptforge/internal/graph"
	"github.com/vk/scriptforge/internal/schema"
	"github.com/vk/scriptforge/internal/validate"
)

// Result is the outcome of one parse: a graph on success, the full
// diagnostic list otherwise.
type Result struct {
	Success bool                     `json:"success"`
	Graph   *graph.Graph             `json:"-"`
	Errors  []action.ValidationError `json:"errors,omitempty"`
}

// Parser owns the validators it runs. Instances are independent; there is
// no process-wide parser state.
type Parser struct {
	schema    *schema.Validator
	semantics *validate.Validator
}

// New returns a parser with freshly constructed validators.
func New() *Parser {
	return &Parser{
		schema:    schema.NewValidator(),
		semantics: validate.NewValidator(),
	}
}

// Parse compiles raw script bytes into a graph.
func (p *Parser) Parse(ctx context.Context, raw []byte) *Result {
	logger := ctxlog.FromContext(ctx)

	// Phase 1: structure. Schema errors are fatal and reported before any
	// semantic check runs.
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return failure(action.NewError(action.ErrSchema, "invalid JSON: %v", err))
	}
	if errs := p.schema.Validate(doc); len(errs) > 0 {
		logger.Debug("Parse failed structural validation.", "errors", len(errs))
		return failure(errs...)
	}

	typed, err := action.DecodeDocument(raw)
	if err != nil {
		// Unreachable for documents that passed the schema; kept as a
		// guard against validator drift.
		return failure(action.NewError(action.ErrSchema, "decode document: %v", err))
	}

	// Phase 2: semantics. All passes run even when earlier ones failed.
	if errs := p.semantics.Validate(typed); len(errs) > 0 {
		logger.Debug("Parse failed semantic validation.", "errors", len(errs))
		return failure(errs...)
	}

	// Phase 3: dependency analysis, which assumes well-formed references.
	g, errs := graph.Build(ctx, typed)
	if len(errs) > 0 {
		logger.Debug("Parse failed dependency analysis.", "errors", len(errs))
		return failure(errs...)
	}

	logger.Debug("Parse succeeded.", "nodes", len(g.Nodes))
	return &Result{Success: true, Graph: g}
}

func failure(errs ...action.ValidationError) *Result {
	return &Result{Success: false, Errors: errs}
}
