// Package fieldschema is the convenience entry point of the module: it
// re-exports the orchestrator constructor and offers one-call helpers for
// callers that only need defaults or normalization of a single document.
package fieldschema

import (
	"context"
	"fmt"

	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/orchestrator"
	"github.com/goliatone/go-fieldschema/pkg/schema"
)

const documentName = "document"

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Defaults loads the schema at source and returns its canonical default.
func Defaults(ctx context.Context, source schema.Source, options ...orchestrator.Option) (any, error) {
	orch := orchestrator.New(options...)
	if _, err := orch.Load(ctx, documentName, source); err != nil {
		return nil, err
	}
	return orch.Defaults(documentName)
}

// Normalize loads the schema at source and coerces value into its shape.
func Normalize(ctx context.Context, source schema.Source, value any, options ...orchestrator.Option) (any, model.Diagnostics, error) {
	orch := orchestrator.New(options...)
	if _, err := orch.Load(ctx, documentName, source); err != nil {
		return nil, nil, err
	}
	return orch.Normalize(documentName, value)
}

// NormalizeDocument is Normalize for documents already held in memory.
func NormalizeDocument(doc schema.Document, value any, options ...orchestrator.Option) (any, model.Diagnostics, error) {
	orch := orchestrator.New(options...)
	if _, err := orch.LoadDocument(documentName, doc); err != nil {
		return nil, nil, fmt.Errorf("fieldschema: %w", err)
	}
	return orch.Normalize(documentName, value)
}
