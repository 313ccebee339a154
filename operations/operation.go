package operations

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// Bundle is handed to every handler. Create it with NewBundle.
type Bundle struct {
	Logger            logger.Logger
	GetContext        func() context.Context
	OperationRegistry *OperationRegistry

	reporter Reporter
}

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// WithOperationRegistry replaces the empty default registry.
func WithOperationRegistry(registry *OperationRegistry) BundleOption {
	return func(b *Bundle) {
		b.OperationRegistry = registry
	}
}

// NewBundle returns a bundle recording executions into reporter.
func NewBundle(getContext func() context.Context, lggr logger.Logger, reporter Reporter, opts ...BundleOption) Bundle {
	b := Bundle{
		Logger:            lggr,
		GetContext:        getContext,
		OperationRegistry: NewOperationRegistry(),
		reporter:          reporter,
	}
	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// Reporter returns the Reporter the bundle records executions into.
func (b Bundle) Reporter() Reporter {
	return b.reporter
}

// OperationHandler performs the side effect of an operation.
type OperationHandler[IN, OUT, DEP any] func(b Bundle, deps DEP, input IN) (output OUT, err error)

// Definition identifies an operation or a sequence in reports.
type Definition struct {
	ID          string          `json:"id"`
	Version     *semver.Version `json:"version"`
	Description string          `json:"description"`
}

// Operation is the unit of execution: at most one remote call or view.
type Operation[IN, OUT, DEP any] struct {
	def     Definition
	handler OperationHandler[IN, OUT, DEP]
}

// NewOperation creates an operation from its definition fields and handler.
func NewOperation[IN, OUT, DEP any](
	id string, version *semver.Version, description string, handler OperationHandler[IN, OUT, DEP],
) *Operation[IN, OUT, DEP] {
	return &Operation[IN, OUT, DEP]{
		def:     Definition{ID: id, Version: version, Description: description},
		handler: handler,
	}
}

func (o *Operation[IN, OUT, DEP]) ID() string          { return o.def.ID }
func (o *Operation[IN, OUT, DEP]) Version() string     { return o.def.Version.String() }
func (o *Operation[IN, OUT, DEP]) Description() string { return o.def.Description }
func (o *Operation[IN, OUT, DEP]) Def() Definition     { return o.def }

func (o *Operation[IN, OUT, DEP]) execute(b Bundle, deps DEP, input IN) (OUT, error) {
	b.Logger.Infow("Executing operation",
		"id", o.def.ID, "version", o.def.Version, "description", o.def.Description)

	return o.handler(b, deps, input)
}

// AsUntyped erases the type parameters so operations of different types fit in one registry.
// Input and deps are type checked when the handler runs; nil stands for the zero value.
func (o *Operation[IN, OUT, DEP]) AsUntyped() *Operation[any, any, any] {
	return &Operation[any, any, any]{
		def: o.def,
		handler: func(b Bundle, deps any, input any) (any, error) {
			in, err := assertOrZero[IN](input, "input")
			if err != nil {
				return nil, err
			}
			d, err := assertOrZero[DEP](deps, "dependencies")
			if err != nil {
				return nil, err
			}

			return o.handler(b, d, in)
		},
	}
}

func assertOrZero[T any](v any, what string) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s type mismatch: got %T, want %T", what, v, zero)
	}

	return t, nil
}
