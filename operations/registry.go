package operations

import "errors"

var ErrOperationNotFound = errors.New("operation not found in registry")

// OperationRegistry indexes untyped operations by ID and version.
type OperationRegistry struct {
	ops []*Operation[any, any, any]
}

func NewOperationRegistry(ops ...*Operation[any, any, any]) *OperationRegistry {
	return &OperationRegistry{ops: ops}
}

// RegisterOperation adds typed operations to r.
func RegisterOperation[I, O, D any](r *OperationRegistry, ops ...*Operation[I, O, D]) {
	for _, op := range ops {
		r.ops = append(r.ops, op.AsUntyped())
	}
}

// Retrieve returns the operation with exactly the ID and version of def.
func (r OperationRegistry) Retrieve(def Definition) (*Operation[any, any, any], error) {
	want := def.Version.String()
	for _, op := range r.ops {
		if op.def.ID == def.ID && op.Version() == want {
			return op, nil
		}
	}

	return nil, ErrOperationNotFound
}

// RetrieveLatest returns the operation with the highest version registered under id.
func (r OperationRegistry) RetrieveLatest(id string) (*Operation[any, any, any], error) {
	var latest *Operation[any, any, any]
	for _, op := range r.ops {
		if op.def.ID != id {
			continue
		}
		if latest == nil || op.def.Version.GreaterThan(latest.def.Version) {
			latest = op
		}
	}
	if latest == nil {
		return nil, ErrOperationNotFound
	}

	return latest, nil
}

// Definitions lists what is registered, in registration order.
func (r OperationRegistry) Definitions() []Definition {
	defs := make([]Definition, len(r.ops))
	for i, op := range r.ops {
		defs[i] = op.def
	}

	return defs
}
