package near

import (
	"context"
	"encoding/json"
)

// CallRequest is a state changing function call signed by Signer.
type CallRequest struct {
	Receiver string          `json:"receiver_id"`
	Method   string          `json:"method_name"`
	Args     json.RawMessage `json:"args"`
	Signer   string          `json:"signer_id"`
	// Gas is the attached compute budget; zero means DefaultGas.
	Gas     Gas      `json:"gas"`
	Deposit *Balance `json:"deposit,omitempty"`
}

// ViewRequest is a read-only function call.
type ViewRequest struct {
	Receiver string          `json:"receiver_id"`
	Method   string          `json:"method_name"`
	Args     json.RawMessage `json:"args"`
}

// Client submits function calls and views to a NEAR node. Errors returned by the node are
// returned as is.
type Client interface {
	// Call signs and submits a function call and waits for its final outcome. It returns the
	// JSON value returned by the method, or null for methods returning nothing.
	Call(ctx context.Context, req CallRequest) (json.RawMessage, error)
	// View runs a read-only function call and returns the JSON value returned by the method.
	View(ctx context.Context, req ViewRequest) (json.RawMessage, error)
}

// EffectiveGas returns the gas attached to the call.
func (r CallRequest) EffectiveGas() Gas {
	if r.Gas == 0 {
		return DefaultGas
	}

	return r.Gas
}

// EffectiveDeposit returns the attached deposit, zero when none is set.
func (r CallRequest) EffectiveDeposit() Balance {
	if r.Deposit == nil {
		return Balance{}
	}

	return *r.Deposit
}

// ArgsOrEmpty returns args, or an empty JSON object when args is empty.
func ArgsOrEmpty(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("{}")
	}

	return args
}
