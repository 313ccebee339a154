package deployment

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
)

// ErrInvalidStep is returned for steps that cannot be submitted.
var ErrInvalidStep = errors.New("invalid step")

// StepStatus is the execution state of a step in a run.
type StepStatus string

const (
	// StepPending steps have not been executed.
	StepPending StepStatus = "Pending"
	// StepDone steps were accepted by the node.
	StepDone StepStatus = "Done"
	// StepFailed steps were rejected, they halt the run.
	StepFailed StepStatus = "Failed"
)

// Step is a single remote call of a deployment.
type Step struct {
	// Name labels the step in logs and reports, the method name is used when empty.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Receiver is the account the method is called on.
	Receiver string `json:"receiver" yaml:"receiver"`
	Method   string `json:"method" yaml:"method"`
	// Args are the JSON arguments of the method.
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
	// Signer is the caller identity. Views have none.
	Signer string `json:"signer,omitempty" yaml:"signer,omitempty"`
	// Gas is the compute budget, zero leaves the transport default.
	Gas near.Gas `json:"gas,omitempty" yaml:"gas,omitempty"`
	// Deposit is the attached amount in yoctoNEAR.
	Deposit *near.Balance `json:"deposit,omitempty" yaml:"deposit,omitempty"`
	// View marks read-only calls.
	View bool `json:"view,omitempty" yaml:"view,omitempty"`
}

// Label returns the step name, or its method when unnamed.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}

	return s.Method
}

// Validate checks the step can be submitted.
func (s Step) Validate() error {
	if err := near.ValidateAccountID(s.Receiver); err != nil {
		return fmt.Errorf("%w %s: receiver: %w", ErrInvalidStep, s.Label(), err)
	}
	if s.Method == "" {
		return fmt.Errorf("%w %s: method is required", ErrInvalidStep, s.Label())
	}

	if s.View {
		if s.Deposit != nil && !s.Deposit.IsZero() {
			return fmt.Errorf("%w %s: a view cannot attach a deposit", ErrInvalidStep, s.Label())
		}

		return nil
	}

	if err := near.ValidateAccountID(s.Signer); err != nil {
		return fmt.Errorf("%w %s: signer: %w", ErrInvalidStep, s.Label(), err)
	}
	if s.Gas > near.MaxGas {
		return fmt.Errorf("%w %s: gas %s exceeds the %s limit", ErrInvalidStep, s.Label(), s.Gas, near.MaxGas)
	}

	return nil
}

// EncodeArgs returns the JSON arguments of the method, an empty object when there are none.
func (s Step) EncodeArgs() (json.RawMessage, error) {
	if len(s.Args) == 0 {
		return json.RawMessage("{}"), nil
	}

	b, err := json.Marshal(s.Args)
	if err != nil {
		return nil, fmt.Errorf("%w %s: args: %w", ErrInvalidStep, s.Label(), err)
	}

	return b, nil
}

// StepResult is the outcome of a step in a run.
type StepResult struct {
	Step   Step       `json:"step" yaml:"step"`
	Status StepStatus `json:"status" yaml:"status"`
	// Response is what the node returned for a Done step.
	Response json.RawMessage `json:"response,omitempty" yaml:"-"`
	// ReportID is the id of the operation report recorded for an executed step.
	ReportID string `json:"report_id,omitempty" yaml:"report_id,omitempty"`
	// Error is the message of the failure of a Failed step.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Err is the failure of a Failed step.
	Err error `json:"-" yaml:"-"`
}

// MarshalYAML writes the response as YAML instead of raw JSON bytes.
func (r StepResult) MarshalYAML() (any, error) {
	type plain StepResult
	out := struct {
		plain    `yaml:",inline"`
		Response any `yaml:"response,omitempty"`
	}{plain: plain(r)}

	if len(r.Response) > 0 {
		if err := json.Unmarshal(r.Response, &out.Response); err != nil {
			return nil, fmt.Errorf("invalid response of step %s: %w", r.Step.Label(), err)
		}
	}

	return out, nil
}

// UnmarshalYAML reads a result written by MarshalYAML back, the response as raw JSON.
func (r *StepResult) UnmarshalYAML(node *yaml.Node) error {
	type plain StepResult
	var in struct {
		plain    `yaml:",inline"`
		Response any `yaml:"response,omitempty"`
	}
	if err := node.Decode(&in); err != nil {
		return err
	}

	*r = StepResult(in.plain)
	if in.Response != nil {
		b, err := json.Marshal(in.Response)
		if err != nil {
			return fmt.Errorf("invalid response of step %s: %w", r.Step.Label(), err)
		}
		r.Response = b
	}

	return nil
}

// RemoteCallError is returned when the node, or the transport reaching it, rejects a step.
// The cause is kept unchanged.
type RemoteCallError struct {
	Step     string
	Receiver string
	Method   string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("step %s (%s.%s) failed: %v", e.Step, e.Receiver, e.Method, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
