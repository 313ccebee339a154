package deployment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/operations"
)

// DefaultStepTimeout bounds a single remote call.
const DefaultStepTimeout = 5 * time.Minute

// StepDeps are the dependencies of the step operation.
type StepDeps struct {
	Client  near.Client
	Timeout time.Duration
}

// StepOp submits a single step to the node.
var StepOp = operations.NewOperation(
	"near-step",
	semver.MustParse("1.0.0"),
	"Submits a function call or a view to a NEAR node",
	func(b operations.Bundle, deps StepDeps, step Step) (json.RawMessage, error) {
		return invoke(b.GetContext(), deps, step)
	},
)

// DeploymentSeq runs steps in order and stops at the first failure. Its output holds one result
// per step, including the ones that never ran.
var DeploymentSeq = operations.NewSequence(
	"near-deployment",
	semver.MustParse("1.0.0"),
	"Runs deployment steps in order, halting on the first failure",
	func(b operations.Bundle, deps StepDeps, steps []Step) ([]StepResult, error) {
		results := pendingResults(steps)

		for i, step := range steps {
			if err := b.GetContext().Err(); err != nil {
				b.Logger.Warnw("Deployment canceled", "step", step.Label(), "position", i+1)

				return results, fmt.Errorf("deployment canceled before step %d (%s): %w", i+1, step.Label(), err)
			}

			b.Logger.Infow("Running step", "step", step.Label(), "position", i+1, "of", len(steps))
			report, err := operations.ExecuteOperation(b, StepOp, deps, step)
			results[i].ReportID = report.ID
			if err != nil {
				results[i].Status = StepFailed
				results[i].Err = err
				results[i].Error = err.Error()

				return results, err
			}

			results[i].Status = StepDone
			results[i].Response = report.Output
		}

		return results, nil
	},
)

func invoke(ctx context.Context, deps StepDeps, step Step) (json.RawMessage, error) {
	args, err := step.EncodeArgs()
	if err != nil {
		return nil, err
	}

	if deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.Timeout)
		defer cancel()
	}

	var resp json.RawMessage
	if step.View {
		resp, err = deps.Client.View(ctx, near.ViewRequest{
			Receiver: step.Receiver,
			Method:   step.Method,
			Args:     args,
		})
	} else {
		resp, err = deps.Client.Call(ctx, near.CallRequest{
			Receiver: step.Receiver,
			Method:   step.Method,
			Args:     args,
			Signer:   step.Signer,
			Gas:      step.Gas,
			Deposit:  step.Deposit,
		})
	}
	if err != nil {
		return nil, &RemoteCallError{
			Step:     step.Label(),
			Receiver: step.Receiver,
			Method:   step.Method,
			Err:      err,
		}
	}

	return resp, nil
}

func pendingResults(steps []Step) []StepResult {
	results := make([]StepResult, len(steps))
	for i, step := range steps {
		results[i] = StepResult{Step: step, Status: StepPending}
	}

	return results
}

// Runner submits deployment steps to a NEAR node, recording an operation report for every
// executed step.
type Runner struct {
	client  near.Client
	bundle  operations.Bundle
	timeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStepTimeout bounds each remote call. Zero disables the bound.
func WithStepTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// NewRunner returns a runner submitting steps through client. Reports go to the reporter of
// bundle.
func NewRunner(client near.Client, bundle operations.Bundle, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:  client,
		bundle:  bundle,
		timeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunStep submits a single step and returns the node response. Failures of the node or the
// transport are returned as *RemoteCallError.
func (r *Runner) RunStep(ctx context.Context, step Step) (json.RawMessage, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	report, err := operations.ExecuteOperation(r.bundleFor(ctx), StepOp, r.deps(), step)
	if err != nil {
		return nil, err
	}

	return report.Output, nil
}

// RunSequence runs steps in the declared order. It halts at the first failure, returning its
// error unchanged; earlier steps are not rolled back and later steps are left Pending. The
// context is checked before every step. Steps are validated before any of them runs.
func (r *Runner) RunSequence(ctx context.Context, steps []Step) ([]StepResult, error) {
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return pendingResults(steps), err
		}
	}

	report, err := operations.ExecuteSequence(r.bundleFor(ctx), DeploymentSeq, r.deps(), steps)
	if len(report.Output) != len(steps) {
		// the sequence never ran
		return pendingResults(steps), err
	}

	return report.Output, err
}

func (r *Runner) deps() StepDeps {
	return StepDeps{Client: r.client, Timeout: r.timeout}
}

func (r *Runner) bundleFor(ctx context.Context) operations.Bundle {
	b := r.bundle
	b.GetContext = func() context.Context { return ctx }

	return b
}
