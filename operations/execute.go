package operations

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

var ErrNotSerializable = errors.New("data cannot be safely recorded in a report, " +
	"avoid types that can't be serialized to JSON")

// RetryPolicy controls an opt-in retry of ExecuteOperation.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt. Zero means 10.
	MaxAttempts uint
	// Delay is the base backoff delay. Zero keeps the retry-go default.
	Delay time.Duration
}

func (p RetryPolicy) options() []retry.Option {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 10
	}
	opts := []retry.Option{retry.Attempts(attempts), retry.LastErrorOnly(true)}
	if p.Delay > 0 {
		opts = append(opts, retry.Delay(p.Delay))
	}

	return opts
}

type executeOptions struct {
	retry *RetryPolicy
}

// ExecuteOption configures ExecuteOperation.
type ExecuteOption func(*executeOptions)

// WithRetry retries a failing operation according to policy. Errors wrapped with
// NewUnrecoverableError end the retry at once.
func WithRetry(policy RetryPolicy) ExecuteOption {
	return func(o *executeOptions) {
		o.retry = &policy
	}
}

// NewUnrecoverableError marks err so that a retried operation gives up immediately.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}

// ExecuteOperation runs the operation once and records a Report of the attempt, failed or not.
// The handler error is returned unchanged, so errors.Is and errors.As see the original cause.
//
// Input and output must be JSON serializable, see IsSerializable.
func ExecuteOperation[IN, OUT, DEP any](
	b Bundle,
	operation *Operation[IN, OUT, DEP],
	deps DEP,
	input IN,
	opts ...ExecuteOption,
) (Report[IN, OUT], error) {
	if !IsSerializable(b.Logger, input) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s input: %w", operation.def.ID, ErrNotSerializable)
	}

	var cfg executeOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	output, err := runOperation(b, operation, deps, input, cfg.retry)
	if err == nil && !IsSerializable(b.Logger, output) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s output: %w", operation.def.ID, ErrNotSerializable)
	}

	report := NewReport(operation.def, input, output, err)
	if addErr := b.reporter.AddReport(report.ToGenericReport()); addErr != nil {
		return Report[IN, OUT]{}, addErr
	}
	if err != nil {
		b.Logger.Errorw("Operation failed", "id", operation.def.ID, "error", err)
	}

	return report, err
}

func runOperation[IN, OUT, DEP any](
	b Bundle, operation *Operation[IN, OUT, DEP], deps DEP, input IN, policy *RetryPolicy,
) (OUT, error) {
	if policy == nil {
		return operation.execute(b, deps, input)
	}

	opts := append(policy.options(),
		retry.Context(b.GetContext()),
		retry.OnRetry(func(attempt uint, err error) {
			b.Logger.Infow("Operation failed, retrying", "id", operation.def.ID, "attempt", attempt+1, "error", err)
		}),
	)

	return retry.DoWithData(func() (OUT, error) {
		return operation.execute(b, deps, input)
	}, opts...)
}

// ExecuteSequence runs the sequence handler with a bundle that tracks every operation executed
// inside it. The returned SequenceReport lists those operation reports in order followed by the
// sequence report. A failed sequence is still reported, and its error is returned unchanged.
func ExecuteSequence[IN, OUT, DEP any](
	b Bundle, sequence *Sequence[IN, OUT, DEP], deps DEP, input IN,
) (SequenceReport[IN, OUT], error) {
	if !IsSerializable(b.Logger, input) {
		return SequenceReport[IN, OUT]{}, fmt.Errorf("sequence %s input: %w", sequence.def.ID, ErrNotSerializable)
	}

	b.Logger.Infow("Executing sequence", "id", sequence.def.ID,
		"version", sequence.def.Version, "description", sequence.def.Description)

	children := newChildReporter(b.reporter)
	inner := b
	inner.reporter = children

	output, err := sequence.handler(inner, deps, input)
	if errors.Is(err, ErrNotSerializable) {
		return SequenceReport[IN, OUT]{}, err
	}
	if err == nil && !IsSerializable(b.Logger, output) {
		return SequenceReport[IN, OUT]{}, fmt.Errorf("sequence %s output: %w", sequence.def.ID, ErrNotSerializable)
	}

	report := NewReport(sequence.def, input, output, err, children.childIDs()...)
	if addErr := b.reporter.AddReport(report.ToGenericReport()); addErr != nil {
		return SequenceReport[IN, OUT]{}, addErr
	}

	executed, getErr := b.reporter.GetExecutionReports(report.ID)
	if getErr != nil {
		return SequenceReport[IN, OUT]{}, getErr
	}

	return SequenceReport[IN, OUT]{Report: report, ExecutionReports: executed}, err
}
