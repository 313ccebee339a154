package operations

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

// Report records a single execution of an operation or a sequence: what ran, with which input,
// what came back and when.
type Report[IN, OUT any] struct {
	ID        string       `json:"id"`
	Def       Definition   `json:"definition"`
	Output    OUT          `json:"output"`
	Input     IN           `json:"input"`
	Timestamp *time.Time   `json:"timestamp"`
	Err       *ReportError `json:"error"`
	// Set on sequence reports only.
	ChildOperationReports []string `json:"childOperationReports"`
}

// NewReport stamps a report with a fresh ID and the current time.
func NewReport[IN, OUT any](
	def Definition, input IN, output OUT, err error, childReportsID ...string,
) Report[IN, OUT] {
	now := time.Now()
	r := Report[IN, OUT]{
		ID:                    uuid.NewString(),
		Def:                   def,
		Input:                 input,
		Output:                output,
		Timestamp:             &now,
		ChildOperationReports: childReportsID,
	}
	if err != nil {
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ToGenericReport erases the type parameters of the report.
func (r Report[IN, OUT]) ToGenericReport() Report[any, any] {
	return Report[any, any]{
		ID:                    r.ID,
		Def:                   r.Def,
		Input:                 r.Input,
		Output:                r.Output,
		Timestamp:             r.Timestamp,
		Err:                   r.Err,
		ChildOperationReports: r.ChildOperationReports,
	}
}

// Succeeded reports whether the execution finished without error.
func (r Report[IN, OUT]) Succeeded() bool {
	return r.Err == nil
}

// SequenceReport is the report of a sequence plus the reports of the operations it ran.
type SequenceReport[IN, OUT any] struct {
	Report[IN, OUT]

	// Operation reports in execution order, then the sequence report.
	ExecutionReports []Report[any, any]
}

// ReportError keeps the message of a failed execution. Errors do not survive JSON encoding,
// their messages do.
type ReportError struct {
	Message string `json:"message"`
}

func (e ReportError) Error() string {
	return e.Message
}

// Reporter stores the reports of a run.
type Reporter interface {
	GetReport(id string) (Report[any, any], error)
	GetReports() ([]Report[any, any], error)
	AddReport(report Report[any, any]) error
	GetExecutionReports(reportID string) ([]Report[any, any], error)
}

var _ Reporter = (*MemoryReporter)(nil)

// MemoryReporter keeps reports in process memory. It is safe for concurrent use.
type MemoryReporter struct {
	mu      sync.RWMutex
	reports []Report[any, any]
}

// NewMemoryReporter returns an empty MemoryReporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (m *MemoryReporter) AddReport(report Report[any, any]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, report)

	return nil
}

// GetReports returns a copy of the stored reports in insertion order.
func (m *MemoryReporter) GetReports() ([]Report[any, any], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Report[any, any](nil), m.reports...), nil
}

// GetReport returns the report with the given ID or ErrReportNotFound.
func (m *MemoryReporter) GetReport(id string) (Report[any, any], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}

	return Report[any, any]{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
}

// GetExecutionReports walks the report tree rooted at seqID. Children come before their parent.
func (m *MemoryReporter) GetExecutionReports(seqID string) ([]Report[any, any], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return collectExecutionReports(m.reports, seqID)
}

func collectExecutionReports(reports []Report[any, any], rootID string) ([]Report[any, any], error) {
	byID := make(map[string]Report[any, any], len(reports))
	for _, r := range reports {
		byID[r.ID] = r
	}

	var out []Report[any, any]
	var walk func(id string) error
	walk = func(id string) error {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
		}
		for _, child := range r.ChildOperationReports {
			if err := walk(child); err != nil {
				return err
			}
		}
		out = append(out, r)

		return nil
	}

	if err := walk(rootID); err != nil {
		return nil, err
	}

	return out, nil
}

// childReporter forwards reports to a parent Reporter and remembers the IDs it saw, so a
// sequence knows which operations ran inside it.
type childReporter struct {
	Reporter

	mu  sync.Mutex
	ids []string
}

func newChildReporter(parent Reporter) *childReporter {
	return &childReporter{Reporter: parent}
}

func (c *childReporter) AddReport(report Report[any, any]) error {
	if err := c.Reporter.AddReport(report); err != nil {
		return err
	}

	c.mu.Lock()
	c.ids = append(c.ids, report.ID)
	c.mu.Unlock()

	return nil
}

func (c *childReporter) childIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string{}, c.ids...)
}

// TypeReport restores the type parameters of a report read back from storage, where structs
// were decoded as maps. It reports false when input or output do not fit IN and OUT.
func TypeReport[IN, OUT any](r Report[any, any]) (Report[IN, OUT], bool) {
	input, err := reshape[IN](r.Input)
	if err != nil {
		return Report[IN, OUT]{}, false
	}
	output, err := reshape[OUT](r.Output)
	if err != nil {
		return Report[IN, OUT]{}, false
	}

	return Report[IN, OUT]{
		ID:                    r.ID,
		Def:                   r.Def,
		Input:                 input,
		Output:                output,
		Timestamp:             r.Timestamp,
		Err:                   r.Err,
		ChildOperationReports: r.ChildOperationReports,
	}, true
}

// reshape converts v to T through its JSON encoding.
func reshape[T any](v any) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)

	return out, err
}
