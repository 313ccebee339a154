// Package optest provides utilities for operations testing.
package optest

import (
	"testing"

	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// NewBundle creates a new operations bundle for testing with a test logger and a memory
// reporter. The reporter is returned so tests can inspect the recorded executions.
func NewBundle(t *testing.T) (operations.Bundle, *operations.MemoryReporter) {
	t.Helper()

	reporter := operations.NewMemoryReporter()

	return operations.NewBundle(t.Context, logger.Test(t), reporter), reporter
}
