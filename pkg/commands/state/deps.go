package state

import (
	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/engine/config"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// ConfigLoaderFunc loads the deployment config, used for reports.artifacts_dir.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// RunLoaderFunc loads a saved run record by id.
type RunLoaderFunc func(dir *deployment.ArtifactsDir, runID string) (deployment.RunRecord, error)

// ReportsLoaderFunc loads the saved operation reports of a run.
// A run without reports yields an empty list.
type ReportsLoaderFunc func(dir *deployment.ArtifactsDir, runID string) ([]operations.Report[any, any], error)

func defaultRunLoader(dir *deployment.ArtifactsDir, runID string) (deployment.RunRecord, error) {
	return dir.LoadRun(runID)
}

func defaultReportsLoader(dir *deployment.ArtifactsDir, runID string) ([]operations.Report[any, any], error) {
	return dir.LoadOperationsReports(runID)
}

// Deps holds the injectable dependencies for state commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the deployment config.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// RunLoader loads a run record.
	// Default: ArtifactsDir.LoadRun
	RunLoader RunLoaderFunc

	// ReportsLoader loads the operation reports of a run.
	// Default: ArtifactsDir.LoadOperationsReports
	ReportsLoader ReportsLoaderFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.RunLoader == nil {
		d.RunLoader = defaultRunLoader
	}
	if d.ReportsLoader == nil {
		d.ReportsLoader = defaultReportsLoader
	}
}

// Config holds the configuration for state commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If nil, production defaults are used.
	Deps *Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	if c.Deps == nil {
		c.Deps = &Deps{}
	}
	c.Deps.applyDefaults()

	return c.Deps
}
