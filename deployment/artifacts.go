package deployment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/near-deployments-framework/operations"
)

const (
	// Defines the file extensions for the artifacts
	JSONExt = "json"
	YAMLExt = "yaml"

	RunsDirName              = "runs"
	OperationsReportsDirName = "operations_reports"
)

// ErrArtifactNotFound is returned when an artifact is not in the filesystem.
var ErrArtifactNotFound = errors.New("artifact not found")

// RunRecord summarizes a deployment run.
type RunRecord struct {
	ID          string       `json:"id" yaml:"id"`
	Environment string       `json:"environment" yaml:"environment"`
	Network     string       `json:"network" yaml:"network"`
	StartedAt   time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time    `json:"finished_at" yaml:"finished_at"`
	Results     []StepResult `json:"results" yaml:"results"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether every step of the run is Done.
func (r RunRecord) Succeeded() bool {
	if r.Error != "" {
		return false
	}
	for _, res := range r.Results {
		if res.Status != StepDone {
			return false
		}
	}

	return true
}

// NewRunID returns a new, time sortable, run id.
func NewRunID() string {
	return ksuid.New().String()
}

// ArtifactsDir is the directory holding the run records and operation reports of an
// environment, <root>/<env>/runs and <root>/<env>/operations_reports.
type ArtifactsDir struct {
	rootPath string
	envKey   string
}

// NewArtifactsDir creates a new ArtifactsDir.
func NewArtifactsDir(rootPath, envKey string) *ArtifactsDir {
	return &ArtifactsDir{rootPath: rootPath, envKey: envKey}
}

// RunsDirPath returns the path to the directory containing the run records.
func (a *ArtifactsDir) RunsDirPath() string {
	return filepath.Join(a.rootPath, a.envKey, RunsDirName)
}

// OperationsReportsDirPath returns the path to the directory containing the operations reports.
func (a *ArtifactsDir) OperationsReportsDirPath() string {
	return filepath.Join(a.rootPath, a.envKey, OperationsReportsDirName)
}

// SaveRun writes the run record as JSON, or YAML when ext is YAMLExt, and returns its path. The
// file name starts with the run id so records sort by start time.
func (a *ArtifactsDir) SaveRun(run RunRecord, ext string) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	var (
		b   []byte
		err error
	)
	switch ext {
	case JSONExt:
		b, err = json.MarshalIndent(run, "", "  ")
	case YAMLExt:
		b, err = yaml.Marshal(run)
	default:
		return "", fmt.Errorf("unsupported run record format %q", ext)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}

	path := filepath.Join(a.RunsDirPath(), fmt.Sprintf("%s-%s-%s.%s", run.ID, a.envKey, run.Network, ext))
	if err := writeFile(path, b); err != nil {
		return "", err
	}

	return path, nil
}

// LoadRun reads the run record with the given id, whichever format it was saved in.
func (a *ArtifactsDir) LoadRun(id string) (RunRecord, error) {
	matches, err := filepath.Glob(filepath.Join(a.RunsDirPath(), id+"-*"))
	if err != nil {
		return RunRecord{}, err
	}
	if len(matches) == 0 {
		return RunRecord{}, fmt.Errorf("run %s: %w", id, ErrArtifactNotFound)
	}

	path := matches[0]
	b, err := os.ReadFile(path)
	if err != nil {
		return RunRecord{}, err
	}

	var run RunRecord
	switch filepath.Ext(path) {
	case "." + JSONExt:
		err = json.Unmarshal(b, &run)
	case "." + YAMLExt:
		err = yaml.Unmarshal(b, &run)
	default:
		return RunRecord{}, fmt.Errorf("unsupported run record %s", path)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to parse run %s: %w", path, err)
	}

	return run, nil
}

// SaveOperationsReports writes the reports of a run as JSON, overwriting previous ones.
func (a *ArtifactsDir) SaveOperationsReports(runID string, reports []operations.Report[any, any]) error {
	b, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal operations reports: %w", err)
	}

	return writeFile(a.operationsReportsFilePath(runID), b)
}

// LoadOperationsReports reads the reports of a run. A run without reports yields an empty list.
func (a *ArtifactsDir) LoadOperationsReports(runID string) ([]operations.Report[any, any], error) {
	file, err := os.ReadFile(a.operationsReportsFilePath(runID))
	if errors.Is(err, os.ErrNotExist) {
		return []operations.Report[any, any]{}, nil
	}
	if err != nil {
		return nil, err
	}

	var reports []operations.Report[json.RawMessage, json.RawMessage]
	if err := json.Unmarshal(file, &reports); err != nil {
		return nil, err
	}

	anyReports := make([]operations.Report[any, any], 0, len(reports))
	for _, r := range reports {
		anyReports = append(anyReports, r.ToGenericReport())
	}

	return anyReports, nil
}

func (a *ArtifactsDir) operationsReportsFilePath(runID string) string {
	return filepath.Join(a.OperationsReportsDirPath(), fmt.Sprintf("%s-reports.%s", runID, JSONExt))
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
