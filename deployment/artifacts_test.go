package deployment

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/operations"
)

func testRun() RunRecord {
	deposit := near.OneYocto

	return RunRecord{
		ID:          NewRunID(),
		Environment: "staging",
		Network:     "testnet",
		StartedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2024, 5, 1, 10, 1, 0, 0, time.UTC),
		Results: []StepResult{
			{
				Step:     Step{Receiver: "f.testnet", Method: "storage_deposit", Signer: "f.testnet", Deposit: &deposit},
				Status:   StepDone,
				Response: json.RawMessage(`{"total":"1"}`),
				ReportID: "r1",
			},
			{
				Step:   Step{Receiver: "f.testnet", Method: "create_token", Signer: "f.testnet", Gas: 200 * near.TGas},
				Status: StepFailed,
				Error:  "Wrong decimals",
				Err:    errors.New("Wrong decimals"),
			},
		},
		Error: "Wrong decimals",
	}
}

func TestArtifactsDir_SaveRun_JSON(t *testing.T) {
	t.Parallel()

	dir := NewArtifactsDir(t.TempDir(), "staging")
	run := testRun()

	path, err := dir.SaveRun(run, JSONExt)
	require.NoError(t, err)
	assert.Equal(t, dir.RunsDirPath(), filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), run.ID+"-staging-testnet"))

	got, err := dir.LoadRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	require.Len(t, got.Results, 2)
	assert.Equal(t, StepDone, got.Results[0].Status)
	assert.Equal(t, "1", got.Results[0].Step.Deposit.String())
	assert.JSONEq(t, `{"total":"1"}`, string(got.Results[0].Response))
	assert.Equal(t, "Wrong decimals", got.Results[1].Error)
	assert.Equal(t, "200000000000000", got.Results[1].Step.Gas.String())
	assert.False(t, got.Succeeded())

	_, err = dir.LoadRun(NewRunID())
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestArtifactsDir_SaveRun_YAML(t *testing.T) {
	t.Parallel()

	dir := NewArtifactsDir(t.TempDir(), "staging")

	path, err := dir.SaveRun(testRun(), YAMLExt)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(b, &doc))
	results, ok := doc["results"].([]any)
	require.True(t, ok)
	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"total": "1"}, first["response"])
	assert.Equal(t, "Done", first["status"])

	_, err = dir.SaveRun(testRun(), "toml")
	require.ErrorContains(t, err, `unsupported run record format "toml"`)
}

func TestArtifactsDir_LoadRun_YAML(t *testing.T) {
	t.Parallel()

	dir := NewArtifactsDir(t.TempDir(), "staging")
	run := testRun()
	_, err := dir.SaveRun(run, YAMLExt)
	require.NoError(t, err)

	got, err := dir.LoadRun(run.ID)
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "1", got.Results[0].Step.Deposit.String())
	assert.JSONEq(t, `{"total":"1"}`, string(got.Results[0].Response))
	assert.Equal(t, "r1", got.Results[0].ReportID)
	assert.Equal(t, StepFailed, got.Results[1].Status)
	assert.Equal(t, 200*near.TGas, got.Results[1].Step.Gas)
	assert.Empty(t, got.Results[1].Response)
	assert.Equal(t, run.StartedAt, got.StartedAt.UTC())
}

func TestArtifactsDir_OperationsReports(t *testing.T) {
	t.Parallel()

	dir := NewArtifactsDir(t.TempDir(), "staging")
	runID := NewRunID()

	empty, err := dir.LoadOperationsReports(runID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	report := operations.NewReport(StepOp.Def(), Step{Receiver: "f.testnet", Method: "get_token", View: true},
		json.RawMessage(`{"asset_id":"aNEAR"}`), nil)
	require.NoError(t, dir.SaveOperationsReports(runID, []operations.Report[any, any]{report.ToGenericReport()}))

	got, err := dir.LoadOperationsReports(runID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, report.ID, got[0].ID)

	typed, ok := operations.TypeReport[Step, json.RawMessage](got[0])
	require.True(t, ok)
	assert.Equal(t, "get_token", typed.Input.Method)
	assert.JSONEq(t, `{"asset_id":"aNEAR"}`, string(typed.Output))
}

func TestRunRecord_Succeeded(t *testing.T) {
	t.Parallel()

	run := RunRecord{Results: []StepResult{{Status: StepDone}, {Status: StepDone}}}
	assert.True(t, run.Succeeded())

	run.Results = append(run.Results, StepResult{Status: StepPending})
	assert.False(t, run.Succeeded())
}
