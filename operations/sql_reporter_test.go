package operations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	_ "github.com/proullon/ramsql/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

func openRamSQL(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("ramsql", t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	return db
}

func Test_SQLReporter(t *testing.T) {
	t.Parallel()

	db := openRamSQL(t)
	reporter := NewSQLReporter(db, "run-1")
	require.NoError(t, reporter.EnsureSchema(t.Context()))

	def := Definition{ID: "get-token", Version: semver.MustParse("1.0.0"), Description: "view"}
	first := NewReport(def, map[string]any{"token_id": "near_6"}, "ok", nil)
	second := NewReport(def, map[string]any{"token_id": "near_7"}, "", errors.New("boom"))

	require.NoError(t, reporter.AddReport(first.ToGenericReport()))
	require.NoError(t, reporter.AddReport(second.ToGenericReport()))

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first.ID, reports[0].ID)
	assert.Equal(t, second.ID, reports[1].ID)
	assert.Equal(t, "1.0.0", reports[0].Def.Version.String())
	require.NotNil(t, reports[1].Err)
	assert.Equal(t, "boom", reports[1].Err.Message)

	got, err := reporter.GetReport(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Output)

	_, err = reporter.GetReport("missing")
	require.ErrorIs(t, err, ErrReportNotFound)

	// reports of another run are invisible
	other := NewSQLReporter(db, "run-2")
	reports, err = other.GetReports()
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func Test_SQLReporter_ExecuteSequence(t *testing.T) {
	t.Parallel()

	db := openRamSQL(t)
	reporter := NewSQLReporter(db, "run-seq")
	require.NoError(t, reporter.EnsureSchema(t.Context()))

	b := NewBundle(t.Context, logger.Test(t), reporter)
	res, err := ExecuteSequence(b, whitelistThenCreate(nil), nil, "wrap.testnet")
	require.NoError(t, err)
	assert.Equal(t, "near_6 over wrap.testnet", res.Output)
	require.Len(t, res.ExecutionReports, 3)
	assert.Equal(t, "whitelist-token", res.ExecutionReports[0].Def.ID)
	assert.Equal(t, "create-token", res.ExecutionReports[1].Def.ID)
	assert.Equal(t, "whitelist-and-create", res.ExecutionReports[2].Def.ID)

	// a new reporter for the same run continues the sequence numbering
	resumed := NewSQLReporter(db, "run-seq")
	extra := NewReport(Definition{ID: "get-token", Version: v1}, "near_6", "wrap.testnet", nil)
	require.NoError(t, resumed.AddReport(extra.ToGenericReport()))

	reports, err := resumed.GetReports()
	require.NoError(t, err)
	require.Len(t, reports, 4)
	assert.Equal(t, extra.ID, reports[3].ID)
}
