package runs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/reports"
)

func sampleReport() *reports.RunReport {
	return &reports.RunReport{TaskID: 9, Tables: []*reports.TableResult{
		{
			FieldID: 10, Code: "A_REPORT_1", FormID: 1, Stage: reports.StageReady,
			Table:    &reports.Table{FieldID: 10, Rows: []*reports.Row{reports.NewRow(), reports.NewRow()}},
			Warnings: []*apperror.AppError{apperror.NewResolutionMiss("x")},
		},
		{
			FieldID: 20, Code: "B_REPORT_1", FormID: 1, Stage: reports.StageValidateSort,
			Err: apperror.NewConfiguration("sort column \"Total\" is not numeric"),
		},
	}}
}

func TestRun_Finish(t *testing.T) {
	run := NewRun("12345", 9, "1")
	run.Finish(500, sampleReport(), nil)

	assert.Equal(t, StatusPartial, run.Status)
	assert.Equal(t, 2, run.TablesTotal)
	assert.Equal(t, 1, run.TablesFailed)
	assert.Equal(t, 1, run.Warnings)
	require.Len(t, run.Tables, 2)
	assert.Equal(t, TableOutcome{FieldID: 10, Code: "A_REPORT_1", FormID: 1, Stage: "ready", Rows: 2, Warnings: 1}, run.Tables[0])
	assert.Contains(t, run.Tables[1].Error, "not numeric")
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestRun_FinishStatuses(t *testing.T) {
	ok := NewRun("1", 1, "")
	ok.Finish(1, &reports.RunReport{}, nil)
	assert.Equal(t, StatusSucceeded, ok.Status)

	failed := NewRun("1", 1, "")
	failed.Finish(1, nil, errors.New("boom"))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)

	skipped := NewRun("1", 1, "")
	skipped.Skip(42)
	assert.Equal(t, StatusSkipped, skipped.Status)
	assert.Equal(t, 42, skipped.FormID)
}
