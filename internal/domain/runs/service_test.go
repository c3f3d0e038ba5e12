package runs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosstab/internal/core/apperror"
	"crosstab/internal/core/id"
)

func seed(t *testing.T, svc *Service, n int) []*Run {
	t.Helper()
	out := make([]*Run, 0, n)
	for i := 0; i < n; i++ {
		run := NewRun("s", i%2+1, "")
		if i%3 == 0 {
			run.Skip(1)
		} else {
			run.Finish(1, nil, nil)
		}
		svc.Record(context.Background(), run)
		out = append(out, run)
	}
	return out
}

func TestService_ListNewestFirst(t *testing.T) {
	svc := NewService(NewMemoryRepository(0))
	saved := seed(t, svc, 5)

	items, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, saved[4].ID, items[0].ID)
	assert.Equal(t, saved[0].ID, items[4].ID)
}

func TestService_ListFilters(t *testing.T) {
	svc := NewService(NewMemoryRepository(0))
	seed(t, svc, 6)

	byTask, err := svc.List(context.Background(), ListFilter{TaskID: 1})
	require.NoError(t, err)
	assert.Len(t, byTask, 3)

	skipped, err := svc.List(context.Background(), ListFilter{Status: StatusSkipped})
	require.NoError(t, err)
	assert.Len(t, skipped, 2)

	page, err := svc.List(context.Background(), ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestService_ListValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(0))

	_, err := svc.List(context.Background(), ListFilter{Status: "bogus"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.List(context.Background(), ListFilter{Offset: -1})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Get(t *testing.T) {
	svc := NewService(NewMemoryRepository(0))
	saved := seed(t, svc, 2)

	run, err := svc.Get(context.Background(), saved[1].ID)
	require.NoError(t, err)
	assert.Equal(t, saved[1].TaskID, run.TaskID)

	_, err = svc.Get(context.Background(), id.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestMemoryRepository_Capacity(t *testing.T) {
	repo := NewMemoryRepository(3)
	svc := NewService(repo)
	saved := seed(t, svc, 5)

	items, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, saved[2].ID, items[2].ID)
}
