package repository

import (
	"context"
	"testing"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)
	ctx := context.Background()

	chart := testutil.NewTestChart("roadmap",
		testutil.NewTestSeparator("Phase 1"),
		testutil.NewTestTask("Design", testutil.WithPlanned("2024/01/01", "2024/01/05"), testutil.WithDuration(5)),
	)
	chart.Settings.Title = "Roadmap"
	chart.Settings.HolidayInput = "2024/01/01"
	require.NoError(t, repo.Create(ctx, chart))

	fetched, err := repo.GetByID(ctx, chart.ID)
	require.NoError(t, err)
	assert.Equal(t, "roadmap", fetched.Name)
	assert.Equal(t, "Roadmap", fetched.Settings.Title)
	assert.Equal(t, "2024/01/01", fetched.Settings.HolidayInput)
	assert.True(t, chart.Snapshot.Equal(fetched.Snapshot))
}

func TestChartRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestChartRepo_GetByName_FallsBackToIDPrefix(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)
	ctx := context.Background()

	chart := testutil.NewTestChart("plan")
	require.NoError(t, repo.Create(ctx, chart))

	byName, err := repo.GetByName(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, chart.ID, byName.ID)

	byPrefix, err := repo.GetByName(ctx, chart.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, chart.ID, byPrefix.ID)

	_, err = repo.GetByName(ctx, "zzz-missing")
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestChartRepo_DuplicateName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestChart("plan")))
	err := repo.Create(ctx, testutil.NewTestChart("plan"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestChartRepo_ListAndUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)
	ctx := context.Background()

	b := testutil.NewTestChart("beta")
	a := testutil.NewTestChart("alpha", testutil.NewTestTask("one"))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, 1, list[0].RowCount)
	assert.NotEmpty(t, list[0].Fingerprint)

	doc, err := a.Snapshot.Document.InsertBefore("", testutil.NewTestTask("two"))
	require.NoError(t, err)
	a.Snapshot.Document = doc
	require.NoError(t, repo.Update(ctx, a))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list[0].RowCount)
}

func TestChartRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)
	ctx := context.Background()

	chart := testutil.NewTestChart("gone")
	require.NoError(t, repo.Create(ctx, chart))
	require.NoError(t, repo.Delete(ctx, chart.ID))

	_, err := repo.GetByID(ctx, chart.ID)
	assert.ErrorIs(t, err, ErrChartNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, chart.ID), ErrChartNotFound)
}

func TestChartRepo_Update_Missing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChartRepo(db)

	err := repo.Update(context.Background(), &domain.Chart{ID: "nope", Name: "nope", Snapshot: domain.Snapshot{Document: domain.MustDocument()}})
	assert.ErrorIs(t, err, ErrChartNotFound)
}
