package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/model"
)

func seedMusic(t *testing.T, repo MusicRepository, id, category string, minute int, global *int) {
	t.Helper()
	m := &model.Music{
		ID:          id,
		Name:        "track " + id,
		CategoryID:  category,
		CreateTime:  time.Date(2026, 1, 1, 0, minute, 0, 0, time.UTC),
		GlobalOrder: global,
	}
	require.NoError(t, repo.Create(context.Background(), m))
}

func ptr(v int) *int { return &v }

func TestMemoryListMusicSortsAndPages(t *testing.T) {
	repo := NewMemoryStore().Music()
	seedMusic(t, repo, "a", "c1", 0, ptr(20))
	seedMusic(t, repo, "b", "c1", 1, ptr(10))
	seedMusic(t, repo, "c", "c2", 2, nil)

	list, total, err := repo.ListMusic(context.Background(), model.MusicFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "c", list[2].ID)

	list, total, err = repo.ListMusic(context.Background(), model.MusicFilter{Limit: 1, Skip: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	list, _, err = repo.ListMusic(context.Background(), model.MusicFilter{CategoryID: "c2"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, _, err = repo.ListMusic(context.Background(), model.MusicFilter{Search: "TRACK C"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryStore().Music()
	seedMusic(t, repo, "a", "c1", 0, ptr(10))

	m, err := repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	*m.GlobalOrder = 999

	again, err := repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 10, *again.GlobalOrder)
}

func TestMemoryReassignCategoryClearsCategoryOrder(t *testing.T) {
	repo := NewMemoryStore().Music()
	seedMusic(t, repo, "a", "old", 0, ptr(10))
	require.NoError(t, repo.BatchUpdateOrder(context.Background(), model.ScopeCategory, []model.OrderUpdate{{ID: "a", Order: 10}}))

	n, err := repo.ReassignCategory(context.Background(), []string{"old"}, "new")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	m, _ := repo.GetByID(context.Background(), "a")
	assert.Equal(t, "new", m.CategoryID)
	assert.Nil(t, m.CategoryOrder)
	assert.Equal(t, 10, *m.GlobalOrder)
}

func TestMemoryCategoryDeleteTree(t *testing.T) {
	repo := NewMemoryStore().Categories()
	ctx := context.Background()
	root := model.NewCategory("冥想", 1, nil, "")
	leaf := model.NewCategory("呼吸", 1, &root.ID, "")
	other := model.NewCategory("睡眠", 2, nil, "")
	for _, c := range []*model.Category{root, leaf, other} {
		require.NoError(t, repo.Create(ctx, c))
	}

	ids, err := repo.DeleteTree(ctx, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, leaf.ID}, ids)

	count, _ := repo.Count(ctx)
	assert.EqualValues(t, 1, count)
}

func TestMemoryPlayCountAndTop(t *testing.T) {
	repo := NewMemoryStore().Music()
	ctx := context.Background()
	seedMusic(t, repo, "a", "c1", 0, nil)
	seedMusic(t, repo, "b", "c1", 1, nil)

	found, err := repo.IncrementPlayCount(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	found, _ = repo.IncrementPlayCount(ctx, "ghost")
	assert.False(t, found)

	top, err := repo.TopPlayed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "b", top[0].ID)

	sum, _ := repo.SumPlayCount(ctx)
	assert.EqualValues(t, 1, sum)
}
