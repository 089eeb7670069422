package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/core/apperr"
	"zencms/model"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (n *recordingNotifier) Notify(_ context.Context, evt model.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) last() model.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

func newTestServices(t *testing.T) (*Services, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc := New(MemoryRepositories(), Options{
		Notifier: notifier,
		Now:      func() time.Time { return time.Date(2026, 3, 1, 7, 30, 0, 0, time.Local) },
	})
	return svc, notifier
}

func strPtr(s string) *string { return &s }

func addCategory(t *testing.T, svc *Services, name string, parent *string) *model.Category {
	t.Helper()
	c, err := svc.Categories.Add(context.Background(), model.AddCategoryRequest{Name: name, ParentID: parent})
	require.NoError(t, err)
	return c
}

func addMusic(t *testing.T, svc *Services, name, categoryID string) *model.Music {
	t.Helper()
	m, err := svc.Music.Add(context.Background(), model.AddMusicRequest{
		Name:       name,
		AudioURL:   "https://cdn.example.com/" + name + ".mp3",
		Title:      name,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return m
}

func ids(list []*model.Music) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.Name
	}
	return out
}

func TestCategoryTreeRules(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	root := addCategory(t, svc, "冥想", nil)
	leaf := addCategory(t, svc, "呼吸", &root.ID)

	t.Run("parent must be root", func(t *testing.T) {
		_, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: "深层", ParentID: &leaf.ID})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("parent must exist", func(t *testing.T) {
		_, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: "x", ParentID: strPtr("ghost")})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("icon only on root", func(t *testing.T) {
		_, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: "x", ParentID: &root.ID, IconURL: "https://i/x.png"})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: "   "})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("own parent", func(t *testing.T) {
		_, err := svc.Categories.Update(ctx, model.UpdateCategoryRequest{ID: root.ID, ParentID: &root.ID})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("root with children cannot become leaf", func(t *testing.T) {
		other := addCategory(t, svc, "睡眠", nil)
		_, err := svc.Categories.Update(ctx, model.UpdateCategoryRequest{ID: root.ID, ParentID: &other.ID})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("leaf promoted to root", func(t *testing.T) {
		updated, err := svc.Categories.Update(ctx, model.UpdateCategoryRequest{ID: leaf.ID, ParentID: strPtr("")})
		require.NoError(t, err)
		assert.True(t, updated.IsRoot())
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := svc.Categories.Update(ctx, model.UpdateCategoryRequest{ID: "ghost", Name: strPtr("x")})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestCategoryDemotionDropsIcon(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	parent := addCategory(t, svc, "冥想", nil)
	withIcon, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: "睡眠", IconURL: "https://i/sleep.png"})
	require.NoError(t, err)

	updated, err := svc.Categories.Update(ctx, model.UpdateCategoryRequest{ID: withIcon.ID, ParentID: &parent.ID})
	require.NoError(t, err)
	assert.False(t, updated.IsRoot())
	assert.Empty(t, updated.IconURL)
}

func TestCategoryDeleteRequiresReassign(t *testing.T) {
	svc, notifier := newTestServices(t)
	ctx := context.Background()

	root := addCategory(t, svc, "冥想", nil)
	leaf := addCategory(t, svc, "呼吸", &root.ID)
	target := addCategory(t, svc, "睡眠", nil)
	addMusic(t, svc, "existing", target.ID)
	moved := addMusic(t, svc, "moved", leaf.ID)

	_, err := svc.Categories.Delete(ctx, model.DeleteCategoryRequest{ID: root.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Categories.Delete(ctx, model.DeleteCategoryRequest{ID: root.ID, ReassignTo: leaf.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	result, err := svc.Categories.Delete(ctx, model.DeleteCategoryRequest{ID: root.ID, ReassignTo: target.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, leaf.ID}, result.Deleted)
	assert.EqualValues(t, 1, result.Reassigned)
	assert.Equal(t, model.CollectionCategories, notifier.last().Collection)

	got, err := svc.Music.Get(ctx, model.GetMusicRequest{ID: moved.ID})
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.CategoryID)
	require.NotNil(t, got.CategoryOrder)
	assert.Equal(t, 20, *got.CategoryOrder)

	list, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCategoryDeleteWithoutMusic(t *testing.T) {
	svc, _ := newTestServices(t)
	root := addCategory(t, svc, "冥想", nil)

	result, err := svc.Categories.Delete(context.Background(), model.DeleteCategoryRequest{ID: root.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{root.ID}, result.Deleted)

	_, err = svc.Categories.Delete(context.Background(), model.DeleteCategoryRequest{ID: root.ID})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCategoryDeleteScope(t *testing.T) {
	tests := []struct {
		name      string
		target    func(root, c1, c2 *model.Category) string
		deleted   func(root, c1, c2 *model.Category) []string
		remaining []string
	}{
		{
			name:      "leaf removes only itself",
			target:    func(_, c1, _ *model.Category) string { return c1.ID },
			deleted:   func(_, c1, _ *model.Category) []string { return []string{c1.ID} },
			remaining: []string{"冥想", "正念", "睡眠"},
		},
		{
			name:      "root cascades to every child",
			target:    func(root, _, _ *model.Category) string { return root.ID },
			deleted:   func(root, c1, c2 *model.Category) []string { return []string{root.ID, c1.ID, c2.ID} },
			remaining: []string{"睡眠"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestServices(t)
			ctx := context.Background()
			root := addCategory(t, svc, "冥想", nil)
			c1 := addCategory(t, svc, "呼吸", &root.ID)
			c2 := addCategory(t, svc, "正念", &root.ID)
			addCategory(t, svc, "睡眠", nil)

			result, err := svc.Categories.Delete(ctx, model.DeleteCategoryRequest{ID: tt.target(root, c1, c2)})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.deleted(root, c1, c2), result.Deleted)

			list, err := svc.Categories.List(ctx)
			require.NoError(t, err)
			names := make([]string, len(list))
			for i, c := range list {
				names[i] = c.Name
			}
			assert.ElementsMatch(t, tt.remaining, names)
		})
	}
}

func TestCategoryBlankNameWritesNothing(t *testing.T) {
	svc, notifier := newTestServices(t)
	ctx := context.Background()
	addCategory(t, svc, "冥想", nil)
	before, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	events := len(notifier.events)

	for _, name := range []string{"", "   "} {
		_, err := svc.Categories.Add(ctx, model.AddCategoryRequest{Name: name})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}

	after, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, notifier.events, events)
}

func TestMusicBatchOrderIsIdempotent(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	c := addCategory(t, svc, "冥想", nil)
	a := addMusic(t, svc, "A", c.ID)
	b := addMusic(t, svc, "B", c.ID)
	m := addMusic(t, svc, "C", c.ID)

	order := model.BatchUpdateOrderRequest{IDs: []string{m.ID, a.ID, b.ID}}
	first, err := svc.Music.BatchUpdateOrder(ctx, order)
	require.NoError(t, err)
	page, err := svc.Music.List(ctx, model.ListMusicRequest{})
	require.NoError(t, err)

	second, err := svc.Music.BatchUpdateOrder(ctx, order)
	require.NoError(t, err)
	again, err := svc.Music.List(ctx, model.ListMusicRequest{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"C", "A", "B"}, ids(again.Data))
	assert.Equal(t, page.Data, again.Data)
}

func TestMusicAddAppendsToBothScopes(t *testing.T) {
	svc, notifier := newTestServices(t)
	a := addCategory(t, svc, "A", nil)
	b := addCategory(t, svc, "B", nil)

	first := addMusic(t, svc, "one", a.ID)
	second := addMusic(t, svc, "two", b.ID)
	third := addMusic(t, svc, "three", a.ID)

	assert.Equal(t, 10, *first.GlobalOrder)
	assert.Equal(t, 20, *second.GlobalOrder)
	assert.Equal(t, 30, *third.GlobalOrder)
	assert.Equal(t, 10, *first.CategoryOrder)
	assert.Equal(t, 10, *second.CategoryOrder)
	assert.Equal(t, 20, *third.CategoryOrder)

	evt := notifier.last()
	assert.Equal(t, model.CollectionMusic, evt.Collection)
	assert.Equal(t, model.ActionAdd, evt.Action)
}

func TestMusicAddValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)

	cases := []struct {
		name string
		req  model.AddMusicRequest
	}{
		{"missing name", model.AddMusicRequest{AudioURL: "u", Title: "t", CategoryID: cat.ID}},
		{"blank audio", model.AddMusicRequest{Name: "n", AudioURL: "  ", Title: "t", CategoryID: cat.ID}},
		{"missing title", model.AddMusicRequest{Name: "n", AudioURL: "u", CategoryID: cat.ID}},
		{"unknown category", model.AddMusicRequest{Name: "n", AudioURL: "u", Title: "t", CategoryID: "ghost"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Music.Add(ctx, tc.req)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}
}

func TestMusicUpdateMovesToEndOfNewCategory(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	a := addCategory(t, svc, "A", nil)
	b := addCategory(t, svc, "B", nil)
	addMusic(t, svc, "b1", b.ID)
	addMusic(t, svc, "b2", b.ID)
	m := addMusic(t, svc, "a1", a.ID)

	updated, err := svc.Music.Update(ctx, model.UpdateMusicRequest{ID: m.ID, CategoryID: &b.ID, Subtitle: strPtr("新")})
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.CategoryID)
	assert.Equal(t, 30, *updated.CategoryOrder)
	assert.Equal(t, 30, *updated.GlobalOrder)
	assert.Equal(t, "新", updated.Subtitle)

	_, err = svc.Music.Update(ctx, model.UpdateMusicRequest{ID: m.ID, Name: strPtr(" ")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Music.Update(ctx, model.UpdateMusicRequest{ID: "ghost"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMusicDragInGlobalScope(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)
	addMusic(t, svc, "A", cat.ID)
	addMusic(t, svc, "B", cat.ID)
	c := addMusic(t, svc, "C", cat.ID)

	_, err := svc.Music.UpdateOrder(ctx, model.UpdateOrderRequest{ID: c.ID, ToIndex: 0})
	require.NoError(t, err)

	page, err := svc.Music.List(ctx, model.ListMusicRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, ids(page.Data))
	assert.False(t, page.NeedsInit)

	// 分类视图不受全局拖拽影响
	page, err = svc.Music.List(ctx, model.ListMusicRequest{CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(page.Data))
}

func TestMusicBatchOrderInCategory(t *testing.T) {
	svc, notifier := newTestServices(t)
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)
	other := addCategory(t, svc, "B", nil)
	x := addMusic(t, svc, "X", cat.ID)
	y := addMusic(t, svc, "Y", cat.ID)
	z := addMusic(t, svc, "Z", other.ID)

	_, err := svc.Music.BatchUpdateOrder(ctx, model.BatchUpdateOrderRequest{CategoryID: cat.ID, IDs: []string{y.ID, x.ID}})
	require.NoError(t, err)
	assert.Equal(t, model.ActionBatchUpdateOrder, notifier.last().Action)

	page, err := svc.Music.List(ctx, model.ListMusicRequest{CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, ids(page.Data))

	_, err = svc.Music.BatchUpdateOrder(ctx, model.BatchUpdateOrderRequest{CategoryID: cat.ID, IDs: []string{x.ID, z.ID}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Music.BatchUpdateOrder(ctx, model.BatchUpdateOrderRequest{IDs: []string{x.ID, x.ID}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestMusicReorderCategoryRequiresCategory(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Music.ReorderCategory(context.Background(), model.ReorderCategoryRequest{CategoryID: "ghost"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMusicNeedsInitAndInitialize(t *testing.T) {
	repos := MemoryRepositories()
	svc := New(repos, Options{})
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)

	for i, name := range []string{"X", "Y", "Z"} {
		m := model.NewMusic(name, "u", name, cat.ID)
		m.CreateTime = time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		require.NoError(t, repos.Music.Create(ctx, m))
	}

	page, err := svc.Music.List(ctx, model.ListMusicRequest{Limit: 1})
	require.NoError(t, err)
	assert.True(t, page.NeedsInit)
	assert.EqualValues(t, 3, page.Total)

	report, err := svc.Music.InitializeOrders(ctx, model.InitializeOrdersRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.GlobalUpdated)
	assert.Equal(t, 3, report.CategoryUpdated)

	page, err = svc.Music.List(ctx, model.ListMusicRequest{})
	require.NoError(t, err)
	assert.False(t, page.NeedsInit)
	assert.Equal(t, []string{"X", "Y", "Z"}, ids(page.Data))
	for i, m := range page.Data {
		assert.Equal(t, (i+1)*10, *m.GlobalOrder)
	}
}

func TestMusicPlayCountAndStats(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)
	a := addMusic(t, svc, "a", cat.ID)
	addMusic(t, svc, "b", cat.ID)

	for i := 0; i < 3; i++ {
		_, err := svc.Music.IncrementPlayCount(ctx, model.IncrementPlayCountRequest{ID: a.ID})
		require.NoError(t, err)
	}
	_, err := svc.Music.IncrementPlayCount(ctx, model.IncrementPlayCountRequest{ID: "ghost"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.Images.Add(ctx, model.AddImageRequest{Name: "bg", URL: "https://i/bg.jpg"})
	require.NoError(t, err)

	stats, err := svc.Stats.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalMusic)
	assert.EqualValues(t, 3, stats.TotalPlays)
	assert.EqualValues(t, 1, stats.TotalCategories)
	assert.EqualValues(t, 1, stats.TotalImages)
	assert.EqualValues(t, 0, stats.TotalAudios)
	require.NotEmpty(t, stats.TopMusic)
	assert.Equal(t, a.ID, stats.TopMusic[0].ID)
	assert.EqualValues(t, 3, stats.TopMusic[0].PlayCount)
}

func TestMusicDelete(t *testing.T) {
	svc, notifier := newTestServices(t)
	ctx := context.Background()
	cat := addCategory(t, svc, "A", nil)
	m := addMusic(t, svc, "a", cat.ID)

	require.NoError(t, svc.Music.Delete(ctx, model.DeleteMusicRequest{ID: m.ID}))
	assert.Equal(t, model.ActionDelete, notifier.last().Action)
	assert.True(t, errors.Is(svc.Music.Delete(ctx, model.DeleteMusicRequest{ID: m.ID}), apperr.ErrNotFound))
}
