package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/model"
)

var base = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

func music(id, category string, minute int, global, cat *int) *model.Music {
	return &model.Music{
		ID:            id,
		Name:          id,
		CategoryID:    category,
		CreateTime:    base.Add(time.Duration(minute) * time.Minute),
		GlobalOrder:   global,
		CategoryOrder: cat,
	}
}

func TestSortOrderedBeforeUnordered(t *testing.T) {
	records := []*model.Music{
		music("late-null", "c", 3, nil, nil),
		music("b", "c", 0, intp(20), nil),
		music("early-null", "c", 1, nil, nil),
		music("a", "c", 5, intp(10), nil),
	}
	sorted := Sort(records, model.ScopeGlobal)
	assert.Equal(t, []string{"a", "b", "early-null", "late-null"}, IDs(sorted))
	// 入参不被修改
	assert.Equal(t, "late-null", records[0].ID)
}

func TestSortTieBreaksOnCreationThenID(t *testing.T) {
	records := []*model.Music{
		music("y", "c", 0, intp(10), nil),
		music("x", "c", 0, intp(10), nil),
		music("w", "c", -1, intp(10), nil),
	}
	assert.Equal(t, []string{"w", "x", "y"}, IDs(Sort(records, model.ScopeGlobal)))
}

func TestNeedsInitializationPerScope(t *testing.T) {
	records := []*model.Music{
		music("a", "c", 0, intp(10), nil),
		music("b", "c", 1, intp(20), intp(10)),
	}
	assert.False(t, NeedsInitialization(records, model.ScopeGlobal))
	assert.True(t, NeedsInitialization(records, model.ScopeCategory))
	assert.False(t, NeedsInitialization(nil, model.ScopeGlobal))
}

func TestRenumber(t *testing.T) {
	assert.Equal(t, []model.OrderUpdate{
		{ID: "c", Order: 10}, {ID: "a", Order: 20}, {ID: "b", Order: 30},
	}, Renumber([]string{"c", "a", "b"}))
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to first", 2, 0, []string{"c", "a", "b"}},
		{"first to last", 0, 2, []string{"b", "c", "a"}},
		{"same position", 1, 1, []string{"a", "b", "c"}},
		{"beyond end clamps", 0, 99, []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Move([]string{"a", "b", "c"}, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Move([]string{"a"}, 1, 0)
	assert.Error(t, err)
	_, err = Move([]string{"a"}, 0, -1)
	assert.Error(t, err)
}

func TestBackfillKeepsExistingOrders(t *testing.T) {
	records := []*model.Music{
		music("a", "c", 0, intp(30), nil),
		music("b", "c", 2, nil, nil),
		music("c", "c", 1, nil, nil),
		music("d", "c", 3, intp(10), nil),
	}
	updates := Backfill(records, model.ScopeGlobal)
	assert.Equal(t, []model.OrderUpdate{{ID: "c", Order: 40}, {ID: "b", Order: 50}}, updates)

	Apply(records, model.ScopeGlobal, updates)
	assert.Empty(t, Backfill(records, model.ScopeGlobal))
}

func TestBackfillRepairsDuplicates(t *testing.T) {
	records := []*model.Music{
		music("a", "c", 0, intp(10), nil),
		music("b", "c", 1, intp(10), nil),
		music("c", "c", 2, nil, nil),
	}
	assert.Equal(t, []model.OrderUpdate{
		{ID: "a", Order: 10}, {ID: "b", Order: 20}, {ID: "c", Order: 30},
	}, Backfill(records, model.ScopeGlobal))
}

func TestReassignIgnoresExistingOrders(t *testing.T) {
	records := []*model.Music{
		music("z", "c", 2, intp(10), nil),
		music("x", "c", 0, intp(30), nil),
		music("y", "c", 1, nil, nil),
	}
	assert.Equal(t, []model.OrderUpdate{
		{ID: "x", Order: 10}, {ID: "y", Order: 20}, {ID: "z", Order: 30},
	}, Reassign(records))
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, model.ScopeGlobal, ScopeFor(""))
	assert.Equal(t, model.ScopeCategory, ScopeFor("c1"))
}
