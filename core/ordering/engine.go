package ordering

import (
	"context"
	"sort"
	"strings"

	"zencms/core/apperr"
	"zencms/model"
)

// Store 是排序引擎需要的最小持久化接口
type Store interface {
	// ListMusic 按筛选条件返回记录，Limit 为 0 表示不分页
	ListMusic(ctx context.Context, filter model.MusicFilter) ([]*model.Music, int64, error)
	GetMusicByIDs(ctx context.Context, ids []string) ([]*model.Music, error)
	// BatchUpdateOrder 在同一个事务中只写 scope 对应的列
	BatchUpdateOrder(ctx context.Context, scope model.OrderScope, updates []model.OrderUpdate) error
	// MaxOrder 返回 scope 内当前最大序号，没有任何序号时 ok 为 false
	MaxOrder(ctx context.Context, scope model.OrderScope, categoryID string) (max int, ok bool, err error)
}

// InitReport 初始化结果
type InitReport struct {
	Force           bool `json:"force"`
	GlobalUpdated   int  `json:"globalUpdated"`
	CategoryUpdated int  `json:"categoryUpdated"`
	Categories      int  `json:"categories"`
}

// Engine 排序引擎
type Engine struct {
	store Store
}

// NewEngine 创建排序引擎
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// View 加载作用域内全部记录并按当前顺序排好
func (e *Engine) View(ctx context.Context, categoryID string) ([]*model.Music, model.OrderScope, error) {
	scope := ScopeFor(categoryID)
	records, _, err := e.store.ListMusic(ctx, model.MusicFilter{CategoryID: categoryID})
	if err != nil {
		return nil, scope, err
	}
	return Sort(records, scope), scope, nil
}

// NextOrder 返回在作用域末尾追加时应使用的序号
func (e *Engine) NextOrder(ctx context.Context, scope model.OrderScope, categoryID string) (int, error) {
	top, ok, err := e.store.MaxOrder(ctx, scope, categoryID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return model.OrderStep, nil
	}
	return top + model.OrderStep, nil
}

// BatchReorder 把 ids 作为作用域内的完整新顺序写入，
// categoryID 为空时写 globalOrder，否则写 categoryOrder
func (e *Engine) BatchReorder(ctx context.Context, categoryID string, ids []string) ([]model.OrderUpdate, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("ids must not be empty")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, apperr.Validation("ids must not contain empty values")
		}
		if seen[id] {
			return nil, apperr.Validation("duplicate id %q in ids", id)
		}
		seen[id] = true
	}

	records, err := e.store.GetMusicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(records) != len(ids) {
		found := make(map[string]bool, len(records))
		for _, m := range records {
			found[m.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, apperr.NotFound("music not found: %s", strings.Join(missing, ", "))
	}

	scope := ScopeFor(categoryID)
	if scope == model.ScopeCategory {
		for _, m := range records {
			if m.CategoryID != categoryID {
				return nil, apperr.Validation("music %s does not belong to category %s", m.ID, categoryID)
			}
		}
	}

	updates := Renumber(ids)
	if err := e.store.BatchUpdateOrder(ctx, scope, updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// UpdateOrder 把单条记录拖到作用域内 toIndex 位置，并重排整个作用域
func (e *Engine) UpdateOrder(ctx context.Context, id string, toIndex int, categoryID string) ([]model.OrderUpdate, error) {
	if toIndex < 0 {
		return nil, apperr.Validation("toIndex must not be negative")
	}
	view, scope, err := e.View(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	from := -1
	for i, m := range view {
		if m.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		if categoryID != "" {
			return nil, apperr.NotFound("music %s not found in category %s", id, categoryID)
		}
		return nil, apperr.NotFound("music %s not found", id)
	}

	ids, err := Move(IDs(view), from, toIndex)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	updates := Renumber(ids)
	if err := e.store.BatchUpdateOrder(ctx, scope, updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// InitializeOrders 为两套顺序补齐缺失的序号。
// force 为 false 时已有序号保持不变；为 true 时按创建时间全部重新编号。
func (e *Engine) InitializeOrders(ctx context.Context, force bool) (*InitReport, error) {
	all, _, err := e.store.ListMusic(ctx, model.MusicFilter{})
	if err != nil {
		return nil, err
	}
	report := &InitReport{Force: force}

	var global []model.OrderUpdate
	if force {
		global = Reassign(all)
	} else {
		global = Backfill(all, model.ScopeGlobal)
	}
	if len(global) > 0 {
		if err := e.store.BatchUpdateOrder(ctx, model.ScopeGlobal, global); err != nil {
			return nil, err
		}
	}
	report.GlobalUpdated = len(global)

	groups := GroupByCategory(all)
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var category []model.OrderUpdate
	for _, k := range keys {
		var updates []model.OrderUpdate
		if force {
			updates = Reassign(groups[k])
		} else {
			updates = Backfill(groups[k], model.ScopeCategory)
		}
		if len(updates) > 0 {
			report.Categories++
			category = append(category, updates...)
		}
	}
	if len(category) > 0 {
		if err := e.store.BatchUpdateOrder(ctx, model.ScopeCategory, category); err != nil {
			return nil, err
		}
	}
	report.CategoryUpdated = len(category)
	return report, nil
}

// ReorderCategory 按当前顺序把分类内序号重新规整为 10, 20, 30 ...
func (e *Engine) ReorderCategory(ctx context.Context, categoryID string) ([]model.OrderUpdate, error) {
	if categoryID == "" {
		return nil, apperr.Validation("categoryId is required")
	}
	view, _, err := e.View(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(view) == 0 {
		return nil, nil
	}
	updates := Renumber(IDs(view))
	if err := e.store.BatchUpdateOrder(ctx, model.ScopeCategory, updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// BackfillCategory 给分类内缺少 categoryOrder 的记录追加序号，
// 用于记录被整体迁入某个分类之后
func (e *Engine) BackfillCategory(ctx context.Context, categoryID string) ([]model.OrderUpdate, error) {
	records, _, err := e.store.ListMusic(ctx, model.MusicFilter{CategoryID: categoryID})
	if err != nil {
		return nil, err
	}
	updates := Backfill(records, model.ScopeCategory)
	if len(updates) == 0 {
		return nil, nil
	}
	if err := e.store.BatchUpdateOrder(ctx, model.ScopeCategory, updates); err != nil {
		return nil, err
	}
	return updates, nil
}
