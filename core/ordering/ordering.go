// Package ordering 维护音乐记录上的两套独立顺序：全局顺序 (globalOrder)
// 和分类内顺序 (categoryOrder)。
//
// 所有写入都以 OrderStep 为间隔从 OrderStep 开始编号 (10, 20, 30 ...)。
// 一个作用域内只要有记录缺少序号就视为未初始化，由 NeedsInitialization 单独检测，
// 排序本身没有副作用。
package ordering

import (
	"fmt"
	"sort"

	"zencms/model"
)

// ScopeFor 有分类筛选时使用分类内顺序，否则使用全局顺序
func ScopeFor(categoryID string) model.OrderScope {
	if categoryID != "" {
		return model.ScopeCategory
	}
	return model.ScopeGlobal
}

// Less 比较两条记录在 scope 下的先后：有序号的在前，序号小的在前，
// 再按创建时间、ID
func Less(a, b *model.Music, scope model.OrderScope) bool {
	oa, ob := a.OrderIn(scope), b.OrderIn(scope)
	switch {
	case oa != nil && ob != nil && *oa != *ob:
		return *oa < *ob
	case oa != nil && ob == nil:
		return true
	case oa == nil && ob != nil:
		return false
	}
	return byCreation(a, b)
}

func byCreation(a, b *model.Music) bool {
	if !a.CreateTime.Equal(b.CreateTime) {
		return a.CreateTime.Before(b.CreateTime)
	}
	return a.ID < b.ID
}

// Sort 返回按 scope 排好序的新切片，不修改入参
func Sort(records []*model.Music, scope model.OrderScope) []*model.Music {
	sorted := make([]*model.Music, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j], scope)
	})
	return sorted
}

// NeedsInitialization 作用域内是否有记录缺少序号
func NeedsInitialization(records []*model.Music, scope model.OrderScope) bool {
	for _, m := range records {
		if m.OrderIn(scope) == nil {
			return true
		}
	}
	return false
}

// Renumber 按 ids 的顺序生成 (i+1)*OrderStep 的序号
func Renumber(ids []string) []model.OrderUpdate {
	updates := make([]model.OrderUpdate, len(ids))
	for i, id := range ids {
		updates[i] = model.OrderUpdate{ID: id, Order: (i + 1) * model.OrderStep}
	}
	return updates
}

// IDs 提取记录 ID
func IDs(records []*model.Music) []string {
	ids := make([]string, len(records))
	for i, m := range records {
		ids[i] = m.ID
	}
	return ids
}

// Move 把 from 位置的元素移到 to 位置，to 超出末尾时放到最后
func Move(ids []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(ids) {
		return nil, fmt.Errorf("source index %d out of range [0,%d)", from, len(ids))
	}
	if to < 0 {
		return nil, fmt.Errorf("target index %d is negative", to)
	}
	if to >= len(ids) {
		to = len(ids) - 1
	}

	moved := make([]string, 0, len(ids))
	moved = append(moved, ids[:from]...)
	moved = append(moved, ids[from+1:]...)

	out := make([]string, 0, len(ids))
	out = append(out, moved[:to]...)
	out = append(out, ids[from])
	out = append(out, moved[to:]...)
	return out, nil
}

// Backfill 只给缺少序号的记录分配序号：已有序号保持不变，缺失的按创建时间
// 追加到当前最大值之后。已有序号出现重复时，按当前顺序整体重排以恢复唯一性。
func Backfill(records []*model.Music, scope model.OrderScope) []model.OrderUpdate {
	sorted := Sort(records, scope)

	seen := make(map[int]bool, len(sorted))
	maxOrder := 0
	for _, m := range sorted {
		o := m.OrderIn(scope)
		if o == nil {
			continue
		}
		if seen[*o] {
			return Renumber(IDs(sorted))
		}
		seen[*o] = true
		if *o > maxOrder {
			maxOrder = *o
		}
	}

	var updates []model.OrderUpdate
	for _, m := range sorted {
		if m.OrderIn(scope) != nil {
			continue
		}
		maxOrder += model.OrderStep
		updates = append(updates, model.OrderUpdate{ID: m.ID, Order: maxOrder})
	}
	return updates
}

// Reassign 忽略已有序号，按创建时间重新编号全部记录
func Reassign(records []*model.Music) []model.OrderUpdate {
	sorted := make([]*model.Music, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return byCreation(sorted[i], sorted[j])
	})
	return Renumber(IDs(sorted))
}

// Apply 把 updates 写回内存中的记录，返回被修改的条数
func Apply(records []*model.Music, scope model.OrderScope, updates []model.OrderUpdate) int {
	byID := make(map[string]*model.Music, len(records))
	for _, m := range records {
		byID[m.ID] = m
	}
	n := 0
	for _, u := range updates {
		if m, ok := byID[u.ID]; ok {
			m.SetOrder(scope, u.Order)
			n++
		}
	}
	return n
}

// GroupByCategory 按分类分组
func GroupByCategory(records []*model.Music) map[string][]*model.Music {
	groups := make(map[string][]*model.Music)
	for _, m := range records {
		groups[m.CategoryID] = append(groups[m.CategoryID], m)
	}
	return groups
}
