package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"zencms/core/ordering"
	"zencms/model"

	"gorm.io/gorm"
)

// MusicRepository 音乐数据访问接口，同时满足排序引擎的 ordering.Store
type MusicRepository interface {
	ListMusic(ctx context.Context, filter model.MusicFilter) ([]*model.Music, int64, error)
	GetByID(ctx context.Context, id string) (*model.Music, error)
	GetMusicByIDs(ctx context.Context, ids []string) ([]*model.Music, error)
	Create(ctx context.Context, music *model.Music) error
	Update(ctx context.Context, music *model.Music) error
	Delete(ctx context.Context, id string) error

	// 排序
	BatchUpdateOrder(ctx context.Context, scope model.OrderScope, updates []model.OrderUpdate) error
	MaxOrder(ctx context.Context, scope model.OrderScope, categoryID string) (int, bool, error)
	// CountUnordered 统计作用域内缺少序号的记录数
	CountUnordered(ctx context.Context, scope model.OrderScope, categoryID string) (int64, error)

	// 分类迁移
	CountByCategories(ctx context.Context, categoryIDs []string) (int64, error)
	// ReassignCategory 把 from 中分类下的音乐移到 to，并清空它们的分类内序号
	ReassignCategory(ctx context.Context, from []string, to string) (int64, error)

	// 统计
	IncrementPlayCount(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	SumPlayCount(ctx context.Context) (int64, error)
	TopPlayed(ctx context.Context, limit int) ([]*model.Music, error)
}

var (
	_ ordering.Store = (*gormMusicRepository)(nil)
	_ ordering.Store = (*memoryMusicRepository)(nil)
)

// gormMusicRepository GORM 实现
type gormMusicRepository struct {
	db *gorm.DB
}

// NewGormMusicRepository 创建 GORM 音乐仓库
func NewGormMusicRepository(db *gorm.DB) MusicRepository {
	return &gormMusicRepository{db: db}
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *gormMusicRepository) filtered(ctx context.Context, filter model.MusicFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Music{})
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		q = q.Where("name LIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	return q
}

// ListMusic 按作用域顺序列出音乐：有序号的在前，再按创建时间
func (r *gormMusicRepository) ListMusic(ctx context.Context, filter model.MusicFilter) ([]*model.Music, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col := filter.Scope().Column()
	q := r.filtered(ctx, filter).
		Order(fmt.Sprintf("%s IS NULL, %s ASC", col, col)).
		Order("create_time ASC").
		Order("id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}

	var list []*model.Music
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetByID 根据ID获取音乐
func (r *gormMusicRepository) GetByID(ctx context.Context, id string) (*model.Music, error) {
	var music model.Music
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&music).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &music, nil
}

// GetMusicByIDs 批量获取音乐，不存在的 ID 直接忽略
func (r *gormMusicRepository) GetMusicByIDs(ctx context.Context, ids []string) ([]*model.Music, error) {
	var list []*model.Music
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

// Create 创建音乐
func (r *gormMusicRepository) Create(ctx context.Context, music *model.Music) error {
	return r.db.WithContext(ctx).Create(music).Error
}

// Update 更新音乐
func (r *gormMusicRepository) Update(ctx context.Context, music *model.Music) error {
	music.UpdateTime = time.Now()
	return r.db.WithContext(ctx).Save(music).Error
}

// Delete 删除音乐
func (r *gormMusicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Music{}).Error
}

// BatchUpdateOrder 在一个事务中写入一批序号，只修改 scope 对应的列
func (r *gormMusicRepository) BatchUpdateOrder(ctx context.Context, scope model.OrderScope, updates []model.OrderUpdate) error {
	if !scope.Valid() {
		return fmt.Errorf("invalid order scope %q", scope)
	}
	col := scope.Column()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&model.Music{}).
				Where("id = ?", u.ID).
				Update(col, u.Order).Error; err != nil {
				return fmt.Errorf("update %s of %s: %w", col, u.ID, err)
			}
		}
		return nil
	})
}

// MaxOrder 查询作用域内最大序号
func (r *gormMusicRepository) MaxOrder(ctx context.Context, scope model.OrderScope, categoryID string) (int, bool, error) {
	col := scope.Column()
	q := r.db.WithContext(ctx).Model(&model.Music{}).Select(fmt.Sprintf("MAX(%s)", col))
	if scope == model.ScopeCategory {
		q = q.Where("category_id = ?", categoryID)
	}

	var top sql.NullInt64
	if err := q.Row().Scan(&top); err != nil {
		return 0, false, err
	}
	if !top.Valid {
		return 0, false, nil
	}
	return int(top.Int64), true, nil
}

// CountUnordered 统计作用域内序号为空的记录
func (r *gormMusicRepository) CountUnordered(ctx context.Context, scope model.OrderScope, categoryID string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Music{}).Where(fmt.Sprintf("%s IS NULL", scope.Column()))
	if scope == model.ScopeCategory {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Count(&count).Error
	return count, err
}

// CountByCategories 统计属于这些分类的音乐数量
func (r *gormMusicRepository) CountByCategories(ctx context.Context, categoryIDs []string) (int64, error) {
	var count int64
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Music{}).
		Where("category_id IN ?", categoryIDs).
		Count(&count).Error
	return count, err
}

// ReassignCategory 把音乐迁移到新的分类
func (r *gormMusicRepository) ReassignCategory(ctx context.Context, from []string, to string) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&model.Music{}).
		Where("category_id IN ?", from).
		Updates(map[string]interface{}{
			"category_id":    to,
			"category_order": nil,
			"update_time":    time.Now(),
		})
	return result.RowsAffected, result.Error
}

// IncrementPlayCount 播放次数加一，记录不存在时返回 false
func (r *gormMusicRepository) IncrementPlayCount(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Music{}).
		Where("id = ?", id).
		UpdateColumn("play_count", gorm.Expr("play_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Count 统计音乐数量
func (r *gormMusicRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Music{}).Count(&count).Error
	return count, err
}

// SumPlayCount 统计总播放次数
func (r *gormMusicRepository) SumPlayCount(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.Music{}).
		Select("SUM(play_count)").
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// TopPlayed 播放次数最多的音乐
func (r *gormMusicRepository) TopPlayed(ctx context.Context, limit int) ([]*model.Music, error) {
	var list []*model.Music
	err := r.db.WithContext(ctx).
		Order("play_count DESC").
		Order("create_time ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
