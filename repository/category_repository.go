package repository

import (
	"context"
	"time"

	"zencms/model"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	List(ctx context.Context) ([]*model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	// DeleteTree 删除分类及其子分类，返回被删除的分类 ID
	DeleteTree(ctx context.Context, id string) ([]string, error)
	ListChildren(ctx context.Context, parentID string) ([]*model.Category, error)
	Count(ctx context.Context) (int64, error)
}

// gormCategoryRepository GORM 实现
type gormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository 创建 GORM 分类仓库
func NewGormCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

// List 获取全部分类
func (r *gormCategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("create_time ASC").
		Find(&categories).Error
	return categories, err
}

// GetByID 根据ID获取分类
func (r *gormCategoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// Create 创建分类
func (r *gormCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update 更新分类
func (r *gormCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	category.UpdateTime = time.Now()
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteTree 在一个事务中删除分类和它的子分类
func (r *gormCategoryRepository) DeleteTree(ctx context.Context, id string) ([]string, error) {
	var deleted []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var childIDs []string
		if err := tx.Model(&model.Category{}).
			Where("parent_id = ?", id).
			Pluck("id", &childIDs).Error; err != nil {
			return err
		}

		ids := append([]string{id}, childIDs...)
		if err := tx.Where("id IN ?", ids).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		deleted = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ListChildren 获取一级分类下的子分类
func (r *gormCategoryRepository) ListChildren(ctx context.Context, parentID string) ([]*model.Category, error) {
	var children []*model.Category
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC").
		Find(&children).Error
	return children, err
}

// Count 统计分类数量
func (r *gormCategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&count).Error
	return count, err
}
