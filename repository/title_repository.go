package repository

import (
	"context"

	"zencms/model"

	"gorm.io/gorm"
)

// TitleRepository 首页标题数据访问接口
type TitleRepository interface {
	List(ctx context.Context) ([]*model.Title, error)
	GetByID(ctx context.Context, id string) (*model.Title, error)
	Create(ctx context.Context, title *model.Title) error
	Update(ctx context.Context, title *model.Title) error
	Delete(ctx context.Context, id string) error
}

type gormTitleRepository struct {
	db *gorm.DB
}

// NewGormTitleRepository 创建 GORM 标题仓库
func NewGormTitleRepository(db *gorm.DB) TitleRepository {
	return &gormTitleRepository{db: db}
}

// List 按开始时间列出全部标题
func (r *gormTitleRepository) List(ctx context.Context) ([]*model.Title, error) {
	var titles []*model.Title
	err := r.db.WithContext(ctx).
		Order("start_time ASC").
		Order("create_time ASC").
		Find(&titles).Error
	return titles, err
}

func (r *gormTitleRepository) GetByID(ctx context.Context, id string) (*model.Title, error) {
	var title model.Title
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&title).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &title, nil
}

func (r *gormTitleRepository) Create(ctx context.Context, title *model.Title) error {
	return r.db.WithContext(ctx).Create(title).Error
}

func (r *gormTitleRepository) Update(ctx context.Context, title *model.Title) error {
	return r.db.WithContext(ctx).Save(title).Error
}

func (r *gormTitleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Title{}).Error
}
