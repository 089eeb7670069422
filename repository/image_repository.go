package repository

import (
	"context"

	"zencms/model"

	"gorm.io/gorm"
)

// ImageRepository 图片素材数据访问接口
type ImageRepository interface {
	List(ctx context.Context, page model.Page) ([]*model.Image, int64, error)
	GetByID(ctx context.Context, id string) (*model.Image, error)
	Create(ctx context.Context, image *model.Image) error
	Update(ctx context.Context, image *model.Image) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type gormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository 创建 GORM 图片仓库
func NewGormImageRepository(db *gorm.DB) ImageRepository {
	return &gormImageRepository{db: db}
}

// List 按创建时间倒序分页列出图片
func (r *gormImageRepository) List(ctx context.Context, page model.Page) ([]*model.Image, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Image{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var images []*model.Image
	q := r.db.WithContext(ctx).Order("create_time DESC")
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Skip > 0 {
		q = q.Offset(page.Skip)
	}
	if err := q.Find(&images).Error; err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

func (r *gormImageRepository) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var image model.Image
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *gormImageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *gormImageRepository) Update(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Save(image).Error
}

func (r *gormImageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{}).Error
}

func (r *gormImageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Image{}).Count(&count).Error
	return count, err
}
