package repository

import (
	"context"

	"zencms/model"

	"gorm.io/gorm"
)

// AudioRepository 音频素材数据访问接口
type AudioRepository interface {
	List(ctx context.Context, page model.Page) ([]*model.Audio, int64, error)
	GetByID(ctx context.Context, id string) (*model.Audio, error)
	// GetByIDs 只返回存在的记录，顺序不保证
	GetByIDs(ctx context.Context, ids []string) ([]*model.Audio, error)
	Create(ctx context.Context, audio *model.Audio) error
	Update(ctx context.Context, audio *model.Audio) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type gormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository 创建 GORM 音频仓库
func NewGormAudioRepository(db *gorm.DB) AudioRepository {
	return &gormAudioRepository{db: db}
}

// List 按创建时间倒序分页列出音频
func (r *gormAudioRepository) List(ctx context.Context, page model.Page) ([]*model.Audio, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Audio{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var audios []*model.Audio
	q := r.db.WithContext(ctx).Order("create_time DESC")
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Skip > 0 {
		q = q.Offset(page.Skip)
	}
	if err := q.Find(&audios).Error; err != nil {
		return nil, 0, err
	}
	return audios, total, nil
}

func (r *gormAudioRepository) GetByID(ctx context.Context, id string) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&audio).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

func (r *gormAudioRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Audio, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var audios []*model.Audio
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&audios).Error; err != nil {
		return nil, err
	}
	return audios, nil
}

func (r *gormAudioRepository) Create(ctx context.Context, audio *model.Audio) error {
	return r.db.WithContext(ctx).Create(audio).Error
}

func (r *gormAudioRepository) Update(ctx context.Context, audio *model.Audio) error {
	return r.db.WithContext(ctx).Save(audio).Error
}

func (r *gormAudioRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Audio{}).Error
}

func (r *gormAudioRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Audio{}).Count(&count).Error
	return count, err
}
