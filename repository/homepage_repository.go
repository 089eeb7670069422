package repository

import (
	"context"

	"zencms/model"

	"gorm.io/gorm"
)

// HomepageRepository 首页配置数据访问接口，只有一行数据
type HomepageRepository interface {
	Get(ctx context.Context) (*model.HomepageConfig, error)
	Save(ctx context.Context, config *model.HomepageConfig) error
}

type gormHomepageRepository struct {
	db *gorm.DB
}

// NewGormHomepageRepository 创建 GORM 首页配置仓库
func NewGormHomepageRepository(db *gorm.DB) HomepageRepository {
	return &gormHomepageRepository{db: db}
}

// Get 没有保存过配置时返回 nil, nil
func (r *gormHomepageRepository) Get(ctx context.Context) (*model.HomepageConfig, error) {
	var config model.HomepageConfig
	err := r.db.WithContext(ctx).Where("id = ?", model.HomepageConfigID).First(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// Save 按主键插入或覆盖
func (r *gormHomepageRepository) Save(ctx context.Context, config *model.HomepageConfig) error {
	config.ID = model.HomepageConfigID
	return r.db.WithContext(ctx).Save(config).Error
}
