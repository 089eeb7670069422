// Package service 实现各云函数背后的业务逻辑：参数校验、仓库调用、
// 缓存失效和变更通知。
package service

import (
	"context"
	"time"

	"zencms/cache"
	"zencms/core/ordering"
	"zencms/model"
	"zencms/repository"
)

// Notifier 接收成功写入后的变更事件
type Notifier interface {
	Notify(ctx context.Context, evt model.ChangeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.ChangeEvent) {}

// Repositories 服务层依赖的全部仓库
type Repositories struct {
	Categories repository.CategoryRepository
	Music      repository.MusicRepository
	Images     repository.ImageRepository
	Audios     repository.AudioRepository
	Titles     repository.TitleRepository
	Homepage   repository.HomepageRepository
}

// MemoryRepositories 返回内存实现的仓库集合
func MemoryRepositories() Repositories {
	store := repository.NewMemoryStore()
	return Repositories{
		Categories: store.Categories(),
		Music:      store.Music(),
		Images:     store.Images(),
		Audios:     store.Audios(),
		Titles:     store.Titles(),
		Homepage:   store.Homepage(),
	}
}

// Options 可选依赖，零值可用
type Options struct {
	Notifier      Notifier
	CategoryCache *cache.CategoryCache
	TitleCache    *cache.TitleCache
	Validator     *Validator
	// Now 返回当前时间，测试中可替换
	Now func() time.Time
}

// Services 全部业务服务
type Services struct {
	Categories *CategoryService
	Music      *MusicService
	Images     *ImageService
	Audios     *AudioService
	Titles     *TitleService
	Stats      *StatsService
	Homepage   *HomepageService
}

// New 组装全部服务
func New(repos Repositories, opts Options) *Services {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Validator == nil {
		opts.Validator = DefaultValidator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	engine := ordering.NewEngine(repos.Music)

	return &Services{
		Categories: &CategoryService{
			repo:     repos.Categories,
			music:    repos.Music,
			engine:   engine,
			cache:    opts.CategoryCache,
			notifier: opts.Notifier,
			validate: opts.Validator,
		},
		Music: &MusicService{
			repo:       repos.Music,
			categories: repos.Categories,
			engine:     engine,
			notifier:   opts.Notifier,
			validate:   opts.Validator,
		},
		Images: &ImageService{
			repo:     repos.Images,
			notifier: opts.Notifier,
			validate: opts.Validator,
		},
		Audios: &AudioService{
			repo:     repos.Audios,
			notifier: opts.Notifier,
			validate: opts.Validator,
		},
		Titles: &TitleService{
			repo:     repos.Titles,
			cache:    opts.TitleCache,
			notifier: opts.Notifier,
			validate: opts.Validator,
			now:      opts.Now,
		},
		Stats: &StatsService{
			music:      repos.Music,
			categories: repos.Categories,
			images:     repos.Images,
			audios:     repos.Audios,
		},
		Homepage: &HomepageService{
			repo:     repos.Homepage,
			audios:   repos.Audios,
			notifier: opts.Notifier,
			validate: opts.Validator,
			now:      opts.Now,
		},
	}
}
