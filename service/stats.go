package service

import (
	"context"

	"zencms/core/apperr"
	"zencms/model"
	"zencms/repository"

	"golang.org/x/sync/errgroup"
)

// topMusicLimit 仪表盘展示的热门音乐数量
const topMusicLimit = 5

// StatsService 统计数据
type StatsService struct {
	music      repository.MusicRepository
	categories repository.CategoryRepository
	images     repository.ImageRepository
	audios     repository.AudioRepository
}

// Get 并发汇总各集合数量、总播放次数和热门音乐
func (s *StatsService) Get(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if stats.TotalMusic, err = s.music.Count(ctx); err != nil {
			return apperr.Internal(err, "failed to count music")
		}
		return nil
	})
	g.Go(func() (err error) {
		if stats.TotalPlays, err = s.music.SumPlayCount(ctx); err != nil {
			return apperr.Internal(err, "failed to sum play count")
		}
		return nil
	})
	g.Go(func() (err error) {
		if stats.TotalCategories, err = s.categories.Count(ctx); err != nil {
			return apperr.Internal(err, "failed to count categories")
		}
		return nil
	})
	g.Go(func() (err error) {
		if stats.TotalImages, err = s.images.Count(ctx); err != nil {
			return apperr.Internal(err, "failed to count images")
		}
		return nil
	})
	g.Go(func() (err error) {
		if stats.TotalAudios, err = s.audios.Count(ctx); err != nil {
			return apperr.Internal(err, "failed to count audios")
		}
		return nil
	})
	g.Go(func() (err error) {
		if stats.TopMusic, err = s.music.TopPlayed(ctx, topMusicLimit); err != nil {
			return apperr.Internal(err, "failed to load top music")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.TopMusic == nil {
		stats.TopMusic = []*model.Music{}
	}
	return stats, nil
}
