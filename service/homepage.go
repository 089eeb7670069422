package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"
	"zencms/repository"
)

// HomepageService 小程序首页配置
type HomepageService struct {
	repo     repository.HomepageRepository
	audios   repository.AudioRepository
	notifier Notifier
	validate *Validator
	now      func() time.Time
}

// Get 返回首页配置；推荐音频按保存的顺序展开，已删除的音频跳过
func (s *HomepageService) Get(ctx context.Context) (*model.Homepage, error) {
	config, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load homepage config")
	}
	if config == nil {
		config = &model.HomepageConfig{}
	}
	return s.expand(ctx, config)
}

// Update 部分更新首页配置，推荐音频必须都存在
func (s *HomepageService) Update(ctx context.Context, req model.UpdateHomepageRequest) (*model.Homepage, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	config, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load homepage config")
	}
	if config == nil {
		config = &model.HomepageConfig{ID: model.HomepageConfigID}
	}

	if req.Title != nil {
		config.Title = strings.TrimSpace(*req.Title)
	}
	if req.Subtitle != nil {
		config.Subtitle = strings.TrimSpace(*req.Subtitle)
	}
	if req.RecommendedAudioIDs != nil {
		if err := s.requireAudios(ctx, req.RecommendedAudioIDs); err != nil {
			return nil, err
		}
		config.RecommendedAudioIDs = append([]string{}, req.RecommendedAudioIDs...)
	}
	config.UpdateTime = s.now()

	if err := s.repo.Save(ctx, config); err != nil {
		return nil, apperr.Internal(err, "failed to save homepage config")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionHomepage, model.ActionUpdate))
	logger.Info("首页配置已更新",
		logger.String("title", config.Title),
		logger.Int("recommended", len(config.RecommendedAudioIDs)))
	return s.expand(ctx, config)
}

func (s *HomepageService) requireAudios(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.audios.GetByIDs(ctx, ids)
	if err != nil {
		return apperr.Internal(err, "failed to load recommended audios")
	}
	if len(found) == len(ids) {
		return nil
	}
	exists := make(map[string]bool, len(found))
	for _, a := range found {
		exists[a.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return apperr.Validation("recommended audios not found: %s", strings.Join(missing, ", "))
}

func (s *HomepageService) expand(ctx context.Context, config *model.HomepageConfig) (*model.Homepage, error) {
	view := &model.Homepage{
		Title:             config.Title,
		Subtitle:          config.Subtitle,
		RecommendedAudios: []*model.Audio{},
		UpdateTime:        config.UpdateTime,
	}
	if len(config.RecommendedAudioIDs) == 0 {
		return view, nil
	}

	found, err := s.audios.GetByIDs(ctx, config.RecommendedAudioIDs)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load recommended audios")
	}
	byID := make(map[string]*model.Audio, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	for _, id := range config.RecommendedAudioIDs {
		if a, ok := byID[id]; ok {
			view.RecommendedAudios = append(view.RecommendedAudios, a)
		}
	}
	return view, nil
}
