package service

import (
	"context"
	"strings"
	"time"

	"zencms/cache"
	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"
	"zencms/repository"
)

// TitleService 首页时间段标题
type TitleService struct {
	repo     repository.TitleRepository
	cache    *cache.TitleCache
	notifier Notifier
	validate *Validator
	now      func() time.Time
}

// List 返回全部时间段标题
func (s *TitleService) List(ctx context.Context) ([]*model.Title, error) {
	titles, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list titles")
	}
	if titles == nil {
		titles = []*model.Title{}
	}
	return titles, nil
}

// Add 新增时间段标题
func (s *TitleService) Add(ctx context.Context, req model.AddTitleRequest) (*model.Title, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Title)
	if text == "" {
		return nil, apperr.Validation("title is required")
	}

	title := model.NewTitle(req.StartTime, req.EndTime, text, req.Subtitle)
	if err := s.repo.Create(ctx, title); err != nil {
		return nil, apperr.Internal(err, "failed to create title")
	}
	s.changed(ctx, model.ActionAdd, title.ID)
	logger.Info("标题已创建",
		logger.String("id", title.ID),
		logger.String("startTime", title.StartTime),
		logger.String("endTime", title.EndTime))
	return title, nil
}

// Update 部分更新时间段标题
func (s *TitleService) Update(ctx context.Context, req model.UpdateTitleRequest) (*model.Title, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	title, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	setString(&title.StartTime, req.StartTime)
	setString(&title.EndTime, req.EndTime)
	if req.Title != nil {
		text := strings.TrimSpace(*req.Title)
		if text == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		title.Title = text
	}
	setString(&title.Subtitle, req.Subtitle)

	if err := s.repo.Update(ctx, title); err != nil {
		return nil, apperr.Internal(err, "failed to update title")
	}
	s.changed(ctx, model.ActionUpdate, title.ID)
	return title, nil
}

// Delete 删除时间段标题
func (s *TitleService) Delete(ctx context.Context, req model.DeleteTitleRequest) error {
	if err := s.validate.Validate(req); err != nil {
		return err
	}
	if _, err := s.load(ctx, req.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return apperr.Internal(err, "failed to delete title")
	}
	s.changed(ctx, model.ActionDelete, req.ID)
	return nil
}

// Current 返回当前时刻应展示的标题，没有匹配时返回 nil
func (s *TitleService) Current(ctx context.Context, req model.CurrentTitleRequest) (*model.Title, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	minute := model.ClockOf(s.now())
	if req.At != "" {
		m, err := model.ParseClock(req.At)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		minute = m
	}

	if cached, ok, err := s.cache.GetCurrent(ctx, minute); err != nil {
		logger.Warn("读取标题缓存失败", logger.ErrorField(err))
	} else if ok {
		return cached, nil
	}

	titles, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list titles")
	}
	current := model.PickCurrentTitle(titles, minute)
	if err := s.cache.SetCurrent(ctx, minute, current); err != nil {
		logger.Warn("写入标题缓存失败", logger.ErrorField(err))
	}
	return current, nil
}

func (s *TitleService) load(ctx context.Context, id string) (*model.Title, error) {
	title, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load title")
	}
	if title == nil {
		return nil, apperr.NotFound("title %s not found", id)
	}
	return title, nil
}

func (s *TitleService) changed(ctx context.Context, action string, ids ...string) {
	s.cache.Invalidate(ctx)
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionTitles, action, ids...))
}
