package service

import (
	"context"
	"strings"

	"zencms/core/apperr"
	"zencms/core/ordering"
	"zencms/logger"
	"zencms/model"
	"zencms/repository"
)

// MusicService 音乐管理
type MusicService struct {
	repo       repository.MusicRepository
	categories repository.CategoryRepository
	engine     *ordering.Engine
	notifier   Notifier
	validate   *Validator
}

// MusicPage 列表结果
type MusicPage struct {
	Data  []*model.Music `json:"data"`
	Total int64          `json:"total"`
	// NeedsInit 当前作用域内存在缺少序号的记录
	NeedsInit bool `json:"needsInit"`
}

// List 按当前作用域的顺序列出音乐
func (s *MusicService) List(ctx context.Context, req model.ListMusicRequest) (*MusicPage, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	filter := model.MusicFilter{
		CategoryID: req.CategoryID,
		Search:     strings.TrimSpace(req.Search),
		Limit:      req.Limit,
		Skip:       req.Skip,
	}

	list, total, err := s.repo.ListMusic(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list music")
	}
	unordered, err := s.repo.CountUnordered(ctx, filter.Scope(), filter.CategoryID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to inspect music order")
	}
	if list == nil {
		list = []*model.Music{}
	}
	return &MusicPage{Data: list, Total: total, NeedsInit: unordered > 0}, nil
}

// Get 根据ID获取音乐
func (s *MusicService) Get(ctx context.Context, req model.GetMusicRequest) (*model.Music, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	return s.load(ctx, req.ID)
}

func (s *MusicService) load(ctx context.Context, id string) (*model.Music, error) {
	music, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load music")
	}
	if music == nil {
		return nil, apperr.NotFound("music %s not found", id)
	}
	return music, nil
}

func (s *MusicService) requireCategory(ctx context.Context, id string) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to load category")
	}
	if category == nil {
		return apperr.Validation("category %s does not exist", id)
	}
	return nil
}

// Add 新增音乐，两套顺序都追加到末尾
func (s *MusicService) Add(ctx context.Context, req model.AddMusicRequest) (*model.Music, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	audioURL := strings.TrimSpace(req.AudioURL)
	title := strings.TrimSpace(req.Title)
	switch {
	case name == "":
		return nil, apperr.Validation("name is required")
	case audioURL == "":
		return nil, apperr.Validation("audioUrl is required")
	case title == "":
		return nil, apperr.Validation("title is required")
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	music := model.NewMusic(name, audioURL, title, req.CategoryID)
	music.Subtitle = req.Subtitle
	music.BackgroundURL = req.BackgroundURL
	music.IconURL = req.IconURL
	music.ListImageURL = req.ListImageURL

	globalOrder, err := s.engine.NextOrder(ctx, model.ScopeGlobal, "")
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute global order")
	}
	categoryOrder, err := s.engine.NextOrder(ctx, model.ScopeCategory, req.CategoryID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute category order")
	}
	music.SetOrder(model.ScopeGlobal, globalOrder)
	music.SetOrder(model.ScopeCategory, categoryOrder)

	if err := s.repo.Create(ctx, music); err != nil {
		return nil, apperr.Internal(err, "failed to create music")
	}

	s.changed(ctx, model.ActionAdd, music.ID)
	logger.Info("音乐已创建",
		logger.String("id", music.ID),
		logger.String("name", music.Name),
		logger.String("categoryId", music.CategoryID))
	return music, nil
}

// Update 部分更新音乐；换分类时追加到新分类末尾
func (s *MusicService) Update(ctx context.Context, req model.UpdateMusicRequest) (*model.Music, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	music, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		music.Name = name
	}
	if req.AudioURL != nil {
		audioURL := strings.TrimSpace(*req.AudioURL)
		if audioURL == "" {
			return nil, apperr.Validation("audioUrl must not be empty")
		}
		music.AudioURL = audioURL
	}
	if req.Title != nil {
		music.Title = strings.TrimSpace(*req.Title)
	}
	if req.Subtitle != nil {
		music.Subtitle = *req.Subtitle
	}
	if req.BackgroundURL != nil {
		music.BackgroundURL = *req.BackgroundURL
	}
	if req.IconURL != nil {
		music.IconURL = *req.IconURL
	}
	if req.ListImageURL != nil {
		music.ListImageURL = *req.ListImageURL
	}

	if req.CategoryID != nil && *req.CategoryID != music.CategoryID {
		if *req.CategoryID == "" {
			return nil, apperr.Validation("categoryId must not be empty")
		}
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		next, err := s.engine.NextOrder(ctx, model.ScopeCategory, *req.CategoryID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to compute category order")
		}
		music.CategoryID = *req.CategoryID
		music.SetOrder(model.ScopeCategory, next)
	}

	if err := s.repo.Update(ctx, music); err != nil {
		return nil, apperr.Internal(err, "failed to update music")
	}
	s.changed(ctx, model.ActionUpdate, music.ID)
	return music, nil
}

// Delete 删除音乐，留下的序号空隙不影响排序
func (s *MusicService) Delete(ctx context.Context, req model.DeleteMusicRequest) error {
	if err := s.validate.Validate(req); err != nil {
		return err
	}
	if _, err := s.load(ctx, req.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return apperr.Internal(err, "failed to delete music")
	}
	s.changed(ctx, model.ActionDelete, req.ID)
	return nil
}

// UpdateOrder 拖拽单条记录
func (s *MusicService) UpdateOrder(ctx context.Context, req model.UpdateOrderRequest) ([]model.OrderUpdate, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	updates, err := s.engine.UpdateOrder(ctx, req.ID, req.ToIndex, req.CategoryID)
	if err != nil {
		return nil, orderingError(err, "failed to update order")
	}
	s.changed(ctx, model.ActionUpdateOrder, updatedIDs(updates)...)
	return updates, nil
}

// BatchUpdateOrder 按给定顺序重写作用域序号
func (s *MusicService) BatchUpdateOrder(ctx context.Context, req model.BatchUpdateOrderRequest) ([]model.OrderUpdate, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	updates, err := s.engine.BatchReorder(ctx, req.CategoryID, req.IDs)
	if err != nil {
		return nil, orderingError(err, "failed to write batch order")
	}
	logger.Info("批量更新排序",
		logger.String("scope", string(ordering.ScopeFor(req.CategoryID))),
		logger.String("categoryId", req.CategoryID),
		logger.Int("count", len(updates)))
	s.changed(ctx, model.ActionBatchUpdateOrder, req.IDs...)
	return updates, nil
}

// ReorderCategory 规整分类内序号
func (s *MusicService) ReorderCategory(ctx context.Context, req model.ReorderCategoryRequest) ([]model.OrderUpdate, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load category")
	}
	if category == nil {
		return nil, apperr.NotFound("category %s not found", req.CategoryID)
	}

	updates, err := s.engine.ReorderCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, orderingError(err, "failed to reorder category")
	}
	if updates == nil {
		updates = []model.OrderUpdate{}
	}
	s.changed(ctx, model.ActionReorderCategory, updatedIDs(updates)...)
	return updates, nil
}

// InitializeOrders 补齐或重建两套顺序
func (s *MusicService) InitializeOrders(ctx context.Context, req model.InitializeOrdersRequest) (*ordering.InitReport, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	report, err := s.engine.InitializeOrders(ctx, req.Force)
	if err != nil {
		return nil, orderingError(err, "failed to initialize orders")
	}
	logger.Info("排序初始化完成",
		logger.Bool("force", report.Force),
		logger.Int("globalUpdated", report.GlobalUpdated),
		logger.Int("categoryUpdated", report.CategoryUpdated),
		logger.Int("categories", report.Categories))
	if report.GlobalUpdated > 0 || report.CategoryUpdated > 0 {
		s.changed(ctx, model.ActionInitializeOrders)
	}
	return report, nil
}

// IncrementPlayCount 播放次数加一
func (s *MusicService) IncrementPlayCount(ctx context.Context, req model.IncrementPlayCountRequest) (*model.Music, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	found, err := s.repo.IncrementPlayCount(ctx, req.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to increment play count")
	}
	if !found {
		return nil, apperr.NotFound("music %s not found", req.ID)
	}
	return s.load(ctx, req.ID)
}

func (s *MusicService) changed(ctx context.Context, action string, ids ...string) {
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionMusic, action, ids...))
}

// orderingError 保留引擎返回的业务错误，其余视为内部错误
func orderingError(err error, message string) error {
	if apperr.CodeOf(err) != apperr.CodeInternal {
		return err
	}
	return apperr.Internal(err, message)
}

func updatedIDs(updates []model.OrderUpdate) []string {
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	return ids
}
