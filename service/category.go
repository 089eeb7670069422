package service

import (
	"context"
	"strings"

	"zencms/cache"
	"zencms/core/apperr"
	"zencms/core/ordering"
	"zencms/logger"
	"zencms/model"
	"zencms/repository"
)

// CategoryService 分类管理
type CategoryService struct {
	repo     repository.CategoryRepository
	music    repository.MusicRepository
	engine   *ordering.Engine
	cache    *cache.CategoryCache
	notifier Notifier
	validate *Validator
}

// DeleteCategoryResult 删除结果
type DeleteCategoryResult struct {
	Deleted    []string `json:"deleted"`
	Reassigned int64    `json:"reassigned"`
}

// List 返回全部分类，由调用方分组排序
func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		logger.Warn("读取分类缓存失败", logger.ErrorField(err))
	} else if ok {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list categories")
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	if err := s.cache.Set(ctx, categories); err != nil {
		logger.Warn("写入分类缓存失败", logger.ErrorField(err))
	}
	return categories, nil
}

// requireRootParent 检查 parentID 指向一个存在的一级分类
func (s *CategoryService) requireRootParent(ctx context.Context, parentID string) error {
	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return apperr.Internal(err, "failed to load parent category")
	}
	if parent == nil {
		return apperr.Validation("parent category %s does not exist", parentID)
	}
	if !parent.IsRoot() {
		return apperr.Validation("parent category %s is not a root category", parentID)
	}
	return nil
}

// Add 新增分类
func (s *CategoryService) Add(ctx context.Context, req model.AddCategoryRequest) (*model.Category, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		if err := s.requireRootParent(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		if req.IconURL != "" {
			return nil, apperr.Validation("iconUrl is only allowed on root categories")
		}
		pid := *req.ParentID
		parentID = &pid
	}

	category := model.NewCategory(name, req.Order, parentID, req.IconURL)
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, apperr.Internal(err, "failed to create category")
	}

	s.changed(ctx, model.ActionAdd, category.ID)
	logger.Info("分类已创建",
		logger.String("id", category.ID),
		logger.String("name", category.Name),
		logger.Bool("root", category.IsRoot()))
	return category, nil
}

// Update 部分更新分类
func (s *CategoryService) Update(ctx context.Context, req model.UpdateCategoryRequest) (*model.Category, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	category, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load category")
	}
	if category == nil {
		return nil, apperr.NotFound("category %s not found", req.ID)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		category.Name = name
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	if req.ParentID != nil {
		newParent := *req.ParentID
		switch {
		case newParent == "":
			category.ParentID = nil
		case newParent == category.ID:
			return nil, apperr.Validation("category cannot be its own parent")
		default:
			if err := s.requireRootParent(ctx, newParent); err != nil {
				return nil, err
			}
			if category.IsRoot() {
				children, err := s.repo.ListChildren(ctx, category.ID)
				if err != nil {
					return nil, apperr.Internal(err, "failed to load child categories")
				}
				if len(children) > 0 {
					return nil, apperr.Validation("category %s has children and cannot become a child category", category.ID)
				}
			}
			category.ParentID = &newParent
		}
	}

	if req.IconURL != nil {
		if *req.IconURL != "" && !category.IsRoot() {
			return nil, apperr.Validation("iconUrl is only allowed on root categories")
		}
		category.IconURL = *req.IconURL
	} else if !category.IsRoot() {
		// 一级分类降为二级分类时丢弃图标
		category.IconURL = ""
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, apperr.Internal(err, "failed to update category")
	}
	s.changed(ctx, model.ActionUpdate, category.ID)
	return category, nil
}

// Delete 删除分类；一级分类连同子分类一起删除。
// 仍有音乐引用时必须通过 ReassignTo 指定迁移目标。
func (s *CategoryService) Delete(ctx context.Context, req model.DeleteCategoryRequest) (*DeleteCategoryResult, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	category, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load category")
	}
	if category == nil {
		return nil, apperr.NotFound("category %s not found", req.ID)
	}

	affected := []string{category.ID}
	if category.IsRoot() {
		children, err := s.repo.ListChildren(ctx, category.ID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load child categories")
		}
		for _, c := range children {
			affected = append(affected, c.ID)
		}
	}

	referenced, err := s.music.CountByCategories(ctx, affected)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count music in category")
	}

	result := &DeleteCategoryResult{}
	if referenced > 0 {
		if req.ReassignTo == "" {
			return nil, apperr.Conflict("category %s is still used by %d music records, set reassignTo to move them", category.ID, referenced)
		}
		for _, id := range affected {
			if id == req.ReassignTo {
				return nil, apperr.Validation("reassignTo must not be a category that is being deleted")
			}
		}
		target, err := s.repo.GetByID(ctx, req.ReassignTo)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load target category")
		}
		if target == nil {
			return nil, apperr.Validation("reassignTo category %s does not exist", req.ReassignTo)
		}

		moved, err := s.music.ReassignCategory(ctx, affected, target.ID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to reassign music")
		}
		if _, err := s.engine.BackfillCategory(ctx, target.ID); err != nil {
			return nil, apperr.Internal(err, "failed to order reassigned music")
		}
		result.Reassigned = moved
		s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionMusic, model.ActionUpdate))
	}

	deleted, err := s.repo.DeleteTree(ctx, category.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to delete category")
	}
	result.Deleted = deleted

	s.changed(ctx, model.ActionDelete, deleted...)
	logger.Info("分类已删除",
		logger.Strings("ids", deleted),
		logger.Int64("reassigned", result.Reassigned))
	return result, nil
}

func (s *CategoryService) changed(ctx context.Context, action string, ids ...string) {
	s.cache.Invalidate(ctx)
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionCategories, action, ids...))
}
