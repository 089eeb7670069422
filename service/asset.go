package service

import (
	"context"
	"strings"

	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"
	"zencms/repository"
)

// ImageService 图片素材库
type ImageService struct {
	repo     repository.ImageRepository
	notifier Notifier
	validate *Validator
}

// ImagePage 图片分页结果
type ImagePage struct {
	Data  []*model.Image `json:"data"`
	Total int64          `json:"total"`
}

// List 按创建时间倒序分页
func (s *ImageService) List(ctx context.Context, req model.ListImagesRequest) (*ImagePage, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	list, total, err := s.repo.List(ctx, model.Page{Limit: req.Limit, Skip: req.Skip})
	if err != nil {
		return nil, apperr.Internal(err, "failed to list images")
	}
	if list == nil {
		list = []*model.Image{}
	}
	return &ImagePage{Data: list, Total: total}, nil
}

// Add 登记图片，未提供的各尺寸 URL 回退为原图
func (s *ImageService) Add(ctx context.Context, req model.AddImageRequest) (*model.Image, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	url := strings.TrimSpace(req.URL)
	if name == "" || url == "" {
		return nil, apperr.Validation("name and url are required")
	}

	image := model.NewImage(name, url)
	if req.LargeURL != "" {
		image.LargeURL = req.LargeURL
	}
	if req.ThumbnailURL != "" {
		image.ThumbnailURL = req.ThumbnailURL
	}
	if req.PlayURL != "" {
		image.PlayURL = req.PlayURL
	}
	image.Type = req.Type
	image.VideoURL = req.VideoURL
	image.AnimatedURL = req.AnimatedURL

	if err := s.repo.Create(ctx, image); err != nil {
		return nil, apperr.Internal(err, "failed to create image")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionImages, model.ActionAdd, image.ID))
	logger.Info("图片已登记", logger.String("id", image.ID), logger.String("url", image.URL))
	return image, nil
}

// Update 部分更新图片
func (s *ImageService) Update(ctx context.Context, req model.UpdateImageRequest) (*model.Image, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	image, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load image")
	}
	if image == nil {
		return nil, apperr.NotFound("image %s not found", req.ID)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		image.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		if strings.TrimSpace(*req.URL) == "" {
			return nil, apperr.Validation("url must not be empty")
		}
		image.URL = strings.TrimSpace(*req.URL)
	}
	setString(&image.LargeURL, req.LargeURL)
	setString(&image.ThumbnailURL, req.ThumbnailURL)
	setString(&image.PlayURL, req.PlayURL)
	setString(&image.Type, req.Type)
	setString(&image.VideoURL, req.VideoURL)
	setString(&image.AnimatedURL, req.AnimatedURL)

	if err := s.repo.Update(ctx, image); err != nil {
		return nil, apperr.Internal(err, "failed to update image")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionImages, model.ActionUpdate, image.ID))
	return image, nil
}

// Delete 删除图片记录，已复制到音乐或分类中的 URL 不受影响
func (s *ImageService) Delete(ctx context.Context, req model.DeleteImageRequest) error {
	if err := s.validate.Validate(req); err != nil {
		return err
	}
	image, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return apperr.Internal(err, "failed to load image")
	}
	if image == nil {
		return apperr.NotFound("image %s not found", req.ID)
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return apperr.Internal(err, "failed to delete image")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionImages, model.ActionDelete, req.ID))
	return nil
}

// AudioService 音频素材库
type AudioService struct {
	repo     repository.AudioRepository
	notifier Notifier
	validate *Validator
}

// AudioPage 音频分页结果
type AudioPage struct {
	Data  []*model.Audio `json:"data"`
	Total int64          `json:"total"`
}

// List 按创建时间倒序分页
func (s *AudioService) List(ctx context.Context, req model.ListAudiosRequest) (*AudioPage, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	list, total, err := s.repo.List(ctx, model.Page{Limit: req.Limit, Skip: req.Skip})
	if err != nil {
		return nil, apperr.Internal(err, "failed to list audios")
	}
	if list == nil {
		list = []*model.Audio{}
	}
	return &AudioPage{Data: list, Total: total}, nil
}

// Get 根据ID获取音频
func (s *AudioService) Get(ctx context.Context, req model.GetAudioRequest) (*model.Audio, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	return s.load(ctx, req.ID)
}

func (s *AudioService) load(ctx context.Context, id string) (*model.Audio, error) {
	audio, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load audio")
	}
	if audio == nil {
		return nil, apperr.NotFound("audio %s not found", id)
	}
	return audio, nil
}

// Add 登记音频
func (s *AudioService) Add(ctx context.Context, req model.AddAudioRequest) (*model.Audio, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	url := strings.TrimSpace(req.URL)
	if name == "" || url == "" {
		return nil, apperr.Validation("name and url are required")
	}

	audio := model.NewAudio(name, url)
	audio.Type = req.Type
	audio.Size = req.Size
	audio.Duration = req.Duration

	if err := s.repo.Create(ctx, audio); err != nil {
		return nil, apperr.Internal(err, "failed to create audio")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionAudios, model.ActionAdd, audio.ID))
	logger.Info("音频已登记",
		logger.String("id", audio.ID),
		logger.String("url", audio.URL),
		logger.Int64("size", audio.Size))
	return audio, nil
}

// Update 部分更新音频，大小由上传决定不可修改
func (s *AudioService) Update(ctx context.Context, req model.UpdateAudioRequest) (*model.Audio, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	audio, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		audio.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		if strings.TrimSpace(*req.URL) == "" {
			return nil, apperr.Validation("url must not be empty")
		}
		audio.URL = strings.TrimSpace(*req.URL)
	}
	setString(&audio.Type, req.Type)
	if req.Duration != nil {
		audio.Duration = *req.Duration
	}

	if err := s.repo.Update(ctx, audio); err != nil {
		return nil, apperr.Internal(err, "failed to update audio")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionAudios, model.ActionUpdate, audio.ID))
	return audio, nil
}

// Delete 删除音频记录
func (s *AudioService) Delete(ctx context.Context, req model.DeleteAudioRequest) error {
	if err := s.validate.Validate(req); err != nil {
		return err
	}
	if _, err := s.load(ctx, req.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return apperr.Internal(err, "failed to delete audio")
	}
	s.notifier.Notify(ctx, model.NewChangeEvent(model.CollectionAudios, model.ActionDelete, req.ID))
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
