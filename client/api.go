package client

import (
	"context"

	"zencms/core/ordering"
	"zencms/model"
)

// DeleteCategoryResult 删除分类的结果
type DeleteCategoryResult struct {
	Deleted    []string `json:"deleted"`
	Reassigned int64    `json:"reassigned"`
}

// MusicPage 音乐列表
type MusicPage struct {
	Data      []*model.Music
	Total     int64
	NeedsInit bool
}

// Page 素材分页结果
type Page[T any] struct {
	Data  []T
	Total int64
}

func total(meta *Meta) int64 {
	if meta == nil || meta.Total == nil {
		return 0
	}
	return *meta.Total
}

// CategoryAPI categoryManager 的动作
type CategoryAPI struct{ c *Client }

// Categories 分类接口
func (c *Client) Categories() *CategoryAPI { return &CategoryAPI{c: c} }

// List 获取全部分类（平铺列表）
func (a *CategoryAPI) List(ctx context.Context) ([]*model.Category, error) {
	var out []*model.Category
	_, err := a.c.Invoke(ctx, model.ListCategoriesRequest{}, &out)
	return out, err
}

// Add 新增分类
func (a *CategoryAPI) Add(ctx context.Context, req model.AddCategoryRequest) (*model.Category, error) {
	var out model.Category
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update 更新分类，未设置的字段保持不变
func (a *CategoryAPI) Update(ctx context.Context, req model.UpdateCategoryRequest) (*model.Category, error) {
	var out model.Category
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 删除分类；仍有音乐引用时需要设置 ReassignTo
func (a *CategoryAPI) Delete(ctx context.Context, req model.DeleteCategoryRequest) (*DeleteCategoryResult, error) {
	var out DeleteCategoryResult
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MusicAPI musicManager 的动作
type MusicAPI struct{ c *Client }

// Music 音乐接口
func (c *Client) Music() *MusicAPI { return &MusicAPI{c: c} }

// List 分页获取音乐，按当前作用域的序号排序
func (a *MusicAPI) List(ctx context.Context, req model.ListMusicRequest) (*MusicPage, error) {
	var out []*model.Music
	meta, err := a.c.Invoke(ctx, req, &out)
	if err != nil {
		return nil, err
	}
	return &MusicPage{Data: out, Total: total(meta), NeedsInit: meta.NeedsInit}, nil
}

// Get 按 ID 获取音乐
func (a *MusicAPI) Get(ctx context.Context, id string) (*model.Music, error) {
	return a.one(ctx, model.GetMusicRequest{ID: id})
}

// Add 新增音乐，追加到全局和分类顺序末尾
func (a *MusicAPI) Add(ctx context.Context, req model.AddMusicRequest) (*model.Music, error) {
	return a.one(ctx, req)
}

// Update 更新音乐
func (a *MusicAPI) Update(ctx context.Context, req model.UpdateMusicRequest) (*model.Music, error) {
	return a.one(ctx, req)
}

// Delete 删除音乐
func (a *MusicAPI) Delete(ctx context.Context, id string) error {
	_, err := a.c.Invoke(ctx, model.DeleteMusicRequest{ID: id}, nil)
	return err
}

// IncrementPlayCount 播放次数加一
func (a *MusicAPI) IncrementPlayCount(ctx context.Context, id string) (*model.Music, error) {
	return a.one(ctx, model.IncrementPlayCountRequest{ID: id})
}

// UpdateOrder 把 id 拖到当前视图的 toIndex，categoryID 为空时是全局视图
func (a *MusicAPI) UpdateOrder(ctx context.Context, id string, toIndex int, categoryID string) ([]model.OrderUpdate, error) {
	return a.updates(ctx, model.UpdateOrderRequest{ID: id, ToIndex: toIndex, CategoryID: categoryID})
}

// BatchUpdateOrder 按 ids 的顺序重写序号
func (a *MusicAPI) BatchUpdateOrder(ctx context.Context, categoryID string, ids []string) ([]model.OrderUpdate, error) {
	return a.updates(ctx, model.BatchUpdateOrderRequest{CategoryID: categoryID, IDs: ids})
}

// ReorderCategory 重新编排分类内的序号
func (a *MusicAPI) ReorderCategory(ctx context.Context, categoryID string) ([]model.OrderUpdate, error) {
	return a.updates(ctx, model.ReorderCategoryRequest{CategoryID: categoryID})
}

// InitializeOrders 补齐缺失的序号，force 时全部按创建时间重排
func (a *MusicAPI) InitializeOrders(ctx context.Context, force bool) (*ordering.InitReport, error) {
	var out ordering.InitReport
	if _, err := a.c.Invoke(ctx, model.InitializeOrdersRequest{Force: force}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *MusicAPI) one(ctx context.Context, req model.ActionRequest) (*model.Music, error) {
	var out model.Music
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *MusicAPI) updates(ctx context.Context, req model.ActionRequest) ([]model.OrderUpdate, error) {
	var out []model.OrderUpdate
	_, err := a.c.Invoke(ctx, req, &out)
	return out, err
}

// ImageAPI imageLibrary 的动作
type ImageAPI struct{ c *Client }

// Images 图片接口
func (c *Client) Images() *ImageAPI { return &ImageAPI{c: c} }

// List 分页获取图片
func (a *ImageAPI) List(ctx context.Context, limit, skip int) (*Page[*model.Image], error) {
	var out []*model.Image
	meta, err := a.c.Invoke(ctx, model.ListImagesRequest{Limit: limit, Skip: skip}, &out)
	if err != nil {
		return nil, err
	}
	return &Page[*model.Image]{Data: out, Total: total(meta)}, nil
}

// Add 登记图片
func (a *ImageAPI) Add(ctx context.Context, req model.AddImageRequest) (*model.Image, error) {
	var out model.Image
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update 更新图片信息
func (a *ImageAPI) Update(ctx context.Context, req model.UpdateImageRequest) (*model.Image, error) {
	var out model.Image
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 删除图片记录
func (a *ImageAPI) Delete(ctx context.Context, id string) error {
	_, err := a.c.Invoke(ctx, model.DeleteImageRequest{ID: id}, nil)
	return err
}

// AudioAPI audioManager 的动作
type AudioAPI struct{ c *Client }

// Audios 音频接口
func (c *Client) Audios() *AudioAPI { return &AudioAPI{c: c} }

// List 分页获取音频
func (a *AudioAPI) List(ctx context.Context, limit, skip int) (*Page[*model.Audio], error) {
	var out []*model.Audio
	meta, err := a.c.Invoke(ctx, model.ListAudiosRequest{Limit: limit, Skip: skip}, &out)
	if err != nil {
		return nil, err
	}
	return &Page[*model.Audio]{Data: out, Total: total(meta)}, nil
}

// Get 按 ID 获取音频
func (a *AudioAPI) Get(ctx context.Context, id string) (*model.Audio, error) {
	var out model.Audio
	if _, err := a.c.Invoke(ctx, model.GetAudioRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save 没有 ID 时新增，有 ID 时更新
func (a *AudioAPI) Save(ctx context.Context, audio *model.Audio) (*model.Audio, error) {
	var req model.ActionRequest
	if audio.ID == "" {
		req = model.AddAudioRequest{
			Name:     audio.Name,
			URL:      audio.URL,
			Type:     audio.Type,
			Size:     audio.Size,
			Duration: audio.Duration,
		}
	} else {
		req = model.UpdateAudioRequest{
			ID:       audio.ID,
			Name:     &audio.Name,
			URL:      &audio.URL,
			Type:     &audio.Type,
			Duration: &audio.Duration,
		}
	}

	var out model.Audio
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove 删除音频记录
func (a *AudioAPI) Remove(ctx context.Context, id string) error {
	_, err := a.c.Invoke(ctx, model.DeleteAudioRequest{ID: id}, nil)
	return err
}

// TitleAPI titleManager 的动作
type TitleAPI struct{ c *Client }

// Titles 标题接口
func (c *Client) Titles() *TitleAPI { return &TitleAPI{c: c} }

// List 获取全部时段标题
func (a *TitleAPI) List(ctx context.Context) ([]*model.Title, error) {
	var out []*model.Title
	_, err := a.c.Invoke(ctx, model.ListTitlesRequest{}, &out)
	return out, err
}

// Add 新增时段标题
func (a *TitleAPI) Add(ctx context.Context, req model.AddTitleRequest) (*model.Title, error) {
	var out model.Title
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update 更新时段标题
func (a *TitleAPI) Update(ctx context.Context, req model.UpdateTitleRequest) (*model.Title, error) {
	var out model.Title
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 删除时段标题
func (a *TitleAPI) Delete(ctx context.Context, id string) error {
	_, err := a.c.Invoke(ctx, model.DeleteTitleRequest{ID: id}, nil)
	return err
}

// Current 返回 at（HH:mm，为空时取服务器时间）对应的标题，没有匹配时为 nil
func (a *TitleAPI) Current(ctx context.Context, at string) (*model.Title, error) {
	var out *model.Title
	_, err := a.c.Invoke(ctx, model.CurrentTitleRequest{At: at}, &out)
	return out, err
}

// StatisticsAPI statistics 函数
type StatisticsAPI struct{ c *Client }

// Statistics 统计接口
func (c *Client) Statistics() *StatisticsAPI { return &StatisticsAPI{c: c} }

// Get 获取仪表盘统计
func (a *StatisticsAPI) Get(ctx context.Context) (*model.Statistics, error) {
	var out model.Statistics
	if _, err := a.c.Invoke(ctx, model.StatisticsRequest{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HomepageAPI homepageConfig 的动作
type HomepageAPI struct{ c *Client }

// Homepage 首页配置接口
func (c *Client) Homepage() *HomepageAPI { return &HomepageAPI{c: c} }

// Get 获取首页配置，推荐音频已展开
func (a *HomepageAPI) Get(ctx context.Context) (*model.Homepage, error) {
	return a.call(ctx, model.GetHomepageRequest{})
}

// Update 更新首页配置，未设置的字段保持不变
func (a *HomepageAPI) Update(ctx context.Context, req model.UpdateHomepageRequest) (*model.Homepage, error) {
	return a.call(ctx, req)
}

func (a *HomepageAPI) call(ctx context.Context, req model.ActionRequest) (*model.Homepage, error) {
	var out model.Homepage
	if _, err := a.c.Invoke(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
