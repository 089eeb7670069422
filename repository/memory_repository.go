package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"zencms/core/ordering"
	"zencms/model"
)

// MemoryStore 把全部集合保存在内存中，用于测试和 serve --memory 开发模式。
// 所有读写共用一把锁，返回给调用方的都是副本。
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[string]*model.Category
	music      map[string]*model.Music
	images     map[string]*model.Image
	audios     map[string]*model.Audio
	titles     map[string]*model.Title
	homepage   *model.HomepageConfig
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[string]*model.Category),
		music:      make(map[string]*model.Music),
		images:     make(map[string]*model.Image),
		audios:     make(map[string]*model.Audio),
		titles:     make(map[string]*model.Title),
	}
}

// Categories 返回分类仓库
func (s *MemoryStore) Categories() CategoryRepository { return &memoryCategoryRepository{s} }

// Music 返回音乐仓库
func (s *MemoryStore) Music() MusicRepository { return &memoryMusicRepository{s} }

// Images 返回图片仓库
func (s *MemoryStore) Images() ImageRepository { return &memoryImageRepository{s} }

// Audios 返回音频仓库
func (s *MemoryStore) Audios() AudioRepository { return &memoryAudioRepository{s} }

// Titles 返回标题仓库
func (s *MemoryStore) Titles() TitleRepository { return &memoryTitleRepository{s} }

// Homepage 返回首页配置仓库
func (s *MemoryStore) Homepage() HomepageRepository { return &memoryHomepageRepository{s} }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneCategory(c *model.Category) *model.Category {
	cp := *c
	cp.ParentID = cloneString(c.ParentID)
	return &cp
}

func cloneMusic(m *model.Music) *model.Music {
	cp := *m
	cp.GlobalOrder = cloneInt(m.GlobalOrder)
	cp.CategoryOrder = cloneInt(m.CategoryOrder)
	return &cp
}

func paginate(n, skip, limit int) (int, int) {
	if skip > n {
		skip = n
	}
	end := n
	if limit > 0 && skip+limit < n {
		end = skip + limit
	}
	return skip, end
}

// ========== 分类 ==========

type memoryCategoryRepository struct{ s *MemoryStore }

func (r *memoryCategoryRepository) List(_ context.Context) ([]*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		list = append(list, cloneCategory(c))
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		if !list[i].CreateTime.Equal(list[j].CreateTime) {
			return list[i].CreateTime.Before(list[j].CreateTime)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *memoryCategoryRepository) GetByID(_ context.Context, id string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return cloneCategory(c), nil
}

func (r *memoryCategoryRepository) Create(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.categories[category.ID]; exists {
		return fmt.Errorf("category %s already exists", category.ID)
	}
	r.s.categories[category.ID] = cloneCategory(category)
	return nil
}

func (r *memoryCategoryRepository) Update(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category.UpdateTime = time.Now()
	r.s.categories[category.ID] = cloneCategory(category)
	return nil
}

func (r *memoryCategoryRepository) DeleteTree(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []string{id}
	for _, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			ids = append(ids, c.ID)
		}
	}
	for _, cid := range ids {
		delete(r.s.categories, cid)
	}
	return ids, nil
}

func (r *memoryCategoryRepository) ListChildren(ctx context.Context, parentID string) ([]*model.Category, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var children []*model.Category
	for _, c := range all {
		if c.ParentID != nil && *c.ParentID == parentID {
			children = append(children, c)
		}
	}
	return children, nil
}

func (r *memoryCategoryRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.categories)), nil
}

// ========== 音乐 ==========

type memoryMusicRepository struct{ s *MemoryStore }

func (r *memoryMusicRepository) ListMusic(_ context.Context, filter model.MusicFilter) ([]*model.Music, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*model.Music
	for _, m := range r.s.music {
		if filter.CategoryID != "" && m.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		matched = append(matched, cloneMusic(m))
	}

	sorted := ordering.Sort(matched, filter.Scope())
	start, end := paginate(len(sorted), filter.Skip, filter.Limit)
	return sorted[start:end], int64(len(sorted)), nil
}

func (r *memoryMusicRepository) GetByID(_ context.Context, id string) (*model.Music, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.music[id]
	if !ok {
		return nil, nil
	}
	return cloneMusic(m), nil
}

func (r *memoryMusicRepository) GetMusicByIDs(_ context.Context, ids []string) ([]*model.Music, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*model.Music, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.s.music[id]; ok {
			list = append(list, cloneMusic(m))
		}
	}
	return list, nil
}

func (r *memoryMusicRepository) Create(_ context.Context, music *model.Music) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.music[music.ID]; exists {
		return fmt.Errorf("music %s already exists", music.ID)
	}
	r.s.music[music.ID] = cloneMusic(music)
	return nil
}

func (r *memoryMusicRepository) Update(_ context.Context, music *model.Music) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	music.UpdateTime = time.Now()
	r.s.music[music.ID] = cloneMusic(music)
	return nil
}

func (r *memoryMusicRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.music, id)
	return nil
}

func (r *memoryMusicRepository) BatchUpdateOrder(_ context.Context, scope model.OrderScope, updates []model.OrderUpdate) error {
	if !scope.Valid() {
		return fmt.Errorf("invalid order scope %q", scope)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range updates {
		if m, ok := r.s.music[u.ID]; ok {
			m.SetOrder(scope, u.Order)
		}
	}
	return nil
}

func (r *memoryMusicRepository) MaxOrder(_ context.Context, scope model.OrderScope, categoryID string) (int, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	top, ok := 0, false
	for _, m := range r.s.music {
		if scope == model.ScopeCategory && m.CategoryID != categoryID {
			continue
		}
		if o := m.OrderIn(scope); o != nil && (!ok || *o > top) {
			top, ok = *o, true
		}
	}
	return top, ok, nil
}

func (r *memoryMusicRepository) CountUnordered(_ context.Context, scope model.OrderScope, categoryID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.music {
		if scope == model.ScopeCategory && m.CategoryID != categoryID {
			continue
		}
		if ordering.NeedsInitialization([]*model.Music{m}, scope) {
			n++
		}
	}
	return n, nil
}

func (r *memoryMusicRepository) CountByCategories(_ context.Context, categoryIDs []string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	in := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		in[id] = true
	}
	var n int64
	for _, m := range r.s.music {
		if in[m.CategoryID] {
			n++
		}
	}
	return n, nil
}

func (r *memoryMusicRepository) ReassignCategory(_ context.Context, from []string, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	in := make(map[string]bool, len(from))
	for _, id := range from {
		in[id] = true
	}
	var n int64
	now := time.Now()
	for _, m := range r.s.music {
		if in[m.CategoryID] {
			m.CategoryID = to
			m.CategoryOrder = nil
			m.UpdateTime = now
			n++
		}
	}
	return n, nil
}

func (r *memoryMusicRepository) IncrementPlayCount(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.music[id]
	if !ok {
		return false, nil
	}
	m.PlayCount++
	return true, nil
}

func (r *memoryMusicRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.music)), nil
}

func (r *memoryMusicRepository) SumPlayCount(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for _, m := range r.s.music {
		total += m.PlayCount
	}
	return total, nil
}

func (r *memoryMusicRepository) TopPlayed(_ context.Context, limit int) ([]*model.Music, error) {
	r.s.mu.RLock()
	list := make([]*model.Music, 0, len(r.s.music))
	for _, m := range r.s.music {
		list = append(list, cloneMusic(m))
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].PlayCount != list[j].PlayCount {
			return list[i].PlayCount > list[j].PlayCount
		}
		return list[i].CreateTime.Before(list[j].CreateTime)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ========== 图片 ==========

type memoryImageRepository struct{ s *MemoryStore }

func (r *memoryImageRepository) List(_ context.Context, page model.Page) ([]*model.Image, int64, error) {
	r.s.mu.RLock()
	list := make([]*model.Image, 0, len(r.s.images))
	for _, img := range r.s.images {
		cp := *img
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreateTime.After(list[j].CreateTime)
	})
	start, end := paginate(len(list), page.Skip, page.Limit)
	return list[start:end], int64(len(list)), nil
}

func (r *memoryImageRepository) GetByID(_ context.Context, id string) (*model.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	img, ok := r.s.images[id]
	if !ok {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (r *memoryImageRepository) Create(_ context.Context, image *model.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *image
	r.s.images[image.ID] = &cp
	return nil
}

func (r *memoryImageRepository) Update(ctx context.Context, image *model.Image) error {
	return r.Create(ctx, image)
}

func (r *memoryImageRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.images, id)
	return nil
}

func (r *memoryImageRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.images)), nil
}

// ========== 音频 ==========

type memoryAudioRepository struct{ s *MemoryStore }

func (r *memoryAudioRepository) List(_ context.Context, page model.Page) ([]*model.Audio, int64, error) {
	r.s.mu.RLock()
	list := make([]*model.Audio, 0, len(r.s.audios))
	for _, a := range r.s.audios {
		cp := *a
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreateTime.After(list[j].CreateTime)
	})
	start, end := paginate(len(list), page.Skip, page.Limit)
	return list[start:end], int64(len(list)), nil
}

func (r *memoryAudioRepository) GetByID(_ context.Context, id string) (*model.Audio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.audios[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAudioRepository) GetByIDs(_ context.Context, ids []string) ([]*model.Audio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Audio
	for _, id := range ids {
		if a, ok := r.s.audios[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryAudioRepository) Create(_ context.Context, audio *model.Audio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *audio
	r.s.audios[audio.ID] = &cp
	return nil
}

func (r *memoryAudioRepository) Update(ctx context.Context, audio *model.Audio) error {
	return r.Create(ctx, audio)
}

func (r *memoryAudioRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.audios, id)
	return nil
}

func (r *memoryAudioRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.audios)), nil
}

// ========== 标题 ==========

type memoryTitleRepository struct{ s *MemoryStore }

func (r *memoryTitleRepository) List(_ context.Context) ([]*model.Title, error) {
	r.s.mu.RLock()
	list := make([]*model.Title, 0, len(r.s.titles))
	for _, t := range r.s.titles {
		cp := *t
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].StartTime != list[j].StartTime {
			return list[i].StartTime < list[j].StartTime
		}
		return list[i].CreateTime.Before(list[j].CreateTime)
	})
	return list, nil
}

func (r *memoryTitleRepository) GetByID(_ context.Context, id string) (*model.Title, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.titles[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memoryTitleRepository) Create(_ context.Context, title *model.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *title
	r.s.titles[title.ID] = &cp
	return nil
}

func (r *memoryTitleRepository) Update(ctx context.Context, title *model.Title) error {
	return r.Create(ctx, title)
}

func (r *memoryTitleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.titles, id)
	return nil
}

// ========== 首页配置 ==========

type memoryHomepageRepository struct{ s *MemoryStore }

func cloneHomepage(c *model.HomepageConfig) *model.HomepageConfig {
	cp := *c
	cp.RecommendedAudioIDs = append([]string(nil), c.RecommendedAudioIDs...)
	return &cp
}

func (r *memoryHomepageRepository) Get(_ context.Context) (*model.HomepageConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.homepage == nil {
		return nil, nil
	}
	return cloneHomepage(r.s.homepage), nil
}

func (r *memoryHomepageRepository) Save(_ context.Context, config *model.HomepageConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	config.ID = model.HomepageConfigID
	r.s.homepage = cloneHomepage(config)
	return nil
}
