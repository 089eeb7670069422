package model

// 每个函数的每个动作各有一个请求类型，服务端按 action 解码到对应类型，
// 未登记的 action 直接拒绝。

// ---------- categoryManager ----------

type ListCategoriesRequest struct{}

type AddCategoryRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Order    int     `json:"order"`
	ParentID *string `json:"parentId,omitempty"`
	IconURL  string  `json:"iconUrl,omitempty" validate:"omitempty,max=1024"`
}

// UpdateCategoryRequest 部分更新；ParentID 指向空字符串表示改为一级分类
type UpdateCategoryRequest struct {
	ID       string  `json:"id" validate:"required"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Order    *int    `json:"order,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
	IconURL  *string `json:"iconUrl,omitempty" validate:"omitempty,max=1024"`
}

// DeleteCategoryRequest ReassignTo 非空时，把引用被删分类的音乐迁移过去
type DeleteCategoryRequest struct {
	ID         string `json:"id" validate:"required"`
	ReassignTo string `json:"reassignTo,omitempty"`
}

func (ListCategoriesRequest) Function() string { return FuncCategory }
func (ListCategoriesRequest) Action() string   { return ActionGet }
func (AddCategoryRequest) Function() string    { return FuncCategory }
func (AddCategoryRequest) Action() string      { return ActionAdd }
func (UpdateCategoryRequest) Function() string { return FuncCategory }
func (UpdateCategoryRequest) Action() string   { return ActionUpdate }
func (DeleteCategoryRequest) Function() string { return FuncCategory }
func (DeleteCategoryRequest) Action() string   { return ActionDelete }

// ---------- musicManager ----------

type ListMusicRequest struct {
	CategoryID string `json:"categoryId,omitempty"`
	Search     string `json:"search,omitempty"`
	Limit      int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
	Skip       int    `json:"skip,omitempty" validate:"gte=0"`
}

type GetMusicRequest struct {
	ID string `json:"id" validate:"required"`
}

type AddMusicRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	AudioURL      string `json:"audioUrl" validate:"required,max=1024"`
	Title         string `json:"title" validate:"required,max=255"`
	Subtitle      string `json:"subtitle,omitempty" validate:"max=255"`
	BackgroundURL string `json:"backgroundUrl,omitempty" validate:"max=1024"`
	IconURL       string `json:"iconUrl,omitempty" validate:"max=1024"`
	ListImageURL  string `json:"listImageUrl,omitempty" validate:"max=1024"`
	CategoryID    string `json:"categoryId" validate:"required"`
}

type UpdateMusicRequest struct {
	ID            string  `json:"id" validate:"required"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=255"`
	AudioURL      *string `json:"audioUrl,omitempty" validate:"omitempty,max=1024"`
	Title         *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Subtitle      *string `json:"subtitle,omitempty" validate:"omitempty,max=255"`
	BackgroundURL *string `json:"backgroundUrl,omitempty" validate:"omitempty,max=1024"`
	IconURL       *string `json:"iconUrl,omitempty" validate:"omitempty,max=1024"`
	ListImageURL  *string `json:"listImageUrl,omitempty" validate:"omitempty,max=1024"`
	CategoryID    *string `json:"categoryId,omitempty"`
}

type DeleteMusicRequest struct {
	ID string `json:"id" validate:"required"`
}

// UpdateOrderRequest 拖拽：把 ID 移到当前视图的 ToIndex 位置
type UpdateOrderRequest struct {
	ID         string `json:"id" validate:"required"`
	ToIndex    int    `json:"toIndex" validate:"gte=0"`
	CategoryID string `json:"categoryId,omitempty"`
}

// BatchUpdateOrderRequest IDs 是当前作用域可见集合的新顺序
type BatchUpdateOrderRequest struct {
	CategoryID string   `json:"categoryId,omitempty"`
	IDs        []string `json:"ids" validate:"required,min=1,unique,dive,required"`
}

type ReorderCategoryRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
}

// InitializeOrdersRequest Force 为 true 时按创建时间重排全部记录，否则只补齐缺失的序号
type InitializeOrdersRequest struct {
	Force bool `json:"force,omitempty"`
}

type IncrementPlayCountRequest struct {
	ID string `json:"id" validate:"required"`
}

func (ListMusicRequest) Function() string          { return FuncMusic }
func (ListMusicRequest) Action() string            { return ActionGet }
func (GetMusicRequest) Function() string           { return FuncMusic }
func (GetMusicRequest) Action() string             { return ActionGetByID }
func (AddMusicRequest) Function() string           { return FuncMusic }
func (AddMusicRequest) Action() string             { return ActionAdd }
func (UpdateMusicRequest) Function() string        { return FuncMusic }
func (UpdateMusicRequest) Action() string          { return ActionUpdate }
func (DeleteMusicRequest) Function() string        { return FuncMusic }
func (DeleteMusicRequest) Action() string          { return ActionDelete }
func (UpdateOrderRequest) Function() string        { return FuncMusic }
func (UpdateOrderRequest) Action() string          { return ActionUpdateOrder }
func (BatchUpdateOrderRequest) Function() string   { return FuncMusic }
func (BatchUpdateOrderRequest) Action() string     { return ActionBatchUpdateOrder }
func (ReorderCategoryRequest) Function() string    { return FuncMusic }
func (ReorderCategoryRequest) Action() string      { return ActionReorderCategory }
func (InitializeOrdersRequest) Function() string   { return FuncMusic }
func (InitializeOrdersRequest) Action() string     { return ActionInitializeOrders }
func (IncrementPlayCountRequest) Function() string { return FuncMusic }
func (IncrementPlayCountRequest) Action() string   { return ActionIncrementPlay }

// ---------- imageLibrary ----------

type ListImagesRequest struct {
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=500"`
	Skip  int `json:"skip,omitempty" validate:"gte=0"`
}

type AddImageRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	URL          string `json:"url" validate:"required,max=1024"`
	LargeURL     string `json:"largeUrl,omitempty" validate:"max=1024"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" validate:"max=1024"`
	PlayURL      string `json:"playUrl,omitempty" validate:"max=1024"`
	Type         string `json:"type,omitempty" validate:"max=50"`
	VideoURL     string `json:"videoUrl,omitempty" validate:"max=1024"`
	AnimatedURL  string `json:"animatedUrl,omitempty" validate:"max=1024"`
}

type UpdateImageRequest struct {
	ID           string  `json:"id" validate:"required"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=255"`
	URL          *string `json:"url,omitempty" validate:"omitempty,max=1024"`
	LargeURL     *string `json:"largeUrl,omitempty" validate:"omitempty,max=1024"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" validate:"omitempty,max=1024"`
	PlayURL      *string `json:"playUrl,omitempty" validate:"omitempty,max=1024"`
	Type         *string `json:"type,omitempty" validate:"omitempty,max=50"`
	VideoURL     *string `json:"videoUrl,omitempty" validate:"omitempty,max=1024"`
	AnimatedURL  *string `json:"animatedUrl,omitempty" validate:"omitempty,max=1024"`
}

type DeleteImageRequest struct {
	ID string `json:"id" validate:"required"`
}

func (ListImagesRequest) Function() string  { return FuncImage }
func (ListImagesRequest) Action() string    { return ActionGet }
func (AddImageRequest) Function() string    { return FuncImage }
func (AddImageRequest) Action() string      { return ActionAdd }
func (UpdateImageRequest) Function() string { return FuncImage }
func (UpdateImageRequest) Action() string   { return ActionUpdate }
func (DeleteImageRequest) Function() string { return FuncImage }
func (DeleteImageRequest) Action() string   { return ActionDelete }

// ---------- audioManager ----------

type ListAudiosRequest struct {
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=500"`
	Skip  int `json:"skip,omitempty" validate:"gte=0"`
}

type GetAudioRequest struct {
	ID string `json:"id" validate:"required"`
}

type AddAudioRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	URL      string  `json:"url" validate:"required,max=1024"`
	Type     string  `json:"type,omitempty" validate:"max=50"`
	Size     int64   `json:"size,omitempty" validate:"gte=0"`
	Duration float64 `json:"duration,omitempty" validate:"gte=0"`
}

type UpdateAudioRequest struct {
	ID       string   `json:"id" validate:"required"`
	Name     *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	URL      *string  `json:"url,omitempty" validate:"omitempty,max=1024"`
	Type     *string  `json:"type,omitempty" validate:"omitempty,max=50"`
	Duration *float64 `json:"duration,omitempty" validate:"omitempty,gte=0"`
}

type DeleteAudioRequest struct {
	ID string `json:"id" validate:"required"`
}

func (ListAudiosRequest) Function() string  { return FuncAudio }
func (ListAudiosRequest) Action() string    { return ActionGet }
func (GetAudioRequest) Function() string    { return FuncAudio }
func (GetAudioRequest) Action() string      { return ActionGetByID }
func (AddAudioRequest) Function() string    { return FuncAudio }
func (AddAudioRequest) Action() string      { return ActionAdd }
func (UpdateAudioRequest) Function() string { return FuncAudio }
func (UpdateAudioRequest) Action() string   { return ActionUpdate }
func (DeleteAudioRequest) Function() string { return FuncAudio }
func (DeleteAudioRequest) Action() string   { return ActionDelete }

// ---------- homepageConfig ----------

type GetHomepageRequest struct{}

// UpdateHomepageRequest RecommendedAudioIDs 为 nil 时保持不变，空数组表示清空
type UpdateHomepageRequest struct {
	Title               *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Subtitle            *string  `json:"subtitle,omitempty" validate:"omitempty,max=255"`
	RecommendedAudioIDs []string `json:"recommendedAudioIds,omitempty" validate:"omitempty,max=50,unique,dive,required"`
}

func (GetHomepageRequest) Function() string    { return FuncHomepage }
func (GetHomepageRequest) Action() string      { return ActionGet }
func (UpdateHomepageRequest) Function() string { return FuncHomepage }
func (UpdateHomepageRequest) Action() string   { return ActionUpdate }

// ---------- titleManager ----------

type ListTitlesRequest struct{}

type AddTitleRequest struct {
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"required,clock"`
	Title     string `json:"title" validate:"required,max=255"`
	Subtitle  string `json:"subtitle,omitempty" validate:"max=255"`
}

type UpdateTitleRequest struct {
	ID        string  `json:"id" validate:"required"`
	StartTime *string `json:"startTime,omitempty" validate:"omitempty,clock"`
	EndTime   *string `json:"endTime,omitempty" validate:"omitempty,clock"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Subtitle  *string `json:"subtitle,omitempty" validate:"omitempty,max=255"`
}

type DeleteTitleRequest struct {
	ID string `json:"id" validate:"required"`
}

// CurrentTitleRequest At 为空时使用服务器当前时间
type CurrentTitleRequest struct {
	At string `json:"at,omitempty" validate:"omitempty,clock"`
}

func (ListTitlesRequest) Function() string   { return FuncTitle }
func (ListTitlesRequest) Action() string     { return ActionGetAll }
func (AddTitleRequest) Function() string     { return FuncTitle }
func (AddTitleRequest) Action() string       { return ActionAdd }
func (UpdateTitleRequest) Function() string  { return FuncTitle }
func (UpdateTitleRequest) Action() string    { return ActionUpdate }
func (DeleteTitleRequest) Function() string  { return FuncTitle }
func (DeleteTitleRequest) Action() string    { return ActionDelete }
func (CurrentTitleRequest) Function() string { return FuncTitle }
func (CurrentTitleRequest) Action() string   { return ActionGetCurrentTitle }

// ---------- statistics ----------

type StatisticsRequest struct{}

func (StatisticsRequest) Function() string { return FuncStatistics }
func (StatisticsRequest) Action() string   { return ActionGet }

// Statistics 仪表盘统计
type Statistics struct {
	TotalMusic      int64    `json:"totalMusic"`
	TotalPlays      int64    `json:"totalPlays"`
	TotalCategories int64    `json:"totalCategories"`
	TotalImages     int64    `json:"totalImages"`
	TotalAudios     int64    `json:"totalAudios"`
	TopMusic        []*Music `json:"topMusic"`
}
