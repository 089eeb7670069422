package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderScope 排序作用域
type OrderScope string

const (
	// ScopeGlobal 不按分类筛选时的全局顺序，对应 globalOrder
	ScopeGlobal OrderScope = "global"
	// ScopeCategory 分类内顺序，对应 categoryOrder
	ScopeCategory OrderScope = "category"
)

// OrderStep 相邻两条记录的序号间隔
const OrderStep = 10

// Column 返回作用域对应的数据库列
func (s OrderScope) Column() string {
	if s == ScopeCategory {
		return "category_order"
	}
	return "global_order"
}

// Valid 是否合法的作用域
func (s OrderScope) Valid() bool {
	return s == ScopeGlobal || s == ScopeCategory
}

// OrderUpdate 一条排序写入
type OrderUpdate struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Music 音乐记录
type Music struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:255;not null;index"`
	AudioURL      string    `json:"audioUrl" gorm:"size:1024;not null"`
	Title         string    `json:"title" gorm:"size:255"`
	Subtitle      string    `json:"subtitle,omitempty" gorm:"size:255"`
	BackgroundURL string    `json:"backgroundUrl,omitempty" gorm:"size:1024"`
	IconURL       string    `json:"iconUrl,omitempty" gorm:"size:1024"`
	ListImageURL  string    `json:"listImageUrl,omitempty" gorm:"size:1024"`
	CategoryID    string    `json:"categoryId" gorm:"size:36;not null;index"`
	CreateTime    time.Time `json:"createTime" gorm:"index"`
	UpdateTime    time.Time `json:"updateTime"`
	PlayCount     int64     `json:"playCount" gorm:"default:0"`
	// 为空表示尚未初始化
	GlobalOrder   *int `json:"globalOrder,omitempty" gorm:"index"`
	CategoryOrder *int `json:"categoryOrder,omitempty"`
}

// TableName 指定表名
func (Music) TableName() string {
	return "music"
}

// OrderIn 返回指定作用域的序号
func (m *Music) OrderIn(scope OrderScope) *int {
	if scope == ScopeCategory {
		return m.CategoryOrder
	}
	return m.GlobalOrder
}

// SetOrder 设置指定作用域的序号
func (m *Music) SetOrder(scope OrderScope, order int) {
	v := order
	if scope == ScopeCategory {
		m.CategoryOrder = &v
		return
	}
	m.GlobalOrder = &v
}

// NewMusic 创建音乐记录，序号由调用方分配
func NewMusic(name, audioURL, title, categoryID string) *Music {
	now := time.Now()
	return &Music{
		ID:         uuid.New().String(),
		Name:       name,
		AudioURL:   audioURL,
		Title:      title,
		CategoryID: categoryID,
		CreateTime: now,
		UpdateTime: now,
	}
}

// MusicFilter 列表查询条件
type MusicFilter struct {
	CategoryID string
	Search     string // 名称模糊匹配
	Limit      int    // 0 表示不限制
	Skip       int
}

// Scope 返回查询对应的排序作用域：有分类筛选时使用分类内顺序
func (f MusicFilter) Scope() OrderScope {
	if f.CategoryID != "" {
		return ScopeCategory
	}
	return ScopeGlobal
}
