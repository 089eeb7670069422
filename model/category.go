package model

import (
	"time"

	"github.com/google/uuid"
)

// Category 分类，两级树：ParentID 为空的是一级分类，否则是二级分类
type Category struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	ParentID   *string   `json:"parentId,omitempty" gorm:"size:36;index"`
	Order      int       `json:"order" gorm:"column:sort_order;default:0"`
	IconURL    string    `json:"iconUrl,omitempty" gorm:"size:1024"` // 仅一级分类使用
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// IsRoot 是否一级分类
func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// NewCategory 创建新分类
func NewCategory(name string, order int, parentID *string, iconURL string) *Category {
	now := time.Now()
	return &Category{
		ID:         uuid.New().String(),
		Name:       name,
		ParentID:   parentID,
		Order:      order,
		IconURL:    iconURL,
		CreateTime: now,
		UpdateTime: now,
	}
}
