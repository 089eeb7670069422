package model

import (
	"time"

	"github.com/google/uuid"
)

// Image 图片素材，与音乐、分类没有外键关系，只通过复制 URL 使用
type Image struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	URL          string    `json:"url" gorm:"size:1024;not null"`
	LargeURL     string    `json:"largeUrl,omitempty" gorm:"size:1024"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" gorm:"size:1024"`
	PlayURL      string    `json:"playUrl,omitempty" gorm:"size:1024"`
	Type         string    `json:"type,omitempty" gorm:"size:50"`
	VideoURL     string    `json:"videoUrl,omitempty" gorm:"size:1024"`
	AnimatedURL  string    `json:"animatedUrl,omitempty" gorm:"size:1024"`
	CreateTime   time.Time `json:"createTime" gorm:"index"`
}

// TableName 指定表名
func (Image) TableName() string {
	return "images"
}

// NewImage 创建图片记录，未指定的尺寸 URL 回退为原图
func NewImage(name, url string) *Image {
	return &Image{
		ID:           uuid.New().String(),
		Name:         name,
		URL:          url,
		LargeURL:     url,
		ThumbnailURL: url,
		PlayURL:      url,
		CreateTime:   time.Now(),
	}
}

// Audio 音频素材
type Audio struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	Type       string    `json:"type,omitempty" gorm:"size:50"`
	Size       int64     `json:"size"`
	Duration   float64   `json:"duration"` // 秒
	CreateTime time.Time `json:"createTime" gorm:"index"`
}

// TableName 指定表名
func (Audio) TableName() string {
	return "audios"
}

// NewAudio 创建音频记录
func NewAudio(name, url string) *Audio {
	return &Audio{
		ID:         uuid.New().String(),
		Name:       name,
		URL:        url,
		CreateTime: time.Now(),
	}
}

// Page 分页参数
type Page struct {
	Limit int
	Skip  int
}
