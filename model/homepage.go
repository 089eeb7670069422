package model

import "time"

// HomepageConfigID 首页配置只有一行
const HomepageConfigID = "homepage"

// HomepageConfig 小程序首页的标题、副标题和推荐音频
type HomepageConfig struct {
	ID                  string    `json:"-" gorm:"primaryKey;size:36"`
	Title               string    `json:"title" gorm:"size:255"`
	Subtitle            string    `json:"subtitle" gorm:"size:255"`
	RecommendedAudioIDs []string  `json:"recommendedAudioIds" gorm:"serializer:json;type:text"`
	UpdateTime          time.Time `json:"updateTime"`
}

// TableName 指定表名
func (HomepageConfig) TableName() string {
	return "homepage_config"
}

// Homepage 返回给后台的首页配置，推荐音频已展开为完整记录
type Homepage struct {
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle"`
	RecommendedAudios []*Audio  `json:"recommendedAudios"`
	UpdateTime        time.Time `json:"updateTime,omitempty"`
}
