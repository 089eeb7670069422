package model

import "time"

// 变更事件涉及的集合
const (
	CollectionCategories = "categories"
	CollectionMusic      = "music"
	CollectionImages     = "images"
	CollectionAudios     = "audios"
	CollectionTitles     = "titles"
	CollectionHomepage   = "homepage"
)

// ChangeEvent 一次成功写入后广播的变更通知，收到后客户端应重新拉取对应集合
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	IDs        []string  `json:"ids,omitempty"`
	At         time.Time `json:"at"`
}

// NewChangeEvent 创建变更事件
func NewChangeEvent(collection, action string, ids ...string) ChangeEvent {
	return ChangeEvent{
		Collection: collection,
		Action:     action,
		IDs:        ids,
		At:         time.Now(),
	}
}
