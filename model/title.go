package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const minutesPerDay = 24 * 60

// Title 首页时间段标题
type Title struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	StartTime  string    `json:"startTime" gorm:"size:5;not null"` // HH:mm
	EndTime    string    `json:"endTime" gorm:"size:5;not null"`   // HH:mm
	Title      string    `json:"title" gorm:"size:255;not null"`
	Subtitle   string    `json:"subtitle,omitempty" gorm:"size:255"`
	CreateTime time.Time `json:"createTime"`
}

// TableName 指定表名
func (Title) TableName() string {
	return "titles"
}

// NewTitle 创建时间段标题
func NewTitle(start, end, title, subtitle string) *Title {
	return &Title{
		ID:         uuid.New().String(),
		StartTime:  start,
		EndTime:    end,
		Title:      title,
		Subtitle:   subtitle,
		CreateTime: time.Now(),
	}
}

// ParseClock 解析 HH:mm，返回当天的分钟数
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != len("15:04") {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockOf 返回 t 在当天的分钟数
func ClockOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// span 返回 [start, end) 的长度，end 小于 start 时跨越午夜，相等视为全天
func (t *Title) span() (start, length int, err error) {
	start, err = ParseClock(t.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(t.EndTime)
	if err != nil {
		return 0, 0, err
	}
	length = (end - start + minutesPerDay) % minutesPerDay
	if length == 0 {
		length = minutesPerDay
	}
	return start, length, nil
}

// Covers 判断 minute 是否落在时间段内
func (t *Title) Covers(minute int) bool {
	start, length, err := t.span()
	if err != nil {
		return false
	}
	elapsed := (minute - start + minutesPerDay) % minutesPerDay
	return elapsed < length
}

// PickCurrentTitle 返回覆盖 minute 的标题。多个时间段重叠时，开始时间离 minute
// 最近的优先；再按时间段长度从短到长，最后按 ID。
func PickCurrentTitle(titles []*Title, minute int) *Title {
	type candidate struct {
		title   *Title
		elapsed int
		length  int
	}
	var matches []candidate
	for _, t := range titles {
		start, length, err := t.span()
		if err != nil {
			continue
		}
		elapsed := (minute - start + minutesPerDay) % minutesPerDay
		if elapsed < length {
			matches = append(matches, candidate{title: t, elapsed: elapsed, length: length})
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.elapsed != b.elapsed {
			return a.elapsed < b.elapsed
		}
		if a.length != b.length {
			return a.length < b.length
		}
		return a.title.ID < b.title.ID
	})
	return matches[0].title
}
