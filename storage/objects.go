package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// 上传目录
const (
	CategoryImages  = "images"
	CategoryAudios  = "audios"
	CategoryLibrary = "library"
)

var allowedCategories = map[string]bool{
	CategoryImages:  true,
	CategoryAudios:  true,
	CategoryLibrary: true,
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	// 按目录统计大小
	ByCategory map[string]int64
}

// ResolveCategory 校验上传目录，未指定时按文件类型推断
func ResolveCategory(category, contentType, filename string) (string, error) {
	if category == "" {
		if strings.HasPrefix(contentType, "audio/") || inferKind(filename) == "audio" {
			return CategoryAudios, nil
		}
		return CategoryImages, nil
	}
	if !allowedCategories[category] {
		return "", fmt.Errorf("unsupported upload category %q", category)
	}
	return category, nil
}

// NewObjectKey 生成 {category}/{毫秒时间戳}-{随机串}.{ext}
func NewObjectKey(category, filename string, now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	return objectKey(category, filename, now, hex.EncodeToString(buf)), nil
}

func objectKey(category, filename string, now time.Time, random string) string {
	key := fmt.Sprintf("%s/%d-%s", category, now.UnixMilli(), random)
	if ext := getFileExtension(filename); ext != "" {
		key += "." + ext
	}
	return key
}

// getFileExtension 获取小写的文件扩展名，没有时返回空串
func getFileExtension(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	return strings.ToLower(ext)
}

// inferKind 从文件名推断素材种类
func inferKind(filename string) string {
	switch getFileExtension(filename) {
	case "mp3", "wav", "flac", "m4a", "aac", "ogg":
		return "audio"
	case "jpg", "jpeg", "png", "gif", "webp", "svg":
		return "image"
	case "mp4", "mov", "webm":
		return "video"
	default:
		return "other"
	}
}

// ContentTypeOf 根据扩展名推断 Content-Type
func ContentTypeOf(filename string) string {
	ext := getFileExtension(filename)
	if ext == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	switch inferKind(filename) {
	case "audio":
		return "audio/" + ext
	case "image":
		return "image/" + ext
	}
	return "application/octet-stream"
}

// formatSize 格式化文件大小
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatSize 导出给命令行使用
func FormatSize(size int64) string {
	return formatSize(size)
}

// ListObjects 列出前缀下的对象并统计
func (s *MinioStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{ByCategory: make(map[string]int64)}
	var objects []ObjectInfo

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}

		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		dir := "."
		if i := strings.Index(object.Key, "/"); i > 0 {
			dir = object.Key[:i]
		}
		stats.ByCategory[dir] += object.Size

		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, stats, nil
}

// DeletePrefix 删除前缀下的全部对象，返回删除数量
func (s *MinioStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("refusing to delete the whole bucket")
	}

	sent := 0
	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				return
			}
			sent++
			objectsCh <- object
		}
	}()

	failed := 0
	var firstErr error
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed++
		if firstErr == nil {
			firstErr = fmt.Errorf("删除对象 %s 失败: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return sent - failed, firstErr
}
