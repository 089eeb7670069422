package server

import (
	"io"
	"net/http"
	"strings"

	"zencms/logger"
	"zencms/storage"
)

// StaticHandler 从对象存储读取文件，供未配置公开访问的桶使用
type StaticHandler struct {
	store ObjectStore
}

// NewStaticHandler 创建 StaticHandler 实例
func NewStaticHandler(store ObjectStore) *StaticHandler {
	return &StaticHandler{store: store}
}

// ServeHTTP 实现 http.Handler 接口
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "object storage not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/static/")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	object, info, err := h.store.Open(r.Context(), key)
	if err != nil {
		logger.Debug("static object not found", logger.String("key", key), logger.ErrorField(err))
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeOf(key)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, object); err != nil {
		logger.Error("Error serving file from MinIO", logger.ErrorField(err))
	}
}
