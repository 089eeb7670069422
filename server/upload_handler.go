package server

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"
	"zencms/storage"
)

// maxUploadMemory 解析 multipart 时保存在内存中的上限，超出部分落到临时文件
const maxUploadMemory = 32 << 20

// UploadResponse 上传结果，Record 只在 register=true 时存在
type UploadResponse struct {
	Upload *storage.UploadResult `json:"upload"`
	Record interface{}           `json:"record,omitempty"`
}

// UploadHandler 处理素材上传
// Expected multipart form fields:
// - file: 文件内容
// - category: images | audios | library，为空时按文件类型推断
// - register: 为 true 时同时登记到素材库
// - name, type, duration: 登记时使用的元数据（可选）
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, apperr.Initialization("object storage is not configured"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperr.Validation("failed to parse multipart form: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.Validation("missing 'file' in form"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	category, err := storage.ResolveCategory(r.FormValue("category"), contentType, header.Filename)
	if err != nil {
		writeError(w, apperr.Validation("%s", err.Error()))
		return
	}

	uploaded, err := s.store.Upload(r.Context(), category, header.Filename, file, header.Size, contentType)
	if err != nil {
		logger.Error("上传对象失败",
			logger.String("filename", header.Filename),
			logger.String("category", category),
			logger.ErrorField(err))
		writeError(w, apperr.Internal(err, "failed to upload file"))
		return
	}

	resp := &UploadResponse{Upload: uploaded}
	if register, _ := strconv.ParseBool(r.FormValue("register")); register {
		record, err := s.registerUpload(r, file, header.Filename, uploaded)
		if err != nil {
			s.discardUpload(uploaded.Key)
			writeError(w, err)
			return
		}
		resp.Record = record
	}

	writeData(w, resp)
}

// registerUpload 把上传结果登记为图片或音频记录
func (s *Server) registerUpload(r *http.Request, file multipart.File, filename string, uploaded *storage.UploadResult) (interface{}, error) {
	if s.services == nil {
		return nil, apperr.Initialization("function server is not initialized")
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	kind := r.FormValue("type")

	if uploaded.Category == storage.CategoryAudios {
		duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
		if duration <= 0 {
			duration = s.probeDuration(r.Context(), file, filename)
		}
		if kind == "" {
			kind = uploaded.ContentType
		}
		return s.services.Audios.Add(r.Context(), model.AddAudioRequest{
			Name:     name,
			URL:      uploaded.URL,
			Type:     kind,
			Size:     uploaded.Size,
			Duration: duration,
		})
	}
	return s.services.Images.Add(r.Context(), model.AddImageRequest{
		Name: name,
		URL:  uploaded.URL,
		Type: kind,
	})
}

// discardUpload 登记失败时删除刚上传的对象，避免留下无人引用的文件
func (s *Server) discardUpload(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Remove(ctx, key); err != nil {
		logger.Warn("清理未登记的对象失败", logger.String("key", key), logger.ErrorField(err))
		return
	}
	logger.Info("已清理未登记的对象", logger.String("key", key))
}

// probeDuration 表单没有给出时长时用 ffprobe 读取，失败只记录日志
func (s *Server) probeDuration(ctx context.Context, file multipart.File, filename string) float64 {
	if s.probe == nil {
		return 0
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		logger.Warn("无法回读上传文件", logger.String("filename", filename), logger.ErrorField(err))
		return 0
	}

	tmp, err := os.CreateTemp("", "zencms-probe-*"+filepath.Ext(filename))
	if err != nil {
		logger.Warn("创建临时文件失败", logger.ErrorField(err))
		return 0
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := io.Copy(tmp, file); err != nil {
		logger.Warn("写入临时文件失败", logger.ErrorField(err))
		return 0
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	duration, err := s.probe.Duration(probeCtx, tmp.Name())
	if err != nil {
		logger.Warn("读取音频时长失败", logger.String("filename", filename), logger.ErrorField(err))
		return 0
	}
	return duration
}
