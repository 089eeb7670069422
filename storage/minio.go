package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"zencms/config"
	"zencms/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioStore *MinioStore
)

// UploadResult 上传结果
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Category    string `json:"category"`
}

// MinioStore 封装存储桶上的对象操作
type MinioStore struct {
	client        *minio.Client
	bucket        string
	region        string
	publicBaseURL string
	private       bool
	presignExpiry time.Duration
}

// NewMinioStore 根据配置创建存储客户端，不发起网络请求
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.MinioBucket,
		region:        cfg.MinioRegion,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		private:       cfg.PrivateBucket,
		presignExpiry: cfg.PresignExpiry,
	}, nil
}

// InitMinio 初始化全局存储客户端并确保存储桶存在
func InitMinio(cfg *config.Config) error {
	store, err := NewMinioStore(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	minioStore = store
	logger.Info("MinIO 客户端初始化成功",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket),
		logger.Bool("private", cfg.PrivateBucket))
	return nil
}

// GetMinioStore 获取全局存储客户端
func GetMinioStore() *MinioStore {
	return minioStore
}

// Bucket 存储桶名称
func (s *MinioStore) Bucket() string {
	return s.bucket
}

// EnsureBucket 存储桶不存在时创建
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		logger.Debug("存储桶已存在", logger.String("bucket", s.bucket))
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("成功创建存储桶", logger.String("bucket", s.bucket))
	return nil
}

// Upload 上传对象，对象键为 {category}/{timestamp}-{random}.{ext}
func (s *MinioStore) Upload(ctx context.Context, category, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	category, err := ResolveCategory(category, contentType, filename)
	if err != nil {
		return nil, err
	}
	key, err := NewObjectKey(category, filename, time.Now())
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = ContentTypeOf(filename)
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("上传对象 %s 失败: %w", key, err)
	}

	objectURL, err := s.URL(ctx, key)
	if err != nil {
		// 上传成功但拿不到地址时，对象没有任何引用，直接清理
		if rmErr := s.Remove(context.Background(), key); rmErr != nil {
			logger.Warn("清理对象失败", logger.String("key", key), logger.ErrorField(rmErr))
		}
		return nil, err
	}

	logger.Info("对象上传成功",
		logger.String("key", key),
		logger.Int64("size", info.Size),
		logger.String("contentType", contentType))

	return &UploadResult{
		Key:         key,
		URL:         objectURL,
		Size:        info.Size,
		ContentType: contentType,
		Category:    category,
	}, nil
}

// URL 返回对象的访问地址：公开桶直接拼接，私有桶返回预签名地址
func (s *MinioStore) URL(ctx context.Context, key string) (string, error) {
	if !s.private {
		return PublicURL(s.publicBaseURL, key), nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("生成预签名地址失败: %w", err)
	}
	return u.String(), nil
}

// Remove 删除对象
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", key, err)
	}
	return nil
}

// PublicURL 拼接公开访问地址
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// Open 读取对象内容，调用方负责关闭
func (s *MinioStore) Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("读取对象 %s 失败: %w", key, err)
	}
	stat, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, nil, fmt.Errorf("读取对象 %s 失败: %w", key, err)
	}
	return object, &ObjectInfo{
		Key:          key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
		ContentType:  stat.ContentType,
	}, nil
}
