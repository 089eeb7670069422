// Package client 调用函数服务器的 Go SDK，管理后台和命令行都通过它访问数据。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"zencms/config"
	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 10 * time.Second
	// 服务端尚未就绪时的重试次数和固定间隔
	defaultRetries = 3
	defaultBackoff = time.Second
)

// Config 客户端配置
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	// HTTPClient 为空时按 Timeout 创建
	HTTPClient *http.Client
}

// FromConfig 从全局配置构建客户端配置
func FromConfig(cfg *config.Config) Config {
	return Config{
		BaseURL: cfg.FunctionBaseURL,
		Token:   cfg.FunctionToken,
		Timeout: cfg.ClientTimeout,
	}
}

// Meta 列表动作附带的信息
type Meta struct {
	Total     *int64
	NeedsInit bool
}

// Client 函数调用客户端，可并发使用
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retries int
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// New 创建客户端
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, apperr.Initialization("function base URL is not configured")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, apperr.Initialization("invalid function base URL %q", base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    httpClient,
		retries: retries,
		backoff: backoff,
		sleep:   sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
	initGroup     singleflight.Group
)

// Init 初始化进程级默认客户端，并发调用只会创建一个实例
func Init(cfg Config) (*Client, error) {
	defaultMu.RLock()
	existing := defaultClient
	defaultMu.RUnlock()
	if existing != nil {
		return existing, nil
	}

	v, err, _ := initGroup.Do("default", func() (interface{}, error) {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultClient != nil {
			return defaultClient, nil
		}
		c, err := New(cfg)
		if err != nil {
			return nil, err
		}
		defaultClient = c
		logger.Debug("函数调用客户端已初始化", logger.String("baseURL", c.baseURL))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Default 返回默认客户端，未初始化时返回 InitializationError
func Default() (*Client, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultClient == nil {
		return nil, apperr.Initialization("client is not initialized, call client.Init first")
	}
	return defaultClient, nil
}

// Close 释放默认客户端，之后可以重新 Init
func Close() {
	defaultMu.Lock()
	c := defaultClient
	defaultClient = nil
	defaultMu.Unlock()
	if c != nil {
		c.http.CloseIdleConnections()
	}
}

// Invoke 调用 req 所属的远程函数，把 data 解码到 out（out 可为 nil）
func (c *Client) Invoke(ctx context.Context, req model.ActionRequest, out interface{}) (*Meta, error) {
	function := req.Function()
	body, err := model.EncodeEnvelope(req)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			logger.Warn("函数服务器未就绪，稍后重试",
				logger.String("function", function),
				logger.String("action", req.Action()),
				logger.Int("attempt", attempt))
			if err := c.sleep(ctx, c.backoff); err != nil {
				return nil, apperr.Transport(err, "invocation cancelled")
			}
		}

		meta, err := c.invokeOnce(ctx, function, body, out)
		if err == nil {
			return meta, nil
		}
		if !errors.Is(err, apperr.ErrInitialization) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) invokeOnce(ctx context.Context, function string, body []byte, out interface{}) (*Meta, error) {
	endpoint := c.baseURL + "/api/functions/" + url.PathEscape(function)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Transport(err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperr.Transport(err, fmt.Sprintf("call %s failed", function))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transport(err, fmt.Sprintf("read %s response failed", function))
	}

	var envelope model.Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, apperr.Initialization("function server is not ready")
		}
		return nil, apperr.Transport(err, fmt.Sprintf("unexpected %s response (HTTP %d)", function, resp.StatusCode))
	}

	if !envelope.Success {
		return nil, responseError(resp.StatusCode, &envelope)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return nil, apperr.Transport(err, fmt.Sprintf("decode %s data failed", function))
		}
	}
	return &Meta{Total: envelope.Total, NeedsInit: envelope.NeedsInit}, nil
}

// responseError 按响应里的 code 还原错误种类
func responseError(status int, envelope *model.Response) error {
	message := envelope.Error
	if message == "" {
		message = http.StatusText(status)
	}

	code := apperr.Code(envelope.Code)
	switch code {
	case apperr.CodeValidation, apperr.CodeNotFound, apperr.CodeConflict,
		apperr.CodeInitialization, apperr.CodeUnauthorized, apperr.CodeInternal:
	default:
		switch status {
		case http.StatusServiceUnavailable:
			code = apperr.CodeInitialization
		case http.StatusBadRequest:
			code = apperr.CodeValidation
		case http.StatusNotFound:
			code = apperr.CodeNotFound
		case http.StatusConflict:
			code = apperr.CodeConflict
		case http.StatusUnauthorized:
			code = apperr.CodeUnauthorized
		default:
			code = apperr.CodeInternal
		}
	}
	return apperr.New(code, "%s", message)
}
