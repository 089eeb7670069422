// Package server 托管远程函数、素材上传、管理员登录和变更推送。
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"zencms/config"
	"zencms/core/audio"
	"zencms/core/auth"
	"zencms/core/changefeed"
	"zencms/logger"
	"zencms/service"
	"zencms/storage"

	"github.com/gorilla/mux"
)

// ObjectStore 上传和静态文件依赖的对象存储
type ObjectStore interface {
	Upload(ctx context.Context, category, filename string, r io.Reader, size int64, contentType string) (*storage.UploadResult, error)
	Remove(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error)
}

// Deps 服务器依赖，Store、Hub 和 Probe 可以为空
type Deps struct {
	Services *service.Services
	Store    ObjectStore
	Hub      *changefeed.Hub
	Probe    audio.Prober
}

// Server 函数服务器
type Server struct {
	cfg       *config.Config
	services  *service.Services
	store     ObjectStore
	hub       *changefeed.Hub
	probe     audio.Prober
	tokens    *auth.TokenService
	functions *functionRegistry
	router    *mux.Router
}

// New 创建函数服务器
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		services: deps.Services,
		store:    deps.Store,
		hub:      deps.Hub,
		probe:    deps.Probe,
	}
	if cfg.AuthEnabled() {
		s.tokens = auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	}
	if deps.Services != nil {
		s.functions = newFunctionRegistry(deps.Services)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// 登录不需要令牌，必须在 /api 子路由之前注册
	router.HandleFunc("/api/auth/login", s.LoginHandler).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/functions/{name}", s.FunctionHandler).Methods(http.MethodPost)
	api.HandleFunc("/upload", s.UploadHandler).Methods(http.MethodPost)

	router.Handle("/ws/changes", s.authMiddleware(http.HandlerFunc(s.ChangesHandler))).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(NewStaticHandler(s.store))

	return router
}

// Handler 返回带 CORS 的根处理器
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.router)
}

// corsMiddleware 包在路由外层，预检请求不会因为方法不匹配被拒绝
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Run 启动 HTTP 服务，ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.HTTPPort,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("函数服务器启动",
			logger.String("addr", srv.Addr),
			logger.Bool("auth", s.tokens != nil),
			logger.Bool("storage", s.store != nil),
			logger.Bool("changeFeed", s.hub != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("正在关闭函数服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("函数服务器已停止")
	return nil
}
