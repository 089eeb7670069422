package server

import (
	"encoding/json"
	"net/http"
	"time"

	"zencms/core/apperr"
	"zencms/core/auth"
	"zencms/logger"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// LoginHandler handles admin login requests
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if s.tokens == nil {
		writeError(w, apperr.NotFound("authentication is disabled"))
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, apperr.Validation("username and password are required"))
		return
	}

	if req.Username != s.cfg.AdminUsername || s.cfg.AdminPasswordHash == "" ||
		!auth.CheckPasswordHash(req.Password, s.cfg.AdminPasswordHash) {
		logger.Warn("[Login] 用户名或密码错误", logger.String("username", req.Username))
		writeError(w, apperr.New(apperr.CodeUnauthorized, "invalid username or password"))
		return
	}

	token, expires, err := s.tokens.Issue(req.Username)
	if err != nil {
		logger.Error("[Login] 生成Token失败", logger.ErrorField(err))
		writeError(w, apperr.Internal(err, "failed to issue token"))
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", req.Username))
	writeData(w, &LoginResponse{Token: token, ExpiresAt: expires, Username: req.Username})
}

// authMiddleware 校验 Authorization 头或 token 查询参数，未配置密钥时放行
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			next.ServeHTTP(w, r)
			return
		}

		// 浏览器的 websocket 无法设置请求头，允许通过查询参数传递
		token := r.Header.Get("Authorization")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			writeError(w, apperr.New(apperr.CodeUnauthorized, "%s", err.Error()))
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUsername(r.Context(), claims.Username)))
	})
}
