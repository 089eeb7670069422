package server

import (
	"net/http"
	"strings"

	"zencms/core/apperr"
	"zencms/logger"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChangesHandler 把变更事件推送给管理后台，collections 参数按逗号过滤集合
func (s *Server) ChangesHandler(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, apperr.Initialization("change feed is not enabled"))
		return
	}

	var collections []string
	for _, c := range strings.Split(r.URL.Query().Get("collections"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			collections = append(collections, c)
		}
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	s.hub.Register(conn, collections)
}
