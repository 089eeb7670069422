// Package changefeed 把变更事件推送给已连接的管理后台，
// 让多个同时打开的会话知道何时需要重新拉取数据。
package changefeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"zencms/logger"
	"zencms/model"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 64
)

// MessageType 消息类型
type MessageType string

const (
	MsgTypeChange MessageType = "change"
	MsgTypePing   MessageType = "ping"
	MsgTypePong   MessageType = "pong"
)

// Message 推送给客户端的消息
type Message struct {
	Type      MessageType        `json:"type"`
	Event     *model.ChangeEvent `json:"event,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// Client 一个管理后台连接
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	// Collections 只接收这些集合的事件，为空时接收全部
	collections map[string]bool
}

// Hub 变更推送中心
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub 创建推送中心
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 主循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("change feed client registered", logger.Int("clients", h.ClientCount()))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.fanOut(data)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				h.removeClient(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop 停止 Hub，关闭全部连接
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// removeClient 需要持有写锁
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) fanOut(data []byte) {
	var evt struct {
		Event *model.ChangeEvent `json:"event"`
	}
	_ = json.Unmarshal(data, &evt)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if evt.Event != nil && !client.wants(evt.Event.Collection) {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			// 发送缓冲区满，断开慢客户端
			go h.Unregister(client)
		}
	}
}

// Notify 把变更事件广播给所有连接，满足服务层的通知接口
func (h *Hub) Notify(_ context.Context, evt model.ChangeEvent) {
	h.Publish(evt)
}

// Publish 广播变更事件
func (h *Hub) Publish(evt model.ChangeEvent) {
	data, err := json.Marshal(&Message{Type: MsgTypeChange, Event: &evt, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		logger.Warn("序列化变更消息失败", logger.ErrorField(err))
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		logger.Warn("变更广播队列已满，丢弃事件",
			logger.String("collection", evt.Collection),
			logger.String("action", evt.Action))
	}
}

// Register 注册连接并启动读写循环，连接在断开或 Stop 时关闭
func (h *Hub) Register(conn *websocket.Conn, collections []string) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if len(collections) > 0 {
		client.collections = make(map[string]bool, len(collections))
		for _, c := range collections {
			client.collections[c] = true
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return client
}

// Unregister 注销连接
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) wants(collection string) bool {
	return len(c.collections) == 0 || c.collections[collection]
}

// readPump 只处理心跳和关闭，客户端不通过这条连接写数据
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("change feed read error", logger.ErrorField(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != MsgTypePing {
			continue
		}
		pong, _ := json.Marshal(&Message{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		select {
		case c.send <- pong:
		default:
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
