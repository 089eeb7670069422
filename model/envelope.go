package model

import (
	"encoding/json"
	"fmt"
)

// 函数名
const (
	FuncCategory   = "categoryManager"
	FuncMusic      = "musicManager"
	FuncImage      = "imageLibrary"
	FuncAudio      = "audioManager"
	FuncTitle      = "titleManager"
	FuncStatistics = "statistics"
	FuncHomepage   = "homepageConfig"
)

// 动作名
const (
	ActionGet              = "get"
	ActionGetAll           = "getAll"
	ActionGetByID          = "getById"
	ActionAdd              = "add"
	ActionUpdate           = "update"
	ActionDelete           = "delete"
	ActionUpdateOrder      = "updateOrder"
	ActionBatchUpdateOrder = "batchUpdateOrder"
	ActionReorderCategory  = "reorderCategory"
	ActionInitializeOrders = "initializeOrders"
	ActionIncrementPlay    = "incrementPlayCount"
	ActionGetCurrentTitle  = "getCurrentTitle"
)

// ActionRequest 是某个函数的一个具体动作的请求体
type ActionRequest interface {
	Function() string
	Action() string
}

// Response 函数调用响应信封
type Response struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Total     *int64          `json:"total,omitempty"`
	NeedsInit bool            `json:"needsInit,omitempty"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code,omitempty"`
}

// EncodeEnvelope 把请求编码成 {action, ...payload}
func EncodeEnvelope(req ActionRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s.%s payload: %w", req.Function(), req.Action(), err)
	}

	fields := map[string]json.RawMessage{}
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("payload of %s.%s is not an object: %w", req.Function(), req.Action(), err)
		}
	}
	action, _ := json.Marshal(req.Action())
	fields["action"] = action
	return json.Marshal(fields)
}

// PeekAction 读取信封中的 action 字段
func PeekAction(body []byte) (string, error) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return "", fmt.Errorf("invalid request envelope: %w", err)
	}
	if head.Action == "" {
		return "", fmt.Errorf("missing action")
	}
	return head.Action, nil
}
