package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"zencms/core/apperr"
	"zencms/logger"
	"zencms/model"
	"zencms/service"

	"github.com/gorilla/mux"
)

// maxEnvelopeBytes 单个函数调用请求体上限
const maxEnvelopeBytes = 1 << 20

// result 动作处理结果，total 和 needsInit 只对列表动作有意义
type result struct {
	data      interface{}
	total     *int64
	needsInit bool
}

type actionHandler func(ctx context.Context, body []byte) (*result, error)

// functionRegistry 函数名 -> 动作名 -> 处理器，未登记的动作一律拒绝
type functionRegistry struct {
	functions map[string]map[string]actionHandler
}

// register 登记一个动作，请求体按 T 解码
func register[T model.ActionRequest](r *functionRegistry, fn func(context.Context, T) (*result, error)) {
	var zero T
	actions, ok := r.functions[zero.Function()]
	if !ok {
		actions = make(map[string]actionHandler)
		r.functions[zero.Function()] = actions
	}
	actions[zero.Action()] = func(ctx context.Context, body []byte) (*result, error) {
		var req T
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.Validation("invalid %s payload: %s", zero.Action(), err.Error())
		}
		return fn(ctx, req)
	}
}

func data(v interface{}) *result { return &result{data: v} }

func page(v interface{}, total int64) *result { return &result{data: v, total: &total} }

func newFunctionRegistry(svc *service.Services) *functionRegistry {
	r := &functionRegistry{functions: make(map[string]map[string]actionHandler)}

	// categoryManager
	register(r, func(ctx context.Context, _ model.ListCategoriesRequest) (*result, error) {
		list, err := svc.Categories.List(ctx)
		return data(list), err
	})
	register(r, func(ctx context.Context, req model.AddCategoryRequest) (*result, error) {
		c, err := svc.Categories.Add(ctx, req)
		return data(c), err
	})
	register(r, func(ctx context.Context, req model.UpdateCategoryRequest) (*result, error) {
		c, err := svc.Categories.Update(ctx, req)
		return data(c), err
	})
	register(r, func(ctx context.Context, req model.DeleteCategoryRequest) (*result, error) {
		res, err := svc.Categories.Delete(ctx, req)
		return data(res), err
	})

	// musicManager
	register(r, func(ctx context.Context, req model.ListMusicRequest) (*result, error) {
		p, err := svc.Music.List(ctx, req)
		if err != nil {
			return nil, err
		}
		res := page(p.Data, p.Total)
		res.needsInit = p.NeedsInit
		return res, nil
	})
	register(r, func(ctx context.Context, req model.GetMusicRequest) (*result, error) {
		m, err := svc.Music.Get(ctx, req)
		return data(m), err
	})
	register(r, func(ctx context.Context, req model.AddMusicRequest) (*result, error) {
		m, err := svc.Music.Add(ctx, req)
		return data(m), err
	})
	register(r, func(ctx context.Context, req model.UpdateMusicRequest) (*result, error) {
		m, err := svc.Music.Update(ctx, req)
		return data(m), err
	})
	register(r, func(ctx context.Context, req model.DeleteMusicRequest) (*result, error) {
		return data(map[string]string{"id": req.ID}), svc.Music.Delete(ctx, req)
	})
	register(r, func(ctx context.Context, req model.UpdateOrderRequest) (*result, error) {
		updates, err := svc.Music.UpdateOrder(ctx, req)
		return data(updates), err
	})
	register(r, func(ctx context.Context, req model.BatchUpdateOrderRequest) (*result, error) {
		updates, err := svc.Music.BatchUpdateOrder(ctx, req)
		return data(updates), err
	})
	register(r, func(ctx context.Context, req model.ReorderCategoryRequest) (*result, error) {
		updates, err := svc.Music.ReorderCategory(ctx, req)
		return data(updates), err
	})
	register(r, func(ctx context.Context, req model.InitializeOrdersRequest) (*result, error) {
		report, err := svc.Music.InitializeOrders(ctx, req)
		return data(report), err
	})
	register(r, func(ctx context.Context, req model.IncrementPlayCountRequest) (*result, error) {
		m, err := svc.Music.IncrementPlayCount(ctx, req)
		return data(m), err
	})

	// imageLibrary
	register(r, func(ctx context.Context, req model.ListImagesRequest) (*result, error) {
		p, err := svc.Images.List(ctx, req)
		if err != nil {
			return nil, err
		}
		return page(p.Data, p.Total), nil
	})
	register(r, func(ctx context.Context, req model.AddImageRequest) (*result, error) {
		img, err := svc.Images.Add(ctx, req)
		return data(img), err
	})
	register(r, func(ctx context.Context, req model.UpdateImageRequest) (*result, error) {
		img, err := svc.Images.Update(ctx, req)
		return data(img), err
	})
	register(r, func(ctx context.Context, req model.DeleteImageRequest) (*result, error) {
		return data(map[string]string{"id": req.ID}), svc.Images.Delete(ctx, req)
	})

	// audioManager
	register(r, func(ctx context.Context, req model.ListAudiosRequest) (*result, error) {
		p, err := svc.Audios.List(ctx, req)
		if err != nil {
			return nil, err
		}
		return page(p.Data, p.Total), nil
	})
	register(r, func(ctx context.Context, req model.GetAudioRequest) (*result, error) {
		a, err := svc.Audios.Get(ctx, req)
		return data(a), err
	})
	register(r, func(ctx context.Context, req model.AddAudioRequest) (*result, error) {
		a, err := svc.Audios.Add(ctx, req)
		return data(a), err
	})
	register(r, func(ctx context.Context, req model.UpdateAudioRequest) (*result, error) {
		a, err := svc.Audios.Update(ctx, req)
		return data(a), err
	})
	register(r, func(ctx context.Context, req model.DeleteAudioRequest) (*result, error) {
		return data(map[string]string{"id": req.ID}), svc.Audios.Delete(ctx, req)
	})

	// titleManager
	register(r, func(ctx context.Context, _ model.ListTitlesRequest) (*result, error) {
		list, err := svc.Titles.List(ctx)
		return data(list), err
	})
	register(r, func(ctx context.Context, req model.AddTitleRequest) (*result, error) {
		t, err := svc.Titles.Add(ctx, req)
		return data(t), err
	})
	register(r, func(ctx context.Context, req model.UpdateTitleRequest) (*result, error) {
		t, err := svc.Titles.Update(ctx, req)
		return data(t), err
	})
	register(r, func(ctx context.Context, req model.DeleteTitleRequest) (*result, error) {
		return data(map[string]string{"id": req.ID}), svc.Titles.Delete(ctx, req)
	})
	register(r, func(ctx context.Context, req model.CurrentTitleRequest) (*result, error) {
		t, err := svc.Titles.Current(ctx, req)
		return data(t), err
	})

	// homepageConfig
	register(r, func(ctx context.Context, _ model.GetHomepageRequest) (*result, error) {
		h, err := svc.Homepage.Get(ctx)
		return data(h), err
	})
	register(r, func(ctx context.Context, req model.UpdateHomepageRequest) (*result, error) {
		h, err := svc.Homepage.Update(ctx, req)
		return data(h), err
	})

	// statistics
	register(r, func(ctx context.Context, _ model.StatisticsRequest) (*result, error) {
		stats, err := svc.Stats.Get(ctx)
		return data(stats), err
	})

	return r
}

// dispatch 按函数名和信封里的 action 找到处理器
func (r *functionRegistry) dispatch(ctx context.Context, function string, body []byte) (*result, error) {
	actions, ok := r.functions[function]
	if !ok {
		return nil, apperr.NotFound("unknown function %s", function)
	}
	action, err := model.PeekAction(body)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	handler, ok := actions[action]
	if !ok {
		return nil, apperr.Validation("unknown action %q for %s", action, function)
	}
	return handler(ctx, body)
}

// FunctionHandler 处理 POST /api/functions/{name}
func (s *Server) FunctionHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if s.functions == nil {
		writeError(w, apperr.Initialization("function server is not initialized"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes))
	if err != nil {
		writeError(w, apperr.Validation("failed to read request body"))
		return
	}

	res, err := s.functions.dispatch(r.Context(), name, body)
	if err != nil {
		logFunctionError(name, body, err)
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

func logFunctionError(function string, body []byte, err error) {
	action, _ := model.PeekAction(body)
	fields := []logger.Field{
		logger.String("function", function),
		logger.String("action", action),
		logger.String("code", string(apperr.CodeOf(err))),
		logger.ErrorField(err),
	}
	if apperr.CodeOf(err) == apperr.CodeInternal {
		logger.Error("函数调用失败", fields...)
		return
	}
	logger.Warn("函数调用被拒绝", fields...)
}

func writeResult(w http.ResponseWriter, res *result) {
	raw, err := json.Marshal(res.data)
	if err != nil {
		writeError(w, apperr.Internal(err, "failed to encode response"))
		return
	}
	writeJSON(w, http.StatusOK, &model.Response{
		Success:   true,
		Data:      raw,
		Total:     res.total,
		NeedsInit: res.needsInit,
	})
}

func writeData(w http.ResponseWriter, v interface{}) {
	writeResult(w, data(v))
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), &model.Response{
		Success: false,
		Error:   apperr.Message(err),
		Code:    string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, resp *model.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}
